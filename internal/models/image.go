package models

import (
	"fmt"
	"sort"
)

// ImageEntry describes one ingested image. Width and Height are optional
// pixel dimensions supplied by the ingestion step.
type ImageEntry struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Index    int    `json:"index,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// ImageMetadata maps image identifiers to their entries.
type ImageMetadata map[string]ImageEntry

// ImageID formats the identifier for the n-th image, starting at 1.
func ImageID(n int) string {
	return fmt.Sprintf("img_%02d", n)
}

// IDs returns the identifiers in sorted order.
func (m ImageMetadata) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
