package imageres

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	apperrors "slide-composer/internal/common/errors"
	"slide-composer/internal/common/logger"
	"slide-composer/internal/common/metrics"
	"slide-composer/internal/composer/fitter"
	"slide-composer/internal/models"
)

var (
	ErrUnknownImage = errors.New("IMAGE_NOT_IN_METADATA")
	ErrMissingFile  = errors.New("IMAGE_FILE_MISSING")
)

var supportedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

type size struct {
	width, height int
}

// Resolver maps image identifiers to files and reads their pixel size.
// Dimensions are cached per path for the lifetime of the resolver.
type Resolver struct {
	images models.ImageMetadata
	logger logger.Logger
	mu     sync.Mutex
	sizes  map[string]size
}

func NewResolver(images models.ImageMetadata, log logger.Logger) *Resolver {
	if images == nil {
		images = models.ImageMetadata{}
	}
	return &Resolver{
		images: images,
		logger: log.WithFields(map[string]interface{}{"component": "image-resolver"}),
		sizes:  make(map[string]size),
	}
}

// Images returns the metadata the resolver was built with.
func (r *Resolver) Images() models.ImageMetadata {
	return r.images
}

// Path returns the file path for an image id if the file exists.
func (r *Resolver) Path(imageID string) (string, error) {
	entry, ok := r.images[imageID]
	if imageID == "" || !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownImage, imageID)
	}
	if entry.Path == "" {
		return "", fmt.Errorf("%w: %q has no path", ErrMissingFile, imageID)
	}
	if _, err := os.Stat(entry.Path); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingFile, err)
	}
	return entry.Path, nil
}

// Dimensions returns the natural pixel size of an image, preferring sizes
// supplied in the metadata over reading the file header.
func (r *Resolver) Dimensions(imageID string) (int, int, error) {
	entry, ok := r.images[imageID]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownImage, imageID)
	}
	if entry.Width > 0 && entry.Height > 0 {
		return entry.Width, entry.Height, nil
	}

	r.mu.Lock()
	cached, hit := r.sizes[entry.Path]
	r.mu.Unlock()
	if hit {
		return cached.width, cached.height, nil
	}

	f, err := os.Open(entry.Path)
	if err != nil {
		return 0, 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image header: %w", err)
	}

	r.mu.Lock()
	r.sizes[entry.Path] = size{width: cfg.Width, height: cfg.Height}
	r.mu.Unlock()
	return cfg.Width, cfg.Height, nil
}

// Fit resolves an image and fits it into box. When the image cannot be
// located an error is returned and nothing should be drawn. When only its
// size cannot be read, the image fills the box and a warning is logged.
func (r *Resolver) Fit(imageID string, box fitter.Rect) (string, fitter.Rect, error) {
	path, err := r.Path(imageID)
	if err != nil {
		metrics.ImageFallbacks.WithLabelValues("unresolved").Inc()
		r.logger.Warn("image not resolved, skipping picture",
			apperrors.NewImageResolutionError(imageID, err).LogFields())
		return "", box, err
	}

	w, h, err := r.Dimensions(imageID)
	if err != nil {
		metrics.ImageFallbacks.WithLabelValues("unreadable").Inc()
		r.logger.Warn("image size unreadable, filling bounding box",
			apperrors.NewImageResolutionError(imageID, err).WithMetadata("path", path).LogFields())
		return path, box, nil
	}

	return path, fitter.AspectFit(float64(w), float64(h), box), nil
}

// ScanDirectory builds image metadata from the supported image files in dir,
// sorted by name and numbered from img_01.
func ScanDirectory(dir string) (models.ImageMetadata, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read image directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if supportedExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make(models.ImageMetadata, len(names))
	for i, name := range names {
		out[models.ImageID(i+1)] = models.ImageEntry{
			Filename: name,
			Path:     filepath.Join(dir, name),
			Index:    i + 1,
		}
	}
	return out, nil
}
