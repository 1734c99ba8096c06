package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	apperrors "slide-composer/internal/common/errors"
	"slide-composer/internal/composer/engine"
	"slide-composer/internal/composer/prompt"
	"slide-composer/internal/models"
	"slide-composer/internal/store"
)

// ComposeRequest carries the generator's presentation plus the images it
// may reference. Image paths are relative to the server's images root.
// Format is "markup" (default) or "deck".
type ComposeRequest struct {
	Title  string               `json:"title,omitempty"`
	Slides []models.SlideRecord `json:"slides"`
	Images models.ImageMetadata `json:"images,omitempty"`
	Format string               `json:"format,omitempty"`
}

type ComposeResponse struct {
	Result *engine.Result `json:"result"`
	Keys   []string       `json:"keys,omitempty"`
}

// Compose renders a presentation and stores its artifacts.
// POST /api/compose
func (h *Handler) Compose(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInputInvalid), "could not read body")
		return
	}

	var req ComposeRequest
	if err := decodeRequest(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInputInvalid), err.Error())
		return
	}

	images, err := h.localImages(req.Images)
	if err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInputInvalid), err.Error())
		return
	}

	in := &engine.Input{Records: req.Slides, Images: images, Title: req.Title}

	var res *engine.Result
	switch req.Format {
	case "", string(engine.BackendMarkup):
		res, err = h.engine.ComposeMarkup(r.Context(), in)
	case string(engine.BackendDeck):
		res, err = h.engine.ComposeDeck(r.Context(), in)
	default:
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInputInvalid),
			fmt.Sprintf("format must be markup or deck, got %q", req.Format))
		return
	}
	if err != nil {
		h.logger.Error("composition failed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, string(apperrors.ErrCodeRenderFailed), err.Error())
		return
	}

	resp := ComposeResponse{Result: res}
	if h.sink != nil {
		keys, err := store.Persist(r.Context(), h.sink, res)
		if err != nil {
			h.logger.Error("failed to store composition", map[string]interface{}{
				"runId": res.RunID.String(),
				"error": err.Error(),
			})
			writeError(w, http.StatusBadGateway, string(apperrors.ErrCodeStoreWriteFailed), err.Error())
			return
		}
		resp.Keys = keys
	}
	writeJSON(w, http.StatusOK, resp)
}

// localImages confines request image paths to the images root. Paths must be
// relative and may not leave the root.
func (h *Handler) localImages(images models.ImageMetadata) (models.ImageMetadata, error) {
	if len(images) == 0 {
		return nil, nil
	}
	if h.imagesRoot == "" {
		return nil, fmt.Errorf("images are not accepted: no images root configured")
	}
	out := make(models.ImageMetadata, len(images))
	for id, entry := range images {
		rel := entry.Path
		if rel == "" {
			rel = entry.Filename
		}
		if !filepath.IsLocal(rel) {
			return nil, fmt.Errorf("image %s: path %q must be relative to the images root", id, entry.Path)
		}
		entry.Path = filepath.Join(h.imagesRoot, rel)
		out[id] = entry
	}
	return out, nil
}

// decodeRequest accepts the compose envelope or a bare presentation
// (an array of records or {"slides": [...]}).
func decodeRequest(body []byte, req *ComposeRequest) error {
	p, err := models.ParsePresentation(body)
	if err != nil {
		return err
	}
	if err := decodeObject(body, req); err != nil {
		return err
	}
	req.Slides = p.Slides
	if req.Title == "" {
		req.Title = p.Title
	}
	return nil
}

// GetDeck serves a stored artifact of a run. The artifact query parameter
// selects markup, deck or result; by default markup is tried, then deck.
// GET /api/decks/{id}
func (h *Handler) GetDeck(w http.ResponseWriter, r *http.Request) {
	if h.sink == nil {
		writeError(w, http.StatusNotFound, "", "no store configured")
		return
	}
	id := mux.Vars(r)["id"]

	names := []string{store.ArtifactMarkup, store.ArtifactDeck}
	if a := r.URL.Query().Get("artifact"); a != "" {
		names = []string{a}
	}

	for _, name := range names {
		a, err := h.sink.Load(r.Context(), store.Key(id, name))
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "", err.Error())
			return
		}
		w.Header().Set("Content-Type", a.ContentType)
		w.WriteHeader(http.StatusOK)
		w.Write(a.Data)
		return
	}
	writeError(w, http.StatusNotFound, "", fmt.Sprintf("no artifact for run %s", id))
}

// ListSlideTypes returns the registered kinds with their example records.
// GET /api/slide-types
func (h *Handler) ListSlideTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"default":     h.engine.Registry().DefaultTag(),
		"slide_types": h.engine.Registry().Entries(),
	})
}

type PromptRequest struct {
	UserPrompt string               `json:"user_prompt,omitempty"`
	Images     models.ImageMetadata `json:"images,omitempty"`
}

// Prompt renders the generation prompt for the registered kinds.
// POST /api/prompt
func (h *Handler) Prompt(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err == nil && len(body) > 0 {
		err = decodeObject(body, &req)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInputInvalid), err.Error())
		return
	}

	text, err := prompt.Build(h.engine.Registry().Entries(), req.Images, req.UserPrompt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, string(apperrors.ErrCodeInternal), err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, text)
}

// decodeObject decodes a JSON object body; a bare array leaves v untouched.
func decodeObject(body []byte, v interface{}) error {
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		return nil
	}
	return json.Unmarshal(body, v)
}
