package server

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slide-composer/internal/common/logger"
	"slide-composer/internal/composer/engine"
	"slide-composer/internal/store"
)

func setupServer(t *testing.T, withStore bool) http.Handler {
	t.Helper()
	e, err := engine.New(engine.Config{}, logger.NewTestLogger(t))
	require.NoError(t, err)

	var sink store.Sink
	if withStore {
		sink = store.NewFileSink(t.TempDir())
	}
	return NewHandler(e, sink, logger.NewTestLogger(t)).Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCompose(t *testing.T) {
	h := setupServer(t, true)

	tests := []struct {
		name     string
		body     string
		status   int
		validate func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:   "markup envelope",
			body:   `{"title": "Demo", "slides": [{"slide_type": "opening", "title": "Hello"}]}`,
			status: http.StatusOK,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp struct {
					Result map[string]interface{} `json:"result"`
					Keys   []string               `json:"keys"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "markup", resp.Result["backend"])
				assert.Equal(t, float64(1), resp.Result["rendered"])
				assert.Len(t, resp.Keys, 2)
			},
		},
		{
			name:   "bare array defaults to markup",
			body:   `[{"slide_type": "closing"}]`,
			status: http.StatusOK,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Contains(t, rec.Body.String(), `"backend":"markup"`)
			},
		},
		{
			name:   "deck format",
			body:   `{"format": "deck", "slides": [{"slide_type": "unknown_kind", "title": "x"}]}`,
			status: http.StatusOK,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Contains(t, rec.Body.String(), `"fallbacks":1`)
				assert.Contains(t, rec.Body.String(), `"mode":"freeform"`)
			},
		},
		{
			name:   "unknown format",
			body:   `{"format": "pdf", "slides": []}`,
			status: http.StatusBadRequest,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Contains(t, rec.Body.String(), "INPUT_INVALID")
			},
		},
		{
			name:   "invalid json",
			body:   `{"slides": [`,
			status: http.StatusBadRequest,
		},
		{
			name:   "missing slides",
			body:   `{"title": "x"}`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/compose", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.validate != nil {
				tt.validate(t, rec)
			}
		})
	}
}

func TestCompose_ImagePaths(t *testing.T) {
	root := t.TempDir()
	f, err := os.Create(filepath.Join(root, "chart.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 40, 20))))
	require.NoError(t, f.Close())

	e, err := engine.New(engine.Config{}, logger.NewTestLogger(t))
	require.NoError(t, err)
	sink := store.NewFileSink(t.TempDir())
	h := NewHandler(e, sink, logger.NewTestLogger(t)).WithImagesRoot(root).Router()

	slides := `"slides": [{"slide_type": "full_image", "title": "Chart", "image_id": "img_01"}]`

	tests := []struct {
		name     string
		handler  http.Handler
		body     string
		status   int
		validate func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:    "relative path resolves under the root",
			handler: h,
			body:    `{"images": {"img_01": {"filename": "chart.png", "path": "chart.png"}}, ` + slides + `}`,
			status:  http.StatusOK,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp struct {
					Result struct {
						RunID    string `json:"runId"`
						Warnings int    `json:"warnings"`
					} `json:"result"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, 0, resp.Result.Warnings)

				get := do(t, h, http.MethodGet, "/api/decks/"+resp.Result.RunID, "")
				require.Equal(t, http.StatusOK, get.Code)
				assert.Contains(t, get.Body.String(), `src="file://`)
				assert.Contains(t, get.Body.String(), `/chart.png"`)
			},
		},
		{
			name:    "filename used when path is empty",
			handler: h,
			body:    `{"images": {"img_01": {"filename": "chart.png"}}, ` + slides + `}`,
			status:  http.StatusOK,
		},
		{
			name:    "absolute path rejected",
			handler: h,
			body:    `{"images": {"img_01": {"filename": "passwd", "path": "/etc/passwd"}}, ` + slides + `}`,
			status:  http.StatusBadRequest,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Contains(t, rec.Body.String(), "INPUT_INVALID")
				assert.Contains(t, rec.Body.String(), "images root")
			},
		},
		{
			name:    "parent traversal rejected",
			handler: h,
			body:    `{"images": {"img_01": {"filename": "x.png", "path": "../x.png"}}, ` + slides + `}`,
			status:  http.StatusBadRequest,
		},
		{
			name:    "images without a configured root rejected",
			handler: setupServer(t, true),
			body:    `{"images": {"img_01": {"filename": "chart.png", "path": "chart.png"}}, ` + slides + `}`,
			status:  http.StatusBadRequest,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Contains(t, rec.Body.String(), "no images root")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, tt.handler, http.MethodPost, "/api/compose", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.validate != nil {
				tt.validate(t, rec)
			}
		})
	}
}

func TestGetDeck(t *testing.T) {
	h := setupServer(t, true)

	rec := do(t, h, http.MethodPost, "/api/compose", `{"title": "Demo", "slides": [{"slide_type": "opening", "title": "Hello"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Result struct {
			RunID string `json:"runId"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = do(t, h, http.MethodGet, "/api/decks/"+resp.Result.RunID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, store.ContentTypeHTML, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<title>Demo</title>")

	rec = do(t, h, http.MethodGet, "/api/decks/"+resp.Result.RunID+"?artifact=result", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), resp.Result.RunID)

	rec = do(t, h, http.MethodGet, "/api/decks/"+resp.Result.RunID+"?artifact=deck", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/decks/unknown-run", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetDeck_NoStore(t *testing.T) {
	h := setupServer(t, false)

	rec := do(t, h, http.MethodPost, "/api/compose", `{"slides": [{"slide_type": "opening"}]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"keys"`)

	rec = do(t, h, http.MethodGet, "/api/decks/anything", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSlideTypes(t *testing.T) {
	h := setupServer(t, false)

	rec := do(t, h, http.MethodGet, "/api/slide-types", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Default    string `json:"default"`
		SlideTypes []struct {
			TypeID     string                 `json:"type_id"`
			JSONSchema map[string]interface{} `json:"json_schema"`
		} `json:"slide_types"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "text_content", body.Default)
	require.Len(t, body.SlideTypes, 6)
	assert.Equal(t, "opening", body.SlideTypes[0].TypeID)
	assert.Equal(t, "opening", body.SlideTypes[0].JSONSchema["slide_type"])
}

func TestPrompt(t *testing.T) {
	h := setupServer(t, false)

	rec := do(t, h, http.MethodPost, "/api/prompt",
		`{"user_prompt": "Launch plan", "images": {"img_01": {"filename": "a.png", "path": "/tmp/a.png"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Launch plan")
	assert.Contains(t, rec.Body.String(), "- img_01: a.png")

	rec = do(t, h, http.MethodPost, "/api/prompt", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/prompt", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMethods(t *testing.T) {
	h := setupServer(t, false)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = do(t, h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/compose", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestReadiness(t *testing.T) {
	failing := HealthRouter(func(ctx context.Context) error {
		return errors.New("broker unreachable")
	})
	rec := do(t, failing, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "broker unreachable")

	rec = do(t, failing, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, failing, http.MethodPost, "/api/compose", "{}")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
