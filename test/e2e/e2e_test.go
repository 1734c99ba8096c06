// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slide-composer/internal/common/config"
	"slide-composer/internal/common/logger"
	"slide-composer/internal/common/observability"
	"slide-composer/internal/composer/engine"
	"slide-composer/internal/composer/imageres"
	"slide-composer/internal/models"
	"slide-composer/internal/server"
	"slide-composer/internal/store"

	composedeck "slide-composer/internal/workers/composition/compose-deck"
)

type environment struct {
	cfg    *config.Config
	engine *engine.Engine
	sink   store.Sink
	images models.ImageMetadata
	imgDir string
}

func setup(t *testing.T) *environment {
	t.Helper()

	mr := miniredis.RunT(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf(`
composer:
  output_format: both
  document_title: Quarterly Review
store:
  kind: redis
  key_prefix: e2e
  ttl: 600
database:
  redis:
    address: %s
`, mr.Addr())
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)

	imgDir := filepath.Join(dir, "images")
	require.NoError(t, os.Mkdir(imgDir, 0o755))
	writePNG(t, filepath.Join(imgDir, "chart.png"), 400, 200)
	writePNG(t, filepath.Join(imgDir, "team.png"), 200, 300)
	images, err := imageres.ScanDirectory(imgDir)
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	eng, err := engine.FromConfig(cfg.Composer, observability.NewNoop(), log)
	require.NoError(t, err)

	sink, err := store.New(cfg.Store, cfg.Database.Redis)
	require.NoError(t, err)
	t.Cleanup(func() {
		if rs, ok := sink.(*store.RedisSink); ok {
			rs.Close()
		}
	})

	return &environment{cfg: cfg, engine: eng, sink: sink, images: images, imgDir: imgDir}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
}

func presentation() []models.SlideRecord {
	return []models.SlideRecord{
		{"slide_type": "opening", "title": "Q3 Results", "subtitle": "Board update"},
		{"slide_type": "section_divider", "section_title": "Numbers", "section_number": "01"},
		{"slide_type": "text_content", "title": "Highlights",
			"bullets":       []interface{}{"**Revenue** up 12%", "Churn down", "Two new regions"},
			"indent_levels": []interface{}{0, 1, 0}},
		{"slide_type": "image_with_text", "title": "Growth", "image_id": "img_01",
			"text": "Steady quarter over quarter", "layout": "horizontal"},
		{"slide_type": "full_image", "title": "The team", "image_id": "img_02", "caption": "Berlin office"},
		{"slide_type": "roadmap", "title": "Next", "bullets": []interface{}{"Hire", "Ship"}},
		{"slide_type": "closing", "closing_text": "Thank you", "subtext": "Questions?"},
	}
}

func TestFullE2E(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	handler := composedeck.NewHandler(
		&composedeck.Config{DefaultFormat: env.cfg.Composer.OutputFormat, Timeout: composedeck.LoadConfig().Timeout},
		env.engine, env.sink, logger.NewTestLogger(t),
	)

	out, err := handler.Execute(ctx, &composedeck.Input{
		RequestId: "req-e2e-001",
		Slides:    presentation(),
		Images:    env.images,
	})
	require.NoError(t, err)

	comp := out.Composition
	assert.Equal(t, "req-e2e-001", comp.RequestId)
	assert.Equal(t, "ok", comp.Status)
	require.Len(t, comp.Runs, 2)

	for _, run := range comp.Runs {
		assert.Equal(t, 7, run.Total)
		assert.Equal(t, 7, run.Rendered)
		assert.Equal(t, 1, run.Fallbacks, "roadmap is not a registered kind")
		assert.Len(t, run.Keys, 2)
	}

	markupRun := comp.Runs[0]
	assert.Equal(t, "markup", markupRun.Backend)
	a, err := env.sink.Load(ctx, store.Key(markupRun.RunId, store.ArtifactMarkup))
	require.NoError(t, err)
	html := string(a.Data)
	assert.Contains(t, html, "<title>Quarterly Review</title>")
	assert.Contains(t, html, "Q3 Results")
	assert.Contains(t, html, "Revenue** up 12%")
	assert.Equal(t, 7, strings.Count(html, `<div class="slide slide-`))

	deckRun := comp.Runs[1]
	assert.Equal(t, "deck", deckRun.Backend)
	assert.Equal(t, "freeform", deckRun.Mode)
	a, err = env.sink.Load(ctx, store.Key(deckRun.RunId, store.ArtifactDeck))
	require.NoError(t, err)

	var deck struct {
		Slides []struct {
			Shapes []map[string]interface{} `json:"shapes"`
		} `json:"slides"`
	}
	require.NoError(t, json.Unmarshal(a.Data, &deck))
	require.Len(t, deck.Slides, 7)

	pictures := 0
	for _, s := range deck.Slides {
		for _, sh := range s.Shapes {
			if sh["kind"] == "picture" {
				pictures++
			}
		}
	}
	assert.Equal(t, 2, pictures)

	a, err = env.sink.Load(ctx, store.Key(deckRun.RunId, store.ArtifactResult))
	require.NoError(t, err)
	assert.Equal(t, store.ContentTypeJSON, a.ContentType)
}

func TestPreviewAPIRoundTrip(t *testing.T) {
	env := setup(t)
	handler := server.NewHandler(env.engine, env.sink, logger.NewTestLogger(t)).WithImagesRoot(env.imgDir)
	srv := httptest.NewServer(handler.Router())
	defer srv.Close()

	images := models.ImageMetadata{}
	for id, entry := range env.images {
		entry.Path = entry.Filename
		images[id] = entry
	}

	body, err := json.Marshal(map[string]interface{}{
		"title":  "Preview",
		"slides": presentation(),
		"images": images,
		"format": "deck",
	})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/compose", "application/json", strings.NewReader(string(body)))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var composed struct {
		Result struct {
			RunID    string `json:"runId"`
			Rendered int    `json:"rendered"`
			Events   []struct {
				Fields map[string]interface{} `json:"fields"`
			} `json:"events"`
		} `json:"result"`
		Keys []string `json:"keys"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&composed))
	assert.Equal(t, 7, composed.Result.Rendered)
	for _, e := range composed.Result.Events {
		assert.NotEqual(t, "IMAGE_RESOLUTION_FAILED", e.Fields["code"], "images resolve under the root")
	}
	require.NotEmpty(t, composed.Result.RunID)

	get, err := http.Get(srv.URL + "/api/decks/" + composed.Result.RunID)
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusOK, get.StatusCode)
	assert.Equal(t, store.ContentTypeJSON, get.Header.Get("Content-Type"))

	missing, err := http.Get(srv.URL + "/api/decks/unknown-run")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}
