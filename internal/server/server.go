// Package server exposes the composition engine over HTTP for previews.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"slide-composer/internal/common/logger"
	"slide-composer/internal/composer/engine"
	"slide-composer/internal/store"
)

// maxBodyBytes bounds a compose request.
const maxBodyBytes = 8 << 20

// ReadyFunc reports whether a dependency can serve traffic.
type ReadyFunc func(ctx context.Context) error

type Handler struct {
	engine     *engine.Engine
	sink       store.Sink
	ready      ReadyFunc
	imagesRoot string
	logger     logger.Logger
}

func NewHandler(e *engine.Engine, sink store.Sink, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Handler{
		engine: e,
		sink:   sink,
		logger: log.WithFields(map[string]interface{}{"component": "preview-api"}),
	}
}

// WithReadiness sets the check behind /ready.
func (h *Handler) WithReadiness(ready ReadyFunc) *Handler {
	h.ready = ready
	return h
}

// WithImagesRoot sets the directory compose requests resolve image paths
// against.
func (h *Handler) WithImagesRoot(root string) *Handler {
	h.imagesRoot = root
	return h
}

// Router wires the preview API plus the health and metrics endpoints.
func (h *Handler) Router() *mux.Router {
	r := HealthRouter(h.ready)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/compose", h.Compose).Methods(http.MethodPost)
	api.HandleFunc("/decks/{id}", h.GetDeck).Methods(http.MethodGet)
	api.HandleFunc("/slide-types", h.ListSlideTypes).Methods(http.MethodGet)
	api.HandleFunc("/prompt", h.Prompt).Methods(http.MethodPost)
	return r
}

// HealthRouter serves only /health, /ready and /metrics. A nil ready
// check always reports ready.
func HealthRouter(ready ReadyFunc) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)
	r.HandleFunc("/ready", readiness(ready)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func readiness(ready ReadyFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}
