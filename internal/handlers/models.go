package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/modelcat/modelcat/internal/catalog"
	"github.com/modelcat/modelcat/internal/middleware"
)

type ModelsHandler struct {
	logger  *zap.Logger
	catalog *catalog.Catalog
}

func NewModelsHandler(logger *zap.Logger, cat *catalog.Catalog) *ModelsHandler {
	return &ModelsHandler{
		logger:  logger,
		catalog: cat,
	}
}

type modelObject struct {
	ID     string `json:"id"`
	Object string `json:"object"`
}

// RefreshModels fetches the provider's catalog and returns it as an
// OpenAI-style list. Missing credentials resolve to an empty list, not
// an error; an unknown provider is a 404 and leaves the held list and
// any in-flight refresh untouched.
func (h *ModelsHandler) RefreshModels(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	provider, ok := catalog.ParseProvider(name)
	if !ok {
		h.sendError(w, http.StatusNotFound, "unknown provider")
		return
	}

	models, err := h.catalog.Refresh(r.Context(), provider)
	if err != nil {
		middleware.RecordModelListFetch(name, "error")
		if errors.Is(err, catalog.ErrFetchFailed) {
			h.logger.Warn("model list fetch failed",
				zap.String("provider", name),
				zap.Error(err))
			h.sendError(w, http.StatusBadGateway, err.Error())
			return
		}
		h.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	middleware.RecordModelListFetch(name, "ok")

	data := make([]modelObject, 0, len(models))
	for _, id := range models {
		data = append(data, modelObject{ID: id, Object: "model"})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"data":   data,
	}); err != nil {
		h.logger.Error("failed to encode models response", zap.Error(err))
	}
}

// CurrentModels returns the held model list without refetching.
func (h *ModelsHandler) CurrentModels(w http.ResponseWriter, r *http.Request) {
	models := h.catalog.Current()

	data := make([]modelObject, 0, len(models))
	for _, id := range models {
		data = append(data, modelObject{ID: id, Object: "model"})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"object":   "list",
		"provider": string(h.catalog.Active()),
		"data":     data,
	}); err != nil {
		h.logger.Error("failed to encode models response", zap.Error(err))
	}
}

// SelectProvider switches the active provider, clearing the held list.
func (h *ModelsHandler) SelectProvider(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	provider, ok := catalog.ParseProvider(name)
	if !ok {
		h.sendError(w, http.StatusNotFound, "unknown provider")
		return
	}

	h.catalog.SetActive(provider)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"provider": string(provider),
	}); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *ModelsHandler) sendError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    http.StatusText(status),
		},
	}); err != nil {
		h.logger.Error("failed to encode error response", zap.Error(err))
	}
}
