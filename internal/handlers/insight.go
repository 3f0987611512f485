package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finflowhq/finflow-backend/internal/middleware"
	"github.com/finflowhq/finflow-backend/internal/models"
	"github.com/finflowhq/finflow-backend/internal/response"
)

type InsightService interface {
	List(ctx context.Context, uid string) ([]models.Insight, error)
	Generate(ctx context.Context, uid string) []models.Insight
}

type insightHandlers struct {
	ResponseHandler response.ResponseHandler
	InsightSvc      InsightService
}

func NewInsightHandlers(deps *Deps) *insightHandlers {
	return &insightHandlers{
		ResponseHandler: deps.ResponseHandler,
		InsightSvc:      deps.InsightSvc,
	}
}

func (h *insightHandlers) InsightRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListInsights)
	r.Post("/generate", h.GenerateInsights)
	return r
}

func (h *insightHandlers) ListInsights(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	insights, err := h.InsightSvc.List(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, insights)
}

// GenerateInsights always succeeds: the generation flow degrades to
// fallback insights internally rather than surfacing an error.
func (h *insightHandlers) GenerateInsights(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	insights := h.InsightSvc.Generate(r.Context(), uid)
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, insights)
}
