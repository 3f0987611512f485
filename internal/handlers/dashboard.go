package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finflowhq/finflow-backend/internal/dto"
	"github.com/finflowhq/finflow-backend/internal/middleware"
	"github.com/finflowhq/finflow-backend/internal/response"
	"github.com/finflowhq/finflow-backend/pkg/helpers"
)

type DashboardService interface {
	GetStats(ctx context.Context, uid string) (dto.DashboardStats, error)
}

type AnalyticsService interface {
	CategoryBreakdown(ctx context.Context, uid string, startDate, endDate *string) (dto.CategoryBreakdown, error)
}

type dashboardHandlers struct {
	ResponseHandler response.ResponseHandler
	DashboardSvc    DashboardService
	AnalyticsSvc    AnalyticsService
}

func NewDashboardHandlers(deps *Deps) *dashboardHandlers {
	return &dashboardHandlers{
		ResponseHandler: deps.ResponseHandler,
		DashboardSvc:    deps.DashboardSvc,
		AnalyticsSvc:    deps.AnalyticsSvc,
	}
}

func (h *dashboardHandlers) DashboardRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/stats", h.GetStats)
	r.Get("/category-breakdown", h.GetCategoryBreakdown)
	return r
}

func (h *dashboardHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	stats, err := h.DashboardSvc.GetStats(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, stats)
}

func (h *dashboardHandlers) GetCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())

	var startDate, endDate *string
	if v := r.URL.Query().Get("startDate"); v != "" {
		startDate = helpers.Ptr(v)
	}
	if v := r.URL.Query().Get("endDate"); v != "" {
		endDate = helpers.Ptr(v)
	}

	breakdown, err := h.AnalyticsSvc.CategoryBreakdown(r.Context(), uid, startDate, endDate)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, breakdown)
}
