package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finflowhq/finflow-backend/internal/dto"
	"github.com/finflowhq/finflow-backend/internal/middleware"
	"github.com/finflowhq/finflow-backend/internal/models"
	"github.com/finflowhq/finflow-backend/internal/response"
)

type BudgetService interface {
	Create(ctx context.Context, uid string, req dto.CreateBudgetRequest) (*models.Budget, error)
	List(ctx context.Context, uid string, activeOnly bool) ([]models.Budget, error)
	Update(ctx context.Context, uid, id string, req dto.UpdateBudgetRequest) (*models.Budget, error)
	Delete(ctx context.Context, uid, id string) error
}

type budgetHandlers struct {
	ResponseHandler response.ResponseHandler
	BudgetSvc       BudgetService
}

func NewBudgetHandlers(deps *Deps) *budgetHandlers {
	return &budgetHandlers{
		ResponseHandler: deps.ResponseHandler,
		BudgetSvc:       deps.BudgetSvc,
	}
}

func (h *budgetHandlers) BudgetRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListBudgets)
	r.Post("/", h.CreateBudget)
	r.Put("/{budgetId}", h.UpdateBudget)
	r.Delete("/{budgetId}", h.DeleteBudget)
	return r
}

func (h *budgetHandlers) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.WriteError(w, r, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return
	}
	uid := middleware.UID(r.Context())
	budget, err := h.BudgetSvc.Create(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusCreated, budget)
}

func (h *budgetHandlers) ListBudgets(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	activeOnly := r.URL.Query().Get("includeInactive") != "true"
	budgets, err := h.BudgetSvc.List(r.Context(), uid, activeOnly)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, budgets)
}

func (h *budgetHandlers) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.WriteError(w, r, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return
	}
	uid := middleware.UID(r.Context())
	budget, err := h.BudgetSvc.Update(r.Context(), uid, chi.URLParam(r, "budgetId"), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, budget)
}

func (h *budgetHandlers) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.BudgetSvc.Delete(r.Context(), uid, chi.URLParam(r, "budgetId")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}
