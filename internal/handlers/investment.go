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

type InvestmentService interface {
	Create(ctx context.Context, uid string, req dto.CreateInvestmentRequest) (*models.Investment, error)
	List(ctx context.Context, uid string) ([]models.Investment, error)
	Update(ctx context.Context, uid, id string, req dto.UpdateInvestmentRequest) (*models.Investment, error)
	Delete(ctx context.Context, uid, id string) error
	CreateLinkToken(ctx context.Context, uid string) (dto.CreateLinkTokenResponse, error)
	ExchangePublicToken(ctx context.Context, uid string, req dto.ExchangePublicTokenRequest) (dto.ExchangePublicTokenResponse, error)
	RefreshHoldings(ctx context.Context, uid string) ([]models.Investment, error)
}

type investmentHandlers struct {
	ResponseHandler response.ResponseHandler
	InvestmentSvc   InvestmentService
}

func NewInvestmentHandlers(deps *Deps) *investmentHandlers {
	return &investmentHandlers{
		ResponseHandler: deps.ResponseHandler,
		InvestmentSvc:   deps.InvestmentSvc,
	}
}

func (h *investmentHandlers) InvestmentRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListInvestments)
	r.Post("/", h.CreateInvestment)
	r.Post("/refresh", h.RefreshHoldings)
	r.Put("/{investmentId}", h.UpdateInvestment)
	r.Delete("/{investmentId}", h.DeleteInvestment)
	return r
}

func (h *investmentHandlers) PlaidRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/link-token", h.CreateLinkToken)
	r.Post("/exchange", h.ExchangePublicToken)
	return r
}

func (h *investmentHandlers) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateInvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.WriteError(w, r, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return
	}
	uid := middleware.UID(r.Context())
	investment, err := h.InvestmentSvc.Create(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusCreated, investment)
}

func (h *investmentHandlers) ListInvestments(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	investments, err := h.InvestmentSvc.List(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, investments)
}

func (h *investmentHandlers) UpdateInvestment(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateInvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.WriteError(w, r, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return
	}
	uid := middleware.UID(r.Context())
	investment, err := h.InvestmentSvc.Update(r.Context(), uid, chi.URLParam(r, "investmentId"), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, investment)
}

func (h *investmentHandlers) DeleteInvestment(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.InvestmentSvc.Delete(r.Context(), uid, chi.URLParam(r, "investmentId")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *investmentHandlers) RefreshHoldings(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	investments, err := h.InvestmentSvc.RefreshHoldings(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, investments)
}

func (h *investmentHandlers) CreateLinkToken(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	resp, err := h.InvestmentSvc.CreateLinkToken(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, resp)
}

func (h *investmentHandlers) ExchangePublicToken(w http.ResponseWriter, r *http.Request) {
	var req dto.ExchangePublicTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.WriteError(w, r, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return
	}
	uid := middleware.UID(r.Context())
	resp, err := h.InvestmentSvc.ExchangePublicToken(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, resp)
}
