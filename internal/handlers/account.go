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

type AccountService interface {
	Create(ctx context.Context, uid string, req dto.CreateAccountRequest) (*models.Account, error)
	Get(ctx context.Context, uid, id string) (*models.Account, error)
	List(ctx context.Context, uid string, activeOnly bool) ([]models.Account, error)
	Deactivate(ctx context.Context, uid, id string) error
}

type accountHandlers struct {
	ResponseHandler response.ResponseHandler
	AccountSvc      AccountService
}

func NewAccountHandlers(deps *Deps) *accountHandlers {
	return &accountHandlers{
		ResponseHandler: deps.ResponseHandler,
		AccountSvc:      deps.AccountSvc,
	}
}

func (h *accountHandlers) AccountRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListAccounts)
	r.Post("/", h.CreateAccount)
	r.Get("/{accountId}", h.GetAccount)
	r.Delete("/{accountId}", h.DeactivateAccount)
	return r
}

func (h *accountHandlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.WriteError(w, r, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return
	}
	uid := middleware.UID(r.Context())
	account, err := h.AccountSvc.Create(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusCreated, account)
}

func (h *accountHandlers) GetAccount(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	account, err := h.AccountSvc.Get(r.Context(), uid, chi.URLParam(r, "accountId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, account)
}

func (h *accountHandlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	activeOnly := r.URL.Query().Get("includeInactive") != "true"
	accounts, err := h.AccountSvc.List(r.Context(), uid, activeOnly)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, accounts)
}

func (h *accountHandlers) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.AccountSvc.Deactivate(r.Context(), uid, chi.URLParam(r, "accountId")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, map[string]string{"status": "deactivated"})
}
