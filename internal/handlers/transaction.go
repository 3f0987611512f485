package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/finflowhq/finflow-backend/internal/dto"
	"github.com/finflowhq/finflow-backend/internal/middleware"
	"github.com/finflowhq/finflow-backend/internal/models"
	"github.com/finflowhq/finflow-backend/internal/response"
	"github.com/finflowhq/finflow-backend/internal/taxonomy"
	"github.com/finflowhq/finflow-backend/pkg/helpers"
)

type LedgerService interface {
	Create(ctx context.Context, uid string, req dto.CreateTransactionRequest) (*models.Transaction, error)
	Get(ctx context.Context, uid, id string) (*models.Transaction, error)
	Update(ctx context.Context, uid, id string, req dto.UpdateTransactionRequest) (*models.Transaction, error)
	Delete(ctx context.Context, uid, id string) error
	List(ctx context.Context, uid string, q dto.TransactionQuery) (dto.TransactionPage, error)
}

type transactionHandlers struct {
	ResponseHandler response.ResponseHandler
	LedgerSvc       LedgerService
}

func NewTransactionHandlers(deps *Deps) *transactionHandlers {
	return &transactionHandlers{
		ResponseHandler: deps.ResponseHandler,
		LedgerSvc:       deps.LedgerSvc,
	}
}

func (h *transactionHandlers) TransactionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListTransactions)
	r.Post("/", h.CreateTransaction)
	r.Get("/{transactionId}", h.GetTransaction)
	r.Put("/{transactionId}", h.UpdateTransaction)
	r.Delete("/{transactionId}", h.DeleteTransaction)
	return r
}

func (h *transactionHandlers) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.WriteError(w, r, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return
	}
	uid := middleware.UID(r.Context())
	transaction, err := h.LedgerSvc.Create(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusCreated, transaction)
}

func (h *transactionHandlers) GetTransaction(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	transaction, err := h.LedgerSvc.Get(r.Context(), uid, chi.URLParam(r, "transactionId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, transaction)
}

func (h *transactionHandlers) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.WriteError(w, r, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return
	}
	uid := middleware.UID(r.Context())
	transaction, err := h.LedgerSvc.Update(r.Context(), uid, chi.URLParam(r, "transactionId"), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, transaction)
}

func (h *transactionHandlers) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.LedgerSvc.Delete(r.Context(), uid, chi.URLParam(r, "transactionId")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *transactionHandlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	page, err := h.LedgerSvc.List(r.Context(), uid, parseTransactionQuery(r))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, page)
}

func parseTransactionQuery(r *http.Request) dto.TransactionQuery {
	values := r.URL.Query()
	q := dto.TransactionQuery{
		SortKey:  values.Get("sortBy"),
		SortDesc: values.Get("sortOrder") != "asc",
	}
	if v := values.Get("category"); v != "" {
		q.Category = helpers.Ptr(taxonomy.Category(v))
	}
	if v := values.Get("type"); v != "" {
		q.Type = helpers.Ptr(models.TransactionType(v))
	}
	if v := values.Get("accountId"); v != "" {
		q.AccountID = helpers.Ptr(v)
	}
	if v := values.Get("dateFrom"); v != "" {
		q.DateFrom = helpers.Ptr(v)
	}
	if v := values.Get("dateTo"); v != "" {
		q.DateTo = helpers.Ptr(v)
	}
	if v := values.Get("search"); v != "" {
		q.Search = helpers.Ptr(v)
	}
	if v, err := strconv.Atoi(values.Get("page")); err == nil {
		q.Page = v
	}
	if v, err := strconv.Atoi(values.Get("limit")); err == nil {
		q.Limit = v
	}
	return q
}
