package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finflowhq/finflow-backend/internal/middleware"
	"github.com/finflowhq/finflow-backend/internal/models"
	"github.com/finflowhq/finflow-backend/internal/response"
)

type AlertService interface {
	Create(ctx context.Context, uid, title, message, severity string) (*models.Alert, error)
	List(ctx context.Context, uid string, unreadOnly bool) ([]models.Alert, error)
	MarkRead(ctx context.Context, uid, id string) error
	Dismiss(ctx context.Context, uid, id string) error
}

type alertHandlers struct {
	ResponseHandler response.ResponseHandler
	AlertSvc        AlertService
}

func NewAlertHandlers(deps *Deps) *alertHandlers {
	return &alertHandlers{
		ResponseHandler: deps.ResponseHandler,
		AlertSvc:        deps.AlertSvc,
	}
}

func (h *alertHandlers) AlertRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListAlerts)
	r.Post("/", h.CreateAlert)
	r.Put("/{alertId}/read", h.MarkAlertRead)
	r.Delete("/{alertId}", h.DismissAlert)
	return r
}

type createAlertRequest struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

func (h *alertHandlers) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.WriteError(w, r, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return
	}
	uid := middleware.UID(r.Context())
	alert, err := h.AlertSvc.Create(r.Context(), uid, req.Title, req.Message, req.Severity)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusCreated, alert)
}

func (h *alertHandlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	unreadOnly := r.URL.Query().Get("unread") == "true"
	alerts, err := h.AlertSvc.List(r.Context(), uid, unreadOnly)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, alerts)
}

func (h *alertHandlers) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.AlertSvc.MarkRead(r.Context(), uid, chi.URLParam(r, "alertId")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, map[string]string{"status": "read"})
}

func (h *alertHandlers) DismissAlert(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.AlertSvc.Dismiss(r.Context(), uid, chi.URLParam(r, "alertId")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, map[string]string{"status": "dismissed"})
}
