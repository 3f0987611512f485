package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finflowhq/finflow-backend/internal/errs"
	"github.com/finflowhq/finflow-backend/internal/models"
)

type alertStore interface {
	Create(ctx context.Context, a *models.Alert) error
	List(ctx context.Context, uid string, unreadOnly bool) ([]models.Alert, error)
	MarkRead(ctx context.Context, uid, id string) error
	Dismiss(ctx context.Context, uid, id string) error
}

type alertService struct {
	store    alertStore
	clockNow func() time.Time
}

func NewAlertService(store alertStore) *alertService {
	return &alertService{store: store, clockNow: time.Now}
}

var alertSeverities = map[string]bool{
	"info":     true,
	"warning":  true,
	"critical": true,
}

func (s *alertService) Create(ctx context.Context, uid, title, message, severity string) (*models.Alert, error) {
	if title == "" {
		return nil, errs.NewFieldValidationError("title", "title is required")
	}
	if severity == "" {
		severity = "info"
	}
	if !alertSeverities[severity] {
		return nil, errs.NewFieldValidationError("severity", "unknown severity")
	}

	alert := &models.Alert{
		ID:        uuid.NewString(),
		UserID:    uid,
		Title:     title,
		Message:   message,
		Severity:  severity,
		IsActive:  true,
		CreatedAt: s.clockNow(),
	}
	if err := s.store.Create(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

func (s *alertService) List(ctx context.Context, uid string, unreadOnly bool) ([]models.Alert, error) {
	return s.store.List(ctx, uid, unreadOnly)
}

func (s *alertService) MarkRead(ctx context.Context, uid, id string) error {
	return s.store.MarkRead(ctx, uid, id)
}

func (s *alertService) Dismiss(ctx context.Context, uid, id string) error {
	return s.store.Dismiss(ctx, uid, id)
}
