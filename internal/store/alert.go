package store

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finflowhq/finflow-backend/internal/errs"
	"github.com/finflowhq/finflow-backend/internal/models"
)

type alertStore struct {
	pool *pgxpool.Pool
}

func NewAlertStore(pool *pgxpool.Pool) *alertStore {
	return &alertStore{pool: pool}
}

const alertColumns = "id, user_id, title, message, severity, is_read, is_active, created_at"

func scanAlert(row interface{ Scan(...any) error }) (*models.Alert, error) {
	var a models.Alert
	err := row.Scan(&a.ID, &a.UserID, &a.Title, &a.Message, &a.Severity,
		&a.IsRead, &a.IsActive, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *alertStore) Create(ctx context.Context, a *models.Alert) error {
	sql, args, err := psql.Insert("alerts").
		Columns("id", "user_id", "title", "message", "severity", "is_read", "is_active", "created_at").
		Values(a.ID, a.UserID, a.Title, a.Message, a.Severity, a.IsRead, a.IsActive, a.CreatedAt).
		ToSql()
	if err != nil {
		return dbErr("create", "failed to build alert insert", err)
	}
	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return dbErr("create", "failed to create alert", err)
	}
	return nil
}

func (s *alertStore) List(ctx context.Context, uid string, unreadOnly bool) ([]models.Alert, error) {
	builder := psql.Select(alertColumns).From("alerts").
		Where(squirrel.Eq{"user_id": uid, "is_active": true}).
		OrderBy("created_at DESC", "id ASC")
	if unreadOnly {
		builder = builder.Where(squirrel.Eq{"is_read": false})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, dbErr("read", "failed to build alert list query", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbErr("read", "failed to list alerts", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, dbErr("read", "failed to scan alert", err)
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

func (s *alertStore) MarkRead(ctx context.Context, uid, id string) error {
	sql, args, err := psql.Update("alerts").
		Set("is_read", true).
		Where(squirrel.Eq{"id": id, "user_id": uid}).
		ToSql()
	if err != nil {
		return dbErr("update", "failed to build alert update", err)
	}

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return dbErr("update", "failed to mark alert read", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NewNotFoundError("alert not found")
	}
	return nil
}

// Dismiss deactivates the alert without deleting its row.
func (s *alertStore) Dismiss(ctx context.Context, uid, id string) error {
	sql, args, err := psql.Update("alerts").
		Set("is_active", false).
		Where(squirrel.Eq{"id": id, "user_id": uid}).
		ToSql()
	if err != nil {
		return dbErr("update", "failed to build alert dismiss", err)
	}

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return dbErr("update", "failed to dismiss alert", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NewNotFoundError("alert not found")
	}
	return nil
}
