package store

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finflowhq/finflow-backend/internal/errs"
	"github.com/finflowhq/finflow-backend/internal/models"
)

type budgetStore struct {
	pool *pgxpool.Pool
}

func NewBudgetStore(pool *pgxpool.Pool) *budgetStore {
	return &budgetStore{pool: pool}
}

const budgetColumns = "id, user_id, category, limit_amount, period, start_date, end_date, is_active, created_at, updated_at"

func scanBudget(row interface{ Scan(...any) error }) (*models.Budget, error) {
	var b models.Budget
	err := row.Scan(&b.ID, &b.UserID, &b.Category, &b.Limit, &b.Period,
		&b.StartDate, &b.EndDate, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *budgetStore) Create(ctx context.Context, b *models.Budget) error {
	sql, args, err := psql.Insert("budgets").
		Columns("id", "user_id", "category", "limit_amount", "period", "start_date", "end_date", "is_active", "created_at", "updated_at").
		Values(b.ID, b.UserID, b.Category, b.Limit, b.Period, b.StartDate, b.EndDate, b.IsActive, b.CreatedAt, b.UpdatedAt).
		ToSql()
	if err != nil {
		return dbErr("create", "failed to build budget insert", err)
	}
	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return dbErr("create", "failed to create budget", err)
	}
	return nil
}

func (s *budgetStore) GetByID(ctx context.Context, uid, id string) (*models.Budget, error) {
	sql, args, err := psql.Select(budgetColumns).From("budgets").
		Where(squirrel.Eq{"id": id, "user_id": uid}).
		ToSql()
	if err != nil {
		return nil, dbErr("read", "failed to build budget query", err)
	}

	b, err := scanBudget(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFoundOr("read", "budget not found", err)
	}
	return b, nil
}

func (s *budgetStore) List(ctx context.Context, uid string, activeOnly bool) ([]models.Budget, error) {
	builder := psql.Select(budgetColumns).From("budgets").
		Where(squirrel.Eq{"user_id": uid}).
		OrderBy("category ASC", "id ASC")
	if activeOnly {
		builder = builder.Where(squirrel.Eq{"is_active": true})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, dbErr("read", "failed to build budget list query", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbErr("read", "failed to list budgets", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, dbErr("read", "failed to scan budget", err)
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func (s *budgetStore) Update(ctx context.Context, b *models.Budget) error {
	b.UpdatedAt = time.Now()
	sql, args, err := psql.Update("budgets").
		Set("category", b.Category).
		Set("limit_amount", b.Limit).
		Set("period", b.Period).
		Set("start_date", b.StartDate).
		Set("end_date", b.EndDate).
		Set("is_active", b.IsActive).
		Set("updated_at", b.UpdatedAt).
		Where(squirrel.Eq{"id": b.ID, "user_id": b.UserID}).
		ToSql()
	if err != nil {
		return dbErr("update", "failed to build budget update", err)
	}

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return dbErr("update", "failed to update budget", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NewNotFoundError("budget not found")
	}
	return nil
}

func (s *budgetStore) Delete(ctx context.Context, uid, id string) error {
	sql, args, err := psql.Delete("budgets").
		Where(squirrel.Eq{"id": id, "user_id": uid}).
		ToSql()
	if err != nil {
		return dbErr("delete", "failed to build budget delete", err)
	}

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return dbErr("delete", "failed to delete budget", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NewNotFoundError("budget not found")
	}
	return nil
}
