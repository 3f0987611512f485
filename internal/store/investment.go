package store

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finflowhq/finflow-backend/internal/errs"
	"github.com/finflowhq/finflow-backend/internal/models"
)

type investmentStore struct {
	pool *pgxpool.Pool
}

func NewInvestmentStore(pool *pgxpool.Pool) *investmentStore {
	return &investmentStore{pool: pool}
}

const investmentColumns = "id, user_id, symbol, name, quantity, purchase_price, current_price, type, purchase_date, created_at, updated_at"

func scanInvestment(row interface{ Scan(...any) error }) (*models.Investment, error) {
	var i models.Investment
	err := row.Scan(&i.ID, &i.UserID, &i.Symbol, &i.Name, &i.Quantity,
		&i.PurchasePrice, &i.CurrentPrice, &i.Type, &i.PurchaseDate,
		&i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *investmentStore) Create(ctx context.Context, i *models.Investment) error {
	sql, args, err := psql.Insert("investments").
		Columns("id", "user_id", "symbol", "name", "quantity", "purchase_price", "current_price", "type", "purchase_date", "created_at", "updated_at").
		Values(i.ID, i.UserID, i.Symbol, i.Name, i.Quantity, i.PurchasePrice, i.CurrentPrice, i.Type, i.PurchaseDate, i.CreatedAt, i.UpdatedAt).
		ToSql()
	if err != nil {
		return dbErr("create", "failed to build investment insert", err)
	}
	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return dbErr("create", "failed to create investment", err)
	}
	return nil
}

func (s *investmentStore) GetByID(ctx context.Context, uid, id string) (*models.Investment, error) {
	sql, args, err := psql.Select(investmentColumns).From("investments").
		Where(squirrel.Eq{"id": id, "user_id": uid}).
		ToSql()
	if err != nil {
		return nil, dbErr("read", "failed to build investment query", err)
	}

	i, err := scanInvestment(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFoundOr("read", "investment not found", err)
	}
	return i, nil
}

func (s *investmentStore) List(ctx context.Context, uid string) ([]models.Investment, error) {
	sql, args, err := psql.Select(investmentColumns).From("investments").
		Where(squirrel.Eq{"user_id": uid}).
		OrderBy("symbol ASC").
		ToSql()
	if err != nil {
		return nil, dbErr("read", "failed to build investment list query", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbErr("read", "failed to list investments", err)
	}
	defer rows.Close()

	var investments []models.Investment
	for rows.Next() {
		i, err := scanInvestment(rows)
		if err != nil {
			return nil, dbErr("read", "failed to scan investment", err)
		}
		investments = append(investments, *i)
	}
	return investments, rows.Err()
}

func (s *investmentStore) Update(ctx context.Context, i *models.Investment) error {
	i.UpdatedAt = time.Now()
	sql, args, err := psql.Update("investments").
		Set("symbol", i.Symbol).
		Set("name", i.Name).
		Set("quantity", i.Quantity).
		Set("purchase_price", i.PurchasePrice).
		Set("current_price", i.CurrentPrice).
		Set("type", i.Type).
		Set("purchase_date", i.PurchaseDate).
		Set("updated_at", i.UpdatedAt).
		Where(squirrel.Eq{"id": i.ID, "user_id": i.UserID}).
		ToSql()
	if err != nil {
		return dbErr("update", "failed to build investment update", err)
	}

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return dbErr("update", "failed to update investment", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NewNotFoundError("investment not found")
	}
	return nil
}

func (s *investmentStore) Delete(ctx context.Context, uid, id string) error {
	sql, args, err := psql.Delete("investments").
		Where(squirrel.Eq{"id": id, "user_id": uid}).
		ToSql()
	if err != nil {
		return dbErr("delete", "failed to build investment delete", err)
	}

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return dbErr("delete", "failed to delete investment", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NewNotFoundError("investment not found")
	}
	return nil
}

// UpsertHolding inserts a holding or, when the user already tracks the
// symbol, refreshes its quantity and current price. Purchase price and date
// are kept from the original row so gain/loss stays meaningful.
func (s *investmentStore) UpsertHolding(ctx context.Context, i *models.Investment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO investments (id, user_id, symbol, name, quantity, purchase_price, current_price, type, purchase_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, symbol) DO UPDATE SET
			name          = EXCLUDED.name,
			quantity      = EXCLUDED.quantity,
			current_price = EXCLUDED.current_price,
			updated_at    = EXCLUDED.updated_at`,
		i.ID, i.UserID, i.Symbol, i.Name, i.Quantity, i.PurchasePrice,
		i.CurrentPrice, i.Type, i.PurchaseDate, i.CreatedAt, i.UpdatedAt)
	if err != nil {
		return dbErr("update", "failed to upsert holding", err)
	}
	return nil
}

// TotalValue sums quantity × current price across the portfolio.
func (s *investmentStore) TotalValue(ctx context.Context, uid string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(quantity * current_price), 0) FROM investments WHERE user_id = $1",
		uid).Scan(&total)
	if err != nil {
		return decimal.Zero, dbErr("read", "failed to sum portfolio value", err)
	}
	return total, nil
}
