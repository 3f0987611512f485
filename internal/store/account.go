package store

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finflowhq/finflow-backend/internal/models"
)

type accountStore struct {
	pool *pgxpool.Pool
}

func NewAccountStore(pool *pgxpool.Pool) *accountStore {
	return &accountStore{pool: pool}
}

const accountColumns = "id, user_id, name, type, balance, currency, is_active, created_at, updated_at"

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Balance, &a.Currency, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *accountStore) Create(ctx context.Context, account *models.Account) error {
	sql, args, err := psql.Insert("accounts").
		Columns("id", "user_id", "name", "type", "balance", "currency", "is_active", "created_at", "updated_at").
		Values(account.ID, account.UserID, account.Name, account.Type, account.Balance,
			account.Currency, account.IsActive, account.CreatedAt, account.UpdatedAt).
		ToSql()
	if err != nil {
		return dbErr("create", "failed to build account insert", err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return dbErr("create", "failed to create account", err)
	}
	return nil
}

func (s *accountStore) GetByID(ctx context.Context, uid, id string) (*models.Account, error) {
	sql, args, err := psql.Select(accountColumns).From("accounts").
		Where(squirrel.Eq{"id": id, "user_id": uid}).
		ToSql()
	if err != nil {
		return nil, dbErr("read", "failed to build account query", err)
	}

	account, err := scanAccount(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFoundOr("read", "account not found", err)
	}
	return account, nil
}

func (s *accountStore) List(ctx context.Context, uid string, activeOnly bool) ([]models.Account, error) {
	builder := psql.Select(accountColumns).From("accounts").
		Where(squirrel.Eq{"user_id": uid}).
		OrderBy("created_at ASC")
	if activeOnly {
		builder = builder.Where(squirrel.Eq{"is_active": true})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, dbErr("read", "failed to build account list query", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbErr("read", "failed to list accounts", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, dbErr("read", "failed to scan account", err)
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

// Deactivate soft-deletes the account. Rows stay referenced by transactions.
func (s *accountStore) Deactivate(ctx context.Context, uid, id string) error {
	sql, args, err := psql.Update("accounts").
		Set("is_active", false).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id, "user_id": uid}).
		ToSql()
	if err != nil {
		return dbErr("update", "failed to build account deactivate", err)
	}

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return dbErr("update", "failed to deactivate account", err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundOr("update", "account not found", errNoRows())
	}
	return nil
}

// TotalActiveBalance sums balances over the user's active accounts.
func (s *accountStore) TotalActiveBalance(ctx context.Context, uid string) (decimal.Decimal, error) {
	sql, args, err := psql.Select("COALESCE(SUM(balance), 0)").From("accounts").
		Where(squirrel.Eq{"user_id": uid, "is_active": true}).
		ToSql()
	if err != nil {
		return decimal.Zero, dbErr("read", "failed to build balance query", err)
	}

	var total decimal.Decimal
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return decimal.Zero, dbErr("read", "failed to sum balances", err)
	}
	return total, nil
}

func (s *accountStore) CountActive(ctx context.Context, uid string) (int, error) {
	sql, args, err := psql.Select("COUNT(*)").From("accounts").
		Where(squirrel.Eq{"user_id": uid, "is_active": true}).
		ToSql()
	if err != nil {
		return 0, dbErr("read", "failed to build account count query", err)
	}

	var count int
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, dbErr("read", "failed to count accounts", err)
	}
	return count, nil
}
