package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finflowhq/finflow-backend/internal/dto"
	"github.com/finflowhq/finflow-backend/internal/errs"
	"github.com/finflowhq/finflow-backend/internal/models"
)

// ledgerStore owns the transaction table and the balance consistency
// invariant: every write that records, changes, or removes a transaction
// adjusts the owning account's balance in the same database transaction,
// always as a relative increment.
type ledgerStore struct {
	pool *pgxpool.Pool
}

func NewLedgerStore(pool *pgxpool.Pool) *ledgerStore {
	return &ledgerStore{pool: pool}
}

const transactionColumns = "id, user_id, account_id, amount, type, category, description, date, created_at, updated_at"

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &t.Amount, &t.Type, &t.Category,
		&t.Description, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// adjustBalance applies a relative balance increment to an account the user
// owns. Zero rows affected means the account does not exist for this user.
func adjustBalance(ctx context.Context, tx pgx.Tx, uid, accountID string, delta decimal.Decimal) error {
	sql, args, err := psql.Update("accounts").
		Set("balance", squirrel.Expr("balance + ?", delta)).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": accountID, "user_id": uid}).
		ToSql()
	if err != nil {
		return dbErr("update", "failed to build balance adjustment", err)
	}

	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return dbErr("update", "failed to adjust balance", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NewNotFoundError("account not found")
	}
	return nil
}

// Create inserts the transaction and applies its balance delta atomically.
func (s *ledgerStore) Create(ctx context.Context, t *models.Transaction) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return dbErr("create", "failed to begin transaction create", err)
	}
	defer tx.Rollback(ctx)

	if err := adjustBalance(ctx, tx, t.UserID, t.AccountID, t.BalanceDelta()); err != nil {
		return err
	}

	sql, args, err := psql.Insert("transactions").
		Columns("id", "user_id", "account_id", "amount", "type", "category", "description", "date", "created_at", "updated_at").
		Values(t.ID, t.UserID, t.AccountID, t.Amount, t.Type, t.Category, t.Description, t.Date, t.CreatedAt, t.UpdatedAt).
		ToSql()
	if err != nil {
		return dbErr("create", "failed to build transaction insert", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return dbErr("create", "failed to create transaction", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return dbErr("create", "failed to commit transaction create", err)
	}
	return nil
}

func (s *ledgerStore) GetByID(ctx context.Context, uid, id string) (*models.Transaction, error) {
	sql, args, err := psql.Select(transactionColumns).From("transactions").
		Where(squirrel.Eq{"id": id, "user_id": uid}).
		ToSql()
	if err != nil {
		return nil, dbErr("read", "failed to build transaction query", err)
	}

	t, err := scanTransaction(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFoundOr("read", "transaction not found", err)
	}
	return t, nil
}

// Update merges the patch into the stored row and, when the amount, type, or
// account changed, reverses the original effect on the original account and
// applies the new effect on the new-or-same account. All of it happens in
// one database transaction: a failure partway leaves balances exactly as
// they were. The stored row is locked for the duration, so concurrent
// updates of the same transaction serialize rather than interleave.
func (s *ledgerStore) Update(ctx context.Context, uid, id string, patch dto.TransactionPatch) (*models.Transaction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, dbErr("update", "failed to begin transaction update", err)
	}
	defer tx.Rollback(ctx)

	sql := fmt.Sprintf("SELECT %s FROM transactions WHERE id = $1 AND user_id = $2 FOR UPDATE", transactionColumns)
	original, err := scanTransaction(tx.QueryRow(ctx, sql, id, uid))
	if err != nil {
		return nil, notFoundOr("update", "transaction not found", err)
	}

	merged := *original
	if patch.AccountID != nil {
		merged.AccountID = *patch.AccountID
	}
	if patch.Amount != nil {
		merged.Amount = patch.Amount.Abs()
	}
	if patch.Type != nil {
		merged.Type = *patch.Type
	}
	if patch.Category != nil {
		merged.Category = *patch.Category
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.Date != nil {
		merged.Date = *patch.Date
	}
	merged.UpdatedAt = time.Now()

	balanceChanged := !merged.Amount.Equal(original.Amount) ||
		merged.Type != original.Type ||
		merged.AccountID != original.AccountID

	if balanceChanged {
		// Reverse the original effect first, then apply the new one. For a
		// cross-account move this debits one account and credits the other
		// inside the same database transaction.
		if err := adjustBalance(ctx, tx, uid, original.AccountID, original.BalanceDelta().Neg()); err != nil {
			return nil, err
		}
		if err := adjustBalance(ctx, tx, uid, merged.AccountID, merged.BalanceDelta()); err != nil {
			return nil, err
		}
	}

	updateSQL, args, err := psql.Update("transactions").
		Set("account_id", merged.AccountID).
		Set("amount", merged.Amount).
		Set("type", merged.Type).
		Set("category", merged.Category).
		Set("description", merged.Description).
		Set("date", merged.Date).
		Set("updated_at", merged.UpdatedAt).
		Where(squirrel.Eq{"id": id, "user_id": uid}).
		ToSql()
	if err != nil {
		return nil, dbErr("update", "failed to build transaction update", err)
	}
	if _, err := tx.Exec(ctx, updateSQL, args...); err != nil {
		return nil, dbErr("update", "failed to update transaction", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, dbErr("update", "failed to commit transaction update", err)
	}
	return &merged, nil
}

// Delete reverses the transaction's effect on its account, then removes the
// row, atomically.
func (s *ledgerStore) Delete(ctx context.Context, uid, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return dbErr("delete", "failed to begin transaction delete", err)
	}
	defer tx.Rollback(ctx)

	sql := fmt.Sprintf("SELECT %s FROM transactions WHERE id = $1 AND user_id = $2 FOR UPDATE", transactionColumns)
	t, err := scanTransaction(tx.QueryRow(ctx, sql, id, uid))
	if err != nil {
		return notFoundOr("delete", "transaction not found", err)
	}

	if err := adjustBalance(ctx, tx, uid, t.AccountID, t.BalanceDelta().Neg()); err != nil {
		return err
	}

	delSQL, args, err := psql.Delete("transactions").
		Where(squirrel.Eq{"id": id, "user_id": uid}).
		ToSql()
	if err != nil {
		return dbErr("delete", "failed to build transaction delete", err)
	}
	if _, err := tx.Exec(ctx, delSQL, args...); err != nil {
		return dbErr("delete", "failed to delete transaction", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return dbErr("delete", "failed to commit transaction delete", err)
	}
	return nil
}

var listSortColumns = map[string]string{
	"date":    "t.date",
	"amount":  "t.amount",
	"type":    "t.type",
	"account": "a.name",
}

func (s *ledgerStore) listBuilder(uid string, q dto.TransactionQuery) squirrel.SelectBuilder {
	builder := psql.Select().From("transactions t").
		Join("accounts a ON a.id = t.account_id").
		Where(squirrel.Eq{"t.user_id": uid})

	if q.Category != nil {
		builder = builder.Where(squirrel.Eq{"t.category": *q.Category})
	}
	if q.Type != nil {
		builder = builder.Where(squirrel.Eq{"t.type": *q.Type})
	}
	if q.AccountID != nil {
		builder = builder.Where(squirrel.Eq{"t.account_id": *q.AccountID})
	}
	if q.DateFrom != nil {
		builder = builder.Where(squirrel.GtOrEq{"t.date": *q.DateFrom})
	}
	if q.DateTo != nil {
		builder = builder.Where(squirrel.LtOrEq{"t.date": *q.DateTo})
	}
	if q.Search != nil && *q.Search != "" {
		pattern := "%" + *q.Search + "%"
		builder = builder.Where(squirrel.Or{
			squirrel.ILike{"t.description": pattern},
			squirrel.ILike{"t.category": pattern},
			squirrel.ILike{"a.name": pattern},
		})
	}
	return builder
}

// List returns one page of matching transactions plus the total match count.
// Ordering always tie-breaks on t.id so identical queries page identically.
func (s *ledgerStore) List(ctx context.Context, uid string, q dto.TransactionQuery) ([]models.Transaction, int, error) {
	countSQL, countArgs, err := s.listBuilder(uid, q).Column("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, dbErr("read", "failed to build transaction count query", err)
	}

	var total int
	if err := s.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, dbErr("read", "failed to count transactions", err)
	}

	sortCol, ok := listSortColumns[q.SortKey]
	if !ok {
		sortCol = "t.date"
	}
	direction := "ASC"
	if q.SortDesc {
		direction = "DESC"
	}

	offset := (q.Page - 1) * q.Limit
	listSQL, listArgs, err := s.listBuilder(uid, q).
		Columns("t.id", "t.user_id", "t.account_id", "t.amount", "t.type", "t.category",
			"t.description", "t.date", "t.created_at", "t.updated_at").
		OrderBy(fmt.Sprintf("%s %s", sortCol, direction), "t.id ASC").
		Limit(uint64(q.Limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, dbErr("read", "failed to build transaction list query", err)
	}

	rows, err := s.pool.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, dbErr("read", "failed to list transactions", err)
	}
	defer rows.Close()

	var items []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, dbErr("read", "failed to scan transaction", err)
		}
		items = append(items, *t)
	}
	return items, total, rows.Err()
}

// WindowSums aggregates income and expense magnitudes over [from, to].
func (s *ledgerStore) WindowSums(ctx context.Context, uid string, from, to time.Time) (dto.WindowSums, error) {
	sql, args, err := psql.Select(
		"COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0)",
		"COALESCE(SUM(CASE WHEN type <> 'income' THEN amount ELSE 0 END), 0)",
		"COUNT(*)",
	).From("transactions").
		Where(squirrel.Eq{"user_id": uid}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.LtOrEq{"date": to}).
		ToSql()
	if err != nil {
		return dto.WindowSums{}, dbErr("read", "failed to build window sums query", err)
	}

	var sums dto.WindowSums
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&sums.Income, &sums.Expenses, &sums.Count); err != nil {
		return dto.WindowSums{}, dbErr("read", "failed to aggregate window sums", err)
	}
	return sums, nil
}

// CategoryTotals groups expense magnitudes by category over [from, to],
// largest first.
func (s *ledgerStore) CategoryTotals(ctx context.Context, uid string, from, to time.Time) ([]dto.CategoryTotal, error) {
	sql, args, err := psql.Select("category", "COALESCE(SUM(amount), 0)", "COUNT(*)").
		From("transactions").
		Where(squirrel.Eq{"user_id": uid, "type": models.TransactionExpense}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.LtOrEq{"date": to}).
		GroupBy("category").
		OrderBy("SUM(amount) DESC", "category ASC").
		ToSql()
	if err != nil {
		return nil, dbErr("read", "failed to build category totals query", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbErr("read", "failed to aggregate categories", err)
	}
	defer rows.Close()

	var totals []dto.CategoryTotal
	for rows.Next() {
		var ct dto.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total, &ct.Count); err != nil {
			return nil, dbErr("read", "failed to scan category total", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

// SpentFor sums expense magnitudes for one category within [from, to].
// Budgets derive their spent figure from this instead of a stored column.
func (s *ledgerStore) SpentFor(ctx context.Context, uid string, category string, from, to time.Time) (decimal.Decimal, error) {
	sql, args, err := psql.Select("COALESCE(SUM(amount), 0)").
		From("transactions").
		Where(squirrel.Eq{"user_id": uid, "type": models.TransactionExpense, "category": category}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.LtOrEq{"date": to}).
		ToSql()
	if err != nil {
		return decimal.Zero, dbErr("read", "failed to build spent query", err)
	}

	var spent decimal.Decimal
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&spent); err != nil {
		return decimal.Zero, dbErr("read", "failed to sum category spend", err)
	}
	return spent, nil
}

// Recent returns the most recent transactions, newest first.
func (s *ledgerStore) Recent(ctx context.Context, uid string, limit int) ([]models.Transaction, error) {
	sql, args, err := psql.Select(transactionColumns).From("transactions").
		Where(squirrel.Eq{"user_id": uid}).
		OrderBy("date DESC", "created_at DESC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, dbErr("read", "failed to build recent query", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbErr("read", "failed to list recent transactions", err)
	}
	defer rows.Close()

	var items []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, dbErr("read", "failed to scan transaction", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// HasAny reports whether the user has recorded any transaction at all.
func (s *ledgerStore) HasAny(ctx context.Context, uid string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM transactions WHERE user_id = $1)", uid).Scan(&exists)
	if err != nil {
		return false, dbErr("read", "failed to probe transactions", err)
	}
	return exists, nil
}
