package store

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finflowhq/finflow-backend/internal/errs"
	"github.com/finflowhq/finflow-backend/internal/models"
)

// Encryptor seals access tokens before they touch the database.
type Encryptor interface {
	KmsEncrypt(ctx context.Context, plaintext string) (string, error)
	KmsDecrypt(ctx context.Context, ciphertext string) (string, error)
}

// plaidItemStore keeps linked Plaid items. Tokens are encrypted on the way
// in and decrypted on the way out; plaintext never reaches a row.
type plaidItemStore struct {
	pool      *pgxpool.Pool
	encryptor Encryptor
}

func NewPlaidItemStore(pool *pgxpool.Pool, encryptor Encryptor) *plaidItemStore {
	return &plaidItemStore{pool: pool, encryptor: encryptor}
}

const plaidItemColumns = "id, user_id, item_id, institution, access_token, created_at"

func scanPlaidItem(row interface{ Scan(...any) error }) (*models.PlaidItem, error) {
	var p models.PlaidItem
	err := row.Scan(&p.ID, &p.UserID, &p.ItemID, &p.Institution, &p.AccessToken, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *plaidItemStore) Create(ctx context.Context, item *models.PlaidItem) error {
	sealed, err := s.encryptor.KmsEncrypt(ctx, item.AccessToken)
	if err != nil {
		return errs.NewExternalServiceError("kms", "failed to encrypt access token", false, err)
	}

	sql, args, err := psql.Insert("plaid_items").
		Columns("id", "user_id", "item_id", "institution", "access_token", "created_at").
		Values(item.ID, item.UserID, item.ItemID, item.Institution, sealed, item.CreatedAt).
		ToSql()
	if err != nil {
		return dbErr("create", "failed to build plaid item insert", err)
	}
	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return dbErr("create", "failed to create plaid item", err)
	}
	return nil
}

// List returns the user's linked items with access tokens decrypted.
func (s *plaidItemStore) List(ctx context.Context, uid string) ([]models.PlaidItem, error) {
	sql, args, err := psql.Select(plaidItemColumns).From("plaid_items").
		Where(squirrel.Eq{"user_id": uid}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, dbErr("read", "failed to build plaid item list query", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbErr("read", "failed to list plaid items", err)
	}
	defer rows.Close()

	var items []models.PlaidItem
	for rows.Next() {
		item, err := scanPlaidItem(rows)
		if err != nil {
			return nil, dbErr("read", "failed to scan plaid item", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("read", "failed to read plaid items", err)
	}

	for i := range items {
		plain, err := s.encryptor.KmsDecrypt(ctx, items[i].AccessToken)
		if err != nil {
			return nil, errs.NewExternalServiceError("kms", "failed to decrypt access token", false, err)
		}
		items[i].AccessToken = plain
	}
	return items, nil
}

func (s *plaidItemStore) Delete(ctx context.Context, uid, id string) error {
	sql, args, err := psql.Delete("plaid_items").
		Where(squirrel.Eq{"id": id, "user_id": uid}).
		ToSql()
	if err != nil {
		return dbErr("delete", "failed to build plaid item delete", err)
	}

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return dbErr("delete", "failed to delete plaid item", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NewNotFoundError("plaid item not found")
	}
	return nil
}
