package store

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finflowhq/finflow-backend/internal/models"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type userStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *userStore {
	return &userStore{pool: pool}
}

const userColumns = "uid, email, first_name, last_name, google_id, avatar_url, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.UID, &u.Email, &u.FirstName, &u.LastName, &u.GoogleID, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateWithAccounts inserts the user row and the default account pair in
// one database transaction so first-login provisioning is all-or-nothing.
func (s *userStore) CreateWithAccounts(ctx context.Context, user *models.User, accounts []models.Account) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return dbErr("create", "failed to begin user creation", err)
	}
	defer tx.Rollback(ctx)

	sql, args, err := psql.Insert("users").
		Columns("uid", "email", "first_name", "last_name", "google_id", "avatar_url", "created_at", "updated_at").
		Values(user.UID, user.Email, user.FirstName, user.LastName, user.GoogleID, user.AvatarURL, user.CreatedAt, user.UpdatedAt).
		ToSql()
	if err != nil {
		return dbErr("create", "failed to build user insert", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return dbErr("create", "user already exists", err)
	}

	for i := range accounts {
		a := &accounts[i]
		sql, args, err := psql.Insert("accounts").
			Columns("id", "user_id", "name", "type", "balance", "currency", "is_active", "created_at", "updated_at").
			Values(a.ID, a.UserID, a.Name, a.Type, a.Balance, a.Currency, a.IsActive, a.CreatedAt, a.UpdatedAt).
			ToSql()
		if err != nil {
			return dbErr("create", "failed to build account insert", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return dbErr("create", "failed to create default account", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return dbErr("create", "failed to commit user creation", err)
	}
	return nil
}

func (s *userStore) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	sql, args, err := psql.Select(userColumns).From("users").Where(squirrel.Eq{"uid": uid}).ToSql()
	if err != nil {
		return nil, dbErr("read", "failed to build user query", err)
	}

	user, err := scanUser(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFoundOr("read", "user not found", err)
	}
	return user, nil
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	sql, args, err := psql.Select(userColumns).From("users").Where(squirrel.Eq{"email": email}).ToSql()
	if err != nil {
		return nil, dbErr("read", "failed to build user query", err)
	}

	user, err := scanUser(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFoundOr("read", "user not found", err)
	}
	return user, nil
}

func (s *userStore) Update(ctx context.Context, user *models.User) error {
	sql, args, err := psql.Update("users").
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("google_id", user.GoogleID).
		Set("avatar_url", user.AvatarURL).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"uid": user.UID}).
		ToSql()
	if err != nil {
		return dbErr("update", "failed to build user update", err)
	}

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return dbErr("update", "failed to update user", err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundOr("update", "user not found", errNoRows())
	}
	return nil
}
