package store

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finflowhq/finflow-backend/internal/models"
)

type insightStore struct {
	pool *pgxpool.Pool
}

func NewInsightStore(pool *pgxpool.Pool) *insightStore {
	return &insightStore{pool: pool}
}

const insightColumns = "id, user_id, title, content, type, confidence, is_relevant, created_at"

func scanInsight(row interface{ Scan(...any) error }) (*models.Insight, error) {
	var i models.Insight
	err := row.Scan(&i.ID, &i.UserID, &i.Title, &i.Content, &i.Type,
		&i.Confidence, &i.IsRelevant, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// ListRecent returns the user's insights newest first, capped at limit.
func (s *insightStore) ListRecent(ctx context.Context, uid string, limit int) ([]models.Insight, error) {
	sql, args, err := psql.Select(insightColumns).From("insights").
		Where(squirrel.Eq{"user_id": uid, "is_relevant": true}).
		OrderBy("created_at DESC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, dbErr("read", "failed to build insight list query", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbErr("read", "failed to list insights", err)
	}
	defer rows.Close()

	var insights []models.Insight
	for rows.Next() {
		i, err := scanInsight(rows)
		if err != nil {
			return nil, dbErr("read", "failed to scan insight", err)
		}
		insights = append(insights, *i)
	}
	return insights, rows.Err()
}

// ReplaceOlderThan deletes the user's insights created before cutoff and
// inserts the fresh batch, atomically: a reader never observes the window
// between prune and insert.
func (s *insightStore) ReplaceOlderThan(ctx context.Context, uid string, cutoff time.Time, fresh []models.Insight) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return dbErr("update", "failed to begin insight refresh", err)
	}
	defer tx.Rollback(ctx)

	delSQL, delArgs, err := psql.Delete("insights").
		Where(squirrel.Eq{"user_id": uid}).
		Where(squirrel.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return dbErr("update", "failed to build insight prune", err)
	}
	if _, err := tx.Exec(ctx, delSQL, delArgs...); err != nil {
		return dbErr("update", "failed to prune insights", err)
	}

	if len(fresh) > 0 {
		builder := psql.Insert("insights").
			Columns("id", "user_id", "title", "content", "type", "confidence", "is_relevant", "created_at")
		for _, i := range fresh {
			builder = builder.Values(i.ID, i.UserID, i.Title, i.Content, i.Type, i.Confidence, i.IsRelevant, i.CreatedAt)
		}
		insSQL, insArgs, err := builder.ToSql()
		if err != nil {
			return dbErr("create", "failed to build insight insert", err)
		}
		if _, err := tx.Exec(ctx, insSQL, insArgs...); err != nil {
			return dbErr("create", "failed to insert insights", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return dbErr("update", "failed to commit insight refresh", err)
	}
	return nil
}
