package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benfund/benfund/internal/platform/httpx"
)

type Repository interface {
	All(ctx context.Context) ([]Setting, error)
	Get(ctx context.Context, key string) (Setting, error)
	Upsert(ctx context.Context, key, value string) (Setting, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) All(ctx context.Context) ([]Setting, error) {
	rows, err := r.db.Query(ctx, `SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *repository) Get(ctx context.Context, key string) (Setting, error) {
	var s Setting
	err := r.db.QueryRow(ctx, `SELECT key, value, updated_at FROM settings WHERE key = $1`, key).
		Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Setting{}, httpx.ErrNotFound
	}
	return s, err
}

func (r *repository) Upsert(ctx context.Context, key, value string) (Setting, error) {
	var s Setting
	err := r.db.QueryRow(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		 RETURNING key, value, updated_at`, key, value).
		Scan(&s.Key, &s.Value, &s.UpdatedAt)
	return s, err
}
