package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingsRepository reads and writes system settings.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// Get returns the stored value of a setting.
func (r *SettingsRepository) Get(ctx context.Context, name string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx, `SELECT value FROM settings WHERE name = $1`, name).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set inserts or replaces a setting value.
func (r *SettingsRepository) Set(ctx context.Context, name, value string) error {
	const query = `
        INSERT INTO settings (name, value)
        VALUES ($1,$2)
        ON CONFLICT (name)
        DO UPDATE SET value = EXCLUDED.value, updated_at = now()
    `
	_, err := r.pool.Exec(ctx, query, name, value)
	return err
}
