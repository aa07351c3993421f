package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pilger-eventos/rsvp-api/internal/model"
	"github.com/pilger-eventos/rsvp-api/internal/repository"
)

type appConfigRepository struct {
	db *sqlx.DB
}

func NewAppConfigRepository(db *sqlx.DB) repository.AppConfigRepository {
	return &appConfigRepository{db: db}
}

func (r *appConfigRepository) GetValues(ctx context.Context, keys []string) (map[string]string, error) {
	query := `SELECT key, value FROM app_config WHERE key = ANY($1)`
	var entries []*model.ConfigEntry
	if err := r.db.SelectContext(ctx, &entries, query, pq.Array(keys)); err != nil {
		return nil, fmt.Errorf("failed to fetch config values: %w", err)
	}

	values := make(map[string]string, len(entries))
	for _, e := range entries {
		values[e.Key] = e.Value
	}
	return values, nil
}

func (r *appConfigRepository) List(ctx context.Context) ([]*model.ConfigEntry, error) {
	query := `SELECT key, value, COALESCE(description, '') AS description FROM app_config ORDER BY key`
	var entries []*model.ConfigEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("failed to list config entries: %w", err)
	}
	return entries, nil
}

func (r *appConfigRepository) Upsert(ctx context.Context, entry *model.ConfigEntry) error {
	query := `
		INSERT INTO app_config (key, value, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := r.db.ExecContext(ctx, query, entry.Key, entry.Value, entry.Description); err != nil {
		return fmt.Errorf("failed to upsert config entry: %w", err)
	}
	return nil
}
