package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pilger-eventos/rsvp-api/internal/model"
	"github.com/pilger-eventos/rsvp-api/internal/repository"
	apperrors "github.com/pilger-eventos/rsvp-api/pkg/errors"
)

type guestRepository struct {
	db *sqlx.DB
}

func NewGuestRepository(db *sqlx.DB) repository.GuestRepository {
	return &guestRepository{db: db}
}

func (r *guestRepository) Create(ctx context.Context, guest *model.Guest) error {
	query := `
		INSERT INTO guests (
			id, name, phone, guests_count,
			companion1_name, companion1_phone, companion2_name, companion2_phone,
			event_name, is_recurring, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	guest.CreatedAt = time.Now()
	guest.UpdatedAt = guest.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		guest.ID,
		guest.Name,
		guest.Phone,
		guest.GuestsCount,
		guest.Companion1Name,
		guest.Companion1Phone,
		guest.Companion2Name,
		guest.Companion2Phone,
		guest.EventName,
		guest.IsRecurring,
		guest.Status,
		guest.CreatedAt,
		guest.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create guest: %w", err)
	}
	return nil
}

func (r *guestRepository) Get(ctx context.Context, id uuid.UUID) (*model.Guest, error) {
	query := `SELECT * FROM guests WHERE id = $1`
	var guest model.Guest
	err := r.db.GetContext(ctx, &guest, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("guest", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guest: %w", err)
	}
	return &guest, nil
}

func (r *guestRepository) GetByPhone(ctx context.Context, phone string) ([]*model.Guest, error) {
	query := `SELECT * FROM guests WHERE phone = $1 ORDER BY created_at DESC`
	var guests []*model.Guest
	err := r.db.SelectContext(ctx, &guests, query, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests by phone: %w", err)
	}
	return guests, nil
}

func (r *guestRepository) List(ctx context.Context) ([]*model.Guest, error) {
	query := `SELECT * FROM guests ORDER BY created_at DESC`
	var guests []*model.Guest
	err := r.db.SelectContext(ctx, &guests, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	return guests, nil
}

func (r *guestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.GuestStatus) error {
	query := `UPDATE guests SET status = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update guest status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("guest", nil)
	}
	return nil
}

func (r *guestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM guests WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete guest: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("guest", nil)
	}
	return nil
}
