package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pilger-eventos/rsvp-api/internal/model"
	"github.com/pilger-eventos/rsvp-api/internal/repository"
	apperrors "github.com/pilger-eventos/rsvp-api/pkg/errors"
)

type queueRepository struct {
	BaseRepository
}

func NewQueueRepository(base BaseRepository) repository.QueueRepository {
	return &queueRepository{base}
}

func (r *queueRepository) InsertEntries(ctx context.Context, entries []*model.QueueEntry) error {
	if len(entries) == 0 {
		return nil
	}

	// All-or-nothing: a half-scheduled broadcast is worse than none.
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO message_queue (
				id, guest_id, rule_id, content, scheduled_for, status,
				target_phone, target_name, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		now := time.Now()
		for _, entry := range entries {
			if entry.ID == uuid.Nil {
				entry.ID = uuid.New()
			}
			entry.Status = model.QueueStatusPending
			entry.CreatedAt = now

			if _, err := tx.ExecContext(ctx, query,
				entry.ID,
				entry.GuestID,
				entry.RuleID,
				entry.Content,
				entry.ScheduledFor,
				entry.Status,
				entry.TargetPhone,
				entry.TargetName,
				entry.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to insert queue entry: %w", err)
			}
		}
		return nil
	})
}

// ClaimPendingDue claims up to limit due entries in one statement. The inner
// select uses FOR UPDATE SKIP LOCKED so concurrent dispatch runs partition
// the pending set instead of double-claiming it.
func (r *queueRepository) ClaimPendingDue(ctx context.Context, limit int, now time.Time) ([]*model.QueueEntry, error) {
	query := `
		UPDATE message_queue
		SET status = $1
		WHERE id IN (
			SELECT id FROM message_queue
			WHERE status = $2 AND scheduled_for <= $3
			ORDER BY created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT $4
		)
		RETURNING *
	`
	var entries []*model.QueueEntry
	err := r.GetDB().SelectContext(ctx, &entries, query,
		model.QueueStatusProcessing, model.QueueStatusPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending entries: %w", err)
	}
	return entries, nil
}

func (r *queueRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.QueueStatus, sentAt *time.Time, lastError *string) error {
	query := `
		UPDATE message_queue
		SET status = $1, sent_at = $2, last_error = $3
		WHERE id = $4
	`
	res, err := r.GetDB().ExecContext(ctx, query, status, sentAt, lastError, id)
	if err != nil {
		return fmt.Errorf("failed to update queue entry status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("queue entry", nil)
	}
	return nil
}

func (r *queueRepository) ListForGuest(ctx context.Context, guestID uuid.UUID) ([]*model.QueueEntry, error) {
	query := `SELECT * FROM message_queue WHERE guest_id = $1 ORDER BY scheduled_for ASC`
	var entries []*model.QueueEntry
	err := r.GetDB().SelectContext(ctx, &entries, query, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue entries: %w", err)
	}
	return entries, nil
}

func (r *queueRepository) CountByStatus(ctx context.Context, status model.QueueStatus) (int, error) {
	query := `SELECT COUNT(*) FROM message_queue WHERE status = $1`
	var count int
	if err := r.GetDB().GetContext(ctx, &count, query, status); err != nil {
		return 0, fmt.Errorf("failed to count queue entries: %w", err)
	}
	return count, nil
}
