package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pilger-eventos/rsvp-api/internal/model"
)

// All repository interfaces in one file
type (
	// GuestRepository handles guest records created by the RSVP form.
	GuestRepository interface {
		Create(ctx context.Context, guest *model.Guest) error
		Get(ctx context.Context, id uuid.UUID) (*model.Guest, error)
		GetByPhone(ctx context.Context, phone string) ([]*model.Guest, error)
		List(ctx context.Context) ([]*model.Guest, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.GuestStatus) error
		Delete(ctx context.Context, id uuid.UUID) error
	}

	// RuleRepository handles automation rules. Rules are admin-owned and
	// read-only to the evaluator and dispatcher.
	RuleRepository interface {
		Create(ctx context.Context, rule *model.AutomationRule) error
		Get(ctx context.Context, id uuid.UUID) (*model.AutomationRule, error)
		List(ctx context.Context) ([]*model.AutomationRule, error)
		ListActiveByType(ctx context.Context, ruleType model.RuleType) ([]*model.AutomationRule, error)
		Update(ctx context.Context, rule *model.AutomationRule) error
		Delete(ctx context.Context, id uuid.UUID) error
	}

	// QueueRepository handles the outbound message queue. ClaimPendingDue
	// atomically transitions claimed entries from pending to processing so
	// two concurrent dispatch runs never double-send the same entry.
	QueueRepository interface {
		InsertEntries(ctx context.Context, entries []*model.QueueEntry) error
		ClaimPendingDue(ctx context.Context, limit int, now time.Time) ([]*model.QueueEntry, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.QueueStatus, sentAt *time.Time, lastError *string) error
		ListForGuest(ctx context.Context, guestID uuid.UUID) ([]*model.QueueEntry, error)
		CountByStatus(ctx context.Context, status model.QueueStatus) (int, error)
	}

	// AppConfigRepository handles the flat key/value app_config table.
	AppConfigRepository interface {
		GetValues(ctx context.Context, keys []string) (map[string]string, error)
		List(ctx context.Context) ([]*model.ConfigEntry, error)
		Upsert(ctx context.Context, entry *model.ConfigEntry) error
	}

	// AdminRepository handles dashboard users.
	AdminRepository interface {
		GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	}
)
