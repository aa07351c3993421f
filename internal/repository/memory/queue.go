package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pilger-eventos/rsvp-api/internal/model"
	apperrors "github.com/pilger-eventos/rsvp-api/pkg/errors"
)

type QueueRepository struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*model.QueueEntry
	seq     int

	// InsertErr and ClaimErr simulate store failures in tests.
	InsertErr error
	ClaimErr  error
}

func NewQueueRepository() *QueueRepository {
	return &QueueRepository{entries: make(map[uuid.UUID]*model.QueueEntry)}
}

func (r *QueueRepository) InsertEntries(_ context.Context, entries []*model.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.InsertErr != nil {
		return r.InsertErr
	}
	// All-or-nothing, like the transactional postgres insert.
	now := time.Now()
	for _, entry := range entries {
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		entry.Status = model.QueueStatusPending
		entry.CreatedAt = now
		r.seq++
		// Nudge CreatedAt so insertion order stays stable under equal clocks.
		entry.CreatedAt = entry.CreatedAt.Add(time.Duration(r.seq) * time.Nanosecond)
		cp := *entry
		r.entries[entry.ID] = &cp
	}
	return nil
}

// ClaimPendingDue atomically flips matched entries to processing under the
// repository lock, mirroring the conditional-update claim in postgres.
func (r *QueueRepository) ClaimPendingDue(_ context.Context, limit int, now time.Time) ([]*model.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ClaimErr != nil {
		return nil, r.ClaimErr
	}

	var due []*model.QueueEntry
	for _, entry := range r.entries {
		if entry.Status == model.QueueStatusPending && !entry.ScheduledFor.After(now) {
			due = append(due, entry)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].CreatedAt.Before(due[j].CreatedAt) })
	if len(due) > limit {
		due = due[:limit]
	}

	claimed := make([]*model.QueueEntry, 0, len(due))
	for _, entry := range due {
		entry.Status = model.QueueStatusProcessing
		cp := *entry
		claimed = append(claimed, &cp)
	}
	return claimed, nil
}

func (r *QueueRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.QueueStatus, sentAt *time.Time, lastError *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return apperrors.NotFound("queue entry", nil)
	}
	entry.Status = status
	entry.SentAt = sentAt
	entry.LastError = lastError
	return nil
}

func (r *QueueRepository) ListForGuest(_ context.Context, guestID uuid.UUID) ([]*model.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.QueueEntry
	for _, entry := range r.entries {
		if entry.GuestID == guestID {
			cp := *entry
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledFor.Before(out[j].ScheduledFor) })
	return out, nil
}

func (r *QueueRepository) CountByStatus(_ context.Context, status model.QueueStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, entry := range r.entries {
		if entry.Status == status {
			count++
		}
	}
	return count, nil
}

// All returns a snapshot of every entry, for test assertions.
func (r *QueueRepository) All() []*model.QueueEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.QueueEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		cp := *entry
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
