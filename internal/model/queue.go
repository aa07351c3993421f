package model

import (
	"time"

	"github.com/google/uuid"
)

type QueueStatus string

const (
	QueueStatusPending    QueueStatus = "pending"
	QueueStatusProcessing QueueStatus = "processing"
	QueueStatusSent       QueueStatus = "sent"
	QueueStatusFailed     QueueStatus = "failed"
)

// QueueEntry is one scheduled, recipient-specific outbound message. Content
// is rendered at creation time, never at send time. Entries are created
// pending; the dispatcher claims them (pending -> processing) and sets a
// terminal status (sent or failed) exactly once.
type QueueEntry struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	GuestID      uuid.UUID   `db:"guest_id" json:"guest_id"`
	RuleID       *uuid.UUID  `db:"rule_id" json:"rule_id,omitempty"`
	Content      string      `db:"content" json:"content"`
	ScheduledFor time.Time   `db:"scheduled_for" json:"scheduled_for"`
	Status       QueueStatus `db:"status" json:"status"`
	TargetPhone  *string     `db:"target_phone" json:"target_phone,omitempty"`
	TargetName   *string     `db:"target_name" json:"target_name,omitempty"`
	LastError    *string     `db:"last_error" json:"last_error,omitempty"`
	SentAt       *time.Time  `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
}

// DispatchResult is the per-entry outcome of one dispatch run.
type DispatchResult struct {
	ID     uuid.UUID   `json:"id"`
	Status QueueStatus `json:"status"`
	Reason string      `json:"reason,omitempty"`
}

// DispatchSummary is returned by one invocation of the dispatch worker.
type DispatchSummary struct {
	Processed int              `json:"processed"`
	Results   []DispatchResult `json:"results"`
	// More signals that a full batch was claimed and a continuation
	// nudge was emitted.
	More bool `json:"more"`
}
