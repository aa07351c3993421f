package model

import (
	"time"

	"github.com/google/uuid"
)

type GuestStatus string

const (
	GuestStatusConfirmed GuestStatus = "confirmed"
	GuestStatusCheckedIn GuestStatus = "checked_in"
)

type Guest struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	Name            string      `db:"name" json:"name"`
	Phone           string      `db:"phone" json:"phone"`
	GuestsCount     int         `db:"guests_count" json:"guests_count"`
	Companion1Name  *string     `db:"companion1_name" json:"companion1_name,omitempty"`
	Companion1Phone *string     `db:"companion1_phone" json:"companion1_phone,omitempty"`
	Companion2Name  *string     `db:"companion2_name" json:"companion2_name,omitempty"`
	Companion2Phone *string     `db:"companion2_phone" json:"companion2_phone,omitempty"`
	EventName       string      `db:"event_name" json:"event_name"`
	IsRecurring     bool        `db:"is_recurring" json:"is_recurring"`
	Status          GuestStatus `db:"status" json:"status"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

// Companion is a resolved recipient slot on a guest record.
type Companion struct {
	Name  string
	Phone string
}

// Companions returns the companion slots that have both a name and a phone.
// A half-filled slot is not a deliverable recipient and is skipped.
func (g *Guest) Companions() []Companion {
	var out []Companion
	if g.Companion1Name != nil && *g.Companion1Name != "" && g.Companion1Phone != nil && *g.Companion1Phone != "" {
		out = append(out, Companion{Name: *g.Companion1Name, Phone: *g.Companion1Phone})
	}
	if g.Companion2Name != nil && *g.Companion2Name != "" && g.Companion2Phone != nil && *g.Companion2Phone != "" {
		out = append(out, Companion{Name: *g.Companion2Name, Phone: *g.Companion2Phone})
	}
	return out
}

type CreateGuestRequest struct {
	Name            string  `json:"name" binding:"required"`
	Phone           string  `json:"phone" binding:"required,phonedigits"`
	GuestsCount     int     `json:"guests_count"`
	Companion1Name  *string `json:"companion1_name"`
	Companion1Phone *string `json:"companion1_phone"`
	Companion2Name  *string `json:"companion2_name"`
	Companion2Phone *string `json:"companion2_phone"`
}
