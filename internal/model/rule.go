package model

import (
	"time"

	"github.com/google/uuid"
)

type RuleType string

const (
	RuleTypeSignupRelative RuleType = "signup_relative"
	RuleTypeFixedDate      RuleType = "fixed_date"
)

// AutomationRule is an admin-defined policy producing scheduled messages.
// TriggerValue semantics depend on Type: minutes offset as a decimal string
// for signup_relative, an RFC 3339 timestamp for fixed_date.
type AutomationRule struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Type            RuleType  `db:"type" json:"type"`
	TriggerValue    string    `db:"trigger_value" json:"trigger_value"`
	MessageTemplate string    `db:"message_template" json:"message_template"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type CreateRuleRequest struct {
	Name            string `json:"name" binding:"required"`
	Type            string `json:"type" binding:"required,oneof=signup_relative fixed_date"`
	TriggerValue    string `json:"trigger_value" binding:"required"`
	MessageTemplate string `json:"message_template" binding:"required"`
	Active          bool   `json:"active"`
}

type UpdateRuleRequest struct {
	Name            string `json:"name" binding:"required"`
	Type            string `json:"type" binding:"required,oneof=signup_relative fixed_date"`
	TriggerValue    string `json:"trigger_value" binding:"required"`
	MessageTemplate string `json:"message_template" binding:"required"`
	Active          bool   `json:"active"`
}
