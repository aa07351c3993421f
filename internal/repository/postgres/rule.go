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

type ruleRepository struct {
	db *sqlx.DB
}

func NewRuleRepository(db *sqlx.DB) repository.RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) Create(ctx context.Context, rule *model.AutomationRule) error {
	query := `
		INSERT INTO automation_rules (
			id, name, type, trigger_value, message_template, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		rule.ID,
		rule.Name,
		rule.Type,
		rule.TriggerValue,
		rule.MessageTemplate,
		rule.Active,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create automation rule: %w", err)
	}
	return nil
}

func (r *ruleRepository) Get(ctx context.Context, id uuid.UUID) (*model.AutomationRule, error) {
	query := `SELECT * FROM automation_rules WHERE id = $1`
	var rule model.AutomationRule
	err := r.db.GetContext(ctx, &rule, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("automation rule", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get automation rule: %w", err)
	}
	return &rule, nil
}

func (r *ruleRepository) List(ctx context.Context) ([]*model.AutomationRule, error) {
	query := `SELECT * FROM automation_rules ORDER BY type, trigger_value`
	var rules []*model.AutomationRule
	err := r.db.SelectContext(ctx, &rules, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list automation rules: %w", err)
	}
	return rules, nil
}

func (r *ruleRepository) ListActiveByType(ctx context.Context, ruleType model.RuleType) ([]*model.AutomationRule, error) {
	query := `SELECT * FROM automation_rules WHERE active = true AND type = $1 ORDER BY created_at`
	var rules []*model.AutomationRule
	err := r.db.SelectContext(ctx, &rules, query, ruleType)
	if err != nil {
		return nil, fmt.Errorf("failed to list active rules: %w", err)
	}
	return rules, nil
}

func (r *ruleRepository) Update(ctx context.Context, rule *model.AutomationRule) error {
	query := `
		UPDATE automation_rules
		SET name = $1, type = $2, trigger_value = $3, message_template = $4, active = $5, updated_at = $6
		WHERE id = $7
	`
	res, err := r.db.ExecContext(ctx, query,
		rule.Name,
		rule.Type,
		rule.TriggerValue,
		rule.MessageTemplate,
		rule.Active,
		time.Now(),
		rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update automation rule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("automation rule", nil)
	}
	return nil
}

func (r *ruleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM automation_rules WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete automation rule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("automation rule", nil)
	}
	return nil
}
