// Package memory provides in-memory repository implementations. They back
// the unit tests and local development without a database; the mutex
// discipline mirrors the claim semantics of the postgres implementations.
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

type GuestRepository struct {
	mu     sync.RWMutex
	guests map[uuid.UUID]*model.Guest
}

func NewGuestRepository() *GuestRepository {
	return &GuestRepository{guests: make(map[uuid.UUID]*model.Guest)}
}

func (r *GuestRepository) Create(_ context.Context, guest *model.Guest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if guest.ID == uuid.Nil {
		guest.ID = uuid.New()
	}
	if guest.CreatedAt.IsZero() {
		guest.CreatedAt = time.Now()
	}
	guest.UpdatedAt = guest.CreatedAt
	cp := *guest
	r.guests[guest.ID] = &cp
	return nil
}

func (r *GuestRepository) Get(_ context.Context, id uuid.UUID) (*model.Guest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	guest, ok := r.guests[id]
	if !ok {
		return nil, apperrors.NotFound("guest", nil)
	}
	cp := *guest
	return &cp, nil
}

func (r *GuestRepository) GetByPhone(_ context.Context, phone string) ([]*model.Guest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Guest
	for _, g := range r.guests {
		if g.Phone == phone {
			cp := *g
			out = append(out, &cp)
		}
	}
	sortGuests(out)
	return out, nil
}

func (r *GuestRepository) List(_ context.Context) ([]*model.Guest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Guest, 0, len(r.guests))
	for _, g := range r.guests {
		cp := *g
		out = append(out, &cp)
	}
	sortGuests(out)
	return out, nil
}

func (r *GuestRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.GuestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	guest, ok := r.guests[id]
	if !ok {
		return apperrors.NotFound("guest", nil)
	}
	guest.Status = status
	guest.UpdatedAt = time.Now()
	return nil
}

func (r *GuestRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.guests[id]; !ok {
		return apperrors.NotFound("guest", nil)
	}
	delete(r.guests, id)
	return nil
}

func sortGuests(guests []*model.Guest) {
	sort.Slice(guests, func(i, j int) bool {
		return guests[i].CreatedAt.After(guests[j].CreatedAt)
	})
}

type RuleRepository struct {
	mu    sync.RWMutex
	rules map[uuid.UUID]*model.AutomationRule
}

func NewRuleRepository() *RuleRepository {
	return &RuleRepository{rules: make(map[uuid.UUID]*model.AutomationRule)}
}

func (r *RuleRepository) Create(_ context.Context, rule *model.AutomationRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt
	cp := *rule
	r.rules[rule.ID] = &cp
	return nil
}

func (r *RuleRepository) Get(_ context.Context, id uuid.UUID) (*model.AutomationRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[id]
	if !ok {
		return nil, apperrors.NotFound("automation rule", nil)
	}
	cp := *rule
	return &cp, nil
}

func (r *RuleRepository) List(_ context.Context) ([]*model.AutomationRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.AutomationRule, 0, len(r.rules))
	for _, rule := range r.rules {
		cp := *rule
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].TriggerValue < out[j].TriggerValue
	})
	return out, nil
}

func (r *RuleRepository) ListActiveByType(_ context.Context, ruleType model.RuleType) ([]*model.AutomationRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.AutomationRule
	for _, rule := range r.rules {
		if rule.Active && rule.Type == ruleType {
			cp := *rule
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *RuleRepository) Update(_ context.Context, rule *model.AutomationRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.rules[rule.ID]
	if !ok {
		return apperrors.NotFound("automation rule", nil)
	}
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = time.Now()
	cp := *rule
	r.rules[rule.ID] = &cp
	return nil
}

func (r *RuleRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[id]; !ok {
		return apperrors.NotFound("automation rule", nil)
	}
	delete(r.rules, id)
	return nil
}

type AppConfigRepository struct {
	mu      sync.RWMutex
	entries map[string]*model.ConfigEntry
}

func NewAppConfigRepository() *AppConfigRepository {
	return &AppConfigRepository{entries: make(map[string]*model.ConfigEntry)}
}

func (r *AppConfigRepository) GetValues(_ context.Context, keys []string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	values := make(map[string]string)
	for _, key := range keys {
		if entry, ok := r.entries[key]; ok {
			values[key] = entry.Value
		}
	}
	return values, nil
}

func (r *AppConfigRepository) List(_ context.Context) ([]*model.ConfigEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.ConfigEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		cp := *entry
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *AppConfigRepository) Upsert(_ context.Context, entry *model.ConfigEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.entries[entry.Key] = &cp
	return nil
}
