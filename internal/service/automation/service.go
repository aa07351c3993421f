// Package automation turns admin-defined rules into queue entries: the
// signup trigger fans out signup-relative rules across a guest and their
// companions, and the bulk scheduler broadcasts a fixed-date rule to every
// registered guest.
package automation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pilger-eventos/rsvp-api/internal/model"
	"github.com/pilger-eventos/rsvp-api/internal/repository"
	"github.com/pilger-eventos/rsvp-api/internal/service/template"
	"github.com/pilger-eventos/rsvp-api/pkg/logger"
	"github.com/pilger-eventos/rsvp-api/pkg/messaging"
)

// ErrNotFixedDate marks a bulk-schedule call on a signup-relative rule. The
// trigger endpoint reports it as a skip, not a failure: applying a relative
// rule retroactively to old signups would schedule messages in the past.
var ErrNotFixedDate = errors.New("bulk scheduling applies to fixed_date rules only")

type Service struct {
	guests repository.GuestRepository
	rules  repository.RuleRepository
	queue  repository.QueueRepository
	broker messaging.Broker
	logger *logger.Logger
}

func NewService(
	guests repository.GuestRepository,
	rules repository.RuleRepository,
	queue repository.QueueRepository,
	broker messaging.Broker,
	logger *logger.Logger,
) *Service {
	return &Service{
		guests: guests,
		rules:  rules,
		queue:  queue,
		broker: broker,
		logger: logger,
	}
}

// Evaluate produces queue entries for one guest against signup-relative
// rules: one entry for the primary guest plus one per filled companion slot,
// content rendered per recipient. A rule whose trigger value does not parse
// as integer minutes is skipped; one malformed rule must not block the rest.
func Evaluate(now time.Time, guest *model.Guest, rules []*model.AutomationRule, log *logger.Logger) []*model.QueueEntry {
	var entries []*model.QueueEntry

	for _, rule := range rules {
		if !rule.Active || rule.Type != model.RuleTypeSignupRelative {
			continue
		}

		minutes, err := strconv.Atoi(rule.TriggerValue)
		if err != nil {
			if log != nil {
				log.Warn("skipping rule with non-numeric trigger value",
					"rule_id", rule.ID.String(), "trigger_value", rule.TriggerValue)
			}
			continue
		}
		scheduledFor := now.Add(time.Duration(minutes) * time.Minute)

		ruleID := rule.ID
		entries = append(entries, &model.QueueEntry{
			GuestID:      guest.ID,
			RuleID:       &ruleID,
			Content:      template.Render(rule.MessageTemplate, map[string]string{"name": guest.Name}),
			ScheduledFor: scheduledFor,
		})

		for _, companion := range guest.Companions() {
			name := companion.Name
			phone := companion.Phone
			entries = append(entries, &model.QueueEntry{
				GuestID:      guest.ID,
				RuleID:       &ruleID,
				Content:      template.Render(rule.MessageTemplate, map[string]string{"name": name}),
				ScheduledFor: scheduledFor,
				TargetPhone:  &phone,
				TargetName:   &name,
			})
		}
	}

	return entries
}

// ScheduleSignup runs the signup trigger for one guest: evaluate the active
// signup-relative rules, insert the drafts, nudge the dispatcher. Returns
// the number of scheduled messages.
func (s *Service) ScheduleSignup(ctx context.Context, guestID uuid.UUID) (int, error) {
	guest, err := s.guests.Get(ctx, guestID)
	if err != nil {
		return 0, err
	}

	rules, err := s.rules.ListActiveByType(ctx, model.RuleTypeSignupRelative)
	if err != nil {
		return 0, fmt.Errorf("failed to load signup rules: %w", err)
	}
	if len(rules) == 0 {
		return 0, nil
	}

	entries := Evaluate(time.Now(), guest, rules, s.logger)
	if len(entries) == 0 {
		return 0, nil
	}

	if err := s.queue.InsertEntries(ctx, entries); err != nil {
		return 0, fmt.Errorf("failed to enqueue signup messages: %w", err)
	}

	s.nudgeDispatch(ctx)
	return len(entries), nil
}

// ScheduleFixedDateRule broadcasts a fixed-date rule to every guest, primary
// registrants only. The insert is all-or-nothing at the rule level.
func (s *Service) ScheduleFixedDateRule(ctx context.Context, ruleID uuid.UUID) (int, error) {
	rule, err := s.rules.Get(ctx, ruleID)
	if err != nil {
		return 0, err
	}

	if rule.Type != model.RuleTypeFixedDate {
		return 0, ErrNotFixedDate
	}

	scheduledFor, err := time.Parse(time.RFC3339, rule.TriggerValue)
	if err != nil {
		return 0, fmt.Errorf("invalid date in rule %s: %w", rule.ID, err)
	}

	guests, err := s.guests.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load guests: %w", err)
	}
	if len(guests) == 0 {
		return 0, nil
	}

	entries := make([]*model.QueueEntry, 0, len(guests))
	for _, guest := range guests {
		entries = append(entries, &model.QueueEntry{
			GuestID:      guest.ID,
			RuleID:       &rule.ID,
			Content:      template.Render(rule.MessageTemplate, map[string]string{"name": guest.Name}),
			ScheduledFor: scheduledFor,
		})
	}

	if err := s.queue.InsertEntries(ctx, entries); err != nil {
		return 0, fmt.Errorf("failed to enqueue broadcast: %w", err)
	}

	s.nudgeDispatch(ctx)
	return len(entries), nil
}

// nudgeDispatch asks the worker to drain promptly. A failed nudge is only
// logged; the periodic tick picks the entries up anyway.
func (s *Service) nudgeDispatch(ctx context.Context) {
	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, messaging.ChannelProcessQueue, map[string]string{"source": "automation"}); err != nil {
		s.logger.Error(err, "failed to nudge dispatch worker")
	}
}
