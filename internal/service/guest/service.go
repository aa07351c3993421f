// Package guest implements the RSVP flow and admin guest management. A new
// registration stores the guest, sends the welcome WhatsApp to the primary
// registrant and each companion, and schedules the signup automation rules.
package guest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pilger-eventos/rsvp-api/internal/model"
	"github.com/pilger-eventos/rsvp-api/internal/repository"
	"github.com/pilger-eventos/rsvp-api/internal/service/appconfig"
	"github.com/pilger-eventos/rsvp-api/internal/service/automation"
	"github.com/pilger-eventos/rsvp-api/internal/service/phone"
	"github.com/pilger-eventos/rsvp-api/internal/service/template"
	"github.com/pilger-eventos/rsvp-api/internal/whatsapp"
	"github.com/pilger-eventos/rsvp-api/pkg/logger"
)

// ErrDuplicateRSVP marks a phone already confirmed for this event. The
// registrant still gets a WhatsApp so they know their spot stands.
var ErrDuplicateRSVP = errors.New("guest already confirmed for this event")

type Service struct {
	guests     repository.GuestRepository
	queue      repository.QueueRepository
	cfg        *appconfig.Service
	sender     whatsapp.Sender
	automation *automation.Service
	eventName  string
	logger     *logger.Logger
}

func NewService(
	guests repository.GuestRepository,
	queue repository.QueueRepository,
	cfg *appconfig.Service,
	sender whatsapp.Sender,
	automationSvc *automation.Service,
	eventName string,
	log *logger.Logger,
) *Service {
	return &Service{
		guests:     guests,
		queue:      queue,
		cfg:        cfg,
		sender:     sender,
		automation: automationSvc,
		eventName:  eventName,
		logger:     log,
	}
}

// RegisterResult reports what happened after an RSVP submission.
type RegisterResult struct {
	Guest     *model.Guest `json:"guest"`
	Scheduled int          `json:"scheduled"`
}

// Register handles a public RSVP submission.
func (s *Service) Register(ctx context.Context, req *model.CreateGuestRequest) (*RegisterResult, error) {
	existing, err := s.guests.GetByPhone(ctx, req.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing registrations: %w", err)
	}

	for _, g := range existing {
		if g.EventName == s.eventName {
			// Re-sending the welcome tells them they are already in.
			s.sendWelcome(ctx, req.Name, req.Phone, req.GuestsCount)
			return nil, ErrDuplicateRSVP
		}
	}

	guest := &model.Guest{
		ID:              uuid.New(),
		Name:            req.Name,
		Phone:           req.Phone,
		GuestsCount:     req.GuestsCount,
		Companion1Name:  req.Companion1Name,
		Companion1Phone: req.Companion1Phone,
		Companion2Name:  req.Companion2Name,
		Companion2Phone: req.Companion2Phone,
		EventName:       s.eventName,
		IsRecurring:     len(existing) > 0,
		Status:          model.GuestStatusConfirmed,
	}

	if err := s.guests.Create(ctx, guest); err != nil {
		return nil, fmt.Errorf("failed to create guest: %w", err)
	}

	// Welcome messages are best-effort: a provider hiccup must not undo a
	// confirmed registration.
	s.sendWelcome(ctx, guest.Name, guest.Phone, guest.GuestsCount)
	for _, companion := range guest.Companions() {
		s.sendWelcome(ctx, companion.Name, companion.Phone, 0)
	}

	scheduled, err := s.automation.ScheduleSignup(ctx, guest.ID)
	if err != nil {
		s.logger.Error(err, "failed to schedule signup rules", "guest_id", guest.ID.String())
	}

	return &RegisterResult{Guest: guest, Scheduled: scheduled}, nil
}

// ResendWelcome re-sends the welcome message to a guest's primary phone.
func (s *Service) ResendWelcome(ctx context.Context, id uuid.UUID) error {
	guest, err := s.guests.Get(ctx, id)
	if err != nil {
		return err
	}

	creds, err := s.cfg.Credentials(ctx)
	if err != nil {
		return err
	}
	tmpl, err := s.cfg.WelcomeTemplate(ctx)
	if err != nil {
		return err
	}

	msg := template.Render(tmpl, map[string]string{
		"name":          guest.Name,
		"guest_summary": guestSummary(guest.GuestsCount),
	})
	return s.sender.SendText(ctx, creds, phone.Normalize(guest.Phone), msg)
}

// CheckInToggle flips a guest between confirmed and checked_in.
func (s *Service) CheckInToggle(ctx context.Context, id uuid.UUID) (model.GuestStatus, error) {
	guest, err := s.guests.Get(ctx, id)
	if err != nil {
		return "", err
	}

	next := model.GuestStatusCheckedIn
	if guest.Status == model.GuestStatusCheckedIn {
		next = model.GuestStatusConfirmed
	}
	if err := s.guests.UpdateStatus(ctx, id, next); err != nil {
		return "", err
	}
	return next, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Guest, error) {
	return s.guests.List(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Guest, error) {
	return s.guests.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.guests.Delete(ctx, id)
}

// ScheduledMessages lists a guest's queue entries, for the admin detail view.
func (s *Service) ScheduledMessages(ctx context.Context, id uuid.UUID) ([]*model.QueueEntry, error) {
	return s.queue.ListForGuest(ctx, id)
}

func (s *Service) sendWelcome(ctx context.Context, name, rawPhone string, guestsCount int) {
	creds, err := s.cfg.Credentials(ctx)
	if err != nil {
		s.logger.Error(err, "welcome send skipped, credentials unavailable")
		return
	}
	tmpl, err := s.cfg.WelcomeTemplate(ctx)
	if err != nil {
		s.logger.Error(err, "welcome send skipped, template unavailable")
		return
	}

	msg := template.Render(tmpl, map[string]string{
		"name":          name,
		"guest_summary": guestSummary(guestsCount),
	})
	if err := s.sender.SendText(ctx, creds, phone.Normalize(rawPhone), msg); err != nil {
		s.logger.Error(err, "failed to send welcome message", "name", name)
	}
}

func guestSummary(guestsCount int) string {
	if guestsCount == 0 {
		return "Você convidou: Somente você."
	}
	return fmt.Sprintf("Você convidou: Você + %d convidado(s).", guestsCount)
}
