// Package appconfig reads and writes the app_config key/value table:
// provider credentials and message templates edited from the admin UI.
package appconfig

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/pilger-eventos/rsvp-api/internal/model"
	"github.com/pilger-eventos/rsvp-api/internal/repository"
	"github.com/pilger-eventos/rsvp-api/internal/whatsapp"
	apperrors "github.com/pilger-eventos/rsvp-api/pkg/errors"
)

// DefaultWelcomeTemplate is used when no welcome_message_template row
// exists. It carries the {name} and {guest_summary} tokens.
const DefaultWelcomeTemplate = `Olá *{name}*! 👋

Sua presença foi confirmada com sucesso! 🎭✨

{guest_summary}

Estamos ansiosos para te receber neste evento exclusivo!

_Este é um convite digital e pessoal._`

const templateCacheKey = "welcome_message_template"

type Service struct {
	repo  repository.AppConfigRepository
	cache *gocache.Cache
}

func NewService(repo repository.AppConfigRepository) *Service {
	return &Service{
		repo: repo,
		// Templates change rarely; credentials are never cached.
		cache: gocache.New(30*time.Second, time.Minute),
	}
}

// Credentials loads the messaging-provider credentials. They are read fresh
// on every call so a dispatch run always sees current settings; a missing
// key is an invocation-fatal configuration error.
func (s *Service) Credentials(ctx context.Context) (whatsapp.Credentials, error) {
	values, err := s.repo.GetValues(ctx, []string{
		model.ConfigKeyAPIURL,
		model.ConfigKeyAPIKey,
		model.ConfigKeyInstance,
	})
	if err != nil {
		return whatsapp.Credentials{}, apperrors.Configuration("failed to fetch API configuration", err)
	}

	creds := whatsapp.Credentials{
		APIURL:   values[model.ConfigKeyAPIURL],
		APIKey:   values[model.ConfigKeyAPIKey],
		Instance: values[model.ConfigKeyInstance],
	}
	if creds.APIURL == "" || creds.APIKey == "" || creds.Instance == "" {
		return whatsapp.Credentials{}, apperrors.Configuration("API credentials not configured", nil)
	}
	return creds, nil
}

// WelcomeTemplate returns the stored welcome template, falling back to the
// built-in default when the row is absent or empty.
func (s *Service) WelcomeTemplate(ctx context.Context) (string, error) {
	if cached, ok := s.cache.Get(templateCacheKey); ok {
		return cached.(string), nil
	}

	values, err := s.repo.GetValues(ctx, []string{model.ConfigKeyWelcomeTemplate})
	if err != nil {
		return "", apperrors.Configuration("failed to fetch welcome template", err)
	}

	tmpl := values[model.ConfigKeyWelcomeTemplate]
	if tmpl == "" {
		tmpl = DefaultWelcomeTemplate
	}
	s.cache.SetDefault(templateCacheKey, tmpl)
	return tmpl, nil
}

func (s *Service) List(ctx context.Context) ([]*model.ConfigEntry, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, entries []model.ConfigEntry) error {
	for i := range entries {
		if err := s.repo.Upsert(ctx, &entries[i]); err != nil {
			return err
		}
	}
	s.cache.Delete(templateCacheKey)
	return nil
}
