package appconfig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilger-eventos/rsvp-api/internal/model"
	"github.com/pilger-eventos/rsvp-api/internal/repository/memory"
	apperrors "github.com/pilger-eventos/rsvp-api/pkg/errors"
)

func seedCredentials(t *testing.T, repo *memory.AppConfigRepository) {
	t.Helper()
	ctx := context.Background()
	for key, value := range map[string]string{
		model.ConfigKeyAPIURL:   "https://wa.example.com",
		model.ConfigKeyAPIKey:   "secret",
		model.ConfigKeyInstance: "main",
	} {
		require.NoError(t, repo.Upsert(ctx, &model.ConfigEntry{Key: key, Value: value}))
	}
}

func TestCredentials(t *testing.T) {
	repo := memory.NewAppConfigRepository()
	seedCredentials(t, repo)
	svc := NewService(repo)

	creds, err := svc.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://wa.example.com", creds.APIURL)
	assert.Equal(t, "secret", creds.APIKey)
	assert.Equal(t, "main", creds.Instance)
}

func TestCredentialsMissingKeyIsConfigurationError(t *testing.T) {
	repo := memory.NewAppConfigRepository()
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, &model.ConfigEntry{Key: model.ConfigKeyAPIURL, Value: "https://wa.example.com"}))

	svc := NewService(repo)
	_, err := svc.Credentials(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestWelcomeTemplateFallsBackToDefault(t *testing.T) {
	svc := NewService(memory.NewAppConfigRepository())

	tmpl, err := svc.WelcomeTemplate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultWelcomeTemplate, tmpl)
	assert.Contains(t, tmpl, "{name}")
	assert.Contains(t, tmpl, "{guest_summary}")
}

func TestWelcomeTemplateStoredValueWins(t *testing.T) {
	repo := memory.NewAppConfigRepository()
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, &model.ConfigEntry{
		Key: model.ConfigKeyWelcomeTemplate, Value: "Oi {name}",
	}))

	svc := NewService(repo)
	tmpl, err := svc.WelcomeTemplate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Oi {name}", tmpl)
}

func TestUpdateInvalidatesTemplateCache(t *testing.T) {
	repo := memory.NewAppConfigRepository()
	ctx := context.Background()
	svc := NewService(repo)

	tmpl, err := svc.WelcomeTemplate(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultWelcomeTemplate, tmpl)

	require.NoError(t, svc.Update(ctx, []model.ConfigEntry{
		{Key: model.ConfigKeyWelcomeTemplate, Value: "novo {name}"},
	}))

	tmpl, err = svc.WelcomeTemplate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "novo {name}", tmpl)
}
