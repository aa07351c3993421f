package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendText(t *testing.T) {
	var gotPath, gotAPIKey, gotContentType string
	var gotBody sendTextRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("apikey")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(5 * time.Second)
	creds := Credentials{APIURL: srv.URL, APIKey: "secret", Instance: "main"}

	err := client.SendText(context.Background(), creds, "5551998765432", "Olá!")
	require.NoError(t, err)

	assert.Equal(t, "/message/sendText/main", gotPath)
	assert.Equal(t, "secret", gotAPIKey)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "5551998765432", gotBody.Number)
	assert.Equal(t, "Olá!", gotBody.Text)
}

func TestSendTextNon2xxIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad key"))
	}))
	defer srv.Close()

	client := NewClient(5 * time.Second)
	creds := Credentials{APIURL: srv.URL, APIKey: "wrong", Instance: "main"}

	err := client.SendText(context.Background(), creds, "5551998765432", "Olá!")
	require.Error(t, err)

	var provErr *ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, http.StatusUnauthorized, provErr.StatusCode)
	assert.Contains(t, provErr.Body, "bad key")
}

func TestSendTextTransportError(t *testing.T) {
	client := NewClient(time.Second)
	creds := Credentials{APIURL: "http://127.0.0.1:1", APIKey: "k", Instance: "main"}

	err := client.SendText(context.Background(), creds, "5551998765432", "Olá!")
	require.Error(t, err)

	var provErr *ProviderError
	assert.False(t, errors.As(err, &provErr))
}
