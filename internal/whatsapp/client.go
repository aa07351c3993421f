// Package whatsapp talks to the messaging-provider HTTP API. The provider
// delivers a WhatsApp text given a country-prefixed number; it is the sole
// authority on number validity.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pilger-eventos/rsvp-api/pkg/circuitbreaker"
)

// Credentials locate one provider instance. They are loaded from the config
// store on every dispatch run, never cached across invocations.
type Credentials struct {
	APIURL   string
	APIKey   string
	Instance string
}

// Sender is the outbound surface the dispatcher and welcome sender depend on.
type Sender interface {
	SendText(ctx context.Context, creds Credentials, number, text string) error
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// ProviderError is a non-2xx response from the provider. Transport errors
// are returned as-is.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		breaker: circuitbreaker.New(circuitbreaker.Settings{
			Name:        "whatsapp-provider",
			MaxFailures: 10,
			Timeout:     30 * time.Second,
		}),
	}
}

// SendText posts one message. number must already be normalized.
func (c *Client) SendText(ctx context.Context, creds Credentials, number, text string) error {
	return c.breaker.Execute(func() error {
		return c.sendText(ctx, creds, number, text)
	})
}

func (c *Client) sendText(ctx context.Context, creds Credentials, number, text string) error {
	payload, err := json.Marshal(sendTextRequest{Number: number, Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal send request: %w", err)
	}

	url := fmt.Sprintf("%s/message/sendText/%s", creds.APIURL, creds.Instance)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", creds.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &ProviderError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}
