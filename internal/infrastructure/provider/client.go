// Package provider is the HTTP client for the external chat provider. The
// provider's wire format is treated as opaque: responses are reduced to a
// status string, optional pairing artifacts and an optional auth token, and
// the raw body is kept only as a diagnostics snapshot.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/HoceineEl/madrasa-messaging/config"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/session/deps"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/metrics"
)

// Client talks to the chat provider over HTTP. A shared limiter keeps the
// total request rate under the provider's abuse thresholds regardless of
// how many workers are sending.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewClient creates a provider client from config
func NewClient(cfg *config.ProviderConfig, logger zerolog.Logger, m *metrics.Metrics) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		logger:  logger.With().Str("component", "provider_client").Logger(),
		metrics: m,
	}
}

// statusResponse is the provider's session status shape
type statusResponse struct {
	Status    string `json:"status"`
	QRImage   string `json:"qrImage,omitempty"`
	QRContent string `json:"qr,omitempty"`
	Token     string `json:"token,omitempty"`
}

// sendRequest is the provider's text message shape
type sendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// CreateSession asks the provider to start a new session
func (c *Client) CreateSession(ctx context.Context, sessionName string) (*deps.ProviderStatus, error) {
	return c.sessionCall(ctx, http.MethodPost, fmt.Sprintf("/api/sessions/%s/start", sessionName), "create_session")
}

// GetStatus queries the current session status. A provider 404 is not an
// error: it means the session no longer exists, reported as NOT_FOUND.
func (c *Client) GetStatus(ctx context.Context, sessionName string) (*deps.ProviderStatus, error) {
	return c.sessionCall(ctx, http.MethodGet, fmt.Sprintf("/api/sessions/%s/status", sessionName), "get_status")
}

// RequestQR asks the provider for a fresh pairing artifact
func (c *Client) RequestQR(ctx context.Context, sessionName string) (*deps.ProviderStatus, error) {
	return c.sessionCall(ctx, http.MethodPost, fmt.Sprintf("/api/sessions/%s/qr", sessionName), "request_qr")
}

// Logout asks the provider to end the session
func (c *Client) Logout(ctx context.Context, sessionName string) error {
	body, status, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/sessions/%s/logout", sessionName), nil, "logout")
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest && status != http.StatusNotFound {
		return fmt.Errorf("provider logout returned status %d body=%q", status, string(body))
	}
	return nil
}

// SendMessage sends one text message and returns the provider message id
func (c *Client) SendMessage(ctx context.Context, sessionName, recipientPhone, content string) (string, error) {
	payload, err := json.Marshal(sendRequest{Phone: recipientPhone, Message: content})
	if err != nil {
		return "", err
	}

	body, status, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/sessions/%s/messages/text", sessionName), payload, "send_message")
	if err != nil {
		return "", err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", fmt.Errorf("provider send returned status %d body=%q", status, string(body))
	}

	var resp sendResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode send response: %w body=%q", err, string(body))
	}
	if resp.ID == "" {
		return "", fmt.Errorf("missing message id in provider response body=%q", string(body))
	}

	return resp.ID, nil
}

func (c *Client) sessionCall(ctx context.Context, method, path, operation string) (*deps.ProviderStatus, error) {
	body, status, err := c.do(ctx, method, path, nil, operation)
	if err != nil {
		return nil, err
	}

	if status == http.StatusNotFound {
		return &deps.ProviderStatus{Status: "NOT_FOUND", RawResponse: string(body)}, nil
	}
	if status >= http.StatusBadRequest {
		return nil, fmt.Errorf("provider returned status %d body=%q", status, string(body))
	}

	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w body=%q", err, string(body))
	}

	return &deps.ProviderStatus{
		Status:      resp.Status,
		QRImage:     resp.QRImage,
		QRContent:   resp.QRContent,
		AuthToken:   resp.Token,
		RawResponse: string(body),
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, operation string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordProviderRequest(operation, true)
		return nil, 0, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordProviderRequest(operation, true)
		return nil, 0, fmt.Errorf("failed to read provider response: %w", err)
	}

	c.metrics.RecordProviderRequest(operation, false)
	c.logger.Debug().
		Str("operation", operation).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("provider request completed")

	return body, resp.StatusCode, nil
}
