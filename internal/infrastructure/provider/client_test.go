package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/HoceineEl/madrasa-messaging/config"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/metrics"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.ProviderConfig{
		BaseURL:       srv.URL,
		APIKey:        "test-key",
		RatePerSecond: 100,
		RateBurst:     10,
	}
	return NewClient(cfg, zerolog.Nop(), metrics.GetDefaultMetrics()), srv
}

func TestGetStatusConnected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/user-7/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("missing api key header")
		}
		json.NewEncoder(w).Encode(map[string]string{
			"status": "CONNECTED",
			"token":  "tok-123",
		})
	}))

	status, err := client.GetStatus(context.Background(), "user-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Status != "CONNECTED" {
		t.Errorf("expected CONNECTED, got %s", status.Status)
	}
	if status.AuthToken != "tok-123" {
		t.Errorf("expected token tok-123, got %s", status.AuthToken)
	}
}

func TestGetStatusNotFoundIsNotAnError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	status, err := client.GetStatus(context.Background(), "user-7")
	if err != nil {
		t.Fatalf("404 should not be an error, got: %v", err)
	}
	if status.Status != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %s", status.Status)
	}
}

func TestGetStatusServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	if _, err := client.GetStatus(context.Background(), "user-7"); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestCreateSessionReturnsQR(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "GENERATING_QR",
			"qrImage": "data:image/png;base64,abc",
		})
	}))

	status, err := client.CreateSession(context.Background(), "user-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.QRImage != "data:image/png;base64,abc" {
		t.Errorf("unexpected qr image %q", status.QRImage)
	}
}

func TestSendMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/user-7/messages/text" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req["phone"] != "212612345678" {
			t.Errorf("unexpected phone %q", req["phone"])
		}
		if req["message"] != "hello" {
			t.Errorf("unexpected message %q", req["message"])
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "msg-42"})
	}))

	id, err := client.SendMessage(context.Background(), "user-7", "212612345678", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "msg-42" {
		t.Errorf("expected msg-42, got %s", id)
	}
}

func TestSendMessageMissingID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))

	if _, err := client.SendMessage(context.Background(), "user-7", "212612345678", "hello"); err == nil {
		t.Fatal("expected error when provider omits message id")
	}
}

func TestLogout(t *testing.T) {
	var called bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.URL.Path != "/api/sessions/user-7/logout" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.Logout(context.Background(), "user-7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("logout endpoint was not called")
	}
}
