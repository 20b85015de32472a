package entities

import (
	"testing"
	"time"
)

func TestStatusFromProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     ConnectionStatus
	}{
		{"CONNECTED", StatusConnected},
		{"connected", StatusConnected},
		{"Connected", StatusConnected},
		{"WORKING", StatusConnected},
		{"DISCONNECTED", StatusDisconnected},
		{"NOT_FOUND", StatusDisconnected},
		{"STOPPED", StatusDisconnected},
		{"", StatusDisconnected},
		{"CREATING", StatusCreating},
		{"STARTING", StatusCreating},
		{"CONNECTING", StatusConnecting},
		{"PENDING", StatusPending},
		{"SCAN_QR_CODE", StatusPending},
		{"GENERATING_QR", StatusGeneratingQR},
		{"generating_qr", StatusGeneratingQR},
		// Unrecognized values default to the least-capable intermediate state.
		{"banana", StatusPending},
		{"SOME_FUTURE_STATE", StatusPending},
	}

	for _, tt := range tests {
		if got := StatusFromProvider(tt.provider); got != tt.want {
			t.Errorf("StatusFromProvider(%q) = %s, want %s", tt.provider, got, tt.want)
		}
	}
}

func TestNormalizeQR(t *testing.T) {
	if qr := NormalizeQR("", ""); qr != nil {
		t.Fatalf("NormalizeQR with no artifact = %+v, want nil", qr)
	}

	qr := NormalizeQR("iVBORw0KGgo=", "")
	if qr == nil || qr.Kind != QRKindImage || qr.Data != "iVBORw0KGgo=" {
		t.Fatalf("image artifact not normalized: %+v", qr)
	}

	qr = NormalizeQR("", "2@AbCdEf")
	if qr == nil || qr.Kind != QRKindRaw || qr.Data != "2@AbCdEf" {
		t.Fatalf("raw artifact not normalized: %+v", qr)
	}

	// Image payload wins when the provider sends both forms.
	qr = NormalizeQR("img", "raw")
	if qr == nil || qr.Kind != QRKindImage {
		t.Fatalf("expected image to win, got %+v", qr)
	}
}

func TestPollInterval(t *testing.T) {
	// Intermediate states always poll fast, regardless of history.
	for _, st := range []ConnectionStatus{StatusCreating, StatusConnecting, StatusPending, StatusGeneratingQR} {
		if got := PollInterval(st, 100); got != 2*time.Second {
			t.Errorf("PollInterval(%s, 100) = %s, want 2s", st, got)
		}
	}

	// Stable states back off as unchanged polls accumulate, capped.
	tests := []struct {
		polls int
		want  time.Duration
	}{
		{0, 10 * time.Second},
		{1, 15 * time.Second},
		{2, 20 * time.Second},
		{4, 30 * time.Second},
		{50, 30 * time.Second},
	}
	for _, tt := range tests {
		if got := PollInterval(StatusConnected, tt.polls); got != tt.want {
			t.Errorf("PollInterval(CONNECTED, %d) = %s, want %s", tt.polls, got, tt.want)
		}
		if got := PollInterval(StatusDisconnected, tt.polls); got != tt.want {
			t.Errorf("PollInterval(DISCONNECTED, %d) = %s, want %s", tt.polls, got, tt.want)
		}
	}
}

func TestSessionModelRoundTrip(t *testing.T) {
	now := time.Now()
	s := &Session{
		ID:             3,
		UserID:         7,
		Status:         StatusConnected,
		QR:             &QRArtifact{Kind: QRKindRaw, Data: "2@token"},
		ConnectedAt:    &now,
		LastActivityAt: &now,
	}

	got := FromEntity(s).ToEntity()
	if got.UserID != 7 || got.Status != StatusConnected {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if got.QR == nil || got.QR.Kind != QRKindRaw || got.QR.Data != "2@token" {
		t.Fatalf("round trip lost QR artifact: %+v", got.QR)
	}
}
