package entities

import "testing"

func TestMessageStatus_IsTerminal(t *testing.T) {
	terminal := []MessageStatus{StatusSent, StatusFailed, StatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s.IsTerminal() = false, want true", s)
		}
	}
	if StatusQueued.IsTerminal() {
		t.Error("QUEUED.IsTerminal() = true, want false")
	}
}

func TestOutboundMessage_IsRetryable(t *testing.T) {
	tests := []struct {
		name   string
		status MessageStatus
		retry  int
		want   bool
	}{
		{"failed first time", StatusFailed, 1, true},
		{"failed at cap minus one", StatusFailed, 2, true},
		{"failed at cap", StatusFailed, 3, false},
		{"failed beyond cap", StatusFailed, 4, false},
		{"queued", StatusQueued, 0, false},
		{"sent", StatusSent, 0, false},
		{"cancelled", StatusCancelled, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &OutboundMessage{Status: tt.status, RetryCount: tt.retry}
			if got := m.IsRetryable(); got != tt.want {
				t.Fatalf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}
