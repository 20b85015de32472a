package business

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/attendance/entities"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/metrics"
	"github.com/HoceineEl/madrasa-messaging/internal/phone"
)

type presenceMap map[uint]bool

func (p presenceMap) IsPresent(ctx context.Context, memberID uint, date string) (bool, error) {
	return p[memberID], nil
}

type failingReader struct{}

func (failingReader) IsPresent(ctx context.Context, memberID uint, date string) (bool, error) {
	return false, errors.New("storage down")
}

func newTestUseCase() *UseCase {
	return NewUseCase(phone.DefaultNormalizer(), zerolog.Nop(), metrics.GetDefaultMetrics())
}

func TestReconcileMatchesSenders(t *testing.T) {
	uc := newTestUseCase()

	roster := []entities.RosterMember{
		{ID: 1, Name: "Ahmed", RawPhone: "0612345678"},
		{ID: 2, Name: "Bilal", RawPhone: "0698765432"},
	}
	senders := []string{"212612345678"}

	result, err := uc.Reconcile(context.Background(), roster, "2026-08-28", senders, presenceMap{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Matched != 1 || result.Unmatched != 1 || result.AlreadyPresent != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.Members[0].Kind != entities.AutoMatched {
		t.Errorf("Ahmed should auto-match, got %s", result.Members[0].Kind)
	}
	if result.Members[0].MatchedWith != "212612345678" {
		t.Errorf("unexpected matched sender %q", result.Members[0].MatchedWith)
	}
	if result.Members[1].Kind != entities.Unmatched {
		t.Errorf("Bilal should be unmatched, got %s", result.Members[1].Kind)
	}
}

func TestReconcilePresenceOverridesMatching(t *testing.T) {
	uc := newTestUseCase()

	roster := []entities.RosterMember{
		{ID: 1, Name: "Ahmed", RawPhone: "0612345678"},
	}
	senders := []string{"212612345678"}

	result, err := uc.Reconcile(context.Background(), roster, "2026-08-28", senders, presenceMap{1: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Members[0].Kind != entities.AlreadyPresent {
		t.Errorf("recorded presence must win over phone matching, got %s", result.Members[0].Kind)
	}
	if result.AlreadyPresent != 1 || result.Matched != 0 {
		t.Errorf("unexpected counts: %+v", result)
	}
}

func TestReconcileIgnoresBadSenderPhones(t *testing.T) {
	uc := newTestUseCase()

	roster := []entities.RosterMember{
		{ID: 1, Name: "Ahmed", RawPhone: "0612345678"},
	}
	senders := []string{"garbage", "212612345678"}

	result, err := uc.Reconcile(context.Background(), roster, "2026-08-28", senders, presenceMap{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Matched != 1 {
		t.Errorf("expected the good sender to still match, got %+v", result)
	}
}

func TestReconcileBadRosterPhoneIsUnmatched(t *testing.T) {
	uc := newTestUseCase()

	roster := []entities.RosterMember{
		{ID: 1, Name: "Ahmed", RawPhone: "123"},
	}
	senders := []string{"212612345678"}

	result, err := uc.Reconcile(context.Background(), roster, "2026-08-28", senders, presenceMap{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Members[0].Kind != entities.Unmatched {
		t.Errorf("unnormalizable roster phone must be unmatched, got %s", result.Members[0].Kind)
	}
}

func TestReconcileReaderErrorAborts(t *testing.T) {
	uc := newTestUseCase()

	roster := []entities.RosterMember{{ID: 1, Name: "Ahmed", RawPhone: "0612345678"}}

	if _, err := uc.Reconcile(context.Background(), roster, "2026-08-28", nil, failingReader{}); err == nil {
		t.Fatal("expected reader error to abort reconciliation")
	}
}

func TestIndexMemoizationIsKeyedOnSenders(t *testing.T) {
	uc := newTestUseCase()

	first := uc.indexFor("2026-08-28", []string{"212612345678", "212698765432"})
	again := uc.indexFor("2026-08-28", []string{"212612345678", "212698765432"})
	if first != again {
		t.Error("identical date and senders must reuse the memoized index")
	}

	// Same date, different sender order still hits the memo.
	reordered := uc.indexFor("2026-08-28", []string{"212698765432", "212612345678"})
	if first != reordered {
		t.Error("sender order must not defeat memoization")
	}

	fresh := uc.indexFor("2026-08-28", []string{"212698765432"})
	if first == fresh {
		t.Error("new sender data must build a new index")
	}
}

func TestIndexMemoEvictsStaleDates(t *testing.T) {
	uc := newTestUseCase()
	senders := []string{"212612345678", "212698765432"}

	first := uc.indexFor("2026-08-27", senders)

	// A new date flushes the previous day's entries.
	uc.indexFor("2026-08-28", senders)
	if len(uc.indexes) != 1 {
		t.Fatalf("expected only the current date memoized, got %d entries", len(uc.indexes))
	}

	rebuilt := uc.indexFor("2026-08-27", senders)
	if first == rebuilt {
		t.Error("evicted date must rebuild its index")
	}
}

func TestIndexMemoIsCapped(t *testing.T) {
	uc := newTestUseCase()

	for i := 0; i < maxMemoEntries+5; i++ {
		uc.indexFor("2026-08-28", []string{fmt.Sprintf("2126%08d", i)})
	}

	if len(uc.indexes) > maxMemoEntries {
		t.Fatalf("memo must stay capped at %d entries, got %d", maxMemoEntries, len(uc.indexes))
	}
}
