package business

import (
	"context"
	"hash/fnv"
	"sort"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/attendance/deps"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/attendance/entities"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/metrics"
	"github.com/HoceineEl/madrasa-messaging/internal/phone"
)

// UseCase reconciles a roster against the phone numbers observed as senders
// in the group chat. The suffix index tolerates cosmetic format differences
// between the roster and provider-observed numbers; it is built per request
// and never persisted.
type UseCase struct {
	normalizer *phone.Normalizer
	logger     zerolog.Logger
	metrics    *metrics.Metrics

	// indexes memoizes the sender index per date and sender set, so one
	// workflow invocation (a UI redraw loop hitting this endpoint with the
	// same inputs) does not rebuild the index per redraw. The fingerprint
	// in the key keeps fresh provider data from being masked by the memo.
	// Entries for other dates are evicted whenever a new index is built,
	// and the per-date entry count is capped, so the map stays bounded
	// over the process lifetime.
	memoMu   sync.Mutex
	memoDate string
	indexes  map[string]*phone.SuffixIndex
}

// maxMemoEntries bounds the same-date memo; distinct sender sets beyond the
// cap flush the map and start over.
const maxMemoEntries = 16

// NewUseCase creates a new attendance use case
func NewUseCase(normalizer *phone.Normalizer, logger zerolog.Logger, m *metrics.Metrics) *UseCase {
	return &UseCase{
		normalizer: normalizer,
		logger:     logger.With().Str("component", "attendance_usecase").Logger(),
		metrics:    m,
		indexes:    make(map[string]*phone.SuffixIndex),
	}
}

// Reconcile classifies every roster member for the date. Already-recorded
// presence is checked first and overrides phone matching.
func (u *UseCase) Reconcile(
	ctx context.Context,
	roster []entities.RosterMember,
	date string,
	senderPhones []string,
	reader deps.AttendanceReader,
) (*entities.Result, error) {
	index := u.indexFor(date, senderPhones)

	result := &entities.Result{
		Date:    date,
		Members: make([]entities.MemberResult, 0, len(roster)),
	}

	for _, member := range roster {
		classification := entities.MemberResult{Member: member, Kind: entities.Unmatched}

		present, err := reader.IsPresent(ctx, member.ID, date)
		if err != nil {
			return nil, err
		}

		switch {
		case present:
			classification.Kind = entities.AlreadyPresent
			result.AlreadyPresent++

		default:
			if canonical, nerr := u.normalizer.Normalize(member.RawPhone); nerr == nil {
				if matched, ok := index.Lookup(canonical); ok {
					classification.Kind = entities.AutoMatched
					classification.MatchedWith = matched
					result.Matched++
				}
			}
			if classification.Kind == entities.Unmatched {
				result.Unmatched++
			}
		}

		result.Members = append(result.Members, classification)
	}

	u.metrics.RecordReconciliation(result.Matched)
	u.logger.Info().
		Str("date", date).
		Int("roster", len(roster)).
		Int("matched", result.Matched).
		Int("already_present", result.AlreadyPresent).
		Int("unmatched", result.Unmatched).
		Msg("attendance reconciled")

	return result, nil
}

// indexFor returns the memoized sender index for the date and sender set,
// building it on first use. Sender numbers that fail normalization are
// dropped from the index.
func (u *UseCase) indexFor(date string, senderPhones []string) *phone.SuffixIndex {
	key := memoKey(date, senderPhones)

	u.memoMu.Lock()
	defer u.memoMu.Unlock()

	if idx, ok := u.indexes[key]; ok {
		return idx
	}

	if date != u.memoDate || len(u.indexes) >= maxMemoEntries {
		u.indexes = make(map[string]*phone.SuffixIndex)
		u.memoDate = date
	}

	canonical := make([]string, 0, len(senderPhones))
	for _, sender := range senderPhones {
		if c, err := u.normalizer.Normalize(sender); err == nil {
			canonical = append(canonical, c)
		} else {
			u.logger.Debug().Str("sender", sender).Msg("sender phone not normalizable, excluded from index")
		}
	}

	idx := phone.NewSuffixIndex(canonical)
	u.indexes[key] = idx
	return idx
}

func memoKey(date string, senderPhones []string) string {
	sorted := make([]string, len(senderPhones))
	copy(sorted, senderPhones)
	sort.Strings(sorted)

	h := fnv.New64a()
	for _, s := range sorted {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}
	return date + "|" + strconv.FormatUint(h.Sum64(), 16)
}
