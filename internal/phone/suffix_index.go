package phone

// SuffixWindow is the number of trailing digits used as the index key.
// Eight digits is long enough that two distinct numbers in one group chat
// sharing a suffix is practically impossible, while still tolerating
// cosmetic differences in country-code or trunk-prefix formatting.
const SuffixWindow = 8

// SuffixIndex maps a fixed trailing-digit window to the canonical numbers
// sharing that suffix. It is built fresh from one batch of observed sender
// numbers and discarded with the request; nothing here is persisted.
type SuffixIndex struct {
	buckets map[string][]string
}

// NewSuffixIndex builds an index over the given canonical phone numbers.
// Numbers shorter than the suffix window are indexed under their full value.
func NewSuffixIndex(canonical []string) *SuffixIndex {
	s := &SuffixIndex{buckets: make(map[string][]string, len(canonical))}
	for _, num := range canonical {
		if num == "" {
			continue
		}
		key := suffixOf(num)
		s.buckets[key] = append(s.buckets[key], num)
	}
	return s
}

// Lookup returns the canonical number matching the query, if any. The query
// must already be canonical. The suffix narrows the search to one bucket;
// full-number equality disambiguates the (typically single) candidates.
func (s *SuffixIndex) Lookup(canonical string) (string, bool) {
	if canonical == "" {
		return "", false
	}
	for _, candidate := range s.buckets[suffixOf(canonical)] {
		if candidate == canonical {
			return candidate, true
		}
	}
	return "", false
}

// Contains reports whether the query is present in the index.
func (s *SuffixIndex) Contains(canonical string) bool {
	_, ok := s.Lookup(canonical)
	return ok
}

// Len returns the number of distinct suffixes indexed.
func (s *SuffixIndex) Len() int {
	return len(s.buckets)
}

func suffixOf(num string) string {
	if len(num) <= SuffixWindow {
		return num
	}
	return num[len(num)-SuffixWindow:]
}
