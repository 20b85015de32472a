package entities

// RosterMember is one roster entry from the surrounding application
type RosterMember struct {
	ID       uint
	Name     string
	RawPhone string
}

// MatchKind classifies one roster member in a reconciliation result
type MatchKind string

const (
	// AlreadyPresent means an attendance record for the date already marks
	// the member present; it overrides phone matching
	AlreadyPresent MatchKind = "already_present"
	// AutoMatched means the member's phone matched an observed sender
	AutoMatched MatchKind = "auto_matched"
	// Unmatched means neither applies
	Unmatched MatchKind = "unmatched"
)

// MemberResult is the classification of one roster member
type MemberResult struct {
	Member      RosterMember
	Kind        MatchKind
	MatchedWith string // canonical sender phone, set only on AutoMatched
}

// Result is the outcome of one reconciliation pass
type Result struct {
	Date           string
	Members        []MemberResult
	Matched        int
	AlreadyPresent int
	Unmatched      int
}
