package dto

import "github.com/HoceineEl/madrasa-messaging/internal/domain/attendance/entities"

// RosterEntry is one roster member in a reconciliation request. Present
// reflects the collaborator's existing attendance records for the date.
type RosterEntry struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Present bool   `json:"present"`
}

// ReconcileRequest asks to classify a roster against observed chat senders
type ReconcileRequest struct {
	Date         string        `json:"date"`
	Roster       []RosterEntry `json:"roster"`
	SenderPhones []string      `json:"sender_phones"`
}

// MemberResult is the classification of one roster member
type MemberResult struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	MatchedWith string `json:"matched_with,omitempty"`
}

// ReconcileResponse is the reconciliation outcome
type ReconcileResponse struct {
	Date           string         `json:"date"`
	Members        []MemberResult `json:"members"`
	Matched        int            `json:"matched"`
	AlreadyPresent int            `json:"already_present"`
	Unmatched      int            `json:"unmatched"`
}

// FromResult converts a domain result to the response shape
func FromResult(r *entities.Result) ReconcileResponse {
	resp := ReconcileResponse{
		Date:           r.Date,
		Members:        make([]MemberResult, len(r.Members)),
		Matched:        r.Matched,
		AlreadyPresent: r.AlreadyPresent,
		Unmatched:      r.Unmatched,
	}
	for i, m := range r.Members {
		resp.Members[i] = MemberResult{
			ID:          m.Member.ID,
			Name:        m.Member.Name,
			Kind:        string(m.Kind),
			MatchedWith: m.MatchedWith,
		}
	}
	return resp
}

// ErrorResponse generic error response
type ErrorResponse struct {
	Error string `json:"error"`
}
