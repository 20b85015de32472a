package phone

import (
	"errors"
	"strings"
)

// ErrUnnormalizable is returned when a raw phone string cannot be brought
// into canonical international form.
var ErrUnnormalizable = errors.New("phone number cannot be normalized")

// Normalizer converts raw phone strings into canonical international form
// for one country. The canonical form is the country code followed by the
// national significant number, digits only, no plus sign.
type Normalizer struct {
	countryCode    string
	mobilePrefixes []byte
	nsnLength      int
}

// NewNormalizer creates a normalizer for the given country code (e.g. "212"),
// the set of leading digits valid for mobile numbers (e.g. '6', '7') and the
// length of the national significant number (e.g. 9).
func NewNormalizer(countryCode string, mobilePrefixes []byte, nsnLength int) *Normalizer {
	return &Normalizer{
		countryCode:    countryCode,
		mobilePrefixes: mobilePrefixes,
		nsnLength:      nsnLength,
	}
}

// DefaultNormalizer returns the normalizer for Moroccan mobile numbers.
func DefaultNormalizer() *Normalizer {
	return NewNormalizer("212", []byte{'6', '7'}, 9)
}

// Normalize strips formatting and converts raw into canonical form.
// Accepted inputs, for country code 212 and NSN length 9:
//
//	612345678    -> 212612345678  (bare NSN with a mobile prefix)
//	0612345678   -> 212612345678  (trunk-prefixed NSN)
//	212612345678 -> 212612345678  (already canonical)
//
// Anything else fails with ErrUnnormalizable.
func (n *Normalizer) Normalize(raw string) (string, error) {
	digits := stripNonDigits(raw)
	if digits == "" {
		return "", ErrUnnormalizable
	}

	switch {
	case len(digits) == n.nsnLength && n.isMobilePrefix(digits[0]):
		return n.countryCode + digits, nil

	case len(digits) == n.nsnLength+1 && digits[0] == '0' && n.isMobilePrefix(digits[1]):
		return n.countryCode + digits[1:], nil

	case len(digits) == len(n.countryCode)+n.nsnLength && strings.HasPrefix(digits, n.countryCode):
		return digits, nil
	}

	return "", ErrUnnormalizable
}

func (n *Normalizer) isMobilePrefix(c byte) bool {
	for _, p := range n.mobilePrefixes {
		if c == p {
			return true
		}
	}
	return false
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
