package phone

import (
	"errors"
	"testing"
)

func TestNormalizer_Normalize(t *testing.T) {
	n := DefaultNormalizer()

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "trunk prefixed", raw: "0612345678", want: "212612345678"},
		{name: "bare nsn", raw: "612345678", want: "212612345678"},
		{name: "already canonical", raw: "212612345678", want: "212612345678"},
		{name: "plus and spaces", raw: "+212 612-345-678", want: "212612345678"},
		{name: "seven prefix", raw: "0712345678", want: "212712345678"},
		{name: "too short", raw: "123", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "letters only", raw: "abc", wantErr: true},
		{name: "landline prefix", raw: "0512345678", wantErr: true},
		{name: "wrong country code", raw: "33612345678", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrUnnormalizable) {
					t.Fatalf("Normalize(%q) error = %v, want ErrUnnormalizable", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizer_Idempotent(t *testing.T) {
	n := DefaultNormalizer()

	for _, raw := range []string{"0612345678", "612345678", "212612345678", "+212612345678"} {
		first, err := n.Normalize(raw)
		if err != nil {
			t.Fatalf("Normalize(%q) unexpected error: %v", raw, err)
		}
		second, err := n.Normalize(first)
		if err != nil {
			t.Fatalf("Normalize(Normalize(%q)) unexpected error: %v", raw, err)
		}
		if second != first {
			t.Fatalf("normalization not idempotent for %q: %q != %q", raw, second, first)
		}
	}
}

func TestSuffixIndex_Lookup(t *testing.T) {
	idx := NewSuffixIndex([]string{"212612345678", "212698765432"})

	if got, ok := idx.Lookup("212612345678"); !ok || got != "212612345678" {
		t.Fatalf("Lookup(212612345678) = %q, %v; want exact match", got, ok)
	}

	if _, ok := idx.Lookup("212600000000"); ok {
		t.Fatal("Lookup(212600000000) matched, want no match")
	}

	if idx.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", idx.Len())
	}
}

func TestSuffixIndex_CollisionDisambiguation(t *testing.T) {
	// Same 8-digit suffix, different country codes: the bucket holds both
	// and equality on the full number picks the right one.
	a := "21261234567"
	b := "33161234567"
	idx := NewSuffixIndex([]string{a, b})

	if got, ok := idx.Lookup(a); !ok || got != a {
		t.Fatalf("Lookup(%q) = %q, %v; want %q", a, got, ok, a)
	}
	if got, ok := idx.Lookup(b); !ok || got != b {
		t.Fatalf("Lookup(%q) = %q, %v; want %q", b, got, ok, b)
	}
}

func TestSuffixIndex_Empty(t *testing.T) {
	idx := NewSuffixIndex(nil)
	if idx.Contains("212612345678") {
		t.Fatal("empty index matched a number")
	}
}
