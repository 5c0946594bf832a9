package dedup

import (
	"fmt"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "  Hello \n\t World  ", "hello world"},
		{"lowercases", "ADMISSIONS Office", "admissions office"},
		{"folds compatibility forms", "ﬁnancial aid", "financial aid"},
		{"empty", " \n ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	t.Run("stable", func(t *testing.T) {
		t.Parallel()

		text := "Tuition is due on September 1."
		if Fingerprint(text) != Fingerprint(text) {
			t.Error("fingerprint is not stable")
		}
		if len(Fingerprint(text)) != 64 {
			t.Errorf("fingerprint length = %d, want 64", len(Fingerprint(text)))
		}
	})

	t.Run("ignores whitespace and case", func(t *testing.T) {
		t.Parallel()

		a := Fingerprint("Welcome to  the\nCampus")
		b := Fingerprint("welcome to the campus ")
		if a != b {
			t.Error("whitespace/case variants should share a fingerprint")
		}
	})

	t.Run("distinct texts differ", func(t *testing.T) {
		t.Parallel()

		corpus := []string{
			"Admissions requirements for undergraduate programs.",
			"Admissions requirements for graduate programs.",
			"Residence fees for the fall term.",
			"Residence fees for the winter term.",
			"",
		}
		seen := make(map[string]string)
		for _, text := range corpus {
			fp := Fingerprint(text)
			if prev, ok := seen[fp]; ok {
				t.Errorf("collision between %q and %q", prev, text)
			}
			seen[fp] = text
		}
	})
}

func TestSet(t *testing.T) {
	t.Parallel()

	s := NewSet("b")
	if !s.IsDuplicate("b") {
		t.Error("preloaded fingerprint should be a duplicate")
	}
	if s.IsDuplicate("a") {
		t.Error("unknown fingerprint should not be a duplicate")
	}
	if !s.Record("a") {
		t.Error("first Record should return true")
	}
	if s.Record("a") {
		t.Error("second Record should return false")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if got := fmt.Sprint(s.Fingerprints()); got != "[a b]" {
		t.Errorf("Fingerprints() = %s", got)
	}
}
