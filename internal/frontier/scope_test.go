package frontier

import "testing"

func TestScope_AllowsString(t *testing.T) {
	t.Parallel()

	s := NewScope([]string{"example.edu", "union.ca"})

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"exact host", "https://example.edu/faq", true},
		{"subdomain", "https://www.example.edu/faq", true},
		{"second host", "https://union.ca/", true},
		{"second host subdomain", "https://events.union.ca/x", true},
		{"foreign host", "https://example.com/faq", false},
		{"suffix without dot", "https://notexample.edu/faq", false},
		{"pdf excluded", "https://example.edu/guide.PDF", false},
		{"image excluded", "https://example.edu/logo.png", false},
		{"login excluded", "https://example.edu/user/login", false},
		{"admin excluded", "https://example.edu/admin/settings", false},
		{"mailto rejected", "mailto:info@example.edu", false},
		{"ftp rejected", "ftp://example.edu/file", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := s.AllowsString(tt.url); got != tt.want {
				t.Errorf("AllowsString(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestScope_EmptyHostsAdmitsAny(t *testing.T) {
	t.Parallel()

	s := NewScope(nil, WithExcludedExtensions([]string{".zip"}), WithExcludedPaths(nil))
	if !s.AllowsString("https://anything.example/login") {
		t.Error("expected any host and path to be allowed")
	}
	if s.AllowsString("https://anything.example/a.zip") {
		t.Error("expected custom extension to be excluded")
	}
}
