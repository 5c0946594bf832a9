package dedup

import (
	"slices"
	"sync"
)

// Set is the collection of fingerprints recorded during a crawl.
// It is safe for concurrent use.
type Set struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewSet creates a Set preloaded with fingerprints.
func NewSet(fingerprints ...string) *Set {
	s := &Set{seen: make(map[string]struct{}, len(fingerprints))}
	for _, fp := range fingerprints {
		s.seen[fp] = struct{}{}
	}
	return s
}

// IsDuplicate reports whether fp was recorded before.
func (s *Set) IsDuplicate(fp string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[fp]
	return ok
}

// Record adds fp. It returns false if fp was already present.
func (s *Set) Record(fp string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[fp]; ok {
		return false
	}
	s.seen[fp] = struct{}{}
	return true
}

// Len returns the number of recorded fingerprints.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Fingerprints returns the recorded fingerprints in sorted order.
func (s *Set) Fingerprints() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.seen))
	for fp := range s.seen {
		out = append(out, fp)
	}
	slices.Sort(out)
	return out
}
