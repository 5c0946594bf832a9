package state

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/corpuscrawl/internal/dedup"
	"github.com/nao1215/corpuscrawl/internal/frontier"
	"github.com/nao1215/corpuscrawl/internal/model"
)

// State is the mutable crawl state. It is safe for concurrent use.
type State struct {
	// Frontier is the work queue and visited set.
	Frontier *frontier.Frontier
	// Seen holds the fingerprints of persisted documents.
	Seen *dedup.Set

	mu     sync.Mutex
	runID  string
	stats  model.Stats
	failed map[string]struct{}
}

// New creates an empty State for a fresh run.
func New(now time.Time, opts ...frontier.Option) *State {
	return &State{
		Frontier: frontier.New(opts...),
		Seen:     dedup.NewSet(),
		runID:    uuid.NewString(),
		stats:    model.NewStats(now),
		failed:   make(map[string]struct{}),
	}
}

// FromSnapshot rebuilds a State from a checkpoint. The run ID and
// counters carry over.
func FromSnapshot(snap *Snapshot, opts ...frontier.Option) (*State, error) {
	f, err := frontier.Restore(snap.Frontier, snap.Visited, opts...)
	if err != nil {
		return nil, err
	}
	s := &State{
		Frontier: f,
		Seen:     dedup.NewSet(snap.Fingerprints...),
		runID:    snap.RunID,
		stats:    snap.Stats.Clone(),
		failed:   make(map[string]struct{}, len(snap.Failed)),
	}
	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	for _, u := range snap.Failed {
		s.failed[u] = struct{}{}
	}
	return s, nil
}

// RunID identifies the crawl across resumes.
func (s *State) RunID() string {
	return s.runID
}

// Enqueue pushes rawURL to the frontier and counts it as discovered
// when it was new.
func (s *State) Enqueue(rawURL string, tier model.Tier, source model.Source) bool {
	if !s.Frontier.Push(rawURL, tier, source) {
		return false
	}
	s.mu.Lock()
	s.stats.Discovered++
	if source == model.SourceLink {
		s.stats.LinksDiscovered++
	}
	s.mu.Unlock()
	return true
}

// Finish marks entry visited and records its outcome.
func (s *State) Finish(entry model.URLEntry, outcome model.Outcome) {
	s.Frontier.MarkVisited(entry.URL)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Record(outcome, entry.Tier)
	if outcome == model.OutcomeFailed {
		s.failed[entry.URL] = struct{}{}
	}
}

// AddFAQs adds n to the FAQ counter.
func (s *State) AddFAQs(n int) {
	s.mu.Lock()
	s.stats.FAQItems += n
	s.mu.Unlock()
}

// SetFinished records the end of the run.
func (s *State) SetFinished(t time.Time) {
	s.mu.Lock()
	s.stats.FinishedAt = t
	s.mu.Unlock()
}

// Stats returns a copy of the counters.
func (s *State) Stats() model.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.Clone()
}

// Failed returns the URLs that failed permanently, sorted.
func (s *State) Failed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.failed))
	for u := range s.failed {
		out = append(out, u)
	}
	slices.Sort(out)
	return out
}

// Snapshot captures the current state.
func (s *State) Snapshot(now time.Time) *Snapshot {
	return &Snapshot{
		SchemaVersion: SchemaVersion,
		RunID:         s.runID,
		SavedAt:       now,
		Visited:       s.Frontier.Visited(),
		Frontier:      s.Frontier.Entries(),
		Fingerprints:  s.Seen.Fingerprints(),
		Failed:        s.Failed(),
		Stats:         s.Stats(),
	}
}
