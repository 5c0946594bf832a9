package frontier

import (
	"container/heap"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nao1215/corpuscrawl/internal/model"
)

// Frontier is a priority queue of canonical URLs with visited bookkeeping.
// It is safe for concurrent use.
type Frontier struct {
	mu      sync.Mutex
	queue   entryHeap
	queued  map[string]struct{}
	visited map[string]struct{}
	seq     uint64
	now     func() time.Time
}

// Option configures a Frontier.
type Option func(*Frontier)

// WithClock sets the clock used for enqueue timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *Frontier) {
		f.now = now
	}
}

// New creates an empty Frontier.
func New(opts ...Option) *Frontier {
	f := &Frontier{
		queued:  make(map[string]struct{}),
		visited: make(map[string]struct{}),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Restore rebuilds a Frontier from persisted entries and visited URLs.
// Entries keep their sequence numbers, so the restored frontier pops in
// the same order as the one that was saved. Entries already visited or
// duplicated are dropped.
func Restore(entries []model.URLEntry, visited []string, opts ...Option) (*Frontier, error) {
	f := New(opts...)
	for _, v := range visited {
		f.visited[v] = struct{}{}
	}
	for _, e := range entries {
		canonical, err := Canonicalize(e.URL)
		if err != nil || canonical != e.URL {
			return nil, fmt.Errorf("%w: url %q", ErrInvalidEntry, e.URL)
		}
		if !e.Tier.Valid() {
			return nil, fmt.Errorf("%w: tier %d for %q", ErrInvalidEntry, e.Tier, e.URL)
		}
		if f.contains(e.URL) {
			continue
		}
		entry := e
		heap.Push(&f.queue, &entry)
		f.queued[e.URL] = struct{}{}
		if e.Seq >= f.seq {
			f.seq = e.Seq + 1
		}
	}
	return f, nil
}

// Push canonicalizes rawURL and enqueues it at tier. It returns false
// when the URL is invalid, already queued, or already visited; none of
// these is an error. An existing entry keeps its original tier.
func (f *Frontier) Push(rawURL string, tier model.Tier, source model.Source) bool {
	canonical, err := Canonicalize(rawURL)
	if err != nil {
		return false
	}
	if !tier.Valid() {
		tier = model.TierLow
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.contains(canonical) {
		return false
	}
	heap.Push(&f.queue, &model.URLEntry{
		URL:        canonical,
		Tier:       tier,
		Source:     source,
		EnqueuedAt: f.now(),
		Seq:        f.seq,
	})
	f.seq++
	f.queued[canonical] = struct{}{}
	return true
}

// Requeue puts a previously popped entry back with its original order
// key. It is used when processing of the entry was abandoned.
func (f *Frontier) Requeue(e model.URLEntry) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.contains(e.URL) {
		return false
	}
	entry := e
	heap.Push(&f.queue, &entry)
	f.queued[e.URL] = struct{}{}
	return true
}

// Pop removes and returns the entry with the lowest tier, earliest first
// within a tier. The second result is false when the frontier is empty.
func (f *Frontier) Pop() (model.URLEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for f.queue.Len() > 0 {
		e, _ := heap.Pop(&f.queue).(*model.URLEntry)
		delete(f.queued, e.URL)
		if _, done := f.visited[e.URL]; done {
			continue
		}
		return *e, true
	}
	return model.URLEntry{}, false
}

// IsEmpty reports whether no entries are queued.
func (f *Frontier) IsEmpty() bool {
	return f.Len() == 0
}

// Len returns the number of queued entries.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len()
}

// MarkVisited records a canonical URL as visited.
func (f *Frontier) MarkVisited(canonicalURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visited[canonicalURL] = struct{}{}
}

// IsVisited reports whether a canonical URL was marked visited.
func (f *Frontier) IsVisited(canonicalURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.visited[canonicalURL]
	return ok
}

// VisitedCount returns the number of visited URLs.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}

// Entries returns a copy of the queued entries in pop order.
func (f *Frontier) Entries() []model.URLEntry {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.URLEntry, 0, f.queue.Len())
	for _, e := range f.queue {
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b model.URLEntry) int {
		if less(&a, &b) {
			return -1
		}
		if less(&b, &a) {
			return 1
		}
		return 0
	})
	return out
}

// Visited returns the visited URLs in sorted order.
func (f *Frontier) Visited() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.visited))
	for u := range f.visited {
		out = append(out, u)
	}
	slices.Sort(out)
	return out
}

func (f *Frontier) contains(canonical string) bool {
	if _, ok := f.visited[canonical]; ok {
		return true
	}
	_, ok := f.queued[canonical]
	return ok
}

// entryHeap implements heap.Interface ordered by (tier, seq).
type entryHeap []*model.URLEntry

func less(a, b *model.URLEntry) bool {
	if a.Tier != b.Tier {
		return a.Tier < b.Tier
	}
	return a.Seq < b.Seq
}

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return less(h[i], h[j]) }
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	e, _ := x.(*model.URLEntry)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
