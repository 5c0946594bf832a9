package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/nao1215/corpuscrawl/internal/extractor"
	"github.com/nao1215/corpuscrawl/internal/fetcher"
	"github.com/nao1215/corpuscrawl/internal/frontier"
	"github.com/nao1215/corpuscrawl/internal/metrics"
	"github.com/nao1215/corpuscrawl/internal/model"
	"github.com/nao1215/corpuscrawl/internal/report"
	"github.com/nao1215/corpuscrawl/internal/state"
)

// PageFetcher retrieves HTML pages. *fetcher.Fetcher implements it.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.Response, error)
}

// RobotsPolicy answers robots.txt questions. *fetcher.Robots implements it.
type RobotsPolicy interface {
	Allowed(ctx context.Context, rawURL string) bool
	Sitemaps(ctx context.Context, rawURL string) []string
}

// SitemapSource expands sitemap URLs into page URLs.
// *fetcher.SitemapReader implements it.
type SitemapSource interface {
	Read(ctx context.Context, sitemapURLs []string) ([]string, error)
}

// DocumentIndex records persisted documents. *database.CrawlDB implements it.
type DocumentIndex interface {
	RecordDocument(ctx context.Context, doc *model.Document, tier model.Tier, path string) error
}

// Result summarizes a finished or interrupted run.
type Result struct {
	RunID string
	// Stats are the cumulative counters, including resumed runs.
	Stats model.Stats
	// Pending is the frontier length at the end of the run.
	Pending int
	// Persisted counts documents written during this run only.
	Persisted int
	// Failed lists URLs that failed permanently.
	Failed      []string
	Interrupted bool
}

// Scheduler owns the crawl state and runs the crawl loop.
type Scheduler struct {
	fetcher   PageFetcher
	extractor *extractor.Extractor
	writer    report.Writer
	store     state.Store

	robots      RobotsPolicy
	sitemaps    SitemapSource
	sitemapURLs []string
	seeds       []string
	classifier  *frontier.Classifier
	scope       *frontier.Scope
	index       DocumentIndex
	metrics     *metrics.Collector

	maxPages        int
	checkpointEvery int
	resume          bool

	logger *slog.Logger
	now    func() time.Time

	phase     atomic.Int32
	state     *state.State
	persisted int
	processed int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSeeds sets the seed URLs.
func WithSeeds(seeds []string) Option {
	return func(s *Scheduler) {
		s.seeds = seeds
	}
}

// WithSitemaps enables sitemap discovery. urls are read at startup
// together with the Sitemap directives of each seed host's robots.txt.
func WithSitemaps(source SitemapSource, urls []string) Option {
	return func(s *Scheduler) {
		s.sitemaps = source
		s.sitemapURLs = urls
	}
}

// WithRobots makes the scheduler skip URLs disallowed by robots.txt.
func WithRobots(r RobotsPolicy) Option {
	return func(s *Scheduler) {
		s.robots = r
	}
}

// WithClassifier sets the tier classifier.
func WithClassifier(c *frontier.Classifier) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithScope restricts enqueued URLs. Without a scope every http(s) URL is
// accepted.
func WithScope(scope *frontier.Scope) Option {
	return func(s *Scheduler) {
		s.scope = scope
	}
}

// WithIndex records every persisted document in idx.
func WithIndex(idx DocumentIndex) Option {
	return func(s *Scheduler) {
		s.index = idx
	}
}

// WithMetrics reports progress to m.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// WithMaxPages stops the crawl after n documents are persisted in this
// run. Zero means unlimited.
func WithMaxPages(n int) Option {
	return func(s *Scheduler) {
		if n >= 0 {
			s.maxPages = n
		}
	}
}

// WithCheckpointEvery checkpoints after every n processed URLs.
func WithCheckpointEvery(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.checkpointEvery = n
		}
	}
}

// WithResume loads the stored checkpoint instead of discarding it.
func WithResume(resume bool) Option {
	return func(s *Scheduler) {
		s.resume = resume
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source for enqueue and checkpoint timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Scheduler. store holds the checkpoint.
func New(f PageFetcher, ex *extractor.Extractor, w report.Writer, store state.Store, opts ...Option) *Scheduler {
	s := &Scheduler{
		fetcher:         f,
		extractor:       ex,
		writer:          w,
		store:           store,
		classifier:      frontier.NewClassifier(nil, nil),
		checkpointEvery: 50,
		logger:          slog.Default(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Phase returns the current lifecycle phase.
func (s *Scheduler) Phase() Phase {
	return Phase(s.phase.Load())
}

func (s *Scheduler) setPhase(p Phase) {
	s.phase.Store(int32(p))
	s.logger.Debug("crawl phase", "phase", p.String())
}

// Run executes one crawl. It returns when the frontier is empty, the page
// budget is spent, a checkpoint fails, or ctx is cancelled. Cancellation
// returns ErrInterrupted after the state has been checkpointed.
func (s *Scheduler) Run(ctx context.Context) (*Result, error) {
	if s.Phase() != PhaseIdle {
		return nil, errors.New("scheduler already ran")
	}

	s.setPhase(PhaseSeeding)
	if err := s.seed(ctx); err != nil {
		if s.state != nil && ctx.Err() != nil {
			return s.suspend(ctx)
		}
		s.setPhase(PhaseTerminated)
		return nil, err
	}

	s.setPhase(PhaseRunning)
	for !s.budgetSpent() {
		entry, ok := s.state.Frontier.Pop()
		if !ok {
			break
		}
		if ctx.Err() != nil {
			s.state.Frontier.Requeue(entry)
			return s.suspend(ctx)
		}
		if s.state.Frontier.IsVisited(entry.URL) {
			continue
		}

		outcome, err := s.process(ctx, entry)
		if err != nil {
			s.state.Frontier.Requeue(entry)
			return s.suspend(ctx)
		}
		s.finish(entry, outcome)

		s.processed++
		if s.processed%s.checkpointEvery == 0 {
			if err := s.checkpoint(ctx); err != nil {
				s.setPhase(PhaseTerminated)
				return s.result(false), err
			}
		}
	}

	return s.drain(ctx)
}

func (s *Scheduler) budgetSpent() bool {
	return s.maxPages > 0 && s.persisted >= s.maxPages
}

// seed prepares the state and fills the frontier from sitemaps and seeds.
func (s *Scheduler) seed(ctx context.Context) error {
	st, err := s.loadState(ctx)
	if err != nil {
		return err
	}
	s.state = st

	if s.sitemaps != nil {
		urls := append([]string(nil), s.sitemapURLs...)
		if s.robots != nil {
			for _, origin := range origins(s.seeds) {
				urls = append(urls, s.robots.Sitemaps(ctx, origin)...)
			}
		}
		if len(urls) > 0 {
			pages, err := s.sitemaps.Read(ctx, urls)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Warn("sitemap discovery failed", "error", err)
			}
			added := 0
			for _, p := range pages {
				if s.enqueue(p, model.SourceSitemap) {
					added++
				}
			}
			s.logger.Info("sitemap discovery finished", "sitemaps", len(urls), "enqueued", added)
		}
	}

	for _, seed := range s.seeds {
		s.enqueue(seed, model.SourceSeed)
	}
	s.metrics.SetFrontierSize(s.state.Frontier.Len())
	s.logger.Info("crawl seeded",
		"run_id", s.state.RunID(),
		"frontier", s.state.Frontier.Len(),
		"visited", s.state.Frontier.VisitedCount(),
	)
	return nil
}

func (s *Scheduler) loadState(ctx context.Context) (*state.State, error) {
	opts := []frontier.Option{frontier.WithClock(s.now)}

	if !s.resume {
		if err := s.store.Clear(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCheckpoint, err)
		}
		return state.New(s.now(), opts...), nil
	}

	snap, err := s.store.Load(ctx)
	if errors.Is(err, state.ErrNoCheckpoint) {
		s.logger.Warn("no checkpoint to resume, starting a new crawl")
		return state.New(s.now(), opts...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCheckpoint, err)
	}
	st, err := state.FromSnapshot(snap, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCheckpoint, err)
	}
	s.logger.Info("resuming crawl",
		"run_id", st.RunID(),
		"saved_at", snap.SavedAt,
		"frontier", len(snap.Frontier),
		"visited", len(snap.Visited),
	)
	return st, nil
}

// enqueue pushes an in-scope URL at its classified tier.
func (s *Scheduler) enqueue(rawURL string, source model.Source) bool {
	if s.scope != nil && !s.scope.AllowsString(rawURL) {
		return false
	}
	return s.state.Enqueue(rawURL, s.classifier.Classify(rawURL), source)
}

// process handles one popped entry. A non-nil error means ctx was
// cancelled and the entry produced no outcome.
func (s *Scheduler) process(ctx context.Context, entry model.URLEntry) (model.Outcome, error) {
	logger := s.logger.With("url", entry.URL, "tier", entry.Tier.String())

	if s.robots != nil && !s.robots.Allowed(ctx, entry.URL) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		logger.Debug("disallowed by robots.txt")
		return model.OutcomeDisallowed, nil
	}

	resp, err := s.fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if kind, ok := fetcher.KindOf(err); ok && kind == fetcher.FailureNotHTML {
			logger.Debug("skipping non-HTML content", "error", err)
			return model.OutcomeNotHTML, nil
		}
		logger.Warn("fetch failed", "error", err)
		return model.OutcomeFailed, nil
	}

	doc := s.extractor.ExtractInput(extractor.Input{
		URL:         entry.URL,
		BaseURL:     resp.FinalURL,
		ContentType: resp.ContentType,
		Body:        resp.Body,
	})
	if doc.LowQuality {
		logger.Debug("skipping low-quality page", "words", doc.WordCount)
		return model.OutcomeLowQuality, nil
	}
	if s.state.Seen.IsDuplicate(doc.Fingerprint) {
		logger.Debug("skipping duplicate content", "fingerprint", doc.Fingerprint)
		return model.OutcomeDuplicate, nil
	}

	path, err := s.writer.Write(doc)
	if err != nil {
		logger.Error("failed to write document", "error", err)
		return model.OutcomeFailed, nil
	}
	if s.index != nil {
		if err := s.index.RecordDocument(ctx, doc, entry.Tier, path); err != nil {
			logger.Warn("failed to index document", "error", err)
		}
	}
	s.state.Seen.Record(doc.Fingerprint)
	s.state.AddFAQs(len(doc.FAQs))
	s.metrics.AddFAQItems(len(doc.FAQs))

	added := 0
	for _, l := range doc.Links {
		if s.enqueue(l.URL, model.SourceLink) {
			added++
		}
	}
	s.persisted++
	logger.Info("page scraped",
		"path", path,
		"faqs", len(doc.FAQs),
		"words", doc.WordCount,
		"new_links", added,
	)
	return model.OutcomeScraped, nil
}

func (s *Scheduler) finish(entry model.URLEntry, outcome model.Outcome) {
	s.state.Finish(entry, outcome)
	s.metrics.Page(outcome)
	s.metrics.SetFrontierSize(s.state.Frontier.Len())
}

func (s *Scheduler) checkpoint(ctx context.Context) error {
	if err := s.store.Save(ctx, s.state.Snapshot(s.now())); err != nil {
		return fmt.Errorf("%w: %w", ErrCheckpoint, err)
	}
	s.logger.Debug("checkpoint saved",
		"processed", s.processed,
		"frontier", s.state.Frontier.Len(),
	)
	return nil
}

func (s *Scheduler) drain(ctx context.Context) (*Result, error) {
	s.setPhase(PhaseDraining)
	s.state.SetFinished(s.now())
	err := s.checkpoint(ctx)
	s.setPhase(PhaseTerminated)
	return s.result(false), err
}

// suspend checkpoints after an interrupt. The store write ignores the
// cancelled context so the state is not lost.
func (s *Scheduler) suspend(ctx context.Context) (*Result, error) {
	s.setPhase(PhaseSuspended)
	s.logger.Warn("crawl interrupted, saving checkpoint", "frontier", s.state.Frontier.Len())
	err := s.checkpoint(context.WithoutCancel(ctx))
	s.setPhase(PhaseTerminated)
	if err != nil {
		return s.result(true), err
	}
	return s.result(true), fmt.Errorf("%w: %w", ErrInterrupted, context.Cause(ctx))
}

func (s *Scheduler) result(interrupted bool) *Result {
	return &Result{
		RunID:       s.state.RunID(),
		Stats:       s.state.Stats(),
		Pending:     s.state.Frontier.Len(),
		Persisted:   s.persisted,
		Failed:      s.state.Failed(),
		Interrupted: interrupted,
	}
}

// origins returns the distinct scheme://host roots of urls.
func origins(urls []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		o := u.Scheme + "://" + u.Host + "/"
		if !seen[o] {
			seen[o] = true
			out = append(out, o)
		}
	}
	return out
}
