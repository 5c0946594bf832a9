// Package crawler drives a crawl from seeds to a persisted corpus.
//
// The Scheduler is a single control loop that moves through the phases
// Idle, Seeding, Running and then either Draining or Suspended, ending in
// Terminated. It is the only component that mutates the crawl state:
//
//	Frontier.Pop -> robots check -> Fetch -> Extract -> quality gate
//	  -> duplicate check -> write artifact -> index -> enqueue links
//
// Every popped URL ends in exactly one model.Outcome and is marked visited,
// except when the run is interrupted mid-fetch: that entry is requeued with
// its original order key and the state is checkpointed before Run returns
// ErrInterrupted.
//
// # Usage
//
//	s := crawler.New(fetch, ex, writer, store,
//	    crawler.WithSeeds(cfg.Seeds),
//	    crawler.WithScope(scope),
//	    crawler.WithMaxPages(cfg.MaxPages),
//	)
//	result, err := s.Run(ctx)
package crawler
