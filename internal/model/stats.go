package model

import "time"

// Outcome classifies how the processing of one popped URL ended.
type Outcome string

const (
	OutcomeScraped    Outcome = "scraped"
	OutcomeFailed     Outcome = "failed"
	OutcomeLowQuality Outcome = "low_quality"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeNotHTML    Outcome = "not_html"
	OutcomeDisallowed Outcome = "disallowed"
)

// Stats holds the running counters of a crawl. It is persisted in every
// checkpoint and carried across resumed runs.
type Stats struct {
	Scraped         int          `json:"pages_scraped"`
	LowQuality      int          `json:"skipped_low_quality"`
	Duplicate       int          `json:"skipped_duplicate"`
	NotHTML         int          `json:"skipped_not_html"`
	Disallowed      int          `json:"skipped_disallowed"`
	Failed          int          `json:"failed"`
	FAQItems        int          `json:"faq_items_found"`
	LinksDiscovered int          `json:"links_discovered"`
	Discovered      int          `json:"discovered"`
	ByTier          map[Tier]int `json:"by_priority"`
	StartedAt       time.Time    `json:"start_time"`
	FinishedAt      time.Time    `json:"end_time,omitzero"`
}

// NewStats returns zeroed counters with the start time set.
func NewStats(now time.Time) Stats {
	return Stats{
		ByTier:    map[Tier]int{TierHigh: 0, TierMedium: 0, TierLow: 0},
		StartedAt: now,
	}
}

// Skipped returns the total of every skip classification.
func (s Stats) Skipped() int {
	return s.LowQuality + s.Duplicate + s.NotHTML + s.Disallowed
}

// Record increments the counter for outcome. For OutcomeScraped the
// per-tier counter is incremented too.
func (s *Stats) Record(outcome Outcome, tier Tier) {
	switch outcome {
	case OutcomeScraped:
		s.Scraped++
		if s.ByTier == nil {
			s.ByTier = make(map[Tier]int)
		}
		s.ByTier[tier]++
	case OutcomeFailed:
		s.Failed++
	case OutcomeLowQuality:
		s.LowQuality++
	case OutcomeDuplicate:
		s.Duplicate++
	case OutcomeNotHTML:
		s.NotHTML++
	case OutcomeDisallowed:
		s.Disallowed++
	}
}

// Clone returns a deep copy.
func (s Stats) Clone() Stats {
	out := s
	out.ByTier = make(map[Tier]int, len(s.ByTier))
	for k, v := range s.ByTier {
		out.ByTier[k] = v
	}
	return out
}
