package model

import (
	"fmt"
	"time"
)

// Tier is a coarse priority bucket assigned to a URL.
// Lower values are crawled first.
type Tier int

const (
	// TierHigh is assigned to paths matching the primary keyword set
	// (FAQ, admissions, programs, tuition, housing).
	TierHigh Tier = 1
	// TierMedium is assigned to paths matching the secondary keyword set
	// (services, policies, international).
	TierMedium Tier = 2
	// TierLow is assigned to everything else.
	TierLow Tier = 3
)

// Tiers lists every tier in pop order.
var Tiers = []Tier{TierHigh, TierMedium, TierLow}

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	case TierLow:
		return "low"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool {
	return t >= TierHigh && t <= TierLow
}

// Source records how a URL was discovered.
type Source string

const (
	// SourceSeed marks URLs from the configured seed list.
	SourceSeed Source = "seed"
	// SourceSitemap marks URLs read from a sitemap.
	SourceSitemap Source = "sitemap"
	// SourceLink marks URLs discovered as anchors on a crawled page.
	SourceLink Source = "link"
)

// URLEntry is a discovered crawl target waiting in the frontier.
//
// URL is always in canonical form. Seq is the frontier's insertion
// counter and breaks ties within a tier; it is persisted so a resumed
// frontier pops in the same order.
type URLEntry struct {
	URL        string    `json:"url"`
	Tier       Tier      `json:"tier"`
	Source     Source    `json:"source"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	Seq        uint64    `json:"seq"`
}
