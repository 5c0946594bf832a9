package frontier

import (
	"net/url"
	"strings"

	"github.com/nao1215/corpuscrawl/internal/model"
)

// DefaultHighPriorityKeywords match paths of the most valuable pages:
// FAQs, key dates, programs, admissions, fees and housing.
var DefaultHighPriorityKeywords = []string{
	"/faq", "/frequently-asked", "important-dates", "calendar",
	"/programs/", "/departments/",
	"admissions", "tuition", "fees", "scholarships",
	"housing", "residence", "dining", "meal",
}

// DefaultMediumPriorityKeywords match service and policy pages.
var DefaultMediumPriorityKeywords = []string{
	"student", "service", "career", "health", "wellness",
	"/catalog/", "accessibility", "international", "policy", "polic",
}

// Classifier assigns a tier to a URL from its path alone.
// The zero value classifies everything as TierLow.
type Classifier struct {
	high   []string
	medium []string
}

// NewClassifier creates a Classifier. A nil keyword list selects the
// corresponding default list; an empty non-nil list disables the tier.
func NewClassifier(high, medium []string) *Classifier {
	if high == nil {
		high = DefaultHighPriorityKeywords
	}
	if medium == nil {
		medium = DefaultMediumPriorityKeywords
	}
	return &Classifier{
		high:   lowerAll(high),
		medium: lowerAll(medium),
	}
}

// Classify returns the tier for rawURL. Unparseable URLs are TierLow.
func (c *Classifier) Classify(rawURL string) model.Tier {
	u, err := url.Parse(rawURL)
	if err != nil {
		return model.TierLow
	}
	return c.ClassifyPath(u.Path)
}

// ClassifyPath returns the tier for a URL path.
func (c *Classifier) ClassifyPath(p string) model.Tier {
	p = strings.ToLower(p)
	if containsAny(p, c.high) {
		return model.TierHigh
	}
	if containsAny(p, c.medium) {
		return model.TierMedium
	}
	return model.TierLow
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}
