package extractor

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultCategory is assigned when no rule or heading applies.
const DefaultCategory = "General"

// maxKeywords is the number of keywords kept per FAQ.
const maxKeywords = 10

type categoryRule struct {
	name  string
	words []string
}

// categoryRules are checked in order; the first rule with a word in the
// question or answer wins.
var categoryRules = []categoryRule{
	{"Admissions", []string{"admission", "apply", "application", "offer", "enrol"}},
	{"Tuition & Fees", []string{"tuition", "fee", "osap", "financial", "scholarship", "bursar", "loan", "grant"}},
	{"Academics", []string{"grade", "course", "registration", "academic", "exam", "program"}},
	{"Graduation", []string{"graduation", "convocation", "diploma", "transcript"}},
	{"Important Dates", []string{"deadline", "calendar", "semester", "term date"}},
	{"Housing", []string{"residence", "housing", "dorm", "accommodation"}},
	{"Student Services", []string{"counsel", "wellness", "accessibility", "library", "career"}},
}

var stopwords = map[string]bool{
	"the": true, "and": true, "but": true, "for": true, "with": true,
	"are": true, "was": true, "were": true, "been": true, "have": true,
	"has": true, "had": true, "does": true, "did": true, "will": true,
	"would": true, "should": true, "could": true, "can": true, "may": true,
	"might": true, "must": true, "this": true, "that": true, "these": true,
	"those": true, "you": true, "she": true, "they": true, "what": true,
	"when": true, "where": true, "why": true, "how": true, "your": true,
	"our": true, "from": true, "not": true, "any": true, "all": true,
	"there": true, "their": true, "which": true, "who": true, "into": true,
}

var wordPattern = regexp.MustCompile(`[a-z]{3,}`)

// categorize returns the first matching keyword category, then the
// enclosing heading, then DefaultCategory.
func categorize(question, answer, heading string) string {
	text := strings.ToLower(question + " " + answer)
	for _, rule := range categoryRules {
		for _, w := range rule.words {
			if strings.Contains(text, w) {
				return rule.name
			}
		}
	}
	if heading = strings.TrimSpace(heading); heading != "" {
		if heading == strings.ToUpper(heading) || heading == strings.ToLower(heading) {
			return cases.Title(language.English).String(strings.ToLower(heading))
		}
		return heading
	}
	return DefaultCategory
}

// keywords returns up to maxKeywords non-stopword terms from question
// and answer, most frequent first, ties in first-seen order.
func keywords(question, answer string) []string {
	words := wordPattern.FindAllString(strings.ToLower(question+" "+answer), -1)
	count := make(map[string]int)
	var order []string
	for _, w := range words {
		if stopwords[w] {
			continue
		}
		if count[w] == 0 {
			order = append(order, w)
		}
		count[w]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return count[order[i]] > count[order[j]]
	})
	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}
