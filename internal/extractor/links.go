package extractor

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/corpuscrawl/internal/frontier"
	"github.com/nao1215/corpuscrawl/internal/model"
)

// maxLinkText bounds the anchor text kept per link, in runes.
const maxLinkText = 100

var skippedLinkPrefixes = []string{"mailto:", "tel:", "javascript:", "data:", "#"}

// linkPass collects outbound links in canonical form. Links rejected by
// the filter, the page itself and repeats are dropped.
type linkPass struct {
	filter func(*url.URL) bool
}

func (p linkPass) Name() string { return "links" }

func (p linkPass) Apply(page *Page, doc *model.Document) error {
	self, _ := frontier.Canonicalize(page.URL)
	seen := map[string]bool{self: true}
	var links []model.Link

	page.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || hasSkippedPrefix(href) {
			return
		}
		ref, err := page.Base.Parse(href)
		if err != nil {
			return
		}
		if p.filter != nil && !p.filter(ref) {
			return
		}
		canonical, err := frontier.CanonicalizeURL(ref)
		if err != nil || seen[canonical] {
			return
		}
		seen[canonical] = true
		links = append(links, model.Link{URL: canonical, Text: truncateRunes(collapse(s.Text()), maxLinkText)})
	})

	doc.Links = links
	return nil
}

func hasSkippedPrefix(href string) bool {
	lower := strings.ToLower(href)
	for _, p := range skippedLinkPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
