package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/corpuscrawl/internal/model"
)

// UntitledPage is used when a page has neither a title nor an h1.
const UntitledPage = "Untitled"

type titlePass struct{}

func (titlePass) Name() string { return "title" }

func (titlePass) Apply(page *Page, doc *model.Document) error {
	title := collapse(page.Doc.Find("title").First().Text())
	if title == "" {
		title = collapse(page.Doc.Find("h1").First().Text())
	}
	if title == "" {
		title = UntitledPage
	}
	doc.Title = title
	doc.Description = description(page.Doc)
	return nil
}

func description(d *goquery.Document) string {
	var desc string
	d.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if name, _ := s.Attr("name"); strings.EqualFold(name, "description") {
			desc, _ = s.Attr("content")
			return false
		}
		return true
	})
	if desc = collapse(desc); desc != "" {
		return desc
	}
	og, _ := d.Find(`meta[property="og:description"]`).First().Attr("content")
	return collapse(og)
}
