package extractor

import (
	"strings"

	"github.com/nao1215/corpuscrawl/internal/dedup"
	"github.com/nao1215/corpuscrawl/internal/model"
)

// qualityPass counts visible words outside boilerplate, flags thin
// pages and fingerprints the text.
type qualityPass struct {
	minWords int
}

func (qualityPass) Name() string { return "quality" }

func (p qualityPass) Apply(page *Page, doc *model.Document) error {
	text := textOf(bodyOf(page.Root), true)
	doc.Text = text
	doc.WordCount = len(strings.Fields(text))
	doc.LowQuality = doc.WordCount < p.minWords
	if text != "" {
		doc.Fingerprint = dedup.Fingerprint(text)
	}
	return nil
}
