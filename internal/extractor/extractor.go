package extractor

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/nao1215/corpuscrawl/internal/model"
)

// DefaultMinWords is the visible word count below which a page is low quality.
const DefaultMinWords = 50

// Input is one fetched page.
type Input struct {
	// URL is the address the page was requested from.
	URL string
	// BaseURL is used to resolve relative links. Defaults to URL.
	BaseURL string
	// ContentType is the response Content-Type, used to pick a charset.
	ContentType string
	// Body is the raw response body.
	Body []byte
}

// Page is the immutable parsed input shared by all passes.
type Page struct {
	// URL is the source URL.
	URL string
	// Base resolves relative references (honoring <base href>).
	Base *url.URL
	// Root is the document node.
	Root *html.Node
	// Main is the main content region.
	Main *html.Node
	// Doc wraps Root for selector queries.
	Doc *goquery.Document
}

// Extractor runs the extraction passes.
type Extractor struct {
	minWords   int
	linkFilter func(*url.URL) bool
	logger     *slog.Logger
	now        func() time.Time
	passes     []Pass
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMinWords sets the quality threshold.
func WithMinWords(n int) Option {
	return func(e *Extractor) {
		if n >= 0 {
			e.minWords = n
		}
	}
}

// WithLinkFilter restricts discovered links to URLs accepted by fn.
func WithLinkFilter(fn func(*url.URL) bool) Option {
	return func(e *Extractor) {
		e.linkFilter = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// WithClock sets the clock used for the extraction timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// New creates an Extractor with the default passes.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		minWords: DefaultMinWords,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.passes = []Pass{
		titlePass{},
		faqPass{},
		structurePass{},
		contactPass{},
		linkPass{filter: e.linkFilter},
		qualityPass{minWords: e.minWords},
	}
	return e
}

// MinWords returns the quality threshold.
func (e *Extractor) MinWords() int {
	return e.minWords
}

// Extract parses rawHTML fetched from pageURL.
func (e *Extractor) Extract(pageURL string, rawHTML []byte) *model.Document {
	return e.ExtractInput(Input{URL: pageURL, Body: rawHTML})
}

// ExtractInput parses a fetched page. It never fails: unparseable input
// yields an empty document flagged low quality.
func (e *Extractor) ExtractInput(in Input) *model.Document {
	r, err := charset.NewReader(bytes.NewReader(in.Body), in.ContentType)
	if err != nil {
		e.logger.Debug("charset detection failed", "url", in.URL, "error", err)
		r = bytes.NewReader(in.Body)
	}
	return e.extract(in, r)
}

func (e *Extractor) extract(in Input, r io.Reader) *model.Document {
	doc := &model.Document{
		URL:         in.URL,
		ExtractedAt: e.now(),
	}

	page, err := newPage(in, r)
	if err != nil {
		e.logger.Warn("unparseable HTML", "url", in.URL, "error", err)
		doc.LowQuality = true
		return doc
	}

	runPasses(e.logger, e.passes, page, doc)
	return doc
}

func newPage(in Input, r io.Reader) (*Page, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	baseRaw := in.BaseURL
	if baseRaw == "" {
		baseRaw = in.URL
	}
	base, err := url.Parse(baseRaw)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	doc := goquery.NewDocumentFromNode(root)
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := base.Parse(href); err == nil {
			base = ref
		}
	}

	return &Page{
		URL:  in.URL,
		Base: base,
		Root: root,
		Main: mainRegion(doc, root),
		Doc:  doc,
	}, nil
}

// mainSelectors locate the main content region, most specific first.
var mainSelectors = []string{
	"div.field-name-body",
	"article",
	"main",
	"[role=main]",
	"div.l-main",
	"div.main-content",
	"#main-content",
	"body",
}

func mainRegion(doc *goquery.Document, root *html.Node) *html.Node {
	for _, sel := range mainSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s.Nodes[0]
		}
	}
	return root
}
