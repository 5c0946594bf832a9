package extractor

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/nao1215/corpuscrawl/internal/model"
)

func extractHTML(t *testing.T, rawURL, body string, opts ...Option) *model.Document {
	t.Helper()
	opts = append([]Option{WithMinWords(0)}, opts...)
	return New(opts...).Extract(rawURL, []byte(body))
}

func TestExtract_NumberedFAQ(t *testing.T) {
	t.Parallel()

	doc := extractHTML(t, "https://example.edu/faq",
		`<html><body><p>1. Why choose us? Because X. 2. What costs? $Y.</p></body></html>`)

	if len(doc.FAQs) != 2 {
		t.Fatalf("FAQs = %d, want 2: %+v", len(doc.FAQs), doc.FAQs)
	}
	tests := []struct {
		question string
		answer   string
	}{
		{"Why choose us?", "Because X."},
		{"What costs?", "$Y."},
	}
	for i, tt := range tests {
		if doc.FAQs[i].Question != tt.question {
			t.Errorf("FAQs[%d].Question = %q, want %q", i, doc.FAQs[i].Question, tt.question)
		}
		if !strings.Contains(doc.FAQs[i].Answer, tt.answer) {
			t.Errorf("FAQs[%d].Answer = %q, want it to contain %q", i, doc.FAQs[i].Answer, tt.answer)
		}
	}
}

func TestExtract_NumberedFAQInEmphasis(t *testing.T) {
	t.Parallel()

	doc := extractHTML(t, "https://example.edu/faq",
		`<html><body><main><p>Read this.<strong>1. Why choose us?</strong> Because X.`+
			`<b>2. What costs?</b> $Y.</p></main></body></html>`)

	if len(doc.FAQs) != 2 {
		t.Fatalf("FAQs = %d, want 2: %+v", len(doc.FAQs), doc.FAQs)
	}
	if doc.FAQs[0].Question != "Why choose us?" || !strings.Contains(doc.FAQs[0].Answer, "Because X.") {
		t.Errorf("FAQs[0] = %+v", doc.FAQs[0])
	}
	if doc.FAQs[1].Question != "What costs?" || !strings.Contains(doc.FAQs[1].Answer, "$Y.") {
		t.Errorf("FAQs[1] = %+v", doc.FAQs[1])
	}

	t.Run("plain emphasis keeps words intact", func(t *testing.T) {
		t.Parallel()

		doc := extractHTML(t, "https://example.edu/a",
			`<html><body><main><p>un<strong>believ</strong>able results</p></main></body></html>`)
		if len(doc.Sections) == 0 || !strings.Contains(doc.Sections[0].Content(), "unbelievable") {
			t.Errorf("Sections = %+v", doc.Sections)
		}
	})
}

func TestExtract_FAQForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		questions []string
		answers   []string
	}{
		{
			name: "question headings",
			body: `<main>
				<h3>How do I apply?</h3><p>Use the online portal.</p><p>It takes ten minutes.</p>
				<h3>When are classes?</h3><p>Monday to Friday.</p>
			</main>`,
			questions: []string{"How do I apply?", "When are classes?"},
			answers:   []string{"Use the online portal.\n\nIt takes ten minutes.", "Monday to Friday."},
		},
		{
			name:      "explicit markers",
			body:      `<main><p>Q: Is parking free? A: Only on weekends.</p></main>`,
			questions: []string{"Is parking free?"},
			answers:   []string{"Only on weekends."},
		},
		{
			name: "marker paragraphs",
			body: `<main><p>Question: Can I defer my offer?</p><p>Answer: Yes, for one year.</p></main>`,
			questions: []string{"Can I defer my offer?"},
			answers:   []string{"Yes, for one year."},
		},
		{
			name: "definition list",
			body: `<main><dl><dt>Do you offer tours?</dt><dd>Every Saturday.</dd></dl></main>`,
			questions: []string{"Do you offer tours?"},
			answers:   []string{"Every Saturday."},
		},
		{
			name: "question table rows",
			body: `<main><table>
				<tr><td>What is the refund policy?</td></tr>
				<tr><td>Full refund before the first week.</td></tr>
				<tr><td>Who do I contact?</td><td>The registrar.</td></tr>
			</table></main>`,
			questions: []string{"What is the refund policy?", "Who do I contact?"},
			answers:   []string{"Full refund before the first week.", "The registrar."},
		},
		{
			name: "section heading ends answer",
			body: `<main>
				<h3>Is there a gym?</h3><p>Yes.</p>
				<h2>Campus map</h2><p>Not part of any answer.</p>
			</main>`,
			questions: []string{"Is there a gym?"},
			answers:   []string{"Yes."},
		},
		{
			name:      "repeated question kept once",
			body:      `<main><h3>Is there a gym?</h3><p>Yes.</p><h3>is there a gym?</h3><p>Still yes.</p></main>`,
			questions: []string{"Is there a gym?"},
			answers:   []string{"Yes."},
		},
		{
			name:      "unanswered question dropped",
			body:      `<main><h3>Anything else?</h3></main>`,
			questions: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := extractHTML(t, "https://example.edu/faq", tt.body)
			if len(doc.FAQs) != len(tt.questions) {
				t.Fatalf("FAQs = %+v, want %d", doc.FAQs, len(tt.questions))
			}
			for i := range tt.questions {
				if doc.FAQs[i].Question != tt.questions[i] {
					t.Errorf("Question[%d] = %q, want %q", i, doc.FAQs[i].Question, tt.questions[i])
				}
				if doc.FAQs[i].Answer != tt.answers[i] {
					t.Errorf("Answer[%d] = %q, want %q", i, doc.FAQs[i].Answer, tt.answers[i])
				}
			}
		})
	}
}

func TestExtract_FAQListItems(t *testing.T) {
	t.Parallel()

	doc := extractHTML(t, "https://example.edu/faq", `<main>
		<h3>What documents do I need?</h3>
		<p>Bring the following:</p>
		<ul><li>Transcript</li><li>Photo ID</li></ul>
	</main>`)

	if len(doc.FAQs) != 1 {
		t.Fatalf("FAQs = %+v, want 1", doc.FAQs)
	}
	faq := doc.FAQs[0]
	if faq.Answer != "Bring the following:" {
		t.Errorf("Answer = %q", faq.Answer)
	}
	if fmt.Sprint(faq.Items) != "[Transcript Photo ID]" {
		t.Errorf("Items = %q, want [Transcript Photo ID]", faq.Items)
	}
}

func TestExtract_FAQCategory(t *testing.T) {
	t.Parallel()

	doc := extractHTML(t, "https://example.edu/faq", `<main>
		<h2>PARKING</h2>
		<h3>Where can visitors park?</h3><p>Lot B near the west gate.</p>
		<h3>How do I apply?</h3><p>Submit an application online.</p>
	</main>`)

	if len(doc.FAQs) != 2 {
		t.Fatalf("FAQs = %+v, want 2", doc.FAQs)
	}
	if got := doc.FAQs[0].Category; got != "Parking" {
		t.Errorf("Category[0] = %q, want Parking", got)
	}
	if got := doc.FAQs[1].Category; got != "Admissions" {
		t.Errorf("Category[1] = %q, want Admissions", got)
	}
	if len(doc.FAQs[1].Keywords) == 0 || doc.FAQs[1].Keywords[0] != "apply" {
		t.Errorf("Keywords = %q, want apply first", doc.FAQs[1].Keywords)
	}
}

func TestExtract_TitleAndDescription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		body  string
		title string
		desc  string
	}{
		{
			name:  "title element",
			body:  `<html><head><title> Admissions  Office </title><meta name="Description" content="Apply here."></head><body><h1>Other</h1></body></html>`,
			title: "Admissions Office",
			desc:  "Apply here.",
		},
		{
			name:  "h1 fallback",
			body:  `<html><head><meta property="og:description" content="OG text"></head><body><h1>Housing</h1></body></html>`,
			title: "Housing",
			desc:  "OG text",
		},
		{
			name:  "untitled",
			body:  `<html><body><p>text</p></body></html>`,
			title: UntitledPage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := extractHTML(t, "https://example.edu/", tt.body)
			if doc.Title != tt.title {
				t.Errorf("Title = %q, want %q", doc.Title, tt.title)
			}
			if doc.Description != tt.desc {
				t.Errorf("Description = %q, want %q", doc.Description, tt.desc)
			}
		})
	}
}

func TestExtract_Structure(t *testing.T) {
	t.Parallel()

	doc := extractHTML(t, "https://example.edu/programs", `<html><body>
		<nav><a href="/">Home</a> menu text</nav>
		<main>
			<p>Intro paragraph.</p>
			<h2>Programs</h2>
			<p>We offer many programs.</p>
			<ol><li>Nursing</li><li>Engineering</li></ol>
			<h2>Costs</h2>
			<table>
				<tr><th>Program</th><th>Fee</th></tr>
				<tr><td>Nursing</td><td>$7,000</td></tr>
				<tr><td></td><td></td></tr>
			</table>
		</main>
		<footer>Copyright</footer>
	</body></html>`)

	wantSections := []model.Section{
		{Heading: "", Level: 0, Paragraphs: []string{"Intro paragraph."}},
		{Heading: "Programs", Level: 2, Paragraphs: []string{"We offer many programs."}},
		{Heading: "Costs", Level: 2},
	}
	if len(doc.Sections) != len(wantSections) {
		t.Fatalf("Sections = %+v, want %d", doc.Sections, len(wantSections))
	}
	for i, want := range wantSections {
		got := doc.Sections[i]
		if got.Heading != want.Heading || got.Level != want.Level || fmt.Sprint(got.Paragraphs) != fmt.Sprint(want.Paragraphs) {
			t.Errorf("Sections[%d] = %+v, want %+v", i, got, want)
		}
	}

	if len(doc.Lists) != 1 || !doc.Lists[0].Ordered || doc.Lists[0].Section != "Programs" {
		t.Fatalf("Lists = %+v", doc.Lists)
	}
	if fmt.Sprint(doc.Lists[0].Items) != "[Nursing Engineering]" {
		t.Errorf("list items = %q", doc.Lists[0].Items)
	}

	if len(doc.Tables) != 1 {
		t.Fatalf("Tables = %+v", doc.Tables)
	}
	table := doc.Tables[0]
	if table.Section != "Costs" || fmt.Sprint(table.Headers) != "[Program Fee]" {
		t.Errorf("table = %+v", table)
	}
	if len(table.Rows) != 1 || fmt.Sprint(table.Rows[0]) != "[Nursing $7,000]" {
		t.Errorf("rows = %q, want one non-empty row", table.Rows)
	}
}

func TestExtract_Contacts(t *testing.T) {
	t.Parallel()

	doc := extractHTML(t, "https://example.edu/contact", `<html><body>
		<p>Email Info@Example.edu or admissions@example.edu.</p>
		<p>Call (807) 343-8500 or 807.343.8500 or +1 807 555 0199.</p>
		<p>Order 12807-343-85001 is not a phone.</p>
		<a href="mailto:help@example.edu?subject=Hi">help</a>
		<a href="tel:+1-807-555-0100">call</a>
	</body></html>`)

	wantEmails := "[info@example.edu admissions@example.edu help@example.edu]"
	if fmt.Sprint(doc.Contacts.Emails) != wantEmails {
		t.Errorf("Emails = %q, want %s", doc.Contacts.Emails, wantEmails)
	}
	wantPhones := "[(807) 343-8500 (807) 555-0199 (807) 555-0100]"
	if fmt.Sprint(doc.Contacts.Phones) != wantPhones {
		t.Errorf("Phones = %q, want %s", doc.Contacts.Phones, wantPhones)
	}
}

func TestExtract_Links(t *testing.T) {
	t.Parallel()

	inScope := func(u *url.URL) bool { return strings.EqualFold(u.Hostname(), "example.edu") }
	doc := extractHTML(t, "https://example.edu/a/page", `<html><body>
		<a href="../faq#top">FAQ</a>
		<a href="/faq">FAQ again</a>
		<a href="https://EXAMPLE.edu:443/b?z=1&a=2">B</a>
		<a href="https://other.org/x">external</a>
		<a href="mailto:x@example.edu">mail</a>
		<a href="javascript:void(0)">js</a>
		<a href="#section">anchor</a>
		<a href="/a/page">self</a>
	</body></html>`, WithLinkFilter(inScope))

	want := []model.Link{
		{URL: "https://example.edu/faq", Text: "FAQ"},
		{URL: "https://example.edu/b?a=2&z=1", Text: "B"},
	}
	if fmt.Sprint(doc.Links) != fmt.Sprint(want) {
		t.Errorf("Links = %+v, want %+v", doc.Links, want)
	}
}

func TestExtract_BaseHref(t *testing.T) {
	t.Parallel()

	doc := extractHTML(t, "https://example.edu/a/b", `<html><head><base href="https://example.edu/docs/"></head>
		<body><a href="guide">Guide</a></body></html>`)
	if len(doc.Links) != 1 || doc.Links[0].URL != "https://example.edu/docs/guide" {
		t.Errorf("Links = %+v", doc.Links)
	}
}

func TestExtract_QualityThreshold(t *testing.T) {
	t.Parallel()

	words := func(n int) string {
		return strings.TrimSpace(strings.Repeat("word ", n))
	}
	page := func(n int) string {
		return `<html><body><nav>skip these nav words</nav><main><p>` + words(n) + `</p></main><footer>and these</footer></body></html>`
	}

	tests := []struct {
		name       string
		words      int
		lowQuality bool
	}{
		{"below threshold", 9, true},
		{"at threshold", 10, false},
		{"above threshold", 11, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := New(WithMinWords(10)).Extract("https://example.edu/", []byte(page(tt.words)))
			if doc.WordCount != tt.words {
				t.Errorf("WordCount = %d, want %d", doc.WordCount, tt.words)
			}
			if doc.LowQuality != tt.lowQuality {
				t.Errorf("LowQuality = %v, want %v", doc.LowQuality, tt.lowQuality)
			}
			if doc.Fingerprint == "" {
				t.Error("Fingerprint should be set")
			}
		})
	}
}

func TestExtract_IdenticalTextSameFingerprint(t *testing.T) {
	t.Parallel()

	a := extractHTML(t, "https://example.edu/a", `<main><p>Same   Content here</p></main>`)
	b := extractHTML(t, "https://example.edu/b", `<div class="sidebar">ads</div><article><p>same content HERE</p></article>`)
	if a.Fingerprint != b.Fingerprint {
		t.Errorf("fingerprints differ: %s vs %s", a.Fingerprint, b.Fingerprint)
	}
}

func TestExtract_ParseFailure(t *testing.T) {
	t.Parallel()

	e := New()
	doc := e.extract(Input{URL: "https://example.edu/"}, iotest.ErrReader(errors.New("boom")))
	if !doc.LowQuality {
		t.Error("unparseable input should be low quality")
	}
	if doc.HasContent() || doc.Title != "" {
		t.Errorf("expected empty document, got %+v", doc)
	}
}

func TestExtract_Timestamp(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	doc := New(WithClock(func() time.Time { return now })).Extract("https://example.edu/", []byte("<p>x</p>"))
	if !doc.ExtractedAt.Equal(now) {
		t.Errorf("ExtractedAt = %v, want %v", doc.ExtractedAt, now)
	}
	if doc.URL != "https://example.edu/" {
		t.Errorf("URL = %q", doc.URL)
	}
}

func TestExtract_Charset(t *testing.T) {
	t.Parallel()

	// "Café" in ISO-8859-1.
	body := []byte("<html><head><title>Caf\xe9</title></head><body></body></html>")
	doc := New().ExtractInput(Input{
		URL:         "https://example.edu/",
		ContentType: "text/html; charset=iso-8859-1",
		Body:        body,
	})
	if doc.Title != "Café" {
		t.Errorf("Title = %q, want Café", doc.Title)
	}
}

type panicPass struct{}

func (panicPass) Name() string                       { return "panic" }
func (panicPass) Apply(*Page, *model.Document) error { panic("bad pass") }

type failPass struct{}

func (failPass) Name() string { return "fail" }
func (failPass) Apply(*Page, *model.Document) error {
	return errors.New("failed")
}

func TestRunPasses_IsolatesFailures(t *testing.T) {
	t.Parallel()

	e := New(WithMinWords(0))
	e.passes = append([]Pass{panicPass{}, failPass{}}, e.passes...)

	doc := e.Extract("https://example.edu/", []byte("<title>Still works</title>"))
	if doc.Title != "Still works" {
		t.Errorf("Title = %q, later passes should still run", doc.Title)
	}
}
