package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nao1215/corpuscrawl/internal/model"
)

// maxRelatedLinks is the number of links listed in a Markdown artifact.
const maxRelatedLinks = 30

// WriteMarkdown renders doc as a Markdown artifact.
func WriteMarkdown(w io.Writer, doc *model.Document) error {
	md := markdown.NewMarkdown(w)

	md.H1(doc.Title)
	md.PlainText("")
	md.PlainTextf("**URL:** %s  ", doc.URL)
	md.PlainTextf("**Scraped:** %s", doc.ExtractedAt.Format("2006-01-02 15:04:05"))
	if doc.Description != "" {
		md.PlainText("")
		md.PlainTextf("*%s*", doc.Description)
	}
	md.PlainText("")
	md.HorizontalRule()
	md.PlainText("")

	writeFAQs(md, doc.FAQs)
	writeSections(md, doc.Sections, len(doc.FAQs) > 0)
	writeLists(md, doc.Lists)
	writeTables(md, doc.Tables)
	writeContacts(md, doc.Contacts)
	writeLinks(md, doc.Links)

	return md.Build()
}

func writeFAQs(md *markdown.Markdown, faqs []model.FAQ) {
	if len(faqs) == 0 {
		return
	}
	md.H2("Frequently Asked Questions")
	md.PlainText("")
	for i, faq := range faqs {
		md.PlainTextf("### %d. %s", i+1, faq.Question)
		md.PlainText("")
		if faq.Answer != "" {
			md.PlainText(faq.Answer)
			md.PlainText("")
		}
		if len(faq.Items) > 0 {
			md.BulletList(faq.Items...)
			md.PlainText("")
		}
	}
}

func writeSections(md *markdown.Markdown, sections []model.Section, afterFAQ bool) {
	if len(sections) == 0 {
		return
	}
	if afterFAQ {
		md.H2("Additional Content")
	} else {
		md.H2("Content")
	}
	md.PlainText("")
	for _, s := range sections {
		if s.Heading != "" {
			md.PlainText(strings.Repeat("#", min(max(s.Level, 1)+1, 6)) + " " + s.Heading)
			md.PlainText("")
		}
		if content := s.Content(); content != "" {
			md.PlainText(content)
			md.PlainText("")
		}
	}
}

func writeLists(md *markdown.Markdown, lists []model.ListBlock) {
	if len(lists) == 0 {
		return
	}
	md.H2("Key Information")
	md.PlainText("")
	for _, l := range lists {
		if l.Ordered {
			md.OrderedList(l.Items...)
		} else {
			md.BulletList(l.Items...)
		}
		md.PlainText("")
	}
}

func writeTables(md *markdown.Markdown, tables []model.Table) {
	if len(tables) == 0 {
		return
	}
	md.H2("Tables")
	md.PlainText("")
	for _, t := range tables {
		md.Table(tableSet(t))
		md.PlainText("")
	}
}

// tableSet pads every row to the widest row and synthesizes headers for
// tables without a header row.
func tableSet(t model.Table) markdown.TableSet {
	width := len(t.Headers)
	for _, r := range t.Rows {
		width = max(width, len(r))
	}
	header := pad(t.Headers, width)
	if len(t.Headers) == 0 {
		for i := range header {
			header[i] = fmt.Sprintf("Column %d", i+1)
		}
	}
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = pad(r, width)
	}
	return markdown.TableSet{Header: header, Rows: rows}
}

func pad(cells []string, width int) []string {
	out := make([]string, width)
	copy(out, cells)
	return out
}

func writeContacts(md *markdown.Markdown, c model.Contacts) {
	if c.Empty() {
		return
	}
	md.H2("Contact Information")
	md.PlainText("")
	items := make([]string, 0, len(c.Emails)+len(c.Phones))
	for _, e := range c.Emails {
		items = append(items, "Email: "+e)
	}
	for _, p := range c.Phones {
		items = append(items, "Phone: "+p)
	}
	md.BulletList(items...)
	md.PlainText("")
}

func writeLinks(md *markdown.Markdown, links []model.Link) {
	if len(links) == 0 {
		return
	}
	md.H2("Related Links")
	md.PlainText("")
	items := make([]string, 0, min(len(links), maxRelatedLinks))
	for _, l := range links[:min(len(links), maxRelatedLinks)] {
		text := l.Text
		if text == "" {
			text = l.URL
		}
		items = append(items, fmt.Sprintf("[%s](%s)", text, l.URL))
	}
	md.BulletList(items...)
	md.PlainText("")
}
