package model

import (
	"strings"
	"time"
)

// Document is the structured result of extracting one fetched page.
//
// The ordered slices preserve document order. Text holds the
// normalized visible text the fingerprint is computed from; it is not
// part of the persisted artifact.
type Document struct {
	URL         string      `json:"url"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Sections    []Section   `json:"sections"`
	Lists       []ListBlock `json:"lists"`
	Tables      []Table     `json:"tables"`
	FAQs        []FAQ       `json:"faqs"`
	Contacts    Contacts    `json:"contacts"`
	Links       []Link      `json:"links"`
	ExtractedAt time.Time   `json:"extracted_at"`
	WordCount   int         `json:"word_count"`
	LowQuality  bool        `json:"-"`
	Fingerprint string      `json:"fingerprint,omitempty"`
	Text        string      `json:"-"`
}

// Section is the content attributed to one heading. A section with an
// empty Heading holds content that appears before the first heading.
type Section struct {
	Heading    string   `json:"heading"`
	Level      int      `json:"level"`
	Paragraphs []string `json:"paragraphs"`
}

// Content joins the section paragraphs with blank lines.
func (s Section) Content() string {
	return strings.Join(s.Paragraphs, "\n\n")
}

// ListBlock is one ul/ol element.
type ListBlock struct {
	Section string   `json:"section,omitempty"`
	Ordered bool     `json:"ordered"`
	Items   []string `json:"items"`
}

// Table is one table element. Headers is empty when the table has no th row.
type Table struct {
	Section string     `json:"section,omitempty"`
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows"`
}

// FAQ is a detected question with its answer.
// Items holds list entries found inside the answer block, in order.
type FAQ struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Items    []string `json:"items,omitempty"`
	Category string   `json:"category,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// Contacts holds deduplicated contact strings in first-seen order.
type Contacts struct {
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
}

// Empty reports whether no contact information was found.
func (c Contacts) Empty() bool {
	return len(c.Emails) == 0 && len(c.Phones) == 0
}

// Link is an in-scope outbound link in canonical form.
type Link struct {
	URL  string `json:"url"`
	Text string `json:"text,omitempty"`
}

// HasContent reports whether any structured content was extracted.
func (d *Document) HasContent() bool {
	return len(d.Sections) > 0 || len(d.Lists) > 0 || len(d.Tables) > 0 || len(d.FAQs) > 0
}
