package extractor

import (
	"regexp"
	"strings"

	"github.com/nao1215/corpuscrawl/internal/model"
)

var (
	// numberedQuestion matches "1. Why choose us?" or "2) What costs?".
	numberedQuestion = regexp.MustCompile(`(?:^|\s)(\d{1,3})[.)]\s+([^\d\s?][^?]{0,300}\?)`)
	// questionMarker matches an explicit "Q:" or "Question:" prefix.
	questionMarker = regexp.MustCompile(`(?i)^(?:q|question)\s*[:.]\s*`)
	// answerMarker matches an explicit "A:" or "Answer:" prefix.
	answerMarker = regexp.MustCompile(`(?i)^(?:a|answer)\s*[:.]\s*`)
)

// maxQuestionLen bounds how long a heading or term may be and still
// be treated as a question.
const maxQuestionLen = 300

// faqPass detects question and answer pairs in the main region.
type faqPass struct{}

func (faqPass) Name() string { return "faq" }

func (faqPass) Apply(page *Page, doc *model.Document) error {
	var b faqBuilder
	for _, blk := range blocks(page.Main) {
		b.add(blk)
	}
	b.close()

	for i := range b.faqs {
		faq := &b.faqs[i]
		faq.Category = categorize(faq.Question, faq.Answer, faq.Category)
		faq.Keywords = keywords(faq.Question, faq.Answer)
	}
	doc.FAQs = b.faqs
	return nil
}

// faqBuilder accumulates FAQs while walking content blocks. An open
// question collects every following block as its answer until the next
// question or a non-question heading.
type faqBuilder struct {
	faqs    []model.FAQ
	seen    map[string]bool
	open    *model.FAQ
	answer  []string
	heading string
}

func (b *faqBuilder) add(blk block) {
	switch blk.kind {
	case blockHeading:
		if isQuestion(blk.text) {
			b.start(stripMarker(blk.text))
			return
		}
		b.close()
		b.heading = blk.text
	case blockTerm:
		if isQuestion(blk.text) {
			b.start(stripMarker(blk.text))
			return
		}
		b.appendAnswer(blk.text)
	case blockText:
		b.addText(blk.text)
	case blockList:
		if b.open != nil {
			b.open.Items = append(b.open.Items, blk.items...)
		}
	case blockTable:
		b.addTable(blk)
	}
}

func (b *faqBuilder) addText(text string) {
	if matches := numberedQuestion.FindAllStringSubmatchIndex(text, -1); len(matches) > 0 {
		b.appendAnswer(text[:matches[0][0]])
		for i, m := range matches {
			b.start(text[m[4]:m[5]])
			end := len(text)
			if i+1 < len(matches) {
				end = matches[i+1][0]
			}
			b.appendAnswer(text[m[1]:end])
		}
		return
	}

	if loc := questionMarker.FindStringIndex(text); loc != nil {
		rest := text[loc[1]:]
		if q := strings.IndexByte(rest, '?'); q >= 0 {
			b.start(rest[:q+1])
			b.appendAnswer(rest[q+1:])
			return
		}
		b.start(rest)
		return
	}

	b.appendAnswer(text)
}

// addTable treats a table as answer content of an open question, or
// as a question/answer table when its first column holds questions.
func (b *faqBuilder) addTable(blk block) {
	rows := blk.rows
	if b.open == nil && len(blk.headers) > 0 {
		rows = append([][]string{blk.headers}, rows...)
	}
	if b.open != nil && !tableHasQuestions(rows) {
		for _, row := range rows {
			b.appendAnswer(strings.Join(nonEmpty(row), " | "))
		}
		return
	}

	for i := 0; i < len(rows); i++ {
		cells := nonEmpty(rows[i])
		if len(cells) == 0 {
			continue
		}
		if !isQuestion(cells[0]) {
			b.appendAnswer(strings.Join(cells, " "))
			continue
		}
		b.start(stripMarker(cells[0]))
		switch {
		case len(cells) > 1:
			b.appendAnswer(strings.Join(cells[1:], " "))
		case i+1 < len(rows) && len(nonEmpty(rows[i+1])) > 0 && !isQuestion(nonEmpty(rows[i+1])[0]):
			b.appendAnswer(strings.Join(nonEmpty(rows[i+1]), " "))
			i++
		}
	}
}

func (b *faqBuilder) start(question string) {
	b.close()
	question = collapse(question)
	if question == "" {
		return
	}
	b.open = &model.FAQ{Question: question, Category: b.heading}
}

func (b *faqBuilder) appendAnswer(text string) {
	if b.open == nil {
		return
	}
	text = collapse(answerMarker.ReplaceAllString(collapse(text), ""))
	if text != "" {
		b.answer = append(b.answer, text)
	}
}

// close finishes the open question. Questions without any answer
// content and repeated questions are dropped.
func (b *faqBuilder) close() {
	if b.open == nil {
		return
	}
	faq := *b.open
	faq.Answer = strings.Join(b.answer, "\n\n")
	b.open = nil
	b.answer = nil

	if faq.Answer == "" && len(faq.Items) == 0 {
		return
	}
	key := strings.ToLower(faq.Question)
	if b.seen == nil {
		b.seen = make(map[string]bool)
	}
	if b.seen[key] {
		return
	}
	b.seen[key] = true
	b.faqs = append(b.faqs, faq)
}

// isQuestion reports whether text reads as a standalone question.
func isQuestion(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxQuestionLen {
		return false
	}
	return strings.HasSuffix(text, "?") || questionMarker.MatchString(text)
}

func stripMarker(text string) string {
	text = questionMarker.ReplaceAllString(strings.TrimSpace(text), "")
	if m := numberedQuestion.FindStringSubmatch(text); m != nil && strings.HasSuffix(text, m[2]) {
		return m[2]
	}
	return text
}

func tableHasQuestions(rows [][]string) bool {
	for _, row := range rows {
		if cells := nonEmpty(row); len(cells) > 0 && isQuestion(cells[0]) {
			return true
		}
	}
	return false
}

func nonEmpty(cells []string) []string {
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
