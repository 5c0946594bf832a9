package extractor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type blockKind int

const (
	blockText blockKind = iota
	blockHeading
	blockList
	blockTable
	blockTerm
)

// block is one unit of main-region content in document order.
type block struct {
	kind    blockKind
	text    string
	level   int
	ordered bool
	items   []string
	headers []string
	rows    [][]string
}

// blocks flattens the non-boilerplate content below root into a
// sequence of headings, text runs, lists, tables and definition terms.
func blocks(root *html.Node) []block {
	var s splitter
	s.walk(root)
	s.flush()
	return s.out
}

// leadingOrdinal matches emphasized text that opens a numbered question.
var leadingOrdinal = regexp.MustCompile(`^\d{1,3}[.)]\s`)

type splitter struct {
	out []block
	buf strings.Builder
}

func (s *splitter) flush() {
	text := collapse(s.buf.String())
	s.buf.Reset()
	if text != "" {
		s.out = append(s.out, block{kind: blockText, text: text})
	}
}

// separate ends the buffered text with a space unless it already ends
// in whitespace.
func (s *splitter) separate() {
	if s.buf.Len() == 0 {
		return
	}
	if r, _ := utf8.DecodeLastRuneInString(s.buf.String()); !unicode.IsSpace(r) {
		s.buf.WriteByte(' ')
	}
}

func (s *splitter) emit(b block) {
	s.flush()
	s.out = append(s.out, b)
}

func (s *splitter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		s.buf.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if isBoilerplate(n) {
			return
		}
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			if text := textOf(n, true); text != "" {
				s.emit(block{kind: blockHeading, text: text, level: headingLevel(n.DataAtom)})
			}
			return
		case atom.Ul, atom.Ol:
			if items := listItems(n); len(items) > 0 {
				s.emit(block{kind: blockList, ordered: n.DataAtom == atom.Ol, items: items})
			}
			return
		case atom.Table:
			if headers, rows := tableRows(n); len(headers) > 0 || len(rows) > 0 {
				s.emit(block{kind: blockTable, headers: headers, rows: rows})
			}
			return
		case atom.Dt:
			if text := textOf(n, true); text != "" {
				s.emit(block{kind: blockTerm, text: text})
			}
			return
		case atom.Br:
			s.flush()
			return
		case atom.Strong, atom.B:
			// "Read this.<strong>1. Why?</strong>" must not glue the
			// ordinal to the preceding sentence.
			if leadingOrdinal.MatchString(textOf(n, true)) {
				s.separate()
			}
		}
		if blockTags[n.DataAtom] {
			s.flush()
			s.walkChildren(n)
			s.flush()
			return
		}
	}
	s.walkChildren(n)
}

func (s *splitter) walkChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.walk(c)
	}
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	default:
		return 6
	}
}

// listItems returns the text of the direct li children of a list.
func listItems(list *html.Node) []string {
	var items []string
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li || isBoilerplate(c) {
			continue
		}
		if text := textOf(c, true); text != "" {
			items = append(items, text)
		}
	}
	return items
}

// tableRows returns the header row (a leading row made only of th
// cells) and the remaining non-empty rows. Nested tables are flattened
// into their enclosing cell's text.
func tableRows(table *html.Node) ([]string, [][]string) {
	var headers []string
	var rows [][]string

	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				cells, allHeader := rowCells(c)
				if len(cells) == 0 {
					continue
				}
				if allHeader && headers == nil && len(rows) == 0 {
					headers = cells
					continue
				}
				rows = append(rows, cells)
			case atom.Table:
			default:
				visit(c)
			}
		}
	}
	visit(table)
	return headers, rows
}

func rowCells(tr *html.Node) ([]string, bool) {
	var cells []string
	allHeader := true
	nonEmpty := false
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		if c.DataAtom != atom.Th {
			allHeader = false
		}
		text := textOf(c, true)
		if text != "" {
			nonEmpty = true
		}
		cells = append(cells, text)
	}
	if !nonEmpty {
		return nil, false
	}
	return cells, allHeader
}
