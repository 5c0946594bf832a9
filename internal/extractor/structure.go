package extractor

import (
	"github.com/nao1215/corpuscrawl/internal/model"
)

// structurePass groups main-region content into sections and collects
// list and table blocks, each tagged with its enclosing heading.
type structurePass struct{}

func (structurePass) Name() string { return "structure" }

func (structurePass) Apply(page *Page, doc *model.Document) error {
	var (
		sections []model.Section
		lists    []model.ListBlock
		tables   []model.Table
		current  *model.Section
	)
	flush := func() {
		if current != nil && (current.Heading != "" || len(current.Paragraphs) > 0) {
			sections = append(sections, *current)
		}
		current = nil
	}
	heading := func() string {
		if current == nil {
			return ""
		}
		return current.Heading
	}
	paragraph := func(text string) {
		if current == nil {
			current = &model.Section{}
		}
		current.Paragraphs = append(current.Paragraphs, text)
	}

	for _, blk := range blocks(page.Main) {
		switch blk.kind {
		case blockHeading:
			flush()
			current = &model.Section{Heading: blk.text, Level: blk.level}
		case blockText, blockTerm:
			paragraph(blk.text)
		case blockList:
			lists = append(lists, model.ListBlock{
				Section: heading(),
				Ordered: blk.ordered,
				Items:   blk.items,
			})
		case blockTable:
			tables = append(tables, model.Table{
				Section: heading(),
				Headers: blk.headers,
				Rows:    blk.rows,
			})
		}
	}
	flush()

	doc.Sections = sections
	doc.Lists = lists
	doc.Tables = tables
	return nil
}
