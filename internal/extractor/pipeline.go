package extractor

import (
	"fmt"
	"log/slog"

	"github.com/nao1215/corpuscrawl/internal/model"
)

// Pass is one extraction step. A pass reads the shared Page and writes
// only the document fields it owns.
type Pass interface {
	// Name returns the pass name for logging.
	Name() string

	// Apply extracts the pass's part of the document.
	Apply(page *Page, doc *model.Document) error
}

// runPasses applies passes in order. A pass that fails or panics is
// logged and skipped; the remaining passes still run.
func runPasses(logger *slog.Logger, passes []Pass, page *Page, doc *model.Document) {
	for _, pass := range passes {
		if err := applyPass(pass, page, doc); err != nil {
			logger.Warn("extraction pass failed",
				"pass", pass.Name(),
				"url", page.URL,
				"error", err,
			)
		}
	}
}

func applyPass(pass Pass, page *Page, doc *model.Document) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return pass.Apply(page, doc)
}
