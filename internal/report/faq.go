package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/corpuscrawl/internal/database"
)

const (
	// FAQJSONFile is the JSON FAQ corpus written by ExportFAQs.
	FAQJSONFile = "faq_qa.json"
	// FAQCSVFile is the CSV FAQ corpus written by ExportFAQs.
	FAQCSVFile = "faq_qa.csv"
)

var faqCSVHeader = []string{"question", "answer", "category", "keywords", "source_url"}

// ExportFAQs writes faqs to FAQJSONFile and FAQCSVFile in dir and
// returns the paths written.
func ExportFAQs(dir string, faqs []database.FAQRecord) ([]string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	if faqs == nil {
		faqs = []database.FAQRecord{}
	}

	jsonPath := filepath.Join(dir, FAQJSONFile)
	data, err := json.MarshalIndent(faqs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode faqs: %w", err)
	}
	if err := os.WriteFile(jsonPath, append(data, '\n'), 0600); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", FAQJSONFile, err)
	}

	csvPath := filepath.Join(dir, FAQCSVFile)
	if err := writeFAQCSV(csvPath, faqs); err != nil {
		return nil, err
	}
	return []string{jsonPath, csvPath}, nil
}

func writeFAQCSV(path string, faqs []database.FAQRecord) (err error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", FAQCSVFile, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", FAQCSVFile, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(faqCSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, faq := range faqs {
		answer := faq.Answer
		if len(faq.Items) > 0 {
			answer = strings.TrimSpace(answer + "\n- " + strings.Join(faq.Items, "\n- "))
		}
		if err := w.Write([]string{
			faq.Question,
			answer,
			faq.Category,
			strings.Join(faq.Keywords, "; "),
			faq.SourceURL,
		}); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
