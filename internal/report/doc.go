// Package report writes the crawl's output.
//
// It contains:
//   - DirWriter: one artifact per persisted document, as Markdown, JSON or both
//   - ExportFAQs: the FAQ corpus as faq_qa.json and faq_qa.csv
//   - SummaryWriter: the human-readable run and checkpoint summary
//
// Artifact names are derived from the URL path by Filename so the same
// URL always maps to the same file.
package report
