package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/corpuscrawl/internal/config"
	"github.com/nao1215/corpuscrawl/internal/database"
	"github.com/nao1215/corpuscrawl/internal/report"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the FAQ corpus as JSON and CSV",
		Long: `Export writes every FAQ question/answer pair collected by previous crawls
to faq_qa.json and faq_qa.csv in the output directory. Each row carries the
question, answer, category, keywords and source URL.

Examples:
  # Export everything into ./corpus
  corpuscrawl export

  # Export only the admissions FAQs into another directory
  corpuscrawl export --category Admissions -o exports`,
		Args: cobra.NoArgs,
		RunE: runExportCmd,
	}

	addStorageFlags(cmd)
	cmd.Flags().String("category", "", "Export only FAQs of this category")

	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	category, err := cmd.Flags().GetString("category")
	if err != nil {
		return err
	}
	return runExport(cmd.Context(), cfg, category, cmd.OutOrStdout())
}

func runExport(ctx context.Context, cfg *config.Config, category string, out io.Writer) error {
	db, err := database.Open(cfg.DatabaseDir(), database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database (run a crawl first): %w", err)
	}
	defer db.Close()

	faqs, err := db.ListFAQs(ctx, category)
	if err != nil {
		return fmt.Errorf("failed to list FAQs: %w", err)
	}
	paths, err := report.ExportFAQs(cfg.OutputDir, faqs)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Exported %d FAQ pairs\n", len(faqs))
	for _, p := range paths {
		fmt.Fprintf(out, "  %s\n", p)
	}
	return nil
}
