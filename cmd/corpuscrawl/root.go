package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for corpuscrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpuscrawl",
		Short: "Priority-ordered, resumable crawler that builds a structured site corpus",
		Long: `corpuscrawl crawls a target website starting from seed URLs and sitemaps.
High-value pages (FAQ, admissions, programs, tuition, housing) are fetched
first. Each page is reduced to a structured document with FAQ pairs, tables,
lists and contact details, and thin or duplicate pages are skipped.

Crawl state is checkpointed so an interrupted crawl can be resumed with
--resume.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
