package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/corpuscrawl/internal/config"
	"github.com/nao1215/corpuscrawl/internal/database"
	"github.com/nao1215/corpuscrawl/internal/report"
	"github.com/nao1215/corpuscrawl/internal/state"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the saved crawl checkpoint",
		Long: `Status prints the last checkpoint of the crawl: run ID, schema version,
the number of visited, pending and fingerprinted URLs, and the outcome
counters including per-tier totals.

Examples:
  # Checkpoint in ./corpus/.crawler_state.json
  corpuscrawl status

  # Checkpoint kept in Redis, listing failed URLs
  corpuscrawl status --state-backend redis --redis-addr localhost:6379 --failed`,
		Args: cobra.NoArgs,
		RunE: runStatusCmd,
	}

	addStorageFlags(cmd)
	cmd.Flags().Bool("failed", false, "List the URLs that failed permanently")

	return cmd
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	listFailed, err := cmd.Flags().GetBool("failed")
	if err != nil {
		return err
	}
	return runStatus(cmd.Context(), cfg, listFailed, cmd.OutOrStdout())
}

func runStatus(ctx context.Context, cfg *config.Config, listFailed bool, out io.Writer) error {
	var db *database.CrawlDB
	if cfg.StateBackend == config.BackendSQLite {
		var err error
		db, err = database.Open(cfg.DatabaseDir(), database.Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
	}

	store, closeStore, err := openStore(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	snap, err := store.Load(ctx)
	if errors.Is(err, state.ErrNoCheckpoint) {
		fmt.Fprintln(out, "No checkpoint found. Start a crawl with: corpuscrawl crawl")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	if _, err := report.NewSummaryWriter(out).WriteSnapshot(snap); err != nil {
		return err
	}
	if listFailed {
		fmt.Fprintf(out, "\nFailed URLs (%d):\n", len(snap.Failed))
		for _, u := range snap.Failed {
			fmt.Fprintf(out, "  %s\n", u)
		}
	}
	return nil
}
