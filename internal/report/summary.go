package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/corpuscrawl/internal/model"
	"github.com/nao1215/corpuscrawl/internal/state"
)

// SummaryWriter outputs human-readable run summaries for terminal display.
type SummaryWriter struct {
	output io.Writer
}

// NewSummaryWriter creates a SummaryWriter that outputs to the given writer.
func NewSummaryWriter(output io.Writer) *SummaryWriter {
	return &SummaryWriter{output: output}
}

// WriteStats outputs the counters of a finished or suspended run.
// pending is the number of URLs still in the frontier.
func (w *SummaryWriter) WriteStats(stats model.Stats, pending int) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "CRAWL SUMMARY")
	writeStats(&sb, stats)
	fmt.Fprintf(&sb, "Frontier:        %d pending\n", pending)
	if !stats.FinishedAt.IsZero() && !stats.StartedAt.IsZero() {
		fmt.Fprintf(&sb, "Duration:        %s\n", stats.FinishedAt.Sub(stats.StartedAt).Round(time.Second))
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// WriteSnapshot outputs the contents of a checkpoint.
func (w *SummaryWriter) WriteSnapshot(snap *state.Snapshot) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "CHECKPOINT STATUS")
	fmt.Fprintf(&sb, "Run ID:          %s\n", snap.RunID)
	fmt.Fprintf(&sb, "Schema Version:  %d\n", snap.SchemaVersion)
	fmt.Fprintf(&sb, "Saved At:        %s\n", snap.SavedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Visited:         %d\n", len(snap.Visited))
	fmt.Fprintf(&sb, "Frontier:        %d pending\n", len(snap.Frontier))
	fmt.Fprintf(&sb, "Fingerprints:    %d\n", len(snap.Fingerprints))
	sb.WriteString("\n")
	writeStats(&sb, snap.Stats)

	if len(snap.Frontier) > 0 {
		sb.WriteString("Next URLs:\n")
		for _, e := range snap.Frontier[:min(len(snap.Frontier), 5)] {
			fmt.Fprintf(&sb, "  [%s] %s\n", e.Tier, e.URL)
		}
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

func writeBanner(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", (70-len(title))/2))
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

func writeStats(sb *strings.Builder, s model.Stats) {
	fmt.Fprintf(sb, "Pages Scraped:   %d\n", s.Scraped)
	fmt.Fprintf(sb, "Pages Skipped:   %d (low quality %d, duplicate %d, not HTML %d, disallowed %d)\n",
		s.Skipped(), s.LowQuality, s.Duplicate, s.NotHTML, s.Disallowed)
	fmt.Fprintf(sb, "Pages Failed:    %d\n", s.Failed)
	fmt.Fprintf(sb, "FAQ Items:       %d\n", s.FAQItems)
	fmt.Fprintf(sb, "Discovered:      %d (%d from links)\n", s.Discovered, s.LinksDiscovered)
	sb.WriteString("By Priority:\n")
	for _, tier := range model.Tiers {
		fmt.Fprintf(sb, "  %-8s %d\n", tier.String()+":", s.ByTier[tier])
	}
}
