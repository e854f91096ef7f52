package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/moviesearch/internal/metrics"
	"github.com/kailas-cloud/moviesearch/internal/usecase/backfill"
)

func newBackfillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Embed the plot of every movie missing a plotEmbedding",
		Long: `Scan movie:* keys, embed plots of movies that have one but no embedding yet,
and write the vectors back. Safe to re-run: embedded movies are skipped.`,
		Args: cobra.NoArgs,
		RunE: runBackfill,
	}
	cmd.Flags().Int("workers", 0, "override backfill.workers (0 keeps config)")
	cmd.Flags().Int("batch-size", 0, "override backfill.batch_size (0 keeps config)")
	return cmd
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	bc := a.cfg.Backfill
	if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
		bc.Workers = n
	}
	if n, _ := cmd.Flags().GetInt("batch-size"); n > 0 {
		bc.BatchSize = n
	}

	job := backfill.New(a.movies, a.embedder, backfill.Options{
		ScanCount:     bc.ScanCount,
		BatchSize:     bc.BatchSize,
		Workers:       bc.Workers,
		ProgressEvery: bc.ProgressEvery,
		Saved:         metrics.BackfillDocumentsSaved,
		FailedBatches: metrics.BackfillFailedBatches,
	}, a.logger)

	rep, err := job.Run(cmd.Context())
	fmt.Fprintf(cmd.OutOrStdout(),
		"scanned=%d candidates=%d saved=%d failed_batches=%d duration=%.2fs\n",
		rep.Scanned, rep.Candidates, rep.Saved, rep.FailedBatches, rep.Duration.Seconds())
	if err != nil {
		return fmt.Errorf("backfill: %w", err)
	}
	if rep.FailedBatches > 0 {
		return fmt.Errorf("backfill: %d batches failed", rep.FailedBatches)
	}
	return nil
}
