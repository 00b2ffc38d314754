package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"realty-sync/services"
)

var photosCmd = &cobra.Command{
	Use:   "photos",
	Short: "Probe offer photo URLs and remove the dead ones",
	Long: `Checks every photo URL of up to --limit offers with a HEAD request.
URLs answering below status 400 stay; everything else (error statuses,
connection failures, timeouts) is dropped from the offer's photo list.`,
	RunE: runPhotos,
}

func init() {
	photosCmd.Flags().Int("limit", 0, "Offers to check this run (defaults to PHOTO_LIMIT)")
	photosCmd.Flags().Duration("timeout", 0, "Per-request timeout (defaults to PHOTO_TIMEOUT)")
	photosCmd.Flags().Int("concurrency", 0, "Concurrent probes (defaults to PHOTO_CONCURRENCY)")
	photosCmd.Flags().Bool("dry-run", false, "Report dead links without rewriting offers")
	rootCmd.AddCommand(photosCmd)
}

func runPhotos(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if limit <= 0 {
		limit = cfg.PhotoLimit
	}
	if timeout <= 0 {
		timeout = cfg.PhotoTimeout
	}
	if concurrency <= 0 {
		concurrency = cfg.PhotoConcurrency
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if dryRun {
		fmt.Println(color.YellowString("DRY RUN - offers will not be rewritten"))
	}

	checker := services.NewChecker(store, logger, timeout, concurrency, cfg.PhotoRatePerSec)

	start := time.Now()
	report, err := checker.Run(context.Background(), limit, dryRun)
	if err != nil {
		return err
	}

	fmt.Printf("Checked %d offers in %v: %d changed, %d links removed\n",
		report.Processed, time.Since(start).Round(time.Second), report.Changed, report.RemovedLinks)
	return nil
}
