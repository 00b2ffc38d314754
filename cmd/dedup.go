package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"realty-sync/services"
)

var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Delete duplicate offers (same address, flat number and area)",
	Long: `Scans the offer database for records describing the same physical unit:
identical normalized address and flat number, and total area equal after
rounding to two decimals. Within each group the most recently updated
record survives and the rest are deleted.`,
	RunE: runDedup,
}

func init() {
	dedupCmd.Flags().Bool("dry-run", false, "Report candidates without deleting")
	rootCmd.AddCommand(dedupCmd)
}

func runDedup(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if dryRun {
		fmt.Println(color.YellowString("DRY RUN - no offers will be deleted"))
	}

	resolver := services.NewResolver(store, logger)
	report, err := resolver.Run(dryRun)
	if err != nil {
		return err
	}

	if report.Duplicates == 0 {
		fmt.Printf("No duplicates among %d eligible offers\n", report.Scanned)
		return nil
	}
	if dryRun {
		fmt.Printf("Would delete %d of %d eligible offers\n", report.Duplicates, report.Scanned)
		return nil
	}
	fmt.Printf("Deleted %d of %d eligible offers\n", report.Deleted, report.Scanned)
	return nil
}
