package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"realty-sync/services"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Ingest the Setl XML feed into the offer database",
	RunE:  runImport,
}

func init() {
	importCmd.Flags().String("path", "", "Feed file path (defaults to FEED_PATH)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		path = cfg.FeedPath
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	importer := services.NewImporter(store, logger)
	report, err := importer.Run(path)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d offers (%d skipped, %d failed)\n",
		report.Imported, report.Skipped, report.Failed)
	return nil
}
