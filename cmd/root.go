package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"realty-sync/config"
	"realty-sync/storage"
	"realty-sync/utils"
)

var (
	cfg    *config.Config
	logger *utils.Logger
)

var rootCmd = &cobra.Command{
	Use:   "realty-sync",
	Short: "Setl real-estate feed importer and maintenance toolkit",
	Long: `realty-sync ingests the partner's Setl XML listings feed into PostgreSQL
and runs the maintenance jobs around it: duplicate cleanup, dead photo
link removal, feed-backed field enrichment and summary reporting.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() {
		cfg = config.Load()
		logger = utils.NewLogger()
	})
}

// openStore connects to the configured PostgreSQL database.
func openStore() (storage.OfferStore, error) {
	return storage.NewPostgresStore(cfg.DSN(), logger)
}
