package cmd

import (
	"github.com/spf13/cobra"

	"realty-sync/services"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print a summary report over the offer database",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	offers, err := store.FetchAll()
	if err != nil {
		return err
	}

	svc := services.NewStatsService(logger)
	svc.Print(svc.Generate(offers))
	return nil
}
