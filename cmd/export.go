package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"realty-sync/storage"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the offer database to CSV",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("out", "./output/offers.csv", "Output CSV path")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	offers, err := store.FetchAll()
	if err != nil {
		return err
	}

	writer, err := storage.NewCSVWriter(out)
	if err != nil {
		return err
	}
	defer writer.Close()

	if err := writer.WriteOffers(offers); err != nil {
		return err
	}

	fmt.Printf("Exported %d offers to %s\n", len(offers), out)
	return nil
}
