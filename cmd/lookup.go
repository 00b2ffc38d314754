package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"realty-sync/services"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <internal-id>...",
	Short: "Show feed-only fields for offers via the fallback cache",
	Long: `The database stores only a subset of feed fields. lookup re-reads the
feed through the mtime-gated cache and prints the fields that exist only
there (plan and floor images) for the given internal ids.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().String("feed", "", "Feed file path (defaults to FEED_PATH)")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	feedPath, _ := cmd.Flags().GetString("feed")
	if feedPath == "" {
		feedPath = cfg.FeedPath
	}

	cache := services.NewCache(feedPath, logger)
	records := cache.Lookup(args)

	for _, id := range args {
		rec := records[id]
		if rec == nil {
			fmt.Printf("%s: not in feed\n", id)
			continue
		}
		fmt.Printf("%s: %s\n", id, rec.Address)
		fmt.Printf("  photos: %d, plans: %d, floor plans: %d\n",
			len(rec.PhotoList()), len(rec.PlanPhotos), len(rec.FloorPhotos))
		for _, url := range rec.PlanPhotos {
			fmt.Printf("  plan:  %s\n", url)
		}
		for _, url := range rec.FloorPhotos {
			fmt.Printf("  floor: %s\n", url)
		}
	}
	return nil
}
