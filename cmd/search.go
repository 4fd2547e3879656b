package cmd

import (
	"context"
	"fmt"
	"time"

	"glucofeed/internal/model"

	"github.com/spf13/cobra"
)

var (
	searchCategory string
	searchLimit    int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search cached content (fetches first when the cache is empty)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, rdb, err := buildService()
		if err != nil {
			return err
		}
		if rdb != nil {
			defer rdb.Close()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		if svc.Cache.Len() == 0 {
			if err := svc.RefreshAll(ctx); err != nil {
				return err
			}
		}

		results := svc.Query.Search(args[0], model.Category(searchCategory))
		if searchLimit > 0 && len(results) > searchLimit {
			results = results[:searchLimit]
		}

		out := cmd.OutOrStdout()
		for _, it := range results {
			fmt.Fprintf(out, "%s  [%s/%s]  %s\n  %s\n",
				it.Published.Format("2006-01-02"), it.Source, it.Sentiment, it.Title, it.URL)
		}
		fmt.Fprintf(out, "\n%d results\n", len(results))
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "restrict to one category")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum results to print")
	rootCmd.AddCommand(searchCmd)
}
