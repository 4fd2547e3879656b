package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var aggregateLimit int

// aggregateCmd runs one external API aggregation pass and prints the
// top items plus the data quality report.
var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Fetch and merge content from the external public APIs",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, rdb, err := buildService()
		if err != nil {
			return err
		}
		if rdb != nil {
			defer rdb.Close()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		res := svc.Aggregator.FetchAll(ctx)
		out := cmd.OutOrStdout()

		items := res.Items
		if aggregateLimit > 0 && len(items) > aggregateLimit {
			items = items[:aggregateLimit]
		}
		for _, si := range items {
			fmt.Fprintf(out, "%6.1f  [%s]  %s\n        %s\n",
				si.Relevance, si.Item.Source, si.Item.Title, si.Item.URL)
		}

		fmt.Fprintf(out, "\nData quality (overall %.0f%%):\n", res.Quality.Overall)
		for _, q := range res.Quality.Sources {
			flag := " "
			if q.Flagged {
				flag = "!"
			}
			fmt.Fprintf(out, "%s %-15s %3d/%3d valid (%.0f%%)\n", flag, q.Source, q.Valid, q.Total, q.Score)
			if q.Recommendation != "" {
				fmt.Fprintf(out, "    %s\n", q.Recommendation)
			}
		}
		return nil
	},
}

func init() {
	aggregateCmd.Flags().IntVar(&aggregateLimit, "limit", 20, "maximum items to print")
	rootCmd.AddCommand(aggregateCmd)
}
