package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var trendingLimit int

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Show trending keywords across cached content",
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

		out := cmd.OutOrStdout()
		for i, t := range svc.Query.TrendingTopics(trendingLimit) {
			fmt.Fprintf(out, "%2d. %-25s %4d  %s\n", i+1, t.Keyword, t.Count, t.Sentiment)
		}
		return nil
	},
}

func init() {
	trendingCmd.Flags().IntVar(&trendingLimit, "limit", 10, "number of topics to show")
	rootCmd.AddCommand(trendingCmd)
}
