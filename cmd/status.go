package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusJSON bool

// statusCmd prints the comprehensive status after one refresh cycle, so
// feed states and stats reflect current reachability.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show feed health, cache stats, and scheduler state",
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
		if err := svc.RefreshAll(ctx); err != nil {
			return err
		}

		st := svc.GetComprehensiveStatus()
		out := cmd.OutOrStdout()

		if statusJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		}

		fmt.Fprintf(out, "Feeds: %d total, %d active, %d error, %d inactive (error rate %.0f%%)\n",
			st.Health.TotalFeeds, st.Health.ActiveFeeds, st.Health.ErrorFeeds,
			st.Health.InactiveFeeds, st.Health.ErrorRate*100)
		for _, rec := range st.Health.Recommendations {
			fmt.Fprintf(out, "  ! %s\n", rec)
		}
		fmt.Fprintf(out, "Cached items: %d\n", st.Stats.Total)
		for _, d := range st.Stats.Daily {
			fmt.Fprintf(out, "  %s  %d\n", d.Date, d.Count)
		}
		fmt.Fprintf(out, "Auto-refresh: active=%v runs=%d\n", st.Refresh.Active, st.Refresh.RunCount)
		if st.Refresh.LastErr != "" {
			fmt.Fprintf(out, "  last error: %s\n", st.Refresh.LastErr)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(statusCmd)
}
