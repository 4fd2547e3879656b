package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// fetchCmd runs one manual refresh cycle and prints per-feed results.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one refresh cycle over all registered feeds",
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

		start := time.Now()
		if err := svc.RefreshAll(ctx); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, fd := range svc.Registry.Feeds() {
			fmt.Fprintf(out, "%-30s %-8s %3d items\n", fd.Name, fd.Status, len(svc.Cache.Get(fd.Name)))
		}
		fmt.Fprintf(out, "\n%d items cached in %s\n", svc.Cache.Len(), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
