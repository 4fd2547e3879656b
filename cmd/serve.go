package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"glucofeed/worker"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the refresh and aggregation workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		svc, rdb, err := buildService()
		if err != nil {
			return err
		}
		if rdb != nil {
			defer rdb.Close()
		}

		aggInterval, err := time.ParseDuration(cfg.Aggregator.Interval)
		if err != nil {
			return err
		}

		slog.Info("starting feed refresher", "interval", svc.Refresher().Interval)
		ws := []worker.Worker{
			svc.Refresher(),
			&worker.APICollector{Aggregator: svc.Aggregator, Interval: aggInterval},
		}

		mgr := worker.NewManager(ws...)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			log.Printf("received signal: %s, shutting down", s)
			cancel()
		}()

		return mgr.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
