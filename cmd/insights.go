package cmd

import (
	"context"
	"fmt"
	"time"

	"glucofeed/internal/ai"

	"github.com/spf13/cobra"
)

// insightsCmd produces a short AI digest of current trending topics.
// Requires an OpenAI key in the config.
var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Generate a short digest of what is trending",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.OpenAI.APIKey == "" {
			return fmt.Errorf("openai config missing: set openai.api_key in config.yaml")
		}

		svc, rdb, err := buildService()
		if err != nil {
			return err
		}
		if rdb != nil {
			defer rdb.Close()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := svc.RefreshAll(ctx); err != nil {
			return err
		}

		topics := svc.Query.TrendingTopics(10)
		items := svc.Cache.All()

		client := ai.NewOpenAI(ai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		})
		digest, err := client.TrendDigest(ctx, topics, items)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), digest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}
