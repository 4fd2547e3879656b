// Package service is the composition root: it owns the registry,
// fetcher, cache, query engine, aggregator, and refresh scheduler, and
// exposes the operational entry points the CLI and serve mode use.
package service

import (
	"context"
	"log/slog"
	"time"

	"glucofeed/internal/apis"
	"glucofeed/internal/cache"
	"glucofeed/internal/config"
	"glucofeed/internal/feed"
	"glucofeed/internal/httpx"
	"glucofeed/internal/model"
	"glucofeed/internal/query"
	"glucofeed/internal/registry"
	"glucofeed/worker"
)

type Service struct {
	Registry   *registry.Registry
	Fetcher    *feed.Fetcher
	Cache      *cache.ContentCache
	Query      *query.Engine
	Aggregator *apis.Aggregator

	refresher       *worker.Refresher
	refreshInterval time.Duration
}

// ComprehensiveStatus is the operator-facing view over every subsystem.
type ComprehensiveStatus struct {
	Refresh model.AutoRefreshStatus `json:"refresh"`
	Health  model.FeedHealth        `json:"health"`
	Stats   model.ContentStats      `json:"stats"`
	Feeds   []model.FeedDescriptor  `json:"feeds"`
}

// New wires the service from configuration. store may be nil to run
// without snapshot persistence.
func New(cfg config.Config, store cache.Store) (*Service, error) {
	reg, err := registry.Load(cfg.Feeds.RegistryFile)
	if err != nil {
		return nil, err
	}

	baseDelay, err := time.ParseDuration(cfg.Feeds.RetryBaseDelay)
	if err != nil {
		return nil, err
	}
	refreshInterval, err := time.ParseDuration(cfg.Feeds.RefreshInterval)
	if err != nil {
		return nil, err
	}

	c := cache.New(store)
	s := &Service{
		Registry: reg,
		Fetcher: feed.NewFetcher(httpx.Client(), feed.Options{
			ItemsPerFeed: cfg.Feeds.ItemsPerFeed,
			Attempts:     cfg.Feeds.RetryAttempts,
			BaseDelay:    baseDelay,
		}),
		Cache:           c,
		Query:           query.New(c, reg),
		Aggregator:      apis.FromConfig(cfg.Aggregator, httpx.Client()),
		refreshInterval: refreshInterval,
	}
	s.refresher = worker.NewRefresher(s.RefreshAll)
	s.refresher.Interval = refreshInterval

	if store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Restore(ctx); err != nil {
			slog.Warn("service: snapshot restore failed, starting cold", "error", err)
		}
	}
	return s, nil
}

// RefreshAll runs one full fetch cycle over the registry and stores the
// results. Per-feed failures are contained inside the fetcher; the only
// error surfaced here is context cancellation.
func (s *Service) RefreshAll(ctx context.Context) error {
	results := s.Fetcher.FetchAll(ctx, s.Registry.Feeds())
	for name, items := range results {
		if len(items) == 0 {
			continue // keep the previous entry rather than blanking a feed
		}
		s.Cache.Put(ctx, name, items)
	}
	return ctx.Err()
}

// Refresher exposes the scheduler for serve mode.
func (s *Service) Refresher() *worker.Refresher { return s.refresher }

// StartAutoRefresh begins periodic refreshes. Zero interval uses the
// configured default. A second start while active is a no-op.
func (s *Service) StartAutoRefresh(interval time.Duration) {
	if interval <= 0 {
		interval = s.refreshInterval
	}
	s.refresher.StartAuto(interval)
}

// StopAutoRefresh stops periodic refreshes; safe to call when not
// running.
func (s *Service) StopAutoRefresh() {
	s.refresher.StopAuto()
}

// AutoRefreshStatus returns the scheduler snapshot.
func (s *Service) AutoRefreshStatus() model.AutoRefreshStatus {
	return s.refresher.Status()
}

// GetComprehensiveStatus combines scheduler, health, and corpus state.
func (s *Service) GetComprehensiveStatus() ComprehensiveStatus {
	feeds := s.Registry.Feeds()
	out := make([]model.FeedDescriptor, 0, len(feeds))
	for _, fd := range feeds {
		out = append(out, *fd)
	}
	return ComprehensiveStatus{
		Refresh: s.refresher.Status(),
		Health:  s.Query.Health(),
		Stats:   s.Query.Stats(),
		Feeds:   out,
	}
}
