package cmd

import (
	"glucofeed/internal/cache"
	"glucofeed/internal/redisclient"
	"glucofeed/internal/service"
	"glucofeed/internal/storage"

	"github.com/redis/go-redis/v9"
)

// buildService wires the service from the loaded config, attaching the
// Redis snapshot store when an address is configured. The returned
// closer is nil when Redis is not in use.
func buildService() (*service.Service, *redis.Client, error) {
	cfg := GetConfig()

	var store cache.Store
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redisclient.New(cfg.Redis)
		store = storage.NewRedisStore(rdb)
	}

	svc, err := service.New(cfg, store)
	if err != nil {
		if rdb != nil {
			rdb.Close()
		}
		return nil, nil, err
	}
	return svc, rdb, nil
}
