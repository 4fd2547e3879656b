// Package storage persists feed snapshots in Redis so a restarted
// process serves content before its first refresh cycle completes.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"glucofeed/internal/model"
)

const snapshotTTL = 24 * time.Hour

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func feedKey(feed string) string {
	return fmt.Sprintf("feed:items:%s", feed)
}

// SaveFeed stores the feed's latest items as one JSON blob with a TTL.
// A feed that stops refreshing ages out rather than serving stale
// content forever.
func (s *RedisStore) SaveFeed(ctx context.Context, feed string, items []model.ContentItem) error {
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, feedKey(feed), b, snapshotTTL).Err()
}

// LoadAll returns every persisted feed snapshot.
func (s *RedisStore) LoadAll(ctx context.Context) (map[string][]model.ContentItem, error) {
	out := make(map[string][]model.ContentItem)
	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, feedKey("*"), 50).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			b, err := s.rdb.Get(ctx, key).Bytes()
			if err == redis.Nil {
				continue // expired between scan and get
			}
			if err != nil {
				return nil, err
			}
			var items []model.ContentItem
			if err := json.Unmarshal(b, &items); err != nil {
				return nil, fmt.Errorf("decode snapshot %s: %w", key, err)
			}
			name := strings.TrimPrefix(key, feedKey(""))
			out[name] = items
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return out, nil
}
