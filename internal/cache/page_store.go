package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint used when sweeping cached pages.
const scanBatch = 200

// PageStore keeps rendered responses for the page cache middleware.
// It satisfies fiber.Storage.
type PageStore struct {
	rdb    *redis.Client
	prefix string
}

// NewPageStore returns a PageStore writing keys under PagePrefix.
func NewPageStore(rdb *redis.Client) *PageStore {
	return &PageStore{rdb: rdb, prefix: PagePrefix}
}

// Get returns nil, nil when the key does not exist.
func (s *PageStore) Get(key string) ([]byte, error) {
	if s.rdb == nil || key == "" {
		return nil, nil
	}
	val, err := s.rdb.Get(context.Background(), s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Set stores val for exp; zero exp means no expiry.
func (s *PageStore) Set(key string, val []byte, exp time.Duration) error {
	if s.rdb == nil || key == "" || len(val) == 0 {
		return nil
	}
	return s.rdb.Set(context.Background(), s.prefix+key, val, exp).Err()
}

func (s *PageStore) Delete(key string) error {
	if s.rdb == nil || key == "" {
		return nil
	}
	return s.rdb.Del(context.Background(), s.prefix+key).Err()
}

// Reset drops every cached page.
func (s *PageStore) Reset() error {
	return s.Clear(context.Background())
}

// Close is a no-op; the Redis client is owned by the caller.
func (s *PageStore) Close() error {
	return nil
}

// Clear removes every key under the page prefix.
func (s *PageStore) Clear(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := s.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return s.rdb.Del(ctx, batch...).Err()
	}
	return nil
}
