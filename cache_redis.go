package taskq

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint for SCAN during prefix sweeps.
const scanBatch = 256

// RedisStore is a CacheStore backed by Redis. Transport and server errors are
// wrapped in ErrCacheUnavailable.
type RedisStore struct {
	rdb redis.UniversalClient
}

// NewRedisStore creates a RedisStore on rdb.
func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func unavailable(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrCacheUnavailable, err)
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return b, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return unavailable(s.rdb.Set(ctx, key, val, ttl).Err())
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return unavailable(s.rdb.Del(ctx, keys...).Err())
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}

// sweeper is the part of a node client a prefix sweep needs.
type sweeper interface {
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
}

// DeletePrefix SCANs for keys starting with prefix and deletes them in
// batches. The prefix must not contain glob metacharacters; keys built by
// internal/keys never do. SCAN carries no key, so on a cluster client every
// master is swept.
func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	cc, ok := s.rdb.(*redis.ClusterClient)
	if !ok {
		n, err := sweepPrefix(ctx, s.rdb, prefix)
		return n, unavailable(err)
	}

	var (
		mu    sync.Mutex
		total int
	)
	err := cc.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
		n, err := sweepPrefix(ctx, node, prefix)
		mu.Lock()
		total += n
		mu.Unlock()
		return err
	})
	return total, unavailable(err)
}

func sweepPrefix(ctx context.Context, c sweeper, prefix string) (int, error) {
	n := 0
	batch := make([]string, 0, scanBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		_, err := c.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Del(ctx, batch...)
			return nil
		})
		if err != nil {
			return err
		}
		n += len(batch)
		batch = batch[:0]
		return nil
	}

	iter := c.Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := flush(); err != nil {
				return n, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return n, err
	}
	return n, flush()
}
