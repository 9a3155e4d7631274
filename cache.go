package taskq

import (
	"context"
	"errors"
	"strconv"
	"time"

	ikeys "github.com/UniQw/taskq/internal/keys"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL bounds how long a cached list can outlive a missed invalidation.
const DefaultTTL = 300 * time.Second

// CacheStore is the external key-value service the cache layer runs on.
// Failures other than ErrCacheMiss are treated as ordinary errors, never as
// fatal events.
type CacheStore interface {
	// Get returns the stored bytes, or ErrCacheMiss when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores val under key, overwriting any previous value and resetting expiry.
	// A zero ttl stores without expiration.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// Delete removes the keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// Incr atomically increments the integer at key (absent counts as 0) and
	// returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
}

// PrefixDeleter is implemented by stores able to enumerate keys. The cache
// uses it to reclaim orphaned list entries eagerly on invalidation.
type PrefixDeleter interface {
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// ComputeFunc produces a fresh payload on a cache miss.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Cache is a read-through cache over a CacheStore with per-owner invalidation.
//
// List keys embed a per-owner namespace version. Invalidate bumps that version,
// so every key derived from an earlier query for the owner becomes unreachable
// at once, whatever its filter or page suffix. Orphaned entries expire via TTL
// or are swept immediately when the store implements PrefixDeleter.
//
// A read racing an invalidation may repopulate a key with data computed before
// the mutation; the TTL bounds how long that entry can be served.
type Cache struct {
	store CacheStore
	ttl   time.Duration
	log   Logger
	group *singleflight.Group
}

// NewCache wraps store. A non-positive ttl selects DefaultTTL; a nil logger
// discards output. When singleFlight is set, concurrent misses on one key
// share a single compute.
func NewCache(store CacheStore, ttl time.Duration, log Logger, singleFlight bool) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = noopLogger{}
	}
	c := &Cache{store: store, ttl: ttl, log: log}
	if singleFlight {
		c.group = &singleflight.Group{}
	}
	return c
}

// TTL returns the expiry applied by ReadThrough when none is given.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Lookup reads key straight from the store. The boolean is false on a miss.
func (c *Cache) Lookup(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.store.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// ReadThrough returns the cached payload for key, or runs compute, stores the
// result for ttl (the cache default when ttl <= 0) and returns it.
//
// Cache failures never fail the call: a broken Get falls through to compute
// and a broken Set is logged. Errors from compute are returned unchanged and
// nothing is cached. With single-flight enabled the shared compute runs
// detached from the caller's cancellation, keeping its values; a caller that
// gives up still waits for the shared result.
func (c *Cache) ReadThrough(ctx context.Context, key string, compute ComputeFunc, ttl time.Duration) ([]byte, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	b, hit, err := c.Lookup(ctx, key)
	if err != nil {
		c.log.Warnf("cache get failed, computing fresh: key=%s err=%v", key, err)
	} else if hit {
		c.log.Debugf("cache hit: key=%s", key)
		return b, nil
	}

	fill := func(ctx context.Context) ([]byte, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if serr := c.store.Set(ctx, key, v, ttl); serr != nil {
			c.log.Warnf("cache set failed: key=%s err=%v", key, serr)
		}
		return v, nil
	}

	if c.group == nil {
		return fill(ctx)
	}
	// The shared compute serves every waiter, so it must not inherit the
	// cancellation of whichever caller happened to start it.
	shared := context.WithoutCancel(ctx)
	v, err, wasShared := c.group.Do(key, func() (any, error) { return fill(shared) })
	if err != nil {
		return nil, err
	}
	if wasShared {
		c.log.Debugf("cache miss shared: key=%s", key)
	}
	return v.([]byte), nil
}

// Version returns the owner's current namespace version (0 when never bumped).
func (c *Cache) Version(ctx context.Context, ownerID string) (int64, error) {
	b, err := c.store.Get(ctx, ikeys.Version(ownerID))
	if errors.Is(err, ErrCacheMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// ListKey builds the cache key for q under the owner's current version.
func (c *Cache) ListKey(ctx context.Context, q Query) (string, error) {
	ver, err := c.Version(ctx, q.OwnerID)
	if err != nil {
		return "", err
	}
	return ikeys.List(q.OwnerID, ver, ikeys.ListParams{
		Status:   string(q.Filter.Status),
		Priority: string(q.Filter.Priority),
		Page:     q.Page,
		PageSize: q.PageSize,
	}), nil
}

// Invalidate makes every cached list for ownerID unreachable. It bumps the
// owner's namespace version, drops the legacy unsuffixed owner key and, when
// supported, sweeps the owner's list keys. Only the version bump is required
// to succeed; its failure is returned wrapped in ErrCacheUnavailable.
func (c *Cache) Invalidate(ctx context.Context, ownerID string) error {
	k := ikeys.For(ownerID)
	ver, err := c.store.Incr(ctx, k.Version)
	if err != nil {
		if errors.Is(err, ErrCacheUnavailable) {
			return err
		}
		return errors.Join(ErrCacheUnavailable, err)
	}
	if err := c.store.Delete(ctx, k.Owner); err != nil {
		c.log.Warnf("cache legacy delete failed: owner=%s err=%v", ownerID, err)
	}
	if pd, ok := c.store.(PrefixDeleter); ok {
		n, err := pd.DeletePrefix(ctx, k.ListPrefix)
		if err != nil {
			c.log.Warnf("cache sweep failed: owner=%s err=%v", ownerID, err)
		} else {
			c.log.Debugf("cache swept: owner=%s keys=%d", ownerID, n)
		}
	}
	c.log.Debugf("cache invalidated: owner=%s version=%d", ownerID, ver)
	return nil
}
