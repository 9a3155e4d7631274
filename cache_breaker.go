package taskq

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures BreakerStore.
type BreakerConfig struct {
	// Name labels the breaker in logs.
	Name string
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32
	// Interval is the cyclic period of the closed state for clearing counts.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	Logger  Logger
}

// DefaultBreakerConfig returns a sensible default configuration.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "cache",
		FailureThreshold: 5,
		MaxRequests:      1,
		Interval:         10 * time.Second,
		Timeout:          5 * time.Second,
	}
}

// BreakerStore guards a CacheStore with a circuit breaker. While the breaker
// is open every call fails fast with ErrCacheUnavailable. Cache misses count
// as successes.
type BreakerStore struct {
	next CacheStore
	cb   *gobreaker.CircuitBreaker[[]byte]
}

// NewBreakerStore wraps next.
func NewBreakerStore(next CacheStore, cfg BreakerConfig) *BreakerStore {
	def := DefaultBreakerConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = def.MaxRequests
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	log := cfg.Logger
	if log == nil {
		log = noopLogger{}
	}
	st := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("circuit breaker state changed: name=%s from=%s to=%s", name, from.String(), to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCacheMiss)
		},
	}
	return &BreakerStore{next: next, cb: gobreaker.NewCircuitBreaker[[]byte](st)}
}

// State reports the breaker state.
func (s *BreakerStore) State() gobreaker.State { return s.cb.State() }

func (s *BreakerStore) do(fn func() ([]byte, error)) ([]byte, error) {
	b, err := s.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Join(ErrCacheUnavailable, err)
	}
	return b, err
}

func (s *BreakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.do(func() ([]byte, error) { return s.next.Get(ctx, key) })
}

func (s *BreakerStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	_, err := s.do(func() ([]byte, error) { return nil, s.next.Set(ctx, key, val, ttl) })
	return err
}

func (s *BreakerStore) Delete(ctx context.Context, keys ...string) error {
	_, err := s.do(func() ([]byte, error) { return nil, s.next.Delete(ctx, keys...) })
	return err
}

func (s *BreakerStore) Incr(ctx context.Context, key string) (int64, error) {
	var n int64
	_, err := s.do(func() ([]byte, error) {
		v, err := s.next.Incr(ctx, key)
		n = v
		return nil, err
	})
	return n, err
}

// DeletePrefix forwards to the wrapped store when it supports sweeps.
func (s *BreakerStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	pd, ok := s.next.(PrefixDeleter)
	if !ok {
		return 0, nil
	}
	var n int
	_, err := s.do(func() ([]byte, error) {
		v, err := pd.DeletePrefix(ctx, prefix)
		n = v
		return nil, err
	})
	return n, err
}
