package main

import (
	"context"
	"fmt"
	"io"

	"github.com/UniQw/taskq"
	"github.com/UniQw/taskq/internal/config"
	"github.com/UniQw/taskq/pgstore"
	"github.com/UniQw/taskq/sqlitestore"
	"github.com/redis/go-redis/v9"
)

// app is the wired service for one command invocation.
type app struct {
	svc     *taskq.Service
	log     taskq.Logger
	closers []func()
}

func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	log := &taskq.FmtLogger{Min: taskq.ParseLevel(cfg.LogLevel), Out: logOut}
	a := &app{log: log}

	store, err := a.openStore(ctx, cfg)
	if err != nil {
		a.close()
		return nil, err
	}
	cache, err := a.openCache(ctx, cfg)
	if err != nil {
		a.close()
		return nil, err
	}

	a.svc = taskq.NewService(store, cache,
		taskq.WithTTL(cfg.CacheTTL),
		taskq.WithLogger(log),
		taskq.WithSingleFlight(cfg.SingleFlight),
	)
	return a, nil
}

func (a *app) openStore(ctx context.Context, cfg *config.Config) (taskq.TaskStore, error) {
	switch cfg.Store {
	case config.StorePostgres:
		s, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		a.log.Debugf("task store: postgres")
		return s, nil
	default:
		s, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = s.Close() })
		a.log.Debugf("task store: sqlite path=%s", cfg.SQLitePath)
		return s, nil
	}
}

func (a *app) openCache(ctx context.Context, cfg *config.Config) (taskq.CacheStore, error) {
	if cfg.RedisURL == "" {
		a.log.Debugf("cache store: in-process")
		return taskq.NewMemoryStore(), nil
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opt)
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	if err := rdb.Ping(ctx).Err(); err != nil {
		a.log.Warnf("redis unreachable, continuing degraded: addr=%s err=%v", opt.Addr, err)
	}
	a.log.Debugf("cache store: redis addr=%s", opt.Addr)
	return taskq.NewBreakerStore(taskq.NewRedisStore(rdb), taskq.BreakerConfig{
		FailureThreshold: uint32(cfg.BreakerFailures),
		Timeout:          cfg.BreakerTimeout,
		Logger:           a.log,
	}), nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
