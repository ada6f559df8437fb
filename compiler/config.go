package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/wudi/texkit/cache"
	"github.com/wudi/texkit/config"
	"github.com/wudi/texkit/observability"
	"github.com/wudi/texkit/raster"
	"github.com/wudi/texkit/raster/chrome"
)

// FromConfig assembles a Compiler with the backend and cache cfg selects.
// The returned close func releases the browser and cache connections.
func FromConfig(ctx context.Context, cfg *config.Config, logger observability.Logger, metrics observability.Metrics) (*Compiler, func() error, error) {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	opts := []Option{WithLogger(logger), WithMetrics(metrics)}
	w, h := cfg.Page.PagePoints()
	opts = append(opts, WithPageSize(w, h), WithLanguage(cfg.Page.Language))

	switch cfg.Render.Backend {
	case config.BackendChrome:
		r, err := chrome.New(chrome.Config{
			Settle:   cfg.Render.SettleDelay.Std(),
			Scale:    cfg.Render.Scale,
			ExecPath: cfg.Render.ChromePath,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("start chrome: %w", err)
		}
		closers = append(closers, r.Close)
		opts = append(opts, WithRasterizer(r))
	default:
		e, err := raster.NewEngine(
			raster.WithScale(cfg.Render.Scale),
			raster.WithSettleDelay(cfg.Render.SettleDelay.Std()),
			raster.WithMaxHeight(cfg.Render.MaxHeightPx),
			raster.WithLogger(logger),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("create rasterizer: %w", err)
		}
		opts = append(opts, WithRasterizer(e))
	}

	switch cfg.Cache.Type {
	case config.CacheMemory:
		store, err := cache.NewMemoryStore(cfg.Cache.Size)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("create memory cache: %w", err)
		}
		closers = append(closers, store.Close)
		opts = append(opts, WithCache(store, cfg.Cache.TTL.Std()))
	case config.CacheRedis:
		store, err := cache.NewRedisStore(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		}, logger)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("connect redis cache: %w", err)
		}
		closers = append(closers, store.Close)
		opts = append(opts, WithCache(store, cfg.Cache.TTL.Std()))
	}

	c, err := New(opts...)
	if err != nil {
		_ = closeAll()
		return nil, nil, err
	}
	return c, closeAll, nil
}
