package main

import (
	"context"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/filemanager/conflict"
	"github.com/rise-and-shine/filemanager/conflict/redisindex"
	"github.com/rise-and-shine/filemanager/filestore"
	"github.com/rise-and-shine/filemanager/filestore/memstore"
	"github.com/rise-and-shine/filemanager/filestore/miniowr"
	"github.com/rise-and-shine/filemanager/filestore/s3wr"
	"github.com/rise-and-shine/filemanager/observability/logger"
	"github.com/rise-and-shine/filemanager/observability/metrics"
	"github.com/rise-and-shine/filemanager/rediswr"
	"github.com/rise-and-shine/filemanager/registry"
)

// app holds the components shared by every command.
type app struct {
	cfg      Config
	log      logger.Logger
	metrics  *metrics.Metrics
	registry *registry.Registry

	closers []func() error
}

func newApp(ctx context.Context, cfg Config) (*app, error) {
	a := &app{
		cfg:     cfg,
		log:     logger.Named("app"),
		metrics: metrics.New(),
	}

	store, err := newStore(ctx, cfg.Storage)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	resolverOpts := []conflict.Option{
		conflict.WithMetrics(a.metrics),
		conflict.WithLogger(logger.Named("conflict")),
	}

	if cfg.NameIndex.Enabled {
		rdb, err := rediswr.Connect(ctx, *cfg.NameIndex.Redis)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		a.closers = append(a.closers, rdb.Close)
		resolverOpts = append(resolverOpts, conflict.WithIndex(redisindex.New(rdb, cfg.NameIndex.Index)))
		a.log.With("key_prefix", cfg.NameIndex.Index.KeyPrefix).Info("name index enabled")
	}

	a.registry = registry.New(store,
		registry.WithResolver(conflict.New(store, resolverOpts...)),
		registry.WithMetrics(a.metrics),
		registry.WithLogger(logger.Named("registry")),
	)

	return a, nil
}

func newStore(ctx context.Context, cfg StorageConfig) (filestore.Store, error) {
	switch cfg.Backend {
	case backendMinio:
		c, err := miniowr.New(ctx, *cfg.Minio)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return c, nil
	case backendS3:
		c, err := s3wr.New(ctx, *cfg.S3)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return c, nil
	case backendMemory:
		return memstore.New(cfg.Memory), nil
	default:
		return nil, errx.New("unknown storage backend", errx.WithDetails(errx.D{"backend": cfg.Backend}))
	}
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Errorx(errx.Wrap(err))
		}
	}
}
