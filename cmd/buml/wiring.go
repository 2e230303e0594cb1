package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aretw0/buml"
	"github.com/aretw0/buml/internal/config"
	"github.com/aretw0/buml/internal/modeling"
	"github.com/aretw0/buml/pkg/adapters/file"
	bumlmcp "github.com/aretw0/buml/pkg/adapters/mcp"
	"github.com/aretw0/buml/pkg/adapters/memory"
	"github.com/aretw0/buml/pkg/adapters/redis"
	"github.com/aretw0/buml/pkg/adapters/remote"
	"github.com/aretw0/buml/pkg/codec"
	"github.com/aretw0/buml/pkg/generator"
	"github.com/aretw0/buml/pkg/observability"
	"github.com/aretw0/buml/pkg/persistence/middleware"
	"github.com/aretw0/buml/pkg/ports"
	"github.com/aretw0/buml/pkg/session"
)

// runtime is everything a command needs to serve tools.
type runtime struct {
	Server   *bumlmcp.Server
	Store    ports.TokenStore
	Registry *prometheus.Registry
	closers  []io.Closer
}

func (r *runtime) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openStore builds the configured token store. The locker is nil unless the
// backend can coordinate replicas.
func openStore(cfg config.Config) (ports.TokenStore, ports.Locker, io.Closer, error) {
	store, locker, closer, err := openBackend(cfg)
	if err != nil || len(cfg.Store.EncryptionKeys) == 0 {
		return store, locker, closer, err
	}
	keys, err := middleware.ParseKeys(cfg.Store.EncryptionKeys...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("store encryption: %w", err)
	}
	mw, err := middleware.NewEncryptionMiddleware(keys)
	if err != nil {
		return nil, nil, nil, err
	}
	return middleware.Chain(store, mw), locker, closer, nil
}

func openBackend(cfg config.Config) (ports.TokenStore, ports.Locker, io.Closer, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		return memory.NewStore(), nil, nil, nil
	case config.StoreFile:
		path := cfg.Store.Path
		if path == "" {
			path = filepath.Join(".buml", "models")
		}
		return file.New(path), nil, nil, nil
	case config.StoreRedis:
		rc := cfg.Store.Redis
		var opts []redis.Option
		if rc.Prefix != "" {
			opts = append(opts, redis.WithPrefix(rc.Prefix+"model:"))
		}
		if rc.TTL > 0 {
			opts = append(opts, redis.WithTTL(rc.TTL))
		}
		store := redis.New(rc.Addr, rc.Password, rc.DB, opts...)
		return store, redis.NewLocker(store.Client(), rc.Prefix), store, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// buildRuntime wires config into a tool server.
func buildRuntime(cfg config.Config, logger *slog.Logger) (*runtime, error) {
	rt := &runtime{Registry: prometheus.NewRegistry()}

	c := codec.New(codec.WithLogger(logger))
	service := modeling.NewService(
		modeling.WithLogger(logger),
		modeling.WithOutputDir(cfg.OutputDir),
		modeling.WithGeneratorOptions(generator.Options{
			ValidateSQL: cfg.ValidateSQL,
			BaseIRI:     cfg.RDFBaseIRI,
		}),
	)

	opts := []bumlmcp.Option{
		bumlmcp.WithLogger(logger),
		bumlmcp.WithDist(cfg.Dist),
	}
	if cfg.Metrics {
		rt.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		tools, err := observability.NewTools(rt.Registry, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, bumlmcp.WithMiddleware(tools.Middleware))
	}

	var active *session.ActiveModel
	if cfg.Dist {
		opts = append(opts, bumlmcp.WithLocator(remote.New(
			remote.WithTimeout(cfg.RemoteTimeout),
			remote.WithLogger(logger),
		)))
	} else {
		store, locker, closer, err := openStore(cfg)
		if err != nil {
			return nil, err
		}
		if closer != nil {
			rt.closers = append(rt.closers, closer)
		}
		rt.Store = store
		managerOpts := []session.Option{session.WithLogger(logger)}
		if locker != nil {
			managerOpts = append(managerOpts, session.WithLocker(locker, cfg.Store.Redis.LockTTL))
		}
		active = session.NewManager(store, c, managerOpts...).Active(cfg.Store.Key)
	}

	srv, err := bumlmcp.NewServer(service, active, c, opts...)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Server = srv
	logger.Debug("runtime ready", "version", buml.Version, "dist", cfg.Dist, "store", cfg.Store.Backend, "tools", len(srv.ToolNames()))
	return rt, nil
}
