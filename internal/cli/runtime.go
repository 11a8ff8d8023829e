package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ZaguanLabs/bearchat"
	"github.com/ZaguanLabs/bearchat/cache"
	"github.com/ZaguanLabs/bearchat/config"
	"github.com/ZaguanLabs/bearchat/metrics"
	"github.com/ZaguanLabs/bearchat/provider"
	"github.com/ZaguanLabs/bearchat/secret"
	"github.com/ZaguanLabs/bearchat/store"
)

// runtime holds the components a command works with. Close releases them.
type runtime struct {
	store    store.Store
	cache    *cache.Cache
	settings *config.Provider
	metrics  *metrics.Collector
	closers  []func() error
}

func (a *app) openRuntime(ctx context.Context) (*runtime, error) {
	s, closer, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	rt := &runtime{store: s, metrics: metrics.NewCollector()}
	if closer != nil {
		rt.closers = append(rt.closers, closer)
	}

	var sealer secret.Sealer
	if passphrase := a.v.GetString("secret.passphrase"); passphrase != "" {
		sealer, err = secret.NewAESSealer(passphrase)
		if err != nil {
			rt.Close()
			return nil, err
		}
	}

	rt.settings = config.NewProvider(s, sealer, config.WithLogger(a.logger))
	rt.cache = cache.New(s,
		cache.WithMaxItems(a.v.GetInt("cache.max_items")),
		cache.WithExpiration(a.v.GetDuration("cache.expiration")),
		cache.WithLogger(a.logger),
	)

	return rt, nil
}

func (a *app) openStore(ctx context.Context) (store.Store, func() error, error) {
	backend := a.v.GetString("storage.backend")
	switch backend {
	case "memory":
		return store.NewMemoryStore(), nil, nil

	case "sqlite":
		path := a.v.GetString("storage.path")
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, nil, fmt.Errorf("creating storage directory: %w", err)
		}
		s, err := store.NewSQLiteStore(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		a.logger.Debug("opened sqlite store", zap.String("path", path))
		return s, s.Close, nil

	case "redis":
		s, err := store.NewRedisStore(ctx, store.RedisConfig{URL: a.v.GetString("storage.redis_url")})
		if err != nil {
			return nil, nil, err
		}
		a.logger.Debug("connected to redis store")
		return s, s.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q (want memory, sqlite or redis)", backend)
	}
}

// Close releases the runtime's resources.
func (rt *runtime) Close() error {
	var errs []error
	for _, closer := range rt.closers {
		errs = append(errs, closer())
	}
	return errors.Join(errs...)
}

// loadSettings returns the stored settings with the OPENAI_API_KEY
// environment variable taking precedence over the stored key.
func (a *app) loadSettings(ctx context.Context, rt *runtime) (config.Settings, error) {
	settings, err := rt.settings.Load(ctx)
	envKey := GetOpenAIKey()
	if err != nil {
		if envKey == "" {
			return config.Settings{}, err
		}
		a.logger.Debug("using defaults with API key from environment", zap.Error(err))
		settings = config.Defaults()
	}
	if envKey != "" {
		settings.APIKey = envKey
	}
	return settings, nil
}

// newTranslator builds the remote translator for the current settings.
func (a *app) newTranslator(ctx context.Context, rt *runtime) (bearchat.RemoteTranslator, error) {
	settings, err := a.loadSettings(ctx, rt)
	if err != nil {
		return nil, err
	}

	openai, err := provider.NewOpenAITranslator(settings.OpenAIConfig(), provider.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}

	if rpm := a.v.GetInt("translate.rpm"); rpm > 0 {
		return bearchat.NewRateLimitedTranslator(openai, bearchat.RateLimitConfig{RequestsPerMinute: rpm}), nil
	}
	return openai, nil
}

// newOrchestrator builds the translation pipeline for the current settings.
func (a *app) newOrchestrator(ctx context.Context, rt *runtime, opts ...bearchat.OrchestratorOption) (*bearchat.Orchestrator, error) {
	translator, err := a.newTranslator(ctx, rt)
	if err != nil {
		return nil, err
	}

	from, to, err := a.languagePair()
	if err != nil {
		return nil, err
	}

	all := append([]bearchat.OrchestratorOption{
		bearchat.WithLanguages(from, to),
		bearchat.WithLogger(a.logger),
		bearchat.WithMetrics(rt.metrics),
	}, opts...)

	return bearchat.NewOrchestrator(translator, rt.cache, all...)
}

// serveMetrics exposes the runtime's metrics when an address is configured.
// The returned function shuts the server down.
func (a *app) serveMetrics(rt *runtime) func() {
	addr := a.v.GetString("metrics.addr")
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	a.logger.Info("serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
