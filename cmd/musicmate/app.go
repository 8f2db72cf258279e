package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/musicmate/internal/adapters/agentapi"
	"github.com/ewilliams-labs/musicmate/internal/adapters/gcs"
	"github.com/ewilliams-labs/musicmate/internal/adapters/gemini"
	"github.com/ewilliams-labs/musicmate/internal/adapters/memory"
	"github.com/ewilliams-labs/musicmate/internal/adapters/ollama"
	"github.com/ewilliams-labs/musicmate/internal/adapters/spotify"
	"github.com/ewilliams-labs/musicmate/internal/adapters/sqlite"
	"github.com/ewilliams-labs/musicmate/internal/adapters/terminal"
	"github.com/ewilliams-labs/musicmate/internal/config"
	"github.com/ewilliams-labs/musicmate/internal/core/ports"
	"github.com/ewilliams-labs/musicmate/internal/core/services"
	"github.com/ewilliams-labs/musicmate/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// app holds the wired components for one command invocation.
type app struct {
	store    *services.Store
	orch     *services.Orchestrator
	renderer *terminal.Renderer
	closers  []func(context.Context) error
}

// newApp wires storage, the agent and the optional link resolver.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}

	kv, err := a.openKV(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	a.store = services.NewStore(kv, logger)
	if err := a.store.Load(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	a.store.SetSampleMode(sampleMode)

	agent, err := newAgent(ctx, cfg.Agent, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.orch = services.NewOrchestrator(agent, a.store, cfg.Agent.ID, logger)

	if cfg.Spotify.Enabled {
		resolver, err := spotify.NewResolver(ctx, cfg.Spotify, logger)
		if err != nil {
			logger.Warn("main: spotify link lookup disabled", zap.Error(err))
		} else {
			a.orch.WithLinkResolver(resolver)
		}
	}

	a.renderer, err = terminal.NewRenderer(0, plain)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openKV(ctx context.Context, sc config.StorageConfig, logger *zap.Logger) (ports.KVStore, error) {
	var kv ports.KVStore
	switch sc.Driver {
	case config.DriverSQLite:
		db, err := sqlite.NewAdapter(sc.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
		kv = db
	case config.DriverGCS:
		bucket, err := gcs.NewStore(ctx, sc.Bucket, sc.Prefix, sc.CredentialsFile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return bucket.Close() })
		kv = bucket
	case config.DriverMemory:
		kv = memory.NewStore()
	default:
		return nil, fmt.Errorf("main: unknown storage driver %q", sc.Driver)
	}

	if sc.WriteBehind > 0 {
		pool := worker.NewPool(kv, sc.WriteBehind, logger)
		pool.Start()
		// Flush before the backing store closes.
		a.closers = append(a.closers, pool.Stop)
		kv = pool
	}
	return kv, nil
}

func newAgent(ctx context.Context, ac config.AgentConfig, logger *zap.Logger) (ports.AgentCaller, error) {
	switch ac.Provider {
	case config.ProviderHTTP:
		return agentapi.NewClient(ac.BaseURL, ac.APIKey, ac.Timeout, ac.MaxAttempts, logger), nil
	case config.ProviderOllama:
		return ollama.NewClient(ac.BaseURL, ac.Model, ac.Timeout, ac.HistoryTurns), nil
	case config.ProviderGemini:
		return gemini.NewClient(ctx, ac.APIKey, ac.Model, ac.HistoryTurns)
	default:
		return nil, fmt.Errorf("main: unknown agent provider %q", ac.Provider)
	}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
