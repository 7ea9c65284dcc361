package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/recruit-cli/internal/fetcher"
	"github.com/sells-group/recruit-cli/internal/pipeline"
	"github.com/sells-group/recruit-cli/internal/store"
	anthropicpkg "github.com/sells-group/recruit-cli/pkg/anthropic"
)

// pipelineEnv holds the store and pipeline shared by the sync, candidate,
// analyze and serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// sourceOverride lets commands substitute a local export file for the
// configured sheet URL.
var sourceOverride fetcher.Source

// initPipeline builds the store, scorer, notifier and source from config.
// Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	source := sourceOverride
	if source == nil {
		if cfg.Sheet.ExportURL == "" {
			_ = st.Close()
			return nil, eris.New("sheet.export_url is not configured (or pass --file)")
		}
		source = fetcher.NewHTTPSource(cfg.Sheet.ExportURL, fetcher.HTTPOptions{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.MaxRetries,
		})
	}

	if cfg.Anthropic.Key == "" {
		_ = st.Close()
		return nil, eris.New("anthropic.key is not configured")
	}
	scorer := pipeline.NewClaudeScorer(anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic)

	var notifier pipeline.Notifier
	if cfg.Writeback.URL != "" {
		notifier = pipeline.NewWebhookNotifier(cfg.Writeback.URL)
	} else {
		zap.L().Debug("no write-back URL configured, notifications disabled")
		notifier = pipeline.NoopNotifier{}
	}

	return &pipelineEnv{
		Store:    st,
		Pipeline: pipeline.New(cfg, source, st, scorer, notifier),
	}, nil
}

// initStore builds the override store for the configured driver.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
