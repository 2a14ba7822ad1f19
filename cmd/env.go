package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/adaian/adreport-cli/internal/analyzer"
	"github.com/adaian/adreport-cli/internal/config"
	"github.com/adaian/adreport-cli/internal/ingest"
	"github.com/adaian/adreport-cli/internal/metrics"
	"github.com/adaian/adreport-cli/internal/report"
	"github.com/adaian/adreport-cli/internal/resilience"
	"github.com/adaian/adreport-cli/internal/store"
	anthropicpkg "github.com/adaian/adreport-cli/pkg/anthropic"
	geminipkg "github.com/adaian/adreport-cli/pkg/gemini"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.SQLitePath
		if dsn == "" {
			dsn = "adreport.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initGenerator builds the model backend selected by report.provider.
func initGenerator(ctx context.Context) (report.Generator, error) {
	switch cfg.Report.Provider {
	case "", "gemini":
		limiter := rate.NewLimiter(rate.Limit(cfg.Gemini.RPM/60.0), 1)
		return geminipkg.NewClient(ctx, cfg.Gemini.Key,
			geminipkg.WithModel(cfg.Gemini.Model),
			geminipkg.WithLimiter(limiter),
		)
	case "anthropic":
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("anthropic API key is required (ADREPORT_ANTHROPIC_KEY)")
		}
		return anthropicpkg.NewClient(cfg.Anthropic.Key,
			anthropicpkg.WithModel(cfg.Anthropic.Model),
			anthropicpkg.WithMaxTokens(int64(cfg.Anthropic.MaxTokens)),
		)
	default:
		return nil, eris.Errorf("unsupported report provider: %s", cfg.Report.Provider)
	}
}

func loadProfiles(c *config.Config) (map[ingest.Kind]ingest.Profile, error) {
	profiles := ingest.DefaultProfiles()
	if c.Ingest.RolesPath == "" {
		return profiles, nil
	}
	return ingest.LoadProfileOverrides(c.Ingest.RolesPath, profiles)
}

func retryConfig(c *config.Config) resilience.RetryConfig {
	rc := resilience.DefaultRetryConfig()
	if c.Retry.MaxAttempts > 0 {
		rc.MaxAttempts = c.Retry.MaxAttempts
	}
	if c.Retry.InitialBackoffSecs > 0 {
		rc.InitialBackoff = time.Duration(c.Retry.InitialBackoffSecs) * time.Second
	}
	if c.Retry.MaxBackoffSecs > 0 {
		rc.MaxBackoff = time.Duration(c.Retry.MaxBackoffSecs) * time.Second
	}
	return rc
}

// initAnalyzer wires the full pipeline. The caller owns closing the store.
func initAnalyzer(ctx context.Context, m *metrics.Metrics) (*analyzer.Analyzer, store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, nil, eris.Wrap(err, "migrate store")
	}

	gen, err := initGenerator(ctx)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	profiles, err := loadProfiles(cfg)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	provider := cfg.Report.Provider
	if provider == "" {
		provider = "gemini"
	}
	asm := report.NewAssembler(gen, retryConfig(cfg)).WithMetrics(m, provider)
	return analyzer.New(cfg, st, asm, profiles, m), st, nil
}
