package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bankiq/bankiq-cli/internal/alerts"
	"github.com/bankiq/bankiq-cli/internal/cache"
	"github.com/bankiq/bankiq-cli/internal/engine"
	"github.com/bankiq/bankiq-cli/internal/monitoring"
	"github.com/bankiq/bankiq-cli/internal/peer"
	"github.com/bankiq/bankiq-cli/internal/resolve"
	"github.com/bankiq/bankiq-cli/internal/scorer"
	"github.com/bankiq/bankiq-cli/internal/store"
	"github.com/bankiq/bankiq-cli/pkg/edgar"
	"github.com/bankiq/bankiq-cli/pkg/fdic"
)

// appEnv holds the wired collaborators behind every command.
type appEnv struct {
	engine  *engine.Engine
	store   store.Store
	metrics *monitoring.Metrics
	edgar   edgar.Client
	close   func()
}

// initEnv builds the engine from config. withMetrics registers Prometheus
// collectors on the default registry, which only the server wants; one-shot
// commands skip it so repeated invocations don't double-register.
func initEnv(ctx context.Context, withMetrics bool) (*appEnv, error) {
	env := &appEnv{close: func() {}}

	if withMetrics {
		env.metrics = monitoring.NewMetrics(prometheus.DefaultRegisterer)
	}

	st, err := openStore(ctx)
	if err != nil {
		// Dataset commands will report the missing store; everything
		// else works without one.
		zap.L().Warn("store unavailable, continuing without dataset support", zap.Error(err))
	} else if st != nil {
		env.store = st
		env.close = func() {
			if cerr := st.Close(); cerr != nil {
				zap.L().Warn("closing store", zap.Error(cerr))
			}
		}
	}

	fdicOpts := []fdic.Option{
		fdic.WithTimeout(time.Duration(cfg.FDIC.TimeoutSecs) * time.Second),
	}
	if cfg.FDIC.BaseURL != "" {
		fdicOpts = append(fdicOpts, fdic.WithBaseURL(cfg.FDIC.BaseURL))
	}
	if cfg.FDIC.RateLimit > 0 {
		fdicOpts = append(fdicOpts, fdic.WithRateLimit(cfg.FDIC.RateLimit, int(cfg.FDIC.RateLimit)))
	}
	if env.metrics != nil {
		fdicOpts = append(fdicOpts, fdic.WithRequestRecorder(env.metrics.RecordUpstream))
	}
	fdicClient := fdic.NewClient(fdicOpts...)

	edgarOpts := []edgar.Option{
		edgar.WithYears(cfg.Compare.Years),
		edgar.WithTimeout(time.Duration(cfg.EDGAR.TimeoutSecs) * time.Second),
	}
	if cfg.EDGAR.DataBaseURL != "" {
		edgarOpts = append(edgarOpts, edgar.WithDataBaseURL(cfg.EDGAR.DataBaseURL))
	}
	if cfg.EDGAR.WWWBaseURL != "" {
		edgarOpts = append(edgarOpts, edgar.WithWWWBaseURL(cfg.EDGAR.WWWBaseURL))
	}
	if cfg.EDGAR.UserAgent != "" {
		edgarOpts = append(edgarOpts, edgar.WithUserAgent(cfg.EDGAR.UserAgent))
	}
	if env.metrics != nil {
		edgarOpts = append(edgarOpts, edgar.WithRequestRecorder(env.metrics.RecordUpstream))
	}
	edgarClient := edgar.NewClient(edgarOpts...)
	env.edgar = edgarClient

	scoringCfg := scorer.DefaultConfig()
	if cfg.Scoring.WeightsFile != "" {
		scoringCfg, err = scorer.LoadConfig(cfg.Scoring.WeightsFile)
		if err != nil {
			return nil, err
		}
	}

	resolver := resolve.New(fdicClient)

	env.engine = engine.New(engine.Params{
		Resolver: resolver,
		FDIC:     fdicClient,
		EDGAR:    edgarClient,
		Scorer:   scorer.New(scoringCfg),
		Alerts:   alerts.NewGenerator(alerts.DefaultThresholds()),
		Peers:    peer.NewAggregator(resolver, fdicClient, cfg.Compare.Years, peer.WithMaxPeriods(cfg.Compare.MaxPeriods)),
		Cache: cache.New(cache.Config{
			ScoreTTL: time.Duration(cfg.Cache.ScoreTTLMins) * time.Minute,
			AlertTTL: time.Duration(cfg.Cache.AlertTTLMins) * time.Minute,
		}),
		Store:   env.store,
		Metrics: env.metrics,
	})

	return env, nil
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "", "sqlite":
		st, err := store.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
