package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/campaign"
	"github.com/sells-group/outreach-cli/internal/dedupe"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/monitoring"
	"github.com/sells-group/outreach-cli/internal/pipeline"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/internal/sender"
	"github.com/sells-group/outreach-cli/internal/session"
	"github.com/sells-group/outreach-cli/internal/source"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/internal/usage"
	"github.com/sells-group/outreach-cli/pkg/apollo"
	"github.com/sells-group/outreach-cli/pkg/instantly"
)

// appEnv holds the store, API clients and services shared by commands.
type appEnv struct {
	Store     store.Store
	Apollo    apollo.Client
	Instantly instantly.Client
	Pipeline  *pipeline.Orchestrator
	Campaigns *campaign.Service
	Health    *monitoring.HealthService
}

// Close releases the store.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "memory":
		st = store.NewMemory()
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "outreach.db"
		}
		st, err = store.NewSQLite(dsn)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// trackedHTTPClient records every request against service in st.
func trackedHTTPClient(service model.Service, st store.Store) *http.Client {
	return usage.Client(&http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}, service, st)
}

// initEnv builds the store, clients and services. Callers should defer
// env.Close().
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	apolloClient := apollo.NewClient(cfg.Apollo.Key,
		apollo.WithBaseURL(cfg.Apollo.BaseURL),
		apollo.WithHTTPClient(trackedHTTPClient(model.ServiceApollo, st)),
	)
	instantlyClient := instantly.NewClient(cfg.Instantly.Key,
		instantly.WithBaseURL(cfg.Instantly.BaseURL),
		instantly.WithHTTPClient(trackedHTTPClient(model.ServiceInstantly, st)),
	)

	retry := resilience.FromSettings(cfg.Retry.MaxAttempts, cfg.Retry.InitialBackoffMs, cfg.Retry.MaxBackoffMs)

	fetcher := source.NewFetcher(apolloClient, source.Config{
		PageSize:        cfg.Apollo.PageSize,
		MaxPages:        cfg.Apollo.MaxPages,
		RevealBatchSize: cfg.Apollo.RevealBatchSize,
		RevealDelay:     time.Duration(cfg.Apollo.RevealDelayMs) * time.Millisecond,
	})
	checker := dedupe.NewChecker(instantlyClient, dedupe.CheckerConfig{
		BatchSize:  cfg.Instantly.DedupeBatchSize,
		BatchDelay: time.Duration(cfg.Instantly.DedupeBatchDelayMs) * time.Millisecond,
		Retry:      retry,
	})

	sess := session.New(st, cfg.Pipeline.Session,
		session.WithTTL(time.Duration(cfg.Pipeline.TTLMinutes)*time.Minute))

	orch := pipeline.New(ctx, sess, pipeline.Deps{
		Fetcher: fetcher,
		Checker: checker,
		Sender:  sender.New(instantlyClient),
	})

	return &appEnv{
		Store:     st,
		Apollo:    apolloClient,
		Instantly: instantlyClient,
		Pipeline:  orch,
		Campaigns: campaign.NewService(instantlyClient),
		Health:    monitoring.NewHealthService(instantlyClient),
	}, nil
}
