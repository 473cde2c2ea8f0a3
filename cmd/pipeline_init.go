package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/adrecon/internal/config"
	"github.com/sells-group/adrecon/internal/fetcher"
	"github.com/sells-group/adrecon/internal/reconcile"
	"github.com/sells-group/adrecon/internal/store"
)

// pipelineOptions builds reconcile options from configuration: sheet
// overrides, the optional header alias file, and settlement rates.
func pipelineOptions(c *config.Config) (reconcile.Options, error) {
	sources := reconcile.DefaultSources()
	if c.Sources.KiwiSheet != "" {
		sources.Kiwi.Sheet = c.Sources.KiwiSheet
	}
	if c.Sources.WabangSheet != "" {
		sources.Wabang.Sheet = c.Sources.WabangSheet
	}
	if c.Sources.BackendSheet != "" {
		sources.Backend.Sheet = c.Sources.BackendSheet
	}
	if c.Sources.FieldMapFile != "" {
		af, err := reconcile.LoadAliases(c.Sources.FieldMapFile)
		if err != nil {
			return reconcile.Options{}, err
		}
		sources = sources.WithAliases(af)
	}

	var rates []reconcile.SettlementRate
	for _, r := range c.Settlement.Rates {
		rates = append(rates, reconcile.SettlementRate{Fragment: r.Fragment, Rate: r.Rate})
	}

	return reconcile.Options{Sources: sources, Rates: rates}, nil
}

// initPipeline builds the reconciliation pipeline from the loaded config.
func initPipeline() (*reconcile.Pipeline, error) {
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return nil, eris.Wrap(err, "init pipeline")
	}
	return reconcile.New(opts), nil
}

// initStore opens and migrates the configured snapshot store.
func initStore(ctx context.Context) (store.Store, error) {
	ttl := time.Duration(cfg.Store.SessionTTLMinutes) * time.Minute
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, ttl)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	return st, nil
}

// initResolver builds the resolver for http(s) and ftp source locations.
func initResolver() *fetcher.Resolver {
	timeout := time.Duration(cfg.Fetch.TimeoutSecs) * time.Second
	return fetcher.NewResolver(
		fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    timeout,
			MaxRetries: cfg.Fetch.MaxRetries,
		}),
		fetcher.NewFTPFetcher(fetcher.FTPOptions{Timeout: timeout}),
	)
}
