package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"parcel-tax-scraper/db"
	"parcel-tax-scraper/fetcher"
	"parcel-tax-scraper/jurisdiction"
	"parcel-tax-scraper/scheduler"
	"parcel-tax-scraper/scraper"
)

// lookupEnv holds the long-lived pieces every command shares.
type lookupEnv struct {
	Jurisdiction jurisdiction.Jurisdiction
	Provider     fetcher.Provider
	Searcher     *scraper.TaxScraper
	DB           *db.DB

	scheduler *scheduler.Scheduler
}

// initLookup starts the browser and, when withRequestLog is set and a database is
// configured, the request log with its pruning scheduler.
func initLookup(ctx context.Context, withRequestLog bool) (*lookupEnv, error) {
	j, err := jurisdiction.Lookup(cfg.Jurisdiction.Name)
	if err != nil {
		return nil, err
	}

	provider, err := fetcher.NewProvider(cfg.Browser)
	if err != nil {
		return nil, err
	}

	env := &lookupEnv{
		Jurisdiction: j,
		Provider:     provider,
		Searcher:     scraper.NewTaxScraper(provider, scraper.NewPipeline(j, cfg.Browser.ReadyTimeout())),
	}

	if withRequestLog && cfg.Database.Enabled() {
		database, err := db.Open(ctx, cfg.Database.URL)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.DB = database

		env.scheduler = scheduler.NewScheduler(database,
			time.Duration(cfg.Database.RetentionHours)*time.Hour,
			time.Duration(cfg.Database.PruneIntervalMins)*time.Minute,
		)
		env.scheduler.Start()
	}

	zap.L().Info("lookup environment ready",
		zap.String("jurisdiction", j.Key),
		zap.String("engine", cfg.Browser.Engine),
		zap.Bool("request_log", env.DB != nil),
	)
	return env, nil
}

// Close releases everything initLookup started, in reverse order.
func (e *lookupEnv) Close() {
	if e.scheduler != nil {
		e.scheduler.Stop()
	}
	if e.DB != nil {
		if err := e.DB.Close(); err != nil {
			zap.L().Warn("failed to close database", zap.Error(err))
		}
	}
	if err := e.Provider.Close(); err != nil {
		zap.L().Warn("failed to close browser", zap.Error(err))
	}
}
