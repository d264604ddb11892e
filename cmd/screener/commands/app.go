package commands

import (
	"context"
	"fmt"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/internal/external/nasdaq"
	"github.com/wonny/stockrank/internal/external/yahoo"
	"github.com/wonny/stockrank/internal/s0_data"
	"github.com/wonny/stockrank/internal/s0_data/collector"
	"github.com/wonny/stockrank/internal/s0_data/quality"
	"github.com/wonny/stockrank/internal/s0_data/sqlite"
	"github.com/wonny/stockrank/internal/s1_universe"
	"github.com/wonny/stockrank/internal/s2_signals"
	"github.com/wonny/stockrank/internal/selection"
	"github.com/wonny/stockrank/internal/strategyconfig"
	"github.com/wonny/stockrank/pkg/config"
	"github.com/wonny/stockrank/pkg/database"
	"github.com/wonny/stockrank/pkg/httputil"
	"github.com/wonny/stockrank/pkg/logger"
	"github.com/wonny/stockrank/pkg/redis"
)

// healthChecker is implemented by both stores
type healthChecker interface {
	Health(ctx context.Context) (*database.HealthStatus, error)
}

// app wires config, logging, storage and the data sources for one command run
// ⭐ SSOT: 의존성 조립은 여기서만
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	store contracts.Store
	redis *redis.Client

	strategyFile string
}

// newApp loads config and opens the configured store
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if sqlitePath != "" {
		cfg.Database.Driver = "sqlite"
		cfg.Database.SQLitePath = sqlitePath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rdb = redis.Disabled()
	}

	return &app{cfg: cfg, log: log, store: store, redis: rdb}, nil
}

// openStore picks the backend by DB_DRIVER
func openStore(cfg *config.Config) (contracts.Store, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		return s0_data.NewStore(db), nil
	default:
		store, err := sqlite.Open(cfg.Database.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return store, nil
	}
}

func (a *app) Close() {
	a.store.Close()
	a.redis.Close()
}

// httpClient returns a client paced locally and, with Redis, across processes
func (a *app) httpClient(limit redis.RateLimitConfig) *httputil.Client {
	return httputil.New(a.cfg, a.log).
		WithRateLimiter(redis.NewRateLimiter(a.redis, "stockrank"), limit)
}

func (a *app) listingSource() *nasdaq.Client {
	src := a.cfg.Sources
	sec := a.httpClient(redis.SECRateLimit).WithHeader("User-Agent", src.SECUserAgent)
	return nasdaq.NewClient(a.httpClient(redis.NasdaqRateLimit), sec, a.log, nasdaq.URLs{
		NasdaqListed: src.NasdaqListedURL,
		OtherListed:  src.OtherListedURL,
		SECEdgar:     src.SECEdgarURL,
	})
}

func (a *app) yahoo() *yahoo.Client {
	return yahoo.NewClient(a.httpClient(redis.YahooRateLimit), a.log, a.cfg.Sources.YahooSummaryURL)
}

func (a *app) syncer() *s1_universe.Syncer {
	return s1_universe.NewSyncer(a.listingSource(), a.store, s1_universe.NewBuilder(s1_universe.DefaultConfig()), a.log)
}

func (a *app) downloader() *collector.Downloader {
	return collector.NewDownloader(a.yahoo(), a.store, collector.ConfigFrom(a.cfg.Download), a.log)
}

func (a *app) fundamentals() *collector.FundamentalsFetcher {
	d := a.cfg.Download
	return collector.NewFundamentalsFetcher(
		a.yahoo(), a.store, a.store,
		redis.NewCache(a.redis, "stockrank"),
		d.FundamentalsTTL, d.FundamentalsDelay, a.log,
	)
}

func (a *app) updater() *collector.Updater {
	return collector.NewUpdater(a.syncer(), a.store, a.downloader(), a.fundamentals(), a.log)
}

func (a *app) qualityGate() *quality.QualityGate {
	return quality.NewQualityGate(a.store, quality.DefaultConfig())
}

// strategy loads the strategy file (flag wins over STRATEGY_FILE) and logs its warnings
func (a *app) strategy(path string) (*strategyconfig.Config, string, error) {
	if path == "" {
		path = a.cfg.Scoring.StrategyFile
	}
	a.strategyFile = path
	strat, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return nil, "", fmt.Errorf("load strategy: %w", err)
	}
	hash, err := strategyconfig.Hash(strat)
	if err != nil {
		return nil, "", fmt.Errorf("hash strategy: %w", err)
	}
	for _, w := range strategyconfig.Warn(strat) {
		a.log.WithField("code", w.Code).Warn(w.Message)
	}
	return strat, hash, nil
}

func (a *app) scoringService(strat *strategyconfig.Config, lookbackDays int) *selection.Service {
	return selection.NewService(a.store, strat.Params(), lookbackDays, a.log)
}

func (a *app) technicalCalculator(strat *strategyconfig.Config) *s2_signals.TechnicalCalculator {
	return s2_signals.NewTechnicalCalculator(strat.Params().Technical, a.log)
}

// lookback resolves flag > strategy file > env
func (a *app) lookback(flag int, strat *strategyconfig.Config) int {
	switch {
	case flag > 0:
		return flag
	case a.strategyFile != "" && strat.Scoring.LookbackDays > 0:
		return strat.Scoring.LookbackDays
	default:
		return a.cfg.Scoring.LookbackDays
	}
}

// topN resolves flag > strategy file > env
func (a *app) topN(flag int, strat *strategyconfig.Config) int {
	switch {
	case flag > 0:
		return flag
	case a.strategyFile != "" && strat.Scoring.TopN > 0:
		return strat.Scoring.TopN
	default:
		return a.cfg.Scoring.TopN
	}
}
