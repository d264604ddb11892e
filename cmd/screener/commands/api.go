package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stockrank/internal/api"
	"github.com/wonny/stockrank/internal/api/handlers"
	"github.com/wonny/stockrank/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Start the REST API server.

Endpoints:
  GET /health                          - Health check
  GET /api/rankings                    - Ranked universe (?top=&technical=&fundamental=&lookback=)
  GET /api/tickers/{ticker}/technical  - Technical scoring record
  GET /api/tickers/{ticker}/chart      - Candlestick overlay
  GET /api/downloads/status            - Download progress and coverage

Example:
  go run ./cmd/screener api
  go run ./cmd/screener api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort     string
	apiStrategy string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT)")
	apiCmd.Flags().StringVar(&apiStrategy, "strategy", "", "strategy YAML file")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	strat, hash, err := a.strategy(apiStrategy)
	if err != nil {
		return err
	}
	lookback := a.lookback(0, strat)

	var cache *redis.Cache
	if a.redis.Enabled() {
		cache = redis.NewCache(a.redis, "stockrank")
	}

	router := api.NewRouter(api.Handlers{
		Ranking:  handlers.NewRankingHandler(a.scoringService(strat, lookback), cache, hash, lookback, a.topN(0, strat), a.log),
		Ticker:   handlers.NewTickerHandler(a.store, a.technicalCalculator(strat), lookback, a.log),
		Download: handlers.NewDownloadHandler(a.downloader(), a.qualityGate(), a.log),
	}, a.log)

	port := apiPort
	if port == "" {
		port = a.cfg.Port
	}
	server := api.New(port, a.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("✅ API server listening on %s\n", server.Addr())

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
