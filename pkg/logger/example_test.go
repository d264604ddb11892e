package logger_test

import (
	"errors"

	"github.com/wonny/stockrank/pkg/config"
	"github.com/wonny/stockrank/pkg/logger"
)

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	log.WithField("ticker", "AAPL").Info("Downloading history")

	log.WithFields(map[string]interface{}{
		"batch":      3,
		"batch_size": 50,
		"downloaded": 48,
	}).Info("Batch complete")
}

// Example_withError demonstrates error logging
func Example_withError() {
	log := logger.New(&config.Config{Env: "production", LogLevel: "error", LogFormat: "json"})

	err := errors.New("yahoo: 429 too many requests")
	log.WithError(err).
		WithFields(map[string]interface{}{
			"ticker":  "MSFT",
			"attempt": 2,
		}).
		Error("Batch download failed")
}
