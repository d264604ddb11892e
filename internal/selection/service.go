package selection

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/pkg/logger"
)

// UniverseLoader is the read side a scoring run needs
type UniverseLoader interface {
	GetAllFundamentals(ctx context.Context) ([]contracts.Fundamentals, error)
	GetRecentPrices(ctx context.Context, since time.Time) ([]contracts.Series, error)
}

// Service loads a universe snapshot and ranks it
type Service struct {
	loader       UniverseLoader
	params       Params
	lookbackDays int
	now          func() time.Time
	logger       *logger.Logger
}

// NewService creates a new scoring service
func NewService(loader UniverseLoader, params Params, lookbackDays int, log *logger.Logger) *Service {
	return &Service{
		loader:       loader,
		params:       params,
		lookbackDays: lookbackDays,
		now:          time.Now,
		logger:       log,
	}
}

// Params returns the configured scoring params
func (s *Service) Params() Params {
	return s.params
}

// Score ranks the stored universe with the configured params
func (s *Service) Score(ctx context.Context) ([]contracts.RankedRow, error) {
	return s.ScoreWith(ctx, s.params, s.lookbackDays)
}

// ScoreWith ranks the stored universe with explicit params.
// Both tables are fully loaded before scoring starts.
func (s *Service) ScoreWith(ctx context.Context, params Params, lookbackDays int) ([]contracts.RankedRow, error) {
	start := time.Now()

	fundamentals, err := s.loader.GetAllFundamentals(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fundamentals: %w", err)
	}

	since := s.now().AddDate(0, 0, -lookbackDays)
	histories, err := s.loader.GetRecentPrices(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load recent prices: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"fundamentals":  len(fundamentals),
		"price_tickers": len(histories),
		"lookback_days": lookbackDays,
	}).Info("Loaded universe snapshot")

	rows := ScoreUniverseWith(fundamentals, histories, params)

	fields := map[string]interface{}{
		"ranked":   len(rows),
		"dropped":  len(histories) - len(rows),
		"duration": time.Since(start).String(),
	}
	if len(rows) > 0 {
		fields["top_ticker"] = rows[0].Ticker
		fields["top_score"] = rows[0].CompositeScore
	}
	s.logger.WithFields(fields).Info("Ranking completed")

	return rows, nil
}
