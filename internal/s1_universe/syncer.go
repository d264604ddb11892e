package s1_universe

import (
	"context"
	"fmt"
	"sort"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/pkg/logger"
)

// Syncer keeps the stored ticker table in line with current listings
type Syncer struct {
	source  contracts.ListingSource
	repo    contracts.TickerRepository
	builder *Builder
	logger  *logger.Logger
}

// NewSyncer creates a new Syncer
func NewSyncer(source contracts.ListingSource, repo contracts.TickerRepository, builder *Builder, log *logger.Logger) *Syncer {
	return &Syncer{
		source:  source,
		repo:    repo,
		builder: builder,
		logger:  log,
	}
}

// Universe fetches listings and applies the common-stock filter
func (s *Syncer) Universe(ctx context.Context) (*contracts.Universe, error) {
	listings, err := s.source.FetchListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}
	return s.builder.Filter(listings), nil
}

// Sync upserts the filtered universe and reports total/new/updated
// ⭐ SSOT: S1 → S0 종목 동기화
func (s *Syncer) Sync(ctx context.Context) (*contracts.SyncResult, error) {
	universe, err := s.Universe(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.repo.UpsertTickers(ctx, universe.Tickers)
	if err != nil {
		return nil, fmt.Errorf("upsert tickers: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"total":    result.Total,
		"new":      result.New,
		"updated":  result.Updated,
		"excluded": len(universe.Excluded),
	}).Info("Synced tickers")
	return result, nil
}

// DetectDelistings returns stored tickers absent from current listings, sorted
func (s *Syncer) DetectDelistings(ctx context.Context) ([]string, error) {
	universe, err := s.Universe(ctx)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.ListTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}

	return Delisted(stored, universe.Tickers), nil
}

// Delisted returns symbols in stored that are missing from current, sorted
func Delisted(stored, current []contracts.Ticker) []string {
	listed := make(map[string]bool, len(current))
	for _, t := range current {
		listed[t.Symbol] = true
	}

	out := make([]string, 0)
	for _, t := range stored {
		if !listed[t.Symbol] {
			out = append(out, t.Symbol)
		}
	}
	sort.Strings(out)
	return out
}
