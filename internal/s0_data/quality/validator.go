package quality

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/stockrank/internal/contracts"
)

// Source is the read side of the store the gate inspects
type Source interface {
	ListTickers(ctx context.Context) ([]contracts.Ticker, error)
	LastPriceDates(ctx context.Context) (map[string]time.Time, error)
	GetAllFundamentals(ctx context.Context) ([]contracts.Fundamentals, error)
}

// QualityGate measures how complete the stored universe is
type QualityGate struct {
	source Source
	config Config
}

// Config holds quality gate thresholds
type Config struct {
	MinPriceCoverage        float64       `yaml:"min_price_coverage"`        // 0.95
	MinFreshCoverage        float64       `yaml:"min_fresh_coverage"`        // 0.90
	MinFundamentalsCoverage float64       `yaml:"min_fundamentals_coverage"` // 0.80
	StaleAfter              time.Duration `yaml:"stale_after"`               // 5 days
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() Config {
	return Config{
		MinPriceCoverage:        0.95,
		MinFreshCoverage:        0.90,
		MinFundamentalsCoverage: 0.80,
		StaleAfter:              5 * 24 * time.Hour,
	}
}

// Snapshot is the coverage picture at one date
type Snapshot struct {
	Date         time.Time          `json:"date"`
	TotalTickers int                `json:"total_tickers"`
	ValidTickers int                `json:"valid_tickers"`
	Coverage     map[string]float64 `json:"coverage"`
	QualityScore float64            `json:"quality_score"`
	Passed       bool               `json:"passed"`
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(source Source, config Config) *QualityGate {
	return &QualityGate{
		source: source,
		config: config,
	}
}

// Check computes coverage of prices, fresh prices and fundamentals at date
// ⭐ SSOT: S0 → S1 품질 검증
func (g *QualityGate) Check(ctx context.Context, date time.Time) (*Snapshot, error) {
	snapshot := &Snapshot{
		Date:     date,
		Coverage: make(map[string]float64),
	}

	// 1. 전체 종목
	tickers, err := g.source.ListTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	snapshot.TotalTickers = len(tickers)

	lastDates, err := g.source.LastPriceDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("last price dates: %w", err)
	}

	fundamentals, err := g.source.GetAllFundamentals(ctx)
	if err != nil {
		return nil, fmt.Errorf("get fundamentals: %w", err)
	}
	hasFundamentals := make(map[string]bool, len(fundamentals))
	for _, f := range fundamentals {
		hasFundamentals[f.Ticker] = true
	}

	// 2. 커버리지
	var withPrice, fresh, withFund int
	cutoff := date.Add(-g.config.StaleAfter)
	for _, t := range tickers {
		last, ok := lastDates[t.Symbol]
		if ok {
			withPrice++
			if !last.Before(cutoff) {
				fresh++
			}
		}
		if hasFundamentals[t.Symbol] {
			withFund++
		}
	}
	snapshot.Coverage["price"] = ratio(withPrice, len(tickers))
	snapshot.Coverage["fresh"] = ratio(fresh, len(tickers))
	snapshot.Coverage["fundamentals"] = ratio(withFund, len(tickers))

	// 3. 품질 점수
	snapshot.QualityScore = g.calculateScore(snapshot.Coverage)
	snapshot.ValidTickers = fresh
	snapshot.Passed = len(tickers) > 0 &&
		snapshot.Coverage["price"] >= g.config.MinPriceCoverage &&
		snapshot.Coverage["fresh"] >= g.config.MinFreshCoverage &&
		snapshot.Coverage["fundamentals"] >= g.config.MinFundamentalsCoverage

	return snapshot, nil
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// calculateScore calculates overall quality score using weighted average
func (g *QualityGate) calculateScore(coverage map[string]float64) float64 {
	// 가중치 (합계 = 1.0)
	weights := map[string]float64{
		"price":        0.40,
		"fresh":        0.35,
		"fundamentals": 0.25,
	}

	score := 0.0
	for key, weight := range weights {
		if cov, exists := coverage[key]; exists {
			score += cov * weight
		}
	}

	return score
}
