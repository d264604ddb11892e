package selection

import (
	"context"
	"strings"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/pkg/logger"
)

// Screener applies hard cuts to a ranked table
// ⭐ SSOT: 랭킹 후 필터링은 여기서만
type Screener struct {
	config ScreenerConfig
	logger *logger.Logger
}

// ScreenerConfig defines hard cut conditions.
// Zero values disable a filter.
type ScreenerConfig struct {
	MinTechnical   float64  `json:"min_technical" yaml:"min_technical"`
	MinFundamental float64  `json:"min_fundamental" yaml:"min_fundamental"`
	MaxPE          float64  `json:"max_pe" yaml:"max_pe"`                       // rows without a P/E pass
	MinMarketCap   float64  `json:"min_market_cap" yaml:"min_market_cap"`       // rows without a market cap fail
	MinAnalysts    float64  `json:"min_analysts" yaml:"min_analysts"`           // rows without coverage fail
	Sectors        []string `json:"sectors,omitempty" yaml:"sectors,omitempty"` // case-insensitive allow list
}

// NewScreener creates a new screener
func NewScreener(config ScreenerConfig, logger *logger.Logger) *Screener {
	return &Screener{
		config: config,
		logger: logger,
	}
}

// Screen keeps rows passing every filter, preserving order and rank
func (s *Screener) Screen(ctx context.Context, rows []contracts.RankedRow) []contracts.RankedRow {
	passed := make([]contracts.RankedRow, 0, len(rows))
	filtered := make(map[string]int) // Filter name -> count

	for _, row := range rows {
		reason := s.checkConditions(row)
		if reason == "" {
			passed = append(passed, row)
		} else {
			filtered[reason]++
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"total_input":  len(rows),
		"passed":       len(passed),
		"filtered_out": len(rows) - len(passed),
		"filters":      filtered,
	}).Debug("Screening completed")

	return passed
}

// checkConditions returns empty string if passed, otherwise the filter name
func (s *Screener) checkConditions(row contracts.RankedRow) string {
	if row.TechnicalScore < s.config.MinTechnical {
		return "technical"
	}

	if row.FundamentalScore < s.config.MinFundamental {
		return "fundamental"
	}

	if s.config.MaxPE > 0 && row.PE.Valid && row.PE.Value > s.config.MaxPE {
		return "pe"
	}

	if s.config.MinMarketCap > 0 && row.MarketCap.Or(0) < s.config.MinMarketCap {
		return "market_cap"
	}

	if s.config.MinAnalysts > 0 && row.NumAnalysts.Or(0) < s.config.MinAnalysts {
		return "analysts"
	}

	if len(s.config.Sectors) > 0 && !containsFold(s.config.Sectors, row.Sector) {
		return "sector"
	}

	return ""
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), v) {
			return true
		}
	}
	return false
}
