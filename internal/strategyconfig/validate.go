package strategyconfig

import (
	"fmt"
	"math"
)

// sumTolerance allows for hand-written decimal weights
const sumTolerance = 0.01

// minLookbackForSMA200 is roughly 200 trading days in calendar days
const minLookbackForSMA200 = 290

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Composite ===
	if cfg.Composite.Technical < 0 || cfg.Composite.Fundamental < 0 {
		return ValidationError{"composite", "weights must be >= 0"}
	}
	if cfg.Composite.Technical+cfg.Composite.Fundamental <= 0 {
		return ValidationError{"composite", "weights must sum to > 0"}
	}

	// === Technical ===
	tw := cfg.Technical.Weights
	if err := validateNonNegative("technical.weights", tw.RSI, tw.MACD, tw.MACrossover, tw.BBands, tw.Momentum); err != nil {
		return err
	}
	if err := validateWeightsSum("technical.weights", tw.Sum(), 1.0, sumTolerance); err != nil {
		return err
	}
	if cfg.Technical.SwingWindow < 1 {
		return ValidationError{"technical.swing_window", "must be >= 1"}
	}
	if cfg.Technical.SwingCount < 1 {
		return ValidationError{"technical.swing_count", "must be >= 1"}
	}

	// === Fundamental ===
	fw := cfg.Fundamental.Weights
	if err := validateNonNegative("fundamental.weights", fw.PE, fw.Dividend, fw.Beta, fw.MarketCap, fw.TargetUpside); err != nil {
		return err
	}
	if err := validateWeightsSum("fundamental.weights", fw.Sum(), 1.0, sumTolerance); err != nil {
		return err
	}

	// === Screening ===
	s := cfg.Screening
	if err := validatePctRange(s.MinTechnical, "screening.min_technical"); err != nil {
		return err
	}
	if err := validatePctRange(s.MinFundamental, "screening.min_fundamental"); err != nil {
		return err
	}
	if s.MaxPE < 0 || s.MinMarketCap < 0 || s.MinAnalysts < 0 {
		return ValidationError{"screening", "thresholds must be >= 0"}
	}

	// === Scoring ===
	if cfg.Scoring.LookbackDays <= 0 {
		return ValidationError{"scoring.lookback_days", "must be > 0"}
	}
	if cfg.Scoring.TopN < 0 {
		return ValidationError{"scoring.top_n", "must be >= 0"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// SMA200 needs ~290 calendar days
	if cfg.Scoring.LookbackDays < minLookbackForSMA200 && cfg.Technical.Weights.MACrossover > 0 {
		warnings = append(warnings, Warning{
			Code:    "SHORT_LOOKBACK",
			Message: fmt.Sprintf("lookback_days=%d leaves SMA200 undefined; ma_crossover scores 0", cfg.Scoring.LookbackDays),
		})
	}

	if cfg.Technical.Weights.Momentum > 0 && cfg.Technical.SwingWindow*2*(cfg.Technical.SwingCount+1) > cfg.Scoring.LookbackDays {
		warnings = append(warnings, Warning{
			Code:    "FEW_SWINGS",
			Message: "swing_window and swing_count need more history than lookback_days provides",
		})
	}

	if cfg.Composite.Fundamental == 0 {
		warnings = append(warnings, Warning{
			Code:    "TECHNICAL_ONLY",
			Message: "composite.fundamental=0: fundamentals do not affect ranking",
		})
	}

	return warnings
}

// === Helper Functions ===

func validateNonNegative(field string, weights ...float64) error {
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return ValidationError{field, "must be >= 0"}
		}
	}
	return nil
}

func validateWeightsSum(field string, sum, target, epsilon float64) error {
	if math.Abs(sum-target) > epsilon {
		return ValidationError{field, fmt.Sprintf("must sum to %.2f, got %.4f", target, sum)}
	}
	return nil
}

// validatePctRange는 값이 0~1 범위인지 검증
func validatePctRange(pct float64, field string) error {
	if pct < 0 || pct > 1 {
		return ValidationError{field, "must be in range [0, 1]"}
	}
	return nil
}
