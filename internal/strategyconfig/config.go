package strategyconfig

import (
	"github.com/wonny/stockrank/internal/s2_signals"
	"github.com/wonny/stockrank/internal/selection"
)

// Config는 랭킹 전략의 전체 설정
type Config struct {
	Meta        Meta                     `yaml:"meta" json:"meta"`
	Composite   selection.Weights        `yaml:"composite" json:"composite"`
	Technical   Technical                `yaml:"technical" json:"technical"`
	Fundamental Fundamental              `yaml:"fundamental" json:"fundamental"`
	Screening   selection.ScreenerConfig `yaml:"screening" json:"screening"`
	Scoring     Scoring                  `yaml:"scoring" json:"scoring"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Technical 기술적 점수 설정
type Technical struct {
	Weights     s2_signals.TechnicalWeights `yaml:"weights" json:"weights"`
	SwingWindow int                         `yaml:"swing_window" json:"swing_window"`
	SwingCount  int                         `yaml:"swing_count" json:"swing_count"`
}

// Fundamental 펀더멘털 점수 설정
type Fundamental struct {
	Weights s2_signals.FundamentalWeights `yaml:"weights" json:"weights"`
}

// Scoring 실행 설정
type Scoring struct {
	LookbackDays int `yaml:"lookback_days" json:"lookback_days"` // calendar days of price history
	TopN         int `yaml:"top_n" json:"top_n"`
}

// Default returns the built-in strategy
func Default() *Config {
	tech := s2_signals.DefaultTechnicalParams()
	return &Config{
		Meta:      Meta{StrategyID: "default", Version: "1"},
		Composite: selection.DefaultWeights(),
		Technical: Technical{
			Weights:     tech.Weights,
			SwingWindow: tech.SwingWindow,
			SwingCount:  tech.SwingCount,
		},
		Fundamental: Fundamental{Weights: s2_signals.DefaultFundamentalWeights()},
		Scoring:     Scoring{LookbackDays: 250, TopN: 20},
	}
}

// Params converts the strategy into scoring params
func (c *Config) Params() selection.Params {
	return selection.Params{
		Weights: c.Composite,
		Technical: s2_signals.TechnicalParams{
			Weights:     c.Technical.Weights,
			SwingWindow: c.Technical.SwingWindow,
			SwingCount:  c.Technical.SwingCount,
		},
		Fundamental: c.Fundamental.Weights,
	}
}
