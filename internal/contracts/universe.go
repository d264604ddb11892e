package contracts

import "time"

// Universe is the filtered listing set passed from S1 to the collectors
// ⭐ SSOT: S1 → S0 수집 대상 종목 전달
type Universe struct {
	Date       time.Time         `json:"date"`
	Tickers    []Ticker          `json:"tickers"`
	Excluded   map[string]string `json:"excluded"`              // 제외 종목: 사유
	TotalCount int               `json:"total_count,omitempty"` // 전체 종목 수
}

// Contains checks if a symbol is in the universe
func (u *Universe) Contains(symbol string) bool {
	for _, t := range u.Tickers {
		if t.Symbol == symbol {
			return true
		}
	}
	return false
}

// IsExcluded checks if a symbol is excluded with reason
func (u *Universe) IsExcluded(symbol string) (bool, string) {
	reason, exists := u.Excluded[symbol]
	return exists, reason
}

// Count returns the number of included tickers
func (u *Universe) Count() int {
	return len(u.Tickers)
}

// Symbols returns the included ticker symbols
func (u *Universe) Symbols() []string {
	out := make([]string, len(u.Tickers))
	for i, t := range u.Tickers {
		out[i] = t.Symbol
	}
	return out
}
