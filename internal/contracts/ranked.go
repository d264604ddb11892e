package contracts

// RankedRow is one row of the ranked universe table.
// ⭐ SSOT: universe scorer → report/API 전달
type RankedRow struct {
	Rank             int     `json:"rank"` // 1-based
	Ticker           string  `json:"ticker"`
	Name             string  `json:"name"`
	Sector           string  `json:"sector"`
	CompositeScore   float64 `json:"composite_score"`
	TechnicalScore   float64 `json:"technical_score"`
	FundamentalScore float64 `json:"fundamental_score"`
	Price            float64 `json:"price"`
	RSIValue         Num     `json:"rsi_value"`
	PE               Num     `json:"pe"`
	MarketCap        Num     `json:"market_cap"`
	TargetMean       Num     `json:"target_mean"`
	TargetHigh       Num     `json:"target_high"`
	TargetLow        Num     `json:"target_low"`
	NumAnalysts      Num     `json:"num_analysts"`
	TargetUpside     Num     `json:"target_upside"`
}

// IsTopRanked checks if the row is in the top n ranks
func (r *RankedRow) IsTopRanked(n int) bool {
	return r.Rank <= n && r.Rank > 0
}

// TopN returns at most n leading rows
func TopN(rows []RankedRow, n int) []RankedRow {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}
