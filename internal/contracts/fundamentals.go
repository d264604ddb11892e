package contracts

import "time"

// Ticker represents a listed symbol in the universe
type Ticker struct {
	Symbol   string `json:"ticker"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
}

// Fundamentals is one row of the fundamentals table.
// Price is not stored; it is joined from the latest bar before scoring.
type Fundamentals struct {
	Ticker        string `json:"ticker"`
	Name          string `json:"name"`
	Sector        string `json:"sector"`
	Industry      string `json:"industry"`
	MarketCap     Num    `json:"market_cap"`
	TrailingPE    Num    `json:"trailing_pe"`
	ForwardPE     Num    `json:"forward_pe"`
	DividendYield Num    `json:"dividend_yield"`
	Beta          Num    `json:"beta"`
	TargetMean    Num    `json:"target_mean"`
	TargetMedian  Num    `json:"target_median"`
	TargetHigh    Num    `json:"target_high"`
	TargetLow     Num    `json:"target_low"`
	NumAnalysts   Num    `json:"num_analysts"`
	Price         Num    `json:"price"`

	LastUpdated time.Time `json:"last_updated,omitempty"`
}
