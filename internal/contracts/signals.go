package contracts

// SwingPoint is a local extremum at an index of a price series
type SwingPoint struct {
	Position int     `json:"position"`
	Value    float64 `json:"value"`
}

// SwingSet holds swing highs and swing lows, each ordered by position
type SwingSet struct {
	Highs []SwingPoint `json:"highs"`
	Lows  []SwingPoint `json:"lows"`
}

// MACDReading is the MACD state at one bar
type MACDReading struct {
	Line      Num `json:"line"`
	Signal    Num `json:"signal"`
	Histogram Num `json:"histogram"`
}

// BandsReading is the Bollinger Bands state at one bar
type BandsReading struct {
	Lower Num `json:"lower"`
	Mid   Num `json:"mid"`
	Upper Num `json:"upper"`
}

// TechnicalResult is the per-ticker technical scoring record.
// Per-signal scores are in [-1, 1]; TechnicalScore is in [0, 1].
type TechnicalResult struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"price"`

	// Raw readings at the last bar
	RSIValue     Num          `json:"rsi_value"`
	MACD         MACDReading  `json:"macd"`
	PrevMACDHist Num          `json:"prev_macd_hist"`
	SMA50        Num          `json:"sma50"`
	SMA200       Num          `json:"sma200"`
	Bands        BandsReading `json:"bbands"`

	RSIScore         float64 `json:"rsi_score"`
	MACDScore        float64 `json:"macd_score"`
	MACrossoverScore float64 `json:"ma_crossover_score"`
	BBandsScore      float64 `json:"bbands_score"`
	MomentumScore    float64 `json:"momentum_score"`
	TechnicalScore   float64 `json:"technical_score"`
}

// FundamentalResult augments a fundamentals row with cross-sectional scores
type FundamentalResult struct {
	Fundamentals

	PE                Num     `json:"pe"`
	PEScore           float64 `json:"pe_score"`
	DividendScore     float64 `json:"dividend_score"`
	BetaScore         float64 `json:"beta_score"`
	MarketCapScore    float64 `json:"market_cap_score"`
	TargetUpside      Num     `json:"target_upside"`
	TargetUpsideScore float64 `json:"target_upside_score"`
	FundamentalScore  float64 `json:"fundamental_score"`
}
