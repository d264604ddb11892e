package contracts

import (
	"context"
	"time"
)

// ListingSource provides the current listed-ticker universe
// ⭐ SSOT: S1 상장 종목 소스 인터페이스
type ListingSource interface {
	FetchListings(ctx context.Context) ([]Ticker, error)
}

// PriceSource provides daily OHLCV history.
// A zero start requests the maximum available history.
// ⭐ SSOT: S0 가격 데이터 소스 인터페이스
type PriceSource interface {
	FetchHistory(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error)
}

// FundamentalsSource provides per-ticker fundamentals
// ⭐ SSOT: S0 재무 데이터 소스 인터페이스
type FundamentalsSource interface {
	FetchFundamentals(ctx context.Context, ticker string) (*Fundamentals, error)
}
