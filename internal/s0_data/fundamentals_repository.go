package s0_data

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/stockrank/internal/contracts"
)

const fundamentalsColumns = `ticker, name, sector, industry, market_cap, trailing_pe, forward_pe,
	dividend_yield, beta, target_mean, target_median, target_high, target_low, num_analysts, last_updated`

// SaveFundamentals upserts one fundamentals row
func (s *Store) SaveFundamentals(ctx context.Context, f *contracts.Fundamentals) error {
	query := `
		INSERT INTO fundamentals (` + fundamentalsColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		ON CONFLICT (ticker) DO UPDATE SET
			name = EXCLUDED.name,
			sector = EXCLUDED.sector,
			industry = EXCLUDED.industry,
			market_cap = EXCLUDED.market_cap,
			trailing_pe = EXCLUDED.trailing_pe,
			forward_pe = EXCLUDED.forward_pe,
			dividend_yield = EXCLUDED.dividend_yield,
			beta = EXCLUDED.beta,
			target_mean = EXCLUDED.target_mean,
			target_median = EXCLUDED.target_median,
			target_high = EXCLUDED.target_high,
			target_low = EXCLUDED.target_low,
			num_analysts = EXCLUDED.num_analysts,
			last_updated = NOW()
	`

	_, err := s.pool.Exec(ctx, query,
		f.Ticker, f.Name, f.Sector, f.Industry,
		f.MarketCap.Ptr(), f.TrailingPE.Ptr(), f.ForwardPE.Ptr(), f.DividendYield.Ptr(), f.Beta.Ptr(),
		f.TargetMean.Ptr(), f.TargetMedian.Ptr(), f.TargetHigh.Ptr(), f.TargetLow.Ptr(), f.NumAnalysts.Ptr(),
	)
	if err != nil {
		return fmt.Errorf("save fundamentals %s: %w", f.Ticker, err)
	}
	return nil
}

// GetFundamentals returns one ticker's fundamentals
func (s *Store) GetFundamentals(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+fundamentalsColumns+` FROM fundamentals WHERE ticker = $1`, ticker)

	f, err := scanFundamentals(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get fundamentals %s: %w", ticker, err)
	}
	return f, nil
}

// GetAllFundamentals returns the full fundamentals table ordered by ticker
func (s *Store) GetAllFundamentals(ctx context.Context) ([]contracts.Fundamentals, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+fundamentalsColumns+` FROM fundamentals ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("get all fundamentals: %w", err)
	}
	defer rows.Close()

	var out []contracts.Fundamentals
	for rows.Next() {
		f, err := scanFundamentals(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fundamentals: %w", err)
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func scanFundamentals(row pgx.Row) (*contracts.Fundamentals, error) {
	var f contracts.Fundamentals
	var mc, tpe, fpe, dy, beta, tmean, tmed, thigh, tlow, nan *float64

	err := row.Scan(&f.Ticker, &f.Name, &f.Sector, &f.Industry,
		&mc, &tpe, &fpe, &dy, &beta, &tmean, &tmed, &thigh, &tlow, &nan, &f.LastUpdated)
	if err != nil {
		return nil, err
	}

	f.MarketCap = contracts.NumFromPtr(mc)
	f.TrailingPE = contracts.NumFromPtr(tpe)
	f.ForwardPE = contracts.NumFromPtr(fpe)
	f.DividendYield = contracts.NumFromPtr(dy)
	f.Beta = contracts.NumFromPtr(beta)
	f.TargetMean = contracts.NumFromPtr(tmean)
	f.TargetMedian = contracts.NumFromPtr(tmed)
	f.TargetHigh = contracts.NumFromPtr(thigh)
	f.TargetLow = contracts.NumFromPtr(tlow)
	f.NumAnalysts = contracts.NumFromPtr(nan)
	return &f, nil
}
