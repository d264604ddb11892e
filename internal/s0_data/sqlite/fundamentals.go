package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/stockrank/internal/contracts"
)

const fundamentalsColumns = `ticker, name, sector, industry, market_cap, trailing_pe, forward_pe,
	dividend_yield, beta, target_mean, target_median, target_high, target_low, num_analysts, last_updated`

// SaveFundamentals upserts one fundamentals row
func (s *Store) SaveFundamentals(ctx context.Context, f *contracts.Fundamentals) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fundamentals (`+fundamentalsColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			name = excluded.name,
			sector = excluded.sector,
			industry = excluded.industry,
			market_cap = excluded.market_cap,
			trailing_pe = excluded.trailing_pe,
			forward_pe = excluded.forward_pe,
			dividend_yield = excluded.dividend_yield,
			beta = excluded.beta,
			target_mean = excluded.target_mean,
			target_median = excluded.target_median,
			target_high = excluded.target_high,
			target_low = excluded.target_low,
			num_analysts = excluded.num_analysts,
			last_updated = excluded.last_updated
	`,
		f.Ticker, f.Name, f.Sector, f.Industry,
		nullFloat(f.MarketCap), nullFloat(f.TrailingPE), nullFloat(f.ForwardPE), nullFloat(f.DividendYield), nullFloat(f.Beta),
		nullFloat(f.TargetMean), nullFloat(f.TargetMedian), nullFloat(f.TargetHigh), nullFloat(f.TargetLow), nullFloat(f.NumAnalysts),
		now(),
	)
	if err != nil {
		return fmt.Errorf("save fundamentals %s: %w", f.Ticker, err)
	}
	return nil
}

// GetFundamentals returns one ticker's fundamentals
func (s *Store) GetFundamentals(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+fundamentalsColumns+` FROM fundamentals WHERE ticker = ?`, ticker)

	f, err := scanFundamentals(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get fundamentals %s: %w", ticker, err)
	}
	return f, nil
}

// GetAllFundamentals returns the full fundamentals table ordered by ticker
func (s *Store) GetAllFundamentals(ctx context.Context) ([]contracts.Fundamentals, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+fundamentalsColumns+` FROM fundamentals ORDER BY ticker`)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanFundamentals(row scanner) (*contracts.Fundamentals, error) {
	var f contracts.Fundamentals
	var mc, tpe, fpe, dy, beta, tmean, tmed, thigh, tlow, nan sql.NullFloat64
	var updated string

	err := row.Scan(&f.Ticker, &f.Name, &f.Sector, &f.Industry,
		&mc, &tpe, &fpe, &dy, &beta, &tmean, &tmed, &thigh, &tlow, &nan, &updated)
	if err != nil {
		return nil, err
	}

	f.MarketCap = numFromNull(mc)
	f.TrailingPE = numFromNull(tpe)
	f.ForwardPE = numFromNull(fpe)
	f.DividendYield = numFromNull(dy)
	f.Beta = numFromNull(beta)
	f.TargetMean = numFromNull(tmean)
	f.TargetMedian = numFromNull(tmed)
	f.TargetHigh = numFromNull(thigh)
	f.TargetLow = numFromNull(tlow)
	f.NumAnalysts = numFromNull(nan)
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		f.LastUpdated = t
	}
	return &f, nil
}
