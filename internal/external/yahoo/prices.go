package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"github.com/wonny/stockrank/internal/contracts"
)

// epoch is the start used when the full history is requested
var epoch = time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC)

// FetchHistory returns daily bars in [start, end].
// A zero start requests the full history; a zero end means now.
// Bars without a close are dropped.
func (c *Client) FetchHistory(ctx context.Context, ticker string, start, end time.Time) ([]contracts.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if start.IsZero() {
		start = epoch
	}
	if end.IsZero() {
		end = time.Now()
	}
	// chart end is exclusive
	end = end.AddDate(0, 0, 1)

	params := &chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := c.fetchChart(params)
	bars := make([]contracts.Bar, 0)
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b := iter.Bar()
		if b == nil {
			continue
		}

		closePrice := b.Close.InexactFloat64()
		if closePrice <= 0 {
			continue
		}
		adj := b.AdjClose.InexactFloat64()
		if adj <= 0 {
			adj = closePrice
		}

		bars = append(bars, contracts.Bar{
			Date:     c.tradingDate(int64(b.Timestamp)),
			Open:     b.Open.InexactFloat64(),
			High:     b.High.InexactFloat64(),
			Low:      b.Low.InexactFloat64(),
			Close:    closePrice,
			Volume:   int64(b.Volume),
			AdjClose: adj,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get historical data for %s: %w", ticker, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(bars),
	}).Debug("Fetched prices")
	return bars, nil
}

// tradingDate maps a bar timestamp to its exchange-local calendar date at UTC midnight
func (c *Client) tradingDate(ts int64) time.Time {
	t := time.Unix(ts, 0).In(c.market)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
