// Package yahoo adapts Yahoo Finance price history and quote summaries
// to the S0 source interfaces.
package yahoo

import (
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/pkg/httputil"
	"github.com/wonny/stockrank/pkg/logger"
)

var (
	_ contracts.PriceSource        = (*Client)(nil)
	_ contracts.FundamentalsSource = (*Client)(nil)
)

// barIter is the iteration surface of a finance-go chart request
type barIter interface {
	Next() bool
	Bar() *finance.ChartBar
	Err() error
}

// Client fetches daily bars through finance-go and fundamentals through quoteSummary
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	summaryURL string
	market     *time.Location
	fetchChart func(*chart.Params) barIter
}

// NewClient creates a Yahoo client.
// summaryURL is the quoteSummary base, the ticker is appended as a path segment.
func NewClient(httpClient *httputil.Client, log *logger.Logger, summaryURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		summaryURL: summaryURL,
		market:     marketLocation(),
		fetchChart: func(p *chart.Params) barIter { return chart.Get(p) },
	}
}

// marketLocation returns the US exchange time zone used to stamp bar dates
func marketLocation() *time.Location {
	if loc, err := time.LoadLocation("America/New_York"); err == nil {
		return loc
	}
	return time.FixedZone("EST", -5*60*60)
}
