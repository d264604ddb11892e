package nasdaq

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/pkg/httputil"
	"github.com/wonny/stockrank/pkg/logger"
)

// ExchangeUnknown is the exchange recorded for SEC fallback listings
const ExchangeUnknown = "UNKNOWN"

var _ contracts.ListingSource = (*Client)(nil)

// URLs holds the listing endpoints
type URLs struct {
	NasdaqListed string
	OtherListed  string
	SECEdgar     string
}

// Client fetches the US listed-ticker universe
// ⭐ SSOT: 상장 종목 목록 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	secClient  *httputil.Client
	logger     *logger.Logger
	urls       URLs
}

// NewClient creates a listing client.
// secClient must carry the SEC User-Agent header.
func NewClient(httpClient, secClient *httputil.Client, log *logger.Logger, urls URLs) *Client {
	return &Client{
		httpClient: httpClient,
		secClient:  secClient,
		logger:     log,
		urls:       urls,
	}
}

// FetchListings returns NASDAQ Trader listings, falling back to SEC EDGAR
// when either NASDAQ file cannot be fetched or parsed
func (c *Client) FetchListings(ctx context.Context) ([]contracts.Ticker, error) {
	tickers, err := c.FetchNasdaq(ctx)
	if err == nil {
		c.logger.WithField("count", len(tickers)).Info("Fetched tickers from NASDAQ")
		return tickers, nil
	}

	c.logger.WithError(err).Warn("NASDAQ fetch failed, falling back to SEC EDGAR")
	tickers, secErr := c.FetchSEC(ctx)
	if secErr != nil {
		return nil, fmt.Errorf("fetch listings: nasdaq: %v; sec: %w", err, secErr)
	}
	c.logger.WithField("count", len(tickers)).Info("Fetched tickers from SEC EDGAR")
	return tickers, nil
}

// FetchNasdaq reads nasdaqlisted.txt and otherlisted.txt
func (c *Client) FetchNasdaq(ctx context.Context) ([]contracts.Ticker, error) {
	body, err := c.httpClient.GetBytes(ctx, c.urls.NasdaqListed)
	if err != nil {
		return nil, fmt.Errorf("fetch nasdaqlisted: %w", err)
	}
	listed, err := ParseListed(string(body), "Symbol", "", "NASDAQ")
	if err != nil {
		return nil, fmt.Errorf("parse nasdaqlisted: %w", err)
	}

	body, err = c.httpClient.GetBytes(ctx, c.urls.OtherListed)
	if err != nil {
		return nil, fmt.Errorf("fetch otherlisted: %w", err)
	}
	other, err := ParseListed(string(body), "ACT Symbol", "Exchange", "")
	if err != nil {
		return nil, fmt.Errorf("parse otherlisted: %w", err)
	}

	return append(listed, other...), nil
}

type secEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// FetchSEC reads SEC EDGAR company_tickers.json
func (c *Client) FetchSEC(ctx context.Context) ([]contracts.Ticker, error) {
	var data map[string]secEntry
	if err := c.secClient.GetJSON(ctx, c.urls.SECEdgar, &data); err != nil {
		return nil, fmt.Errorf("fetch sec edgar: %w", err)
	}

	// JSON object order is lost; keep the file's numeric key order
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})

	tickers := make([]contracts.Ticker, 0, len(data))
	for _, k := range keys {
		e := data[k]
		tickers = append(tickers, contracts.Ticker{
			Symbol:   e.Ticker,
			Name:     e.Title,
			Exchange: ExchangeUnknown,
		})
	}
	return tickers, nil
}

// ParseListed parses a pipe-delimited NASDAQ Trader symbol file.
// exchangeCol may be empty, in which case defaultExchange is used.
// The "File Creation Time" trailer and short rows are skipped.
func ParseListed(body, symbolCol, exchangeCol, defaultExchange string) ([]contracts.Ticker, error) {
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("empty listing file")
	}

	header := splitRow(lines[0])
	symIdx := indexOf(header, symbolCol)
	nameIdx := indexOf(header, "Security Name")
	if symIdx < 0 || nameIdx < 0 {
		return nil, fmt.Errorf("missing %q or %q column", symbolCol, "Security Name")
	}
	exchIdx := -1
	if exchangeCol != "" {
		if exchIdx = indexOf(header, exchangeCol); exchIdx < 0 {
			return nil, fmt.Errorf("missing %q column", exchangeCol)
		}
	}
	need := max(symIdx, nameIdx, exchIdx)

	tickers := make([]contracts.Ticker, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "File Creation Time") {
			continue
		}
		cols := splitRow(line)
		if len(cols) <= need {
			continue
		}

		t := contracts.Ticker{
			Symbol:   cols[symIdx],
			Name:     cols[nameIdx],
			Exchange: defaultExchange,
		}
		if exchIdx >= 0 {
			t.Exchange = cols[exchIdx]
		}
		tickers = append(tickers, t)
	}
	return tickers, nil
}

func splitRow(line string) []string {
	cols := strings.Split(strings.TrimRight(line, "\r"), "|")
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	return cols
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}
