package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/stockrank/internal/contracts"
)

const summaryModules = "assetProfile,summaryDetail,financialData,price"

// rawValue is Yahoo's {"raw": 1.23, "fmt": "1.23"} wrapper
type rawValue struct {
	Raw json.RawMessage `json:"raw"`
}

func (v *rawValue) num() contracts.Num {
	if v == nil || len(v.Raw) == 0 {
		return contracts.None()
	}
	var f float64
	if err := json.Unmarshal(v.Raw, &f); err != nil {
		return contracts.None()
	}
	return contracts.NumFromFloat(f)
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []summaryResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type summaryResult struct {
	AssetProfile *struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"assetProfile"`
	SummaryDetail *struct {
		MarketCap     *rawValue `json:"marketCap"`
		TrailingPE    *rawValue `json:"trailingPE"`
		ForwardPE     *rawValue `json:"forwardPE"`
		DividendYield *rawValue `json:"dividendYield"`
		Beta          *rawValue `json:"beta"`
	} `json:"summaryDetail"`
	FinancialData *struct {
		CurrentPrice            *rawValue `json:"currentPrice"`
		TargetMeanPrice         *rawValue `json:"targetMeanPrice"`
		TargetMedianPrice       *rawValue `json:"targetMedianPrice"`
		TargetHighPrice         *rawValue `json:"targetHighPrice"`
		TargetLowPrice          *rawValue `json:"targetLowPrice"`
		NumberOfAnalystOpinions *rawValue `json:"numberOfAnalystOpinions"`
	} `json:"financialData"`
	Price *struct {
		LongName  string    `json:"longName"`
		ShortName string    `json:"shortName"`
		MarketCap *rawValue `json:"marketCap"`
	} `json:"price"`
}

// FetchFundamentals returns one ticker's fundamentals snapshot.
// Missing modules leave their fields absent.
func (c *Client) FetchFundamentals(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	endpoint := fmt.Sprintf("%s/%s?modules=%s",
		strings.TrimRight(c.summaryURL, "/"), url.PathEscape(ticker), url.QueryEscape(summaryModules))

	var resp summaryResponse
	if err := c.httpClient.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetch fundamentals %s: %w", ticker, err)
	}

	f, err := parseSummary(ticker, &resp)
	if err != nil {
		return nil, err
	}
	f.LastUpdated = time.Now().UTC()
	return f, nil
}

// parseSummary maps a quoteSummary response to Fundamentals
func parseSummary(ticker string, resp *summaryResponse) (*contracts.Fundamentals, error) {
	if e := resp.QuoteSummary.Error; e != nil {
		return nil, fmt.Errorf("quote summary %s: %s: %s", ticker, e.Code, e.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("quote summary %s: %w", ticker, contracts.ErrNoData)
	}
	r := resp.QuoteSummary.Result[0]

	f := &contracts.Fundamentals{Ticker: ticker}

	if p := r.AssetProfile; p != nil {
		f.Sector = p.Sector
		f.Industry = p.Industry
	}
	if p := r.Price; p != nil {
		f.Name = p.LongName
		if f.Name == "" {
			f.Name = p.ShortName
		}
		f.MarketCap = p.MarketCap.num()
	}
	if d := r.SummaryDetail; d != nil {
		if !f.MarketCap.Valid {
			f.MarketCap = d.MarketCap.num()
		}
		f.TrailingPE = d.TrailingPE.num()
		f.ForwardPE = d.ForwardPE.num()
		f.DividendYield = d.DividendYield.num()
		f.Beta = d.Beta.num()
	}
	if fd := r.FinancialData; fd != nil {
		f.Price = fd.CurrentPrice.num()
		f.TargetMean = fd.TargetMeanPrice.num()
		f.TargetMedian = fd.TargetMedianPrice.num()
		f.TargetHigh = fd.TargetHighPrice.num()
		f.TargetLow = fd.TargetLowPrice.num()
		f.NumAnalysts = fd.NumberOfAnalystOpinions.num()
	}

	return f, nil
}
