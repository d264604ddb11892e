package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/stockrank/internal/chart"
	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/pkg/logger"
)

// PriceReader loads one ticker's history
type PriceReader interface {
	GetPriceHistory(ctx context.Context, ticker string, from, to time.Time) (contracts.Series, error)
}

// TechnicalScorer scores one series
type TechnicalScorer interface {
	Calculate(ctx context.Context, series contracts.Series) (*contracts.TechnicalResult, error)
}

// TickerHandler serves per-ticker technical results and chart overlays
// ⭐ SSOT: 종목 단위 API 핸들러는 이 구조체에서만
type TickerHandler struct {
	prices       PriceReader
	technical    TechnicalScorer
	lookbackDays int
	now          func() time.Time
	logger       *logger.Logger
}

// NewTickerHandler creates a new ticker handler
func NewTickerHandler(prices PriceReader, technical TechnicalScorer, lookbackDays int, log *logger.Logger) *TickerHandler {
	return &TickerHandler{
		prices:       prices,
		technical:    technical,
		lookbackDays: lookbackDays,
		now:          time.Now,
		logger:       log,
	}
}

// GetTechnical returns the technical scoring record for a ticker
// GET /api/tickers/{ticker}/technical
func (h *TickerHandler) GetTechnical(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	since := h.now().AddDate(0, 0, -h.lookbackDays)
	series, err := h.prices.GetPriceHistory(ctx, ticker, since, time.Time{})
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to load prices")
		respondError(w, http.StatusInternalServerError, "Failed to load prices")
		return
	}

	res, err := h.technical.Calculate(ctx, series)
	if errors.Is(err, contracts.ErrNoData) {
		respondError(w, http.StatusNotFound, "Insufficient price history for "+ticker)
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to score ticker")
		respondError(w, http.StatusInternalServerError, "Failed to score ticker")
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// GetChart returns the candlestick overlay for a ticker
// GET /api/tickers/{ticker}/chart?start=&end=&sma=20,50&ema=12&bbands=20&rsi=14&macd=true&momentum=5&volume=true
func (h *TickerHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	start, err := queryDate(r, "start")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'start' date format (expected YYYY-MM-DD)")
		return
	}
	end, err := queryDate(r, "end")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'end' date format (expected YYYY-MM-DD)")
		return
	}

	ind, err := parseIndicators(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	series, err := h.prices.GetPriceHistory(ctx, ticker, start, end)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to load prices")
		respondError(w, http.StatusInternalServerError, "Failed to load prices")
		return
	}

	overlay, err := chart.BuildOverlay(series, ind)
	if errors.Is(err, contracts.ErrNoData) {
		respondError(w, http.StatusNotFound, "No price data for "+ticker)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to build chart")
		return
	}

	respondJSON(w, http.StatusOK, overlay)
}

var errBadIndicator = errors.New("invalid indicator parameter")

func parseIndicators(r *http.Request) (chart.Indicators, error) {
	q := r.URL.Query()
	ind := chart.DefaultIndicators()

	var err error
	if ind.SMA, err = parseIntList(q.Get("sma")); err != nil {
		return ind, errBadIndicator
	}
	if ind.EMA, err = parseIntList(q.Get("ema")); err != nil {
		return ind, errBadIndicator
	}
	if ind.Bollinger, err = queryInt(r, "bbands", 0); err != nil {
		return ind, errBadIndicator
	}
	if ind.RSI, err = queryInt(r, "rsi", 0); err != nil {
		return ind, errBadIndicator
	}
	if ind.Momentum, err = queryInt(r, "momentum", 0); err != nil {
		return ind, errBadIndicator
	}
	if v := q.Get("macd"); v != "" {
		if ind.MACD, err = strconv.ParseBool(v); err != nil {
			return ind, errBadIndicator
		}
	}
	if v := q.Get("volume"); v != "" {
		if ind.Volume, err = strconv.ParseBool(v); err != nil {
			return ind, errBadIndicator
		}
	}
	return ind, nil
}

// parseIntList parses "20,50"
func parseIntList(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
