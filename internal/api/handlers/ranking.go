package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/internal/selection"
	"github.com/wonny/stockrank/pkg/logger"
	"github.com/wonny/stockrank/pkg/redis"
)

// Scorer ranks the stored universe
type Scorer interface {
	Params() selection.Params
	ScoreWith(ctx context.Context, params selection.Params, lookbackDays int) ([]contracts.RankedRow, error)
}

// RankingHandler serves the ranked universe
// ⭐ SSOT: 랭킹 API 핸들러는 이 구조체에서만
type RankingHandler struct {
	scorer       Scorer
	cache        *redis.Cache
	strategyHash string
	lookbackDays int
	defaultTopN  int
	logger       *logger.Logger
}

// NewRankingHandler creates a new ranking handler. cache may be nil.
func NewRankingHandler(scorer Scorer, cache *redis.Cache, strategyHash string, lookbackDays, defaultTopN int, log *logger.Logger) *RankingHandler {
	return &RankingHandler{
		scorer:       scorer,
		cache:        cache,
		strategyHash: strategyHash,
		lookbackDays: lookbackDays,
		defaultTopN:  defaultTopN,
		logger:       log,
	}
}

// RankingResponse is the body of GET /api/rankings
type RankingResponse struct {
	Weights      selection.Weights     `json:"weights"`
	LookbackDays int                   `json:"lookback_days"`
	Total        int                   `json:"total"`
	Rows         []contracts.RankedRow `json:"rows"`
}

// GetRankings returns the top ranked tickers
// GET /api/rankings?top=20&technical=0.6&fundamental=0.4&lookback=250
func (h *RankingHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	top, err := queryInt(r, "top", h.defaultTopN)
	if err != nil || top < 0 {
		respondError(w, http.StatusBadRequest, "Invalid 'top' (expected non-negative integer)")
		return
	}
	lookback, err := queryInt(r, "lookback", h.lookbackDays)
	if err != nil || lookback <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid 'lookback' (expected positive integer)")
		return
	}
	technical, err := queryFloat(r, "technical")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'technical' weight")
		return
	}
	fundamental, err := queryFloat(r, "fundamental")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'fundamental' weight")
		return
	}

	params := h.scorer.Params()
	if technical != nil {
		params.Weights.Technical = *technical
	}
	if fundamental != nil {
		params.Weights.Fundamental = *fundamental
	}

	rows, err := h.rank(ctx, params, lookback)
	if err != nil {
		h.logger.WithError(err).Error("Failed to rank universe")
		respondError(w, http.StatusInternalServerError, "Failed to rank universe")
		return
	}

	respondJSON(w, http.StatusOK, RankingResponse{
		Weights:      params.Weights.Normalize(),
		LookbackDays: lookback,
		Total:        len(rows),
		Rows:         contracts.TopN(rows, top),
	})
}

// rank reads through the rankings cache when one is configured
func (h *RankingHandler) rank(ctx context.Context, params selection.Params, lookback int) ([]contracts.RankedRow, error) {
	if h.cache == nil {
		return h.scorer.ScoreWith(ctx, params, lookback)
	}

	w := params.Weights.Normalize()
	key := redis.RankingsKey(fmt.Sprintf("%s:%.4f:%.4f", h.strategyHash, w.Technical, w.Fundamental), lookback)

	var rows []contracts.RankedRow
	err := h.cache.GetOrSet(ctx, key, &rows, redis.TTLMedium, func() (interface{}, error) {
		return h.scorer.ScoreWith(ctx, params, lookback)
	})
	return rows, err
}
