package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/stockrank/internal/s0_data/collector"
	"github.com/wonny/stockrank/internal/s0_data/quality"
	"github.com/wonny/stockrank/pkg/logger"
)

// StatusReader reports download progress
type StatusReader interface {
	Status(ctx context.Context) (*collector.Status, error)
}

// QualityChecker reports store coverage
type QualityChecker interface {
	Check(ctx context.Context, date time.Time) (*quality.Snapshot, error)
}

// DownloadHandler serves download progress and data quality
// ⭐ SSOT: 데이터 API 핸들러는 이 구조체에서만
type DownloadHandler struct {
	status  StatusReader
	quality QualityChecker
	logger  *logger.Logger
}

// NewDownloadHandler creates a new download handler. quality may be nil.
func NewDownloadHandler(status StatusReader, q QualityChecker, log *logger.Logger) *DownloadHandler {
	return &DownloadHandler{
		status:  status,
		quality: q,
		logger:  log,
	}
}

// DownloadStatusResponse is the body of GET /api/downloads/status
type DownloadStatusResponse struct {
	*collector.Status
	Quality *quality.Snapshot `json:"quality,omitempty"`
}

// GetStatus returns counts per download status and the coverage snapshot
// GET /api/downloads/status
func (h *DownloadHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	st, err := h.status.Status(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get download status")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve download status")
		return
	}

	resp := DownloadStatusResponse{Status: st}
	if h.quality != nil {
		snap, err := h.quality.Check(ctx, time.Now())
		if err != nil {
			h.logger.WithError(err).Warn("Quality check failed")
		} else {
			resp.Quality = snap
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
