package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/stockrank/internal/s0_data/collector"
	"github.com/wonny/stockrank/pkg/logger"
)

// UpdateRunner runs one incremental update pass
type UpdateRunner interface {
	Run(ctx context.Context, includeFundamentals bool) (*collector.UpdateSummary, error)
}

// DailyUpdateJob runs the incremental price update after the close
// ⭐ SSOT: 데이터 수집 스케줄은 이 Job에서만
type DailyUpdateJob struct {
	updater             UpdateRunner
	schedule            string
	includeFundamentals bool
	logger              *logger.Logger
}

// NewDailyUpdateJob creates a new daily update job
func NewDailyUpdateJob(updater UpdateRunner, schedule string, includeFundamentals bool, log *logger.Logger) *DailyUpdateJob {
	return &DailyUpdateJob{
		updater:             updater,
		schedule:            schedule,
		includeFundamentals: includeFundamentals,
		logger:              log,
	}
}

// Name returns the job name
func (j *DailyUpdateJob) Name() string {
	return "daily_update"
}

// Schedule returns the cron schedule (weekdays after the US close by default)
func (j *DailyUpdateJob) Schedule() string {
	return j.schedule
}

// Run executes the update
func (j *DailyUpdateJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled daily update")

	summary, err := j.updater.Run(ctx, j.includeFundamentals)
	if err != nil {
		return fmt.Errorf("daily update: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"tickers_synced": summary.TickersSynced,
		"prices_updated": summary.PricesUpdated,
		"new_rows":       summary.NewRows,
	}).Info("Scheduled daily update finished")
	return nil
}
