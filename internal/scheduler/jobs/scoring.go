package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/pkg/logger"
)

// Ranker produces the ranked universe
type Ranker interface {
	Score(ctx context.Context) ([]contracts.RankedRow, error)
}

// ScoringJob ranks the universe after the daily update and logs the leaders
// ⭐ SSOT: 유니버스 스코어링 스케줄은 이 Job에서만
type ScoringJob struct {
	ranker   Ranker
	schedule string
	topN     int
	logger   *logger.Logger
	mu       sync.RWMutex
	last     []contracts.RankedRow
}

// NewScoringJob creates a new scoring job
func NewScoringJob(ranker Ranker, schedule string, topN int, log *logger.Logger) *ScoringJob {
	return &ScoringJob{
		ranker:   ranker,
		schedule: schedule,
		topN:     topN,
		logger:   log,
	}
}

// Name returns the job name
func (j *ScoringJob) Name() string {
	return "universe_scoring"
}

// Schedule returns the cron schedule
func (j *ScoringJob) Schedule() string {
	return j.schedule
}

// Last returns the top rows of the most recent successful run
func (j *ScoringJob) Last() []contracts.RankedRow {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.last
}

// Run executes the ranking
func (j *ScoringJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled universe scoring")

	rows, err := j.ranker.Score(ctx)
	if err != nil {
		return fmt.Errorf("score universe: %w", err)
	}

	top := contracts.TopN(rows, j.topN)
	for _, r := range top {
		j.logger.WithFields(map[string]interface{}{
			"rank":        r.Rank,
			"ticker":      r.Ticker,
			"composite":   r.CompositeScore,
			"technical":   r.TechnicalScore,
			"fundamental": r.FundamentalScore,
		}).Info("Top ranked")
	}
	j.mu.Lock()
	j.last = top
	j.mu.Unlock()

	j.logger.WithFields(map[string]interface{}{
		"ranked": len(rows),
		"top_n":  len(top),
	}).Info("Universe scoring finished")
	return nil
}
