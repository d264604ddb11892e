package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/pkg/logger"
)

// TickerSyncer refreshes the stored ticker universe
type TickerSyncer interface {
	Sync(ctx context.Context) (*contracts.SyncResult, error)
}

// UpdateSummary is the outcome of a daily update
type UpdateSummary struct {
	TickersSynced int                  `json:"tickers_synced"`
	PricesUpdated int                  `json:"prices_updated"`
	NewRows       int                  `json:"new_rows"`
	Fundamentals  *FundamentalsSummary `json:"fundamentals,omitempty"`
}

// Updater runs the incremental daily update
type Updater struct {
	syncer       TickerSyncer
	store        Store
	downloader   *Downloader
	fundamentals *FundamentalsFetcher
	now          func() time.Time
	logger       *logger.Logger
}

// NewUpdater creates a new Updater. fundamentals may be nil.
func NewUpdater(syncer TickerSyncer, store Store, downloader *Downloader, fundamentals *FundamentalsFetcher, log *logger.Logger) *Updater {
	return &Updater{
		syncer:       syncer,
		store:        store,
		downloader:   downloader,
		fundamentals: fundamentals,
		now:          time.Now,
		logger:       log.WithField("module", "updater"),
	}
}

// Run syncs tickers, fetches full history for tickers without prices and
// bars after the last stored date for the rest, then optionally refreshes fundamentals
// ⭐ SSOT: 일일 증분 업데이트
func (u *Updater) Run(ctx context.Context, includeFundamentals bool) (*UpdateSummary, error) {
	summary := &UpdateSummary{}

	// 1. 종목 동기화
	synced, err := u.syncer.Sync(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync tickers: %w", err)
	}
	summary.TickersSynced = synced.Total

	// 2. 마지막 가격일 기준 그룹핑
	tickers, err := u.store.ListTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	lastDates, err := u.store.LastPriceDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("last price dates: %w", err)
	}

	fresh, groups := groupByStart(tickers, lastDates)
	today := u.now().UTC()

	// 3. 신규 종목 전체 이력
	if len(fresh) > 0 {
		u.logger.WithField("count", len(fresh)).Info("Downloading tickers with no prior data")
		for _, batch := range chunk(fresh, u.downloader.config.BatchSize) {
			stats, err := u.downloader.DownloadBatch(ctx, batch)
			if err != nil {
				return summary, fmt.Errorf("download new tickers: %w", err)
			}
			summary.PricesUpdated += stats.Downloaded
			summary.NewRows += stats.Rows
		}
	}

	// 4. 증분 업데이트
	for _, g := range groups {
		if g.start.After(today) {
			continue
		}
		u.logger.WithFields(map[string]interface{}{
			"count": len(g.tickers),
			"start": g.start.Format("2006-01-02"),
		}).Info("Incremental update")

		for _, batch := range chunk(g.tickers, u.downloader.config.BatchSize) {
			stats, err := u.downloader.UpdateBatch(ctx, batch, g.start)
			if err != nil {
				// 증분 배치 실패는 다음 실행에서 다시 시도됨
				u.logger.WithError(err).WithField("start", g.start.Format("2006-01-02")).Error("Incremental batch failed")
				continue
			}
			summary.PricesUpdated += stats.Downloaded
			summary.NewRows += stats.Rows
		}
	}

	// 5. 펀더멘털 (선택)
	if includeFundamentals && u.fundamentals != nil {
		fs, err := u.fundamentals.FetchAll(ctx, 0)
		if err != nil {
			return summary, fmt.Errorf("fetch fundamentals: %w", err)
		}
		summary.Fundamentals = fs
	}

	u.logger.WithFields(map[string]interface{}{
		"tickers_synced": summary.TickersSynced,
		"prices_updated": summary.PricesUpdated,
		"new_rows":       summary.NewRows,
	}).Info("Daily update complete")
	return summary, nil
}

type startGroup struct {
	start   time.Time
	tickers []string
}

// groupByStart splits tickers into those without prices and groups keyed by
// the day after their last stored date, in ascending start order
func groupByStart(tickers []contracts.Ticker, lastDates map[string]time.Time) ([]string, []startGroup) {
	fresh := make([]string, 0)
	byStart := make(map[time.Time][]string)

	for _, t := range tickers {
		last, ok := lastDates[t.Symbol]
		if !ok {
			fresh = append(fresh, t.Symbol)
			continue
		}
		start := last.AddDate(0, 0, 1)
		byStart[start] = append(byStart[start], t.Symbol)
	}

	groups := make([]startGroup, 0, len(byStart))
	for start, list := range byStart {
		groups = append(groups, startGroup{start: start, tickers: list})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].start.Before(groups[j].start)
	})
	return fresh, groups
}
