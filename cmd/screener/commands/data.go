package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stockrank/internal/s0_data/collector"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.InitSchema(cmd.Context()); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
		PrintSuccess(fmt.Sprintf("Schema ready (%s)", a.cfg.Database.Driver))
		return nil
	},
}

var syncTickersCmd = &cobra.Command{
	Use:   "sync-tickers",
	Short: "Fetch NASDAQ/NYSE listings, filter and upsert the universe",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		start := time.Now()
		PrintHeader("Ticker Sync")
		res, err := a.syncer().Sync(cmd.Context())
		if err != nil {
			return fmt.Errorf("sync tickers: %w", err)
		}

		PrintKV("Upserted", res.Total)
		PrintKV("New", res.New)
		PrintKV("Updated", res.Updated)
		PrintCompletion(start)
		return nil
	},
}

var (
	downloadLimit    int
	downloadTickers  string
	downloadNoResume bool
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download full daily price history",
	Long: `Download full daily price history for stored tickers.

Tickers already marked complete are skipped unless --no-resume is set.

Example:
  go run ./cmd/screener download --limit 100
  go run ./cmd/screener download --tickers AAPL,MSFT --no-resume`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		start := time.Now()
		PrintHeader("Price Download")
		stats, err := a.downloader().DownloadAll(cmd.Context(), collector.Options{
			Tickers: splitTickers(downloadTickers),
			Resume:  !downloadNoResume,
			Limit:   downloadLimit,
		})
		if err != nil {
			return fmt.Errorf("download: %w", err)
		}

		printStats(stats)
		PrintCompletion(start)
		return nil
	},
}

var retryFailedCmd = &cobra.Command{
	Use:   "retry-failed",
	Short: "Reset and re-download tickers whose download failed",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		start := time.Now()
		PrintHeader("Retry Failed Downloads")
		stats, err := a.downloader().RetryFailed(cmd.Context())
		if err != nil {
			return fmt.Errorf("retry failed: %w", err)
		}

		printStats(stats)
		PrintCompletion(start)
		return nil
	},
}

var downloadStatusCmd = &cobra.Command{
	Use:   "download-status",
	Short: "Show download progress and data coverage",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		st, err := a.downloader().Status(ctx)
		if err != nil {
			return err
		}

		PrintHeader("Download Status")
		PrintKV("Tickers", st.TotalTickers)
		PrintKV("Price rows", st.TotalRows)
		PrintKV("Complete", st.Complete)
		PrintKV("No data", st.NoData)
		PrintKV("Failed", st.Failed)
		PrintKV("Pending", st.Pending)

		snap, err := a.qualityGate().Check(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("quality check: %w", err)
		}
		PrintSeparator()
		for _, key := range []string{"price", "fresh", "fundamentals"} {
			PrintKV(key+" coverage", fmt.Sprintf("%.1f%%", snap.Coverage[key]*100))
		}
		PrintKV("Quality score", fmt.Sprintf("%.3f", snap.QualityScore))
		if snap.Passed {
			PrintSuccess("Quality gate passed")
		} else {
			PrintWarning("Quality gate not passed")
		}
		return nil
	},
}

var fundamentalsLimit int

var fundamentalsCmd = &cobra.Command{
	Use:   "fundamentals",
	Short: "Refresh fundamentals for stored tickers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		start := time.Now()
		PrintHeader("Fundamentals")
		sum, err := a.fundamentals().FetchAll(cmd.Context(), fundamentalsLimit)
		if err != nil {
			return fmt.Errorf("fundamentals: %w", err)
		}

		PrintKV("Processed", sum.Processed)
		PrintKV("Updated", sum.Updated)
		PrintKV("Failed", sum.Failed)
		PrintKV("From cache", sum.Cached)
		PrintCompletion(start)
		return nil
	},
}

var updateFundamentals bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Sync tickers and fetch prices since each ticker's last stored date",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		start := time.Now()
		PrintHeader("Daily Update")
		sum, err := a.updater().Run(cmd.Context(), updateFundamentals || a.cfg.Download.UpdateFundamentals)
		if err != nil {
			return fmt.Errorf("update: %w", err)
		}

		PrintKV("Tickers synced", sum.TickersSynced)
		PrintKV("Prices updated", sum.PricesUpdated)
		PrintKV("New rows", sum.NewRows)
		if sum.Fundamentals != nil {
			PrintKV("Fundamentals", fmt.Sprintf("%d updated, %d failed", sum.Fundamentals.Updated, sum.Fundamentals.Failed))
		}
		PrintCompletion(start)
		return nil
	},
}

var delistingsCmd = &cobra.Command{
	Use:   "delistings",
	Short: "List stored tickers missing from current listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		gone, err := a.syncer().DetectDelistings(cmd.Context())
		if err != nil {
			return fmt.Errorf("detect delistings: %w", err)
		}
		if len(gone) == 0 {
			PrintSuccess("No delisted tickers")
			return nil
		}
		fmt.Printf("%d delisted tickers:\n", len(gone))
		PrintList(gone)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initDBCmd, syncTickersCmd, downloadCmd, retryFailedCmd,
		downloadStatusCmd, fundamentalsCmd, updateCmd, delistingsCmd)

	downloadCmd.Flags().IntVar(&downloadLimit, "limit", 0, "max tickers to download (0 = all)")
	downloadCmd.Flags().StringVar(&downloadTickers, "tickers", "", "comma-separated tickers")
	downloadCmd.Flags().BoolVar(&downloadNoResume, "no-resume", false, "re-download tickers already complete")

	fundamentalsCmd.Flags().IntVar(&fundamentalsLimit, "limit", 0, "max tickers to refresh (0 = all)")

	updateCmd.Flags().BoolVar(&updateFundamentals, "fundamentals", false, "also refresh fundamentals")
}

// splitTickers parses "aapl, msft" into ["AAPL", "MSFT"]
func splitTickers(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func printStats(stats *collector.Stats) {
	PrintKV("Downloaded", stats.Downloaded)
	PrintKV("Failed", stats.Failed)
	PrintKV("Rows", stats.Rows)
}
