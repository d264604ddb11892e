package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stockrank/internal/chart"
)

var (
	chartStart    string
	chartEnd      string
	chartSMA      []int
	chartEMA      []int
	chartBBands   int
	chartRSI      int
	chartMACD     bool
	chartMomentum int
	chartNoVolume bool
	chartOut      string
)

var chartCmd = &cobra.Command{
	Use:   "chart TICKER",
	Short: "Write a candlestick overlay (JSON) for one ticker",
	Long: `Compute indicator overlays for a candlestick renderer.

The overlay holds candles, moving averages, Bollinger bands, RSI with 30/70
guides, MACD with a signed histogram and swing-high/low markers.

Example:
  go run ./cmd/screener chart AAPL --sma 20,50 --rsi 14 --macd
  go run ./cmd/screener chart MSFT --start 2024-01-01 --momentum 5 --out msft.json`,
	Args: cobra.ExactArgs(1),
	RunE: runChart,
}

func init() {
	rootCmd.AddCommand(chartCmd)

	chartCmd.Flags().StringVar(&chartStart, "start", "", "first date (YYYY-MM-DD)")
	chartCmd.Flags().StringVar(&chartEnd, "end", "", "last date (YYYY-MM-DD)")
	chartCmd.Flags().IntSliceVar(&chartSMA, "sma", nil, "SMA periods, e.g. 20,50")
	chartCmd.Flags().IntSliceVar(&chartEMA, "ema", nil, "EMA periods")
	chartCmd.Flags().IntVar(&chartBBands, "bbands", 0, "Bollinger period (0 = off)")
	chartCmd.Flags().IntVar(&chartRSI, "rsi", 0, "RSI period (0 = off)")
	chartCmd.Flags().BoolVar(&chartMACD, "macd", false, "MACD 12/26/9")
	chartCmd.Flags().IntVar(&chartMomentum, "momentum", 0, "swing window for high/low markers (0 = off)")
	chartCmd.Flags().BoolVar(&chartNoVolume, "no-volume", false, "hide the volume panel")
	chartCmd.Flags().StringVar(&chartOut, "out", "", "output file (default stdout)")
}

func runChart(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ticker := strings.ToUpper(args[0])
	start, err := parseOptionalDate(chartStart)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	end, err := parseOptionalDate(chartEnd)
	if err != nil {
		return fmt.Errorf("--end: %w", err)
	}

	series, err := a.store.GetPriceHistory(cmd.Context(), ticker, start, end)
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}

	overlay, err := chart.BuildOverlay(series, chart.Indicators{
		SMA:       chartSMA,
		EMA:       chartEMA,
		Bollinger: chartBBands,
		RSI:       chartRSI,
		MACD:      chartMACD,
		Momentum:  chartMomentum,
		Volume:    !chartNoVolume,
	})
	if err != nil {
		return err
	}

	out := os.Stdout
	if chartOut != "" {
		f, err := os.Create(chartOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", chartOut, err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(overlay); err != nil {
		return fmt.Errorf("write overlay: %w", err)
	}

	if chartOut != "" {
		PrintSuccess(fmt.Sprintf("Chart overlay for %s (%d bars) saved to %s", ticker, len(overlay.Candles), chartOut))
	}
	return nil
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}
