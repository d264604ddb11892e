package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/internal/report"
	"github.com/wonny/stockrank/internal/selection"
)

var (
	scoreTechnical   float64
	scoreFundamental float64
	scoreTop         int
	scoreLookback    int
	scoreStrategy    string
	scoreScreen      bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Rank the stored universe by composite score",
	Long: `Rank every ticker with enough price history by a weighted blend of
technical and fundamental scores and print the top rows.

Weights given by flags override the strategy file; they are normalized to
sum to 1.

Example:
  go run ./cmd/screener score --top 20
  go run ./cmd/screener score --technical 0.8 --fundamental 0.2
  go run ./cmd/screener score --strategy strategies/value.yaml --screen`,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().Float64Var(&scoreTechnical, "technical", -1, "technical weight (default from strategy)")
	scoreCmd.Flags().Float64Var(&scoreFundamental, "fundamental", -1, "fundamental weight (default from strategy)")
	scoreCmd.Flags().IntVar(&scoreTop, "top", 0, "rows to print (default SCORING_TOP_N)")
	scoreCmd.Flags().IntVar(&scoreLookback, "lookback", 0, "calendar days of price history (default SCORING_LOOKBACK_DAYS)")
	scoreCmd.Flags().StringVar(&scoreStrategy, "strategy", "", "strategy YAML file")
	scoreCmd.Flags().BoolVar(&scoreScreen, "screen", false, "apply the strategy's screening cuts")
}

func runScore(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	start := time.Now()

	strat, hash, err := a.strategy(scoreStrategy)
	if err != nil {
		return err
	}

	params := strat.Params()
	if scoreTechnical >= 0 {
		params.Weights.Technical = scoreTechnical
	}
	if scoreFundamental >= 0 {
		params.Weights.Fundamental = scoreFundamental
	}

	lookback := a.lookback(scoreLookback, strat)
	svc := a.scoringService(strat, lookback)
	rows, err := svc.ScoreWith(ctx, params, lookback)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}

	if scoreScreen {
		rows = selection.NewScreener(strat.Screening, a.log).Screen(ctx, rows)
	}

	top := contracts.TopN(rows, a.topN(scoreTop, strat))
	w := params.Weights.Normalize()
	title := fmt.Sprintf("Top %d of %d  (technical %.2f / fundamental %.2f, %d days, strategy %s@%s)",
		len(top), len(rows), w.Technical, w.Fundamental, lookback, strat.Meta.StrategyID, shortHash(hash))

	if err := report.Write(os.Stdout, title, top); err != nil {
		return err
	}
	PrintCompletion(start)
	return nil
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
