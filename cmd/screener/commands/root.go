package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	sqlitePath string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Equity research pipeline: universe, prices, fundamentals, ranking",
	Long: `Stockrank CLI

Downloads the US ticker universe, daily prices and fundamentals into a
relational store and ranks every ticker by a composite of technical and
fundamental scores.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener init-db
  go run ./cmd/screener sync-tickers
  go run ./cmd/screener download --limit 100
  go run ./cmd/screener score --top 20
  go run ./cmd/screener chart AAPL --sma 20,50 --rsi 14`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Ctrl+C cancels the command context so downloads stop between tickers.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "db", "", "SQLite database path (overrides SQLITE_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
