package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// dbHealthCmd represents the db-health command
var dbHealthCmd = &cobra.Command{
	Use:   "db-health",
	Short: "Test the store connection",
	Long: `Connect to the configured store, ping it and show pool statistics.

Example:
  go run ./cmd/screener db-health
  DB_DRIVER=postgres go run ./cmd/screener db-health`,
	RunE: runDBHealth,
}

func init() {
	rootCmd.AddCommand(dbHealthCmd)
}

func runDBHealth(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	hc, ok := a.store.(healthChecker)
	if !ok {
		return fmt.Errorf("store %T has no health check", a.store)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	status, err := hc.Health(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}

	PrintHeader("Store Health")
	PrintKV("Driver", status.Driver)
	PrintKV("Healthy", status.Healthy)
	PrintKV("Response time", status.ResponseTime)
	if status.Stats != nil {
		PrintSeparator()
		PrintKV("Total conns", status.Stats.TotalConns)
		PrintKV("Idle conns", status.Stats.IdleConns)
		PrintKV("Max conns", status.Stats.MaxConns)
	}

	tickers, err := a.store.CountTickers(ctx)
	if err != nil {
		return err
	}
	rows, err := a.store.CountBars(ctx)
	if err != nil {
		return err
	}
	PrintSeparator()
	PrintKV("Tickers", tickers)
	PrintKV("Price rows", rows)
	return nil
}
