// Package report renders ranked rows for the terminal
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wonny/stockrank/internal/contracts"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	numberStyle = cellStyle.Align(lipgloss.Right)

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// Headers is the fixed column order of the ranking table
var Headers = []string{
	"Rank", "Ticker", "Name", "Sector", "Score", "Tech", "Fund",
	"Price", "RSI", "P/E", "Mkt Cap", "Target", "Upside",
}

// numeric columns are right-aligned
var numericCols = map[int]bool{0: true, 4: true, 5: true, 6: true, 7: true, 8: true, 9: true, 10: true, 11: true, 12: true}

// maxNameWidth truncates long company names
const maxNameWidth = 24

// Cells formats one ranked row; undefined values print as "-"
func Cells(r contracts.RankedRow) []string {
	return []string{
		strconv.Itoa(r.Rank),
		r.Ticker,
		truncate(r.Name, maxNameWidth),
		r.Sector,
		fmt.Sprintf("%.3f", r.CompositeScore),
		fmt.Sprintf("%.3f", r.TechnicalScore),
		fmt.Sprintf("%.3f", r.FundamentalScore),
		fmt.Sprintf("%.2f", r.Price),
		formatNum(r.RSIValue, "%.1f"),
		formatNum(r.PE, "%.1f"),
		formatMarketCap(r.MarketCap),
		formatNum(r.TargetMean, "%.2f"),
		formatPercent(r.TargetUpside),
	}
}

// Table renders rows as a bordered table
func Table(rows []contracts.RankedRow) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(Headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case numericCols[col]:
				return numberStyle
			default:
				return cellStyle
			}
		})

	for _, r := range rows {
		t.Row(Cells(r)...)
	}
	return t.String()
}

// Write prints a titled ranking table
func Write(w io.Writer, title string, rows []contracts.RankedRow) error {
	if _, err := fmt.Fprintln(w, titleStyle.Render(title)); err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No tickers ranked.")
		return err
	}
	_, err := fmt.Fprintln(w, Table(rows))
	return err
}

func formatNum(n contracts.Num, format string) string {
	if !n.Valid {
		return "-"
	}
	return fmt.Sprintf(format, n.Value)
}

func formatPercent(n contracts.Num) string {
	if !n.Valid {
		return "-"
	}
	return fmt.Sprintf("%+.1f%%", n.Value*100)
}

// formatMarketCap abbreviates to T/B/M
func formatMarketCap(n contracts.Num) string {
	if !n.Valid {
		return "-"
	}
	v := n.Value
	switch {
	case v >= 1e12:
		return fmt.Sprintf("%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
