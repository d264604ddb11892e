package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockrank/internal/contracts"
)

func TestCells(t *testing.T) {
	row := contracts.RankedRow{
		Rank:             1,
		Ticker:           "AAPL",
		Name:             "Apple Inc.",
		Sector:           "Technology",
		CompositeScore:   0.8123,
		TechnicalScore:   0.7,
		FundamentalScore: 0.95,
		Price:            187.5,
		RSIValue:         contracts.Some(55.54),
		PE:               contracts.None(),
		MarketCap:        contracts.Some(2.95e12),
		TargetMean:       contracts.Some(210),
		TargetUpside:     contracts.Some(0.12),
	}

	cells := Cells(row)
	require.Len(t, cells, len(Headers))
	assert.Equal(t, []string{
		"1", "AAPL", "Apple Inc.", "Technology", "0.812", "0.700", "0.950",
		"187.50", "55.5", "-", "2.95T", "210.00", "+12.0%",
	}, cells)
}

func TestFormatMarketCap(t *testing.T) {
	tests := []struct {
		in   contracts.Num
		want string
	}{
		{contracts.None(), "-"},
		{contracts.Some(1.5e12), "1.50T"},
		{contracts.Some(3.2e9), "3.20B"},
		{contracts.Some(450e6), "450.00M"},
		{contracts.Some(999), "999"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMarketCap(tt.in))
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	rows := []contracts.RankedRow{
		{Rank: 1, Ticker: "AAA", Name: "Alpha"},
		{Rank: 2, Ticker: "BBB", Name: "Beta"},
	}

	require.NoError(t, Write(&buf, "Top 2", rows))
	out := buf.String()
	assert.Contains(t, out, "Top 2")
	assert.Contains(t, out, "Ticker")
	assert.Contains(t, out, "AAA")
	assert.Contains(t, out, "BBB")
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "Top 0", nil))
	assert.Contains(t, buf.String(), "No tickers ranked.")
}
