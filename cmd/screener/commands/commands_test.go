package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTickers(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  ", nil},
		{"aapl", []string{"AAPL"}},
		{"aapl, msft,,nvda ", []string{"AAPL", "MSFT", "NVDA"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitTickers(tt.in), tt.in)
	}
}

func TestParseOptionalDate(t *testing.T) {
	d, err := parseOptionalDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = parseOptionalDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = parseOptionalDate("15/03/2024")
	assert.Error(t, err)
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "abcdef12", shortHash("abcdef1234567890"))
	assert.Equal(t, "abc", shortHash("abc"))
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{
		"init-db", "sync-tickers", "download", "retry-failed", "download-status",
		"fundamentals", "update", "delistings", "score", "chart", "api", "scheduler", "db-health",
	}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
