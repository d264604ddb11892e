package selection

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/pkg/logger"
)

type fakeLoader struct {
	fundamentals []contracts.Fundamentals
	histories    []contracts.Series
	err          error
	since        time.Time
}

func (f *fakeLoader) GetAllFundamentals(ctx context.Context) ([]contracts.Fundamentals, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.fundamentals, nil
}

func (f *fakeLoader) GetRecentPrices(ctx context.Context, since time.Time) ([]contracts.Series, error) {
	f.since = since
	return f.histories, nil
}

func TestService_Score(t *testing.T) {
	fundamentals, histories := testUniverse()
	loader := &fakeLoader{fundamentals: fundamentals, histories: histories}

	var buf bytes.Buffer
	svc := NewService(loader, DefaultParams(), 400, logger.NewWithWriter(&buf, "info"))
	now := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	rows, err := svc.Score(context.Background())
	require.NoError(t, err)

	assert.Len(t, rows, 3)
	assert.Equal(t, now.AddDate(0, 0, -400), loader.since)
	assert.Contains(t, buf.String(), "Ranking completed")
}

func TestService_ScoreLoadError(t *testing.T) {
	loader := &fakeLoader{err: errors.New("database is locked")}
	svc := NewService(loader, DefaultParams(), 250, logger.Nop())

	_, err := svc.Score(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load fundamentals")
}

func TestService_ScoreEmptyUniverse(t *testing.T) {
	svc := NewService(&fakeLoader{}, DefaultParams(), 250, logger.Nop())

	rows, err := svc.Score(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}
