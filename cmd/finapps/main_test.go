package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/finapps/internal/common"
	"github.com/bobmcallan/finapps/internal/models"
)

type fakeDigestService struct {
	results map[string]*models.DigestResult
	calls   []string
}

func (f *fakeDigestService) Compute(_ context.Context, symbol string, anchor time.Time) (*models.DigestResult, error) {
	f.calls = append(f.calls, symbol)
	r, ok := f.results[symbol]
	if !ok {
		return nil, &common.NoDataError{Symbol: symbol, Date: anchor}
	}
	return r, nil
}

func (f *fakeDigestService) Span(_ context.Context, symbol string) (*models.BarSpan, error) {
	if _, ok := f.results[symbol]; !ok {
		return nil, common.ErrNoData
	}
	return &models.BarSpan{
		Symbol: symbol,
		First:  time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
		Last:   time.Date(2018, 11, 1, 0, 0, 0, 0, time.UTC),
		Count:  7265,
	}, nil
}

type fakeMarketService struct {
	result *models.LoadResult
	err    error
}

func (f *fakeMarketService) Load(_ context.Context, _ string, _ models.LoadMode) (*models.LoadResult, error) {
	return f.result, f.err
}

func simpleDigest(symbol string) *models.DigestResult {
	anchor := time.Date(2018, 11, 1, 0, 0, 0, 0, time.UTC)
	v := decimal.RequireFromString("2740.37")
	return &models.DigestResult{
		Symbol:        symbol,
		RequestedDate: anchor,
		ResolvedDate:  anchor,
		Metrics: []models.MetricDigest{
			{Metric: models.MetricClose, AnchorValue: v},
			{Metric: models.MetricVolume, AnchorValue: decimal.NewFromInt(4708420000)},
		},
	}
}

func TestParseDigestArgs(t *testing.T) {
	symbols, anchor, err := parseDigestArgs([]string{"spx", "NDX", "2018-11-01"})
	require.NoError(t, err)
	assert.Equal(t, []string{"SPX", "NDX"}, symbols)
	assert.True(t, anchor.Equal(time.Date(2018, 11, 1, 0, 0, 0, 0, time.UTC)))

	for _, args := range [][]string{
		{},
		{"SPX"},
		{"SPX", "11/01/2018"},
		{" ", "2018-11-01"},
	} {
		_, _, err := parseDigestArgs(args)
		var ue *usageError
		assert.True(t, errors.As(err, &ue), "args %v: %v", args, err)
	}
}

func TestRunDigest_AllOrNothing(t *testing.T) {
	svc := &fakeDigestService{results: map[string]*models.DigestResult{"SPX": simpleDigest("SPX")}}

	var buf bytes.Buffer
	err := runDigest(context.Background(), svc, []string{"SPX", "NDX"}, time.Date(2018, 11, 1, 0, 0, 0, 0, time.UTC), &buf)
	assert.ErrorIs(t, err, common.ErrNoData)
	assert.Zero(t, buf.Len(), "no partial table")

	buf.Reset()
	err = runDigest(context.Background(), svc, []string{"SPX"}, time.Date(2018, 11, 1, 0, 0, 0, 0, time.UTC), &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "SYMBOL")
	assert.Contains(t, buf.String(), "2,740")
}

func TestRunDates(t *testing.T) {
	svc := &fakeDigestService{results: map[string]*models.DigestResult{"SPX": simpleDigest("SPX")}}

	var buf bytes.Buffer
	require.NoError(t, runDates(context.Background(), svc, "SPX", &buf))
	assert.Equal(t, "SPX: 1990-01-02 to 2018-11-01 (7265 bars)\n", buf.String())

	assert.ErrorIs(t, runDates(context.Background(), svc, "NDX", &buf), common.ErrNoData)
}

func TestRunLoad(t *testing.T) {
	svc := &fakeMarketService{result: &models.LoadResult{
		RunID:   "6f1c",
		Symbol:  "SPX",
		Mode:    models.LoadHistorical,
		Range:   models.FullHistory(),
		Fetched: 7265,
		Written: 7265,
	}}

	var buf bytes.Buffer
	require.NoError(t, runLoad(context.Background(), svc, "SPX", models.LoadIncremental, &buf))
	assert.Equal(t, "SPX: historical load FULL fetched 7265, wrote 7265 (run 6f1c)\n", buf.String())

	svc.result = &models.LoadResult{Symbol: "SPX", Skipped: true, PreviousLast: time.Date(2018, 11, 1, 0, 0, 0, 0, time.UTC)}
	buf.Reset()
	require.NoError(t, runLoad(context.Background(), svc, "SPX", models.LoadIncremental, &buf))
	assert.Equal(t, "SPX: up to date (last bar 2018-11-01)\n", buf.String())

	svc.err = &common.ProviderError{Provider: "eodhd", Symbol: "SPX", Err: errors.New("timeout")}
	assert.Error(t, runLoad(context.Background(), svc, "SPX", models.LoadIncremental, &buf))
}

func TestExitStatus(t *testing.T) {
	var buf bytes.Buffer

	assert.Equal(t, subcommands.ExitSuccess, exitStatus(&buf, nil))
	assert.Zero(t, buf.Len())

	tests := []struct {
		err  error
		want subcommands.ExitStatus
	}{
		{usagef("bad"), subcommands.ExitUsageError},
		{&common.NoDataError{Symbol: "SPX"}, subcommands.ExitFailure},
		{&common.PersistenceError{Op: "upsert", Err: errors.New("x")}, subcommands.ExitFailure},
		{fmt.Errorf("acquire: %w", common.ErrPoolExhausted), subcommands.ExitFailure},
		{&common.ProviderError{Provider: "eodhd", Err: errors.New("x")}, subcommands.ExitFailure},
	}
	for _, tt := range tests {
		buf.Reset()
		assert.Equal(t, tt.want, exitStatus(&buf, tt.err), "%v", tt.err)
		assert.True(t, strings.HasPrefix(buf.String(), "Error: "))
	}

	buf.Reset()
	exitStatus(&buf, common.ErrPoolExhausted)
	assert.Contains(t, buf.String(), "retry")
}

func TestParseDateFlag(t *testing.T) {
	d, err := parseDateFlag("from", "")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = parseDateFlag("from", "2018-05-04")
	require.NoError(t, err)
	assert.Equal(t, 4, d.Day())

	_, err = parseDateFlag("to", "tomorrow")
	var ue *usageError
	assert.True(t, errors.As(err, &ue))
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, 0, int(subcommands.ExitSuccess))
	assert.Equal(t, 1, int(subcommands.ExitFailure))
	assert.Equal(t, 2, int(subcommands.ExitUsageError))
}
