package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/finapps/internal/common"
	"github.com/bobmcallan/finapps/internal/models"
	tcommon "github.com/bobmcallan/finapps/tests/common"
)

func TestNewProvider(t *testing.T) {
	logger := common.NewSilentLogger()

	config := common.NewDefaultConfig()
	p, err := NewProvider(config, logger)
	require.NoError(t, err)
	assert.Equal(t, "eodhd", p.Name())

	config.Provider = "alphavantage"
	p, err = NewProvider(config, logger)
	require.NoError(t, err)
	assert.Equal(t, "alphavantage", p.Name())

	config.Provider = "yahoo"
	_, err = NewProvider(config, logger)
	assert.Error(t, err)
}

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "explicit.toml", ResolveConfigPath("explicit.toml"))

	t.Setenv("FINAPPS_CONFIG", "/etc/finapps.toml")
	assert.Equal(t, "/etc/finapps.toml", ResolveConfigPath(""))
}

func TestNewApp_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finapps.toml")
	require.NoError(t, os.WriteFile(path, []byte("provider = \"yahoo\"\n"), 0644))

	_, err := NewApp(context.Background(), path)
	assert.Error(t, err)
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	pc := tcommon.StartPostgres(t)

	config := common.NewDefaultConfig()
	config.Database = pc.NewDatabase(t)
	config.DataPath = t.TempDir()

	ctx := context.Background()
	a, err := NewAppWithConfig(ctx, config, common.NewSilentLogger(), time.Now())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	require.NoError(t, a.Storage.Migrate(ctx))
	return a
}

func TestNewApp_WiresServices(t *testing.T) {
	a := newTestApp(t)

	assert.NotNil(t, a.MarketService)
	assert.NotNil(t, a.DigestService)
	assert.Equal(t, "eodhd", a.Provider.Name())
	assert.False(t, a.StartupTime.IsZero())
}

func TestApp_ExportAndChart(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	var bars []models.Bar
	for i, px := range []string{"2682.63", "2711.74", "2740.37"} {
		p := decimal.RequireFromString(px)
		bars = append(bars, models.NewBar("SPX", time.Date(2018, 10, 30+i, 0, 0, 0, 0, time.UTC), p, p, p, p, 4000000000))
	}
	_, err := a.Storage.BarStore().UpsertBatch(ctx, "SPX", bars)
	require.NoError(t, err)

	path, err := a.ExportBars(ctx, "spx", time.Time{}, time.Time{}, "csv")
	require.NoError(t, err)
	assert.Equal(t, "SPX.csv", filepath.Base(path))

	path, err = a.RenderChart(ctx, "SPX", time.Time{}, time.Time{})
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)

	_, err = a.ExportBars(ctx, "NDX", time.Time{}, time.Time{}, "csv")
	assert.ErrorIs(t, err, common.ErrNoData)
}
