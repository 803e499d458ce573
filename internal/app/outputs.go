package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/finapps/internal/common"
	"github.com/bobmcallan/finapps/internal/models"
	"github.com/bobmcallan/finapps/internal/services/report"
	"github.com/bobmcallan/finapps/internal/storage/marketfs"
)

// ExportBars writes persisted bars for symbol in [from, to] to the data
// path's exports directory and returns the file path.
func (a *App) ExportBars(ctx context.Context, symbol string, from, to time.Time, format string) (string, error) {
	exp, err := marketfs.NewExporter(format)
	if err != nil {
		return "", err
	}
	symbol = models.NormalizeSymbol(symbol)
	bars, err := a.Storage.BarStore().Range(ctx, symbol, from, to)
	if err != nil {
		return "", err
	}
	if len(bars) == 0 {
		return "", &common.NoDataError{Symbol: symbol, Date: to}
	}
	path, err := a.Storage.Files().ExportBars(symbol, exp, bars)
	if err != nil {
		return "", err
	}
	a.Logger.Info().Str("symbol", symbol).Int("bars", len(bars)).Str("path", path).Msg("Bars exported")
	return path, nil
}

// RenderChart draws the close history for symbol in [from, to] and saves it
// under charts/. Returns the file path.
func (a *App) RenderChart(ctx context.Context, symbol string, from, to time.Time) (string, error) {
	symbol = models.NormalizeSymbol(symbol)
	bars, err := a.Storage.BarStore().Range(ctx, symbol, from, to)
	if err != nil {
		return "", err
	}
	if len(bars) == 0 {
		return "", &common.NoDataError{Symbol: symbol, Date: to}
	}
	png, err := report.RenderCloseChart(symbol, bars)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s.png", symbol)
	if err := a.Storage.WriteRaw("charts", key, png); err != nil {
		return "", err
	}
	path := a.Storage.Files().Path("charts", key)
	a.Logger.Info().Str("symbol", symbol).Int("bars", len(bars)).Str("path", path).Msg("Chart written")
	return path, nil
}
