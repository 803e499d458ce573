// Package interfaces defines service contracts for finapps
package interfaces

import (
	"context"

	"github.com/bobmcallan/finapps/internal/models"
)

// Provider fetches daily bars from an upstream market-data source
type Provider interface {
	// Name identifies the provider in logs and errors
	Name() string

	// FetchSeries returns bars for symbol over the range, ascending by date.
	// Bars outside the range may be returned. Failures are not retried.
	FetchSeries(ctx context.Context, symbol string, r models.FetchRange) ([]models.Bar, error)
}
