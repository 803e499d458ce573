package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/finapps/internal/models"
)

// MarketService runs ingestion for a symbol
type MarketService interface {
	Load(ctx context.Context, symbol string, mode models.LoadMode) (*models.LoadResult, error)
}

// DigestService computes lookback digests from persisted bars
type DigestService interface {
	Compute(ctx context.Context, symbol string, anchor time.Time) (*models.DigestResult, error)
	Span(ctx context.Context, symbol string) (*models.BarSpan, error)
}
