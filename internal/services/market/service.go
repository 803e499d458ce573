// Package market provides the ingestion service that moves provider bars into storage
package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/finapps/internal/common"
	"github.com/bobmcallan/finapps/internal/interfaces"
	"github.com/bobmcallan/finapps/internal/models"
)

// Service implements interfaces.MarketService
type Service struct {
	bars     interfaces.BarStore
	loadLog  interfaces.LoadLog
	provider interfaces.Provider
	logger   *common.Logger
	now      func() time.Time
}

// Option configures the service
type Option func(*Service)

// WithClock overrides the source of "today"
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLoadLog records every successful run
func WithLoadLog(l interfaces.LoadLog) Option {
	return func(s *Service) {
		s.loadLog = l
	}
}

// NewService creates a new market service
func NewService(bars interfaces.BarStore, provider interfaces.Provider, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		bars:     bars,
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches bars for symbol and upserts them in one batch.
//
// Historical always asks for full history. Incremental asks for the days after
// the latest persisted bar through today, falling back to historical when the
// symbol has nothing persisted. An incremental run on a current store fetches nothing.
func (s *Service) Load(ctx context.Context, symbol string, mode models.LoadMode) (*models.LoadResult, error) {
	start := time.Now()
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, errors.New("symbol is required")
	}
	if mode == "" {
		mode = models.LoadIncremental
	}

	result := &models.LoadResult{
		RunID:         uuid.New().String(),
		Symbol:        symbol,
		RequestedMode: mode,
		Mode:          mode,
	}

	switch mode {
	case models.LoadHistorical:
		result.Range = models.FullHistory()
	case models.LoadIncremental:
		last, err := s.bars.MaxDate(ctx, symbol)
		switch {
		case errors.Is(err, common.ErrNoData):
			s.logger.Info().Str("symbol", symbol).Msg("No persisted bars, falling back to historical load")
			result.Mode = models.LoadHistorical
			result.Range = models.FullHistory()
		case err != nil:
			return nil, err
		default:
			result.PreviousLast = last
			result.Range = models.Between(last, s.now())
		}
	default:
		return nil, fmt.Errorf("unknown load mode %q", mode)
	}

	if result.Range.Empty() {
		result.Skipped = true
		result.Duration = time.Since(start)
		s.logger.Info().Str("run_id", result.RunID).Str("symbol", symbol).
			Str("last", result.PreviousLast.Format(common.DateLayout)).Msg("Store already current, nothing to fetch")
		return result, nil
	}

	bars, err := s.provider.FetchSeries(ctx, symbol, result.Range)
	if err != nil {
		return nil, &common.ProviderError{Provider: s.provider.Name(), Symbol: symbol, Err: err}
	}
	result.Fetched = len(bars)

	for i := range bars {
		bars[i] = bars[i].Normalize()
		if err := bars[i].Validate(); err != nil {
			return nil, &common.ProviderError{Provider: s.provider.Name(), Symbol: symbol, Err: err}
		}
		if !result.Range.Contains(bars[i].Date) {
			s.logger.Debug().Str("symbol", symbol).Str("date", bars[i].Date.Format(common.DateLayout)).Msg("Provider returned bar outside requested range")
		}
	}

	written, err := s.bars.UpsertBatch(ctx, symbol, bars)
	if err != nil {
		return nil, err
	}
	result.Written = written
	result.Duration = time.Since(start)

	s.logger.Info().
		Str("run_id", result.RunID).
		Str("symbol", symbol).
		Str("mode", string(result.Mode)).
		Str("range", result.Range.String()).
		Int("fetched", result.Fetched).
		Int("written", written).
		Dur("elapsed", result.Duration).
		Msg("Load complete")

	if s.loadLog != nil {
		if err := s.loadLog.Record(ctx, result); err != nil {
			s.logger.Warn().Err(err).Str("run_id", result.RunID).Msg("Failed to record load run")
		}
	}

	return result, nil
}

// Ensure Service implements interfaces.MarketService
var _ interfaces.MarketService = (*Service)(nil)
