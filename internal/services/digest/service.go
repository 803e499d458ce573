// Package digest computes period-over-period changes from persisted bars
package digest

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/finapps/internal/common"
	"github.com/bobmcallan/finapps/internal/interfaces"
	"github.com/bobmcallan/finapps/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Service implements interfaces.DigestService
type Service struct {
	bars   interfaces.BarStore
	logger *common.Logger
}

// NewService creates a new digest service
func NewService(bars interfaces.BarStore, logger *common.Logger) *Service {
	return &Service{bars: bars, logger: logger}
}

// resolve finds the bar with the greatest date on or before target.
// found is false when there is none; only store failures are errors.
func (s *Service) resolve(ctx context.Context, symbol string, target time.Time) (*models.Bar, bool, error) {
	b, err := s.bars.BarOnOrBefore(ctx, symbol, target)
	if errors.Is(err, common.ErrNoData) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Compute builds the digest for symbol as of anchor.
//
// The anchor resolves to the nearest persisted trading date on or before it;
// a missing anchor is the only fatal lookup. Each period then resolves from the
// resolved anchor date by the same rule and is omitted when nothing is found.
func (s *Service) Compute(ctx context.Context, symbol string, anchor time.Time) (*models.DigestResult, error) {
	symbol = models.NormalizeSymbol(symbol)
	anchor = common.NormalizeDate(anchor)

	if span, err := s.bars.Span(ctx, symbol); err == nil {
		s.logger.Debug().Str("symbol", symbol).
			Str("first", common.FormatDate(span.First)).
			Str("last", common.FormatDate(span.Last)).
			Int64("rows", span.Count).
			Msg("Persisted history")
	}

	anchorBar, found, err := s.resolve(ctx, symbol, anchor)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &common.NoDataError{Symbol: symbol, Date: anchor}
	}

	result := &models.DigestResult{
		Symbol:        symbol,
		RequestedDate: anchor,
		ResolvedDate:  anchorBar.Date,
		Substituted:   !anchorBar.Date.Equal(anchor),
	}
	if result.Substituted {
		s.logger.Info().Str("symbol", symbol).
			Str("requested", common.FormatDate(anchor)).
			Str("resolved", common.FormatDate(anchorBar.Date)).
			Msg("Anchor date not a trading day, using nearest earlier date")
	}

	type resolved struct {
		period models.Period
		target time.Time
		bar    *models.Bar
	}
	var periods []resolved
	for _, p := range models.Periods {
		target := PeriodTarget(anchorBar.Date, p)
		b, ok, err := s.resolve(ctx, symbol, target)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.logger.Debug().Str("symbol", symbol).Str("period", p.Label).
				Str("target", common.FormatDate(target)).Msg("No history for period")
			continue
		}
		periods = append(periods, resolved{period: p, target: target, bar: b})
	}

	for _, m := range models.Metrics {
		md := models.MetricDigest{
			Metric:      m,
			AnchorValue: m.Value(*anchorBar),
			Changes:     make([]models.PeriodChange, 0, len(periods)),
		}
		for _, r := range periods {
			md.Changes = append(md.Changes, change(r.period.Label, r.target, md.AnchorValue, *r.bar, m))
		}
		result.Metrics = append(result.Metrics, md)
	}

	return result, nil
}

func change(label string, target time.Time, anchorValue decimal.Decimal, b models.Bar, m models.Metric) models.PeriodChange {
	pv := m.Value(b)
	c := models.PeriodChange{
		Period:      label,
		Target:      target,
		Date:        b.Date,
		AnchorValue: anchorValue,
		PeriodValue: pv,
	}
	if !pv.IsZero() {
		c.Percent = PercentChange(anchorValue, pv)
		c.HasPercent = true
	}
	return c
}

// PercentChange is (current - previous) / previous * 100. previous must be non-zero.
func PercentChange(current, previous decimal.Decimal) decimal.Decimal {
	return current.Sub(previous).Div(previous).Mul(hundred)
}

// Span reports the first and last persisted dates for symbol.
func (s *Service) Span(ctx context.Context, symbol string) (*models.BarSpan, error) {
	return s.bars.Span(ctx, models.NormalizeSymbol(symbol))
}

// Ensure Service implements interfaces.DigestService
var _ interfaces.DigestService = (*Service)(nil)
