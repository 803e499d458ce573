// Package models defines data structures for finapps
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/finapps/internal/common"
	"github.com/shopspring/decimal"
)

// Bar is one trading day's price and volume for a symbol.
// (Symbol, Date) is the identity key; Date carries no time of day.
type Bar struct {
	Symbol string          `json:"symbol"`
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// NewBar builds a Bar with the symbol and date normalized.
func NewBar(symbol string, date time.Time, open, high, low, closePrice decimal.Decimal, volume int64) Bar {
	return Bar{
		Symbol: NormalizeSymbol(symbol),
		Date:   common.NormalizeDate(date),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Normalize returns a copy with symbol and date normalized.
func (b Bar) Normalize() Bar {
	b.Symbol = NormalizeSymbol(b.Symbol)
	b.Date = common.NormalizeDate(b.Date)
	return b
}

// Validate rejects bars that cannot be stored.
func (b Bar) Validate() error {
	if b.Symbol == "" {
		return errors.New("bar has empty symbol")
	}
	if b.Date.IsZero() {
		return fmt.Errorf("bar %s has no date", b.Symbol)
	}
	for _, f := range []struct {
		name string
		v    decimal.Decimal
	}{{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close}} {
		if f.v.IsNegative() {
			return fmt.Errorf("bar %s %s: negative %s %s", b.Symbol, b.Date.Format(common.DateLayout), f.name, f.v)
		}
	}
	if b.Volume < 0 {
		return fmt.Errorf("bar %s %s: negative volume %d", b.Symbol, b.Date.Format(common.DateLayout), b.Volume)
	}
	return nil
}

// FetchRange is either the provider's full history or the half-open
// interval (After, Through].
type FetchRange struct {
	Full    bool
	After   time.Time
	Through time.Time
}

// FullHistory requests everything the provider has.
func FullHistory() FetchRange {
	return FetchRange{Full: true}
}

// Between requests bars dated strictly after `after` up to and including `through`.
func Between(after, through time.Time) FetchRange {
	return FetchRange{After: common.NormalizeDate(after), Through: common.NormalizeDate(through)}
}

// From is the first calendar date the range covers; zero for full history.
func (r FetchRange) From() time.Time {
	if r.Full {
		return time.Time{}
	}
	return r.After.AddDate(0, 0, 1)
}

// Empty reports a bounded range that covers no calendar day.
func (r FetchRange) Empty() bool {
	return !r.Full && !r.Through.After(r.After)
}

// Contains reports whether date falls inside the range.
func (r FetchRange) Contains(date time.Time) bool {
	if r.Full {
		return true
	}
	d := common.NormalizeDate(date)
	return d.After(r.After) && !d.After(r.Through)
}

func (r FetchRange) String() string {
	if r.Full {
		return "FULL"
	}
	return fmt.Sprintf("(%s, %s]", r.After.Format(common.DateLayout), r.Through.Format(common.DateLayout))
}

// BarSpan summarises the persisted history for a symbol.
type BarSpan struct {
	Symbol string    `json:"symbol"`
	First  time.Time `json:"first"`
	Last   time.Time `json:"last"`
	Count  int64     `json:"count"`
}
