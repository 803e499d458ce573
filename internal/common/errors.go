package common

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoData is returned when a query matches no persisted bars.
	ErrNoData = errors.New("no data")

	// ErrPoolExhausted is returned when no connection became free within the acquire timeout.
	// It is transient; the caller may retry.
	ErrPoolExhausted = errors.New("connection pool exhausted")
)

// NoDataError reports that a symbol has no bar on or before a date.
type NoDataError struct {
	Symbol string
	Date   time.Time
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data for %s on or before %s", e.Symbol, e.Date.Format(DateLayout))
}

// Is lets errors.Is(err, ErrNoData) match.
func (e *NoDataError) Is(target error) bool {
	return target == ErrNoData
}

// PersistenceError wraps a failed query or transaction. Writes that fail this
// way have been rolled back.
type PersistenceError struct {
	Op     string
	Symbol string
	Err    error
}

func (e *PersistenceError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("persistence %s %s: %v", e.Op, e.Symbol, e.Err)
	}
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ProviderError wraps a failed upstream fetch.
type ProviderError struct {
	Provider string
	Symbol   string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: fetch %s: %v", e.Provider, e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a transient condition worth retrying by the caller.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPoolExhausted)
}
