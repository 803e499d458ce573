package models

import "time"

// LoadMode selects how much history the ingestion fetches.
type LoadMode string

const (
	LoadIncremental LoadMode = "incremental"
	LoadHistorical  LoadMode = "historical"
)

// LoadResult reports one ingestion run.
type LoadResult struct {
	RunID         string        `json:"run_id"`
	Symbol        string        `json:"symbol"`
	RequestedMode LoadMode      `json:"requested_mode"`
	Mode          LoadMode      `json:"mode"` // incremental falls back to historical on cold start
	Range         FetchRange    `json:"-"`
	PreviousLast  time.Time     `json:"previous_last,omitempty"`
	Fetched       int           `json:"fetched"`
	Written       int           `json:"written"`
	Skipped       bool          `json:"skipped"` // store already current; nothing fetched
	Duration      time.Duration `json:"duration"`
}

// LoadRecord is a persisted summary of a past run.
type LoadRecord struct {
	RunID    string    `json:"run_id"`
	Symbol   string    `json:"symbol"`
	Mode     LoadMode  `json:"mode"`
	Range    string    `json:"range"`
	Fetched  int       `json:"fetched"`
	Written  int       `json:"written"`
	LoadedAt time.Time `json:"loaded_at"`
}
