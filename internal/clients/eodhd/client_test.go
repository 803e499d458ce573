package eodhd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bobmcallan/finapps/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFetchSeries_Between(t *testing.T) {
	var gotPath, gotFrom, gotTo, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFrom = r.URL.Query().Get("from")
		gotTo = r.URL.Query().Get("to")
		gotToken = r.URL.Query().Get("api_token")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"date":"2018-10-31","open":2705.6,"high":2736.69,"low":2705.6,"close":2711.74,"adjusted_close":2711.74,"volume":5130000000},
			{"date":"2018-11-01","open":"2717.58","high":2741.67,"low":2708.85,"close":2740.37,"volume":"4708420000"}
		]`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	bars, err := client.FetchSeries(context.Background(), "spx", models.Between(day(2018, 10, 30), day(2018, 11, 1)))
	if err != nil {
		t.Fatalf("FetchSeries failed: %v", err)
	}

	if gotPath != "/eod/SPX.US" {
		t.Errorf("path = %s, want /eod/SPX.US", gotPath)
	}
	if gotFrom != "2018-10-31" || gotTo != "2018-11-01" {
		t.Errorf("from/to = %s/%s, want 2018-10-31/2018-11-01", gotFrom, gotTo)
	}
	if gotToken != "test-key" {
		t.Errorf("api_token = %s", gotToken)
	}

	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	if bars[0].Symbol != "SPX" {
		t.Errorf("symbol = %s, want SPX", bars[0].Symbol)
	}
	if bars[1].Open.String() != "2717.58" || bars[1].Close.String() != "2740.37" {
		t.Errorf("unexpected prices: open=%s close=%s", bars[1].Open, bars[1].Close)
	}
	if bars[1].Volume != 4708420000 {
		t.Errorf("volume = %d", bars[1].Volume)
	}
	if !bars[1].Date.Equal(day(2018, 11, 1)) {
		t.Errorf("date = %v", bars[1].Date)
	}
}

func TestFetchSeries_FullHistoryOmitsBounds(t *testing.T) {
	var hasFrom, hasTo bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasFrom = r.URL.Query()["from"]
		_, hasTo = r.URL.Query()["to"]
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient("k", WithBaseURL(server.URL))
	bars, err := client.FetchSeries(context.Background(), "GSPC.INDX", models.FullHistory())
	if err != nil {
		t.Fatalf("FetchSeries failed: %v", err)
	}
	if hasFrom || hasTo {
		t.Error("full history request should not send from/to")
	}
	if len(bars) != 0 {
		t.Errorf("got %d bars, want 0", len(bars))
	}
}

func TestFetchSeries_LenientValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"date":"2018-11-02","open":"N/A","high":null,"low":"","close":2723.06,"volume":3.5e9},
			{"date":"bad-date","open":1,"high":1,"low":1,"close":1,"volume":1}
		]`))
	}))
	defer server.Close()

	client := NewClient("k", WithBaseURL(server.URL))
	bars, err := client.FetchSeries(context.Background(), "SPX", models.FullHistory())
	if err != nil {
		t.Fatalf("FetchSeries failed: %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("got %d bars, want 1 (bad date skipped)", len(bars))
	}
	if !bars[0].Open.IsZero() || !bars[0].High.IsZero() {
		t.Errorf("N/A and null should decode as zero: %+v", bars[0])
	}
	if bars[0].Volume != 3500000000 {
		t.Errorf("volume = %d", bars[0].Volume)
	}
}

func TestFetchSeries_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Unauthenticated"))
	}))
	defer server.Close()

	client := NewClient("bad", WithBaseURL(server.URL))
	_, err := client.FetchSeries(context.Background(), "SPX", models.FullHistory())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Unauthenticated" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
}

func TestFetchSeries_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("k", WithBaseURL(server.URL))
	if _, err := client.FetchSeries(ctx, "SPX", models.FullHistory()); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestTicker(t *testing.T) {
	c := NewClient("k")
	cases := map[string]string{
		"spx":       "SPX.US",
		"BHP.AU":    "BHP.AU",
		"gspc.indx": "GSPC.INDX",
	}
	for in, want := range cases {
		if got := c.Ticker(in); got != want {
			t.Errorf("Ticker(%q) = %q, want %q", in, got, want)
		}
	}

	bare := NewClient("k", WithDefaultExchange(""))
	if got := bare.Ticker("SPX"); got != "SPX" {
		t.Errorf("Ticker without exchange = %q", got)
	}
}

func TestName(t *testing.T) {
	if NewClient("k").Name() != "eodhd" {
		t.Error("unexpected provider name")
	}
}
