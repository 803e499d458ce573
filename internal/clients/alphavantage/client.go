// Package alphavantage provides a client for the Alpha Vantage daily time series API
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/finapps/internal/common"
	"github.com/bobmcallan/finapps/internal/interfaces"
	"github.com/bobmcallan/finapps/internal/models"
)

const (
	DefaultBaseURL   = "https://www.alphavantage.co"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per minute on the free tier

	// compactDays is how far back outputsize=compact reliably reaches (100 trading days).
	compactDays = 140
)

// Client implements interfaces.Provider against Alpha Vantage
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	now        func() time.Time
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit in requests per minute
func WithRateLimit(requestsPerMinute int) ClientOption {
	return func(c *Client) {
		if requestsPerMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithClock overrides the clock used to choose the output size
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/DefaultRateLimit), 1),
		logger:  common.NewSilentLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is returned for non-200 responses and for the error
// payloads Alpha Vantage sends with status 200.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Alpha Vantage API error: %s (status: %d)", e.Message, e.StatusCode)
}

// Name identifies the provider
func (c *Client) Name() string { return "alphavantage" }

type dailyEntry struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type dailyResponse struct {
	Series       map[string]dailyEntry `json:"Time Series (Daily)"`
	ErrorMessage string                `json:"Error Message"`
	Note         string                `json:"Note"`
	Information  string                `json:"Information"`
}

// OutputSize picks compact when the range starts inside the compact window.
func (c *Client) OutputSize(r models.FetchRange) string {
	if r.Full {
		return "full"
	}
	cutoff := common.NormalizeDate(c.now()).AddDate(0, 0, -compactDays)
	if r.After.Before(cutoff) {
		return "full"
	}
	return "compact"
}

// FetchSeries retrieves daily bars in ascending date order. Alpha Vantage has
// no date filter, so the response may include bars outside r.
func (c *Client) FetchSeries(ctx context.Context, symbol string, r models.FetchRange) ([]models.Bar, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	symbol = models.NormalizeSymbol(symbol)
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("outputsize", c.OutputSize(r))
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error().Err(err).Str("symbol", symbol).Dur("elapsed", elapsed).Msg("Alpha Vantage request failed")
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Str("symbol", symbol).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("Alpha Vantage non-OK response")
		return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var body dailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	for _, msg := range []string{body.ErrorMessage, body.Note, body.Information} {
		if msg != "" {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
		}
	}

	bars := make([]models.Bar, 0, len(body.Series))
	for ds, e := range body.Series {
		date, err := time.Parse(common.DateLayout, ds)
		if err != nil {
			c.logger.Warn().Str("symbol", symbol).Str("date", ds).Msg("Skipping row with unparseable date")
			continue
		}
		bar, err := e.bar(symbol, date)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", symbol, ds, err)
		}
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	c.logger.Info().Str("symbol", symbol).Str("range", r.String()).Int("bars", len(bars)).Dur("elapsed", elapsed).Msg("Alpha Vantage series fetched")
	return bars, nil
}

func (e dailyEntry) bar(symbol string, date time.Time) (models.Bar, error) {
	var px [4]decimal.Decimal
	for i, s := range []string{e.Open, e.High, e.Low, e.Close} {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return models.Bar{}, fmt.Errorf("bad price %q: %w", s, err)
		}
		px[i] = d
	}
	vol, err := strconv.ParseInt(e.Volume, 10, 64)
	if err != nil {
		return models.Bar{}, fmt.Errorf("bad volume %q: %w", e.Volume, err)
	}
	return models.NewBar(symbol, date, px[0], px[1], px[2], px[3], vol), nil
}

// Ensure Client implements interfaces.Provider
var _ interfaces.Provider = (*Client)(nil)
