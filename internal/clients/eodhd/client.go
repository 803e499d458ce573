// Package eodhd provides a client for the EODHD end-of-day API
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/finapps/internal/common"
	"github.com/bobmcallan/finapps/internal/interfaces"
	"github.com/bobmcallan/finapps/internal/models"
)

// flexDecimal handles JSON values that may be either a number or a string.
type flexDecimal struct {
	decimal.Decimal
}

func (f *flexDecimal) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" || s == "N/A" {
		f.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("cannot unmarshal %s into decimal: %w", string(data), err)
	}
	f.Decimal = d
	return nil
}

// flexInt64 accepts integers, floats and numeric strings.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" || s == "N/A" {
		*f = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexInt64(n)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("cannot unmarshal %s into int64", string(data))
	}
	*f = flexInt64(v)
	return nil
}

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
	DefaultExchange  = "US"
)

// Client implements interfaces.Provider against EODHD
type Client struct {
	baseURL    string
	apiKey     string
	exchange   string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
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

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithDefaultExchange sets the suffix appended to symbols that carry none
func WithDefaultExchange(exchange string) ClientOption {
	return func(c *Client) {
		c.exchange = strings.ToUpper(exchange)
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		apiKey:   apiKey,
		exchange: DefaultExchange,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Name identifies the provider
func (c *Client) Name() string { return "eodhd" }

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// eodBarResponse represents one element of the /eod response
type eodBarResponse struct {
	Date   string      `json:"date"`
	Open   flexDecimal `json:"open"`
	High   flexDecimal `json:"high"`
	Low    flexDecimal `json:"low"`
	Close  flexDecimal `json:"close"`
	Volume flexInt64   `json:"volume"`
}

// Ticker maps a symbol to the EODHD code, adding the default exchange
// when the symbol has no suffix. Index symbols such as GSPC.INDX pass through.
func (c *Client) Ticker(symbol string) string {
	symbol = models.NormalizeSymbol(symbol)
	if strings.Contains(symbol, ".") || c.exchange == "" {
		return symbol
	}
	return symbol + "." + c.exchange
}

// FetchSeries retrieves daily bars in ascending order. A bounded range is sent
// as from = day after r.After, to = r.Through; full history omits both.
func (c *Client) FetchSeries(ctx context.Context, symbol string, r models.FetchRange) ([]models.Bar, error) {
	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "a")
	if !r.Full {
		params.Set("from", r.From().Format(common.DateLayout))
		params.Set("to", r.Through.Format(common.DateLayout))
	}

	path := fmt.Sprintf("/eod/%s", url.PathEscape(c.Ticker(symbol)))

	var resp []eodBarResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	symbol = models.NormalizeSymbol(symbol)
	bars := make([]models.Bar, 0, len(resp))
	for _, b := range resp {
		date, err := time.Parse(common.DateLayout, b.Date)
		if err != nil {
			c.logger.Warn().Str("symbol", symbol).Str("date", b.Date).Msg("Skipping EOD row with unparseable date")
			continue
		}
		bars = append(bars, models.NewBar(symbol, date,
			b.Open.Decimal, b.High.Decimal, b.Low.Decimal, b.Close.Decimal, int64(b.Volume)))
	}

	c.logger.Debug().Str("symbol", symbol).Str("range", r.String()).Int("bars", len(bars)).Msg("EODHD series fetched")
	return bars, nil
}

// Ensure Client implements interfaces.Provider
var _ interfaces.Provider = (*Client)(nil)
