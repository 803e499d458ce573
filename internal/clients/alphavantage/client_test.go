package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/finapps/internal/models"
)

const dailyBody = `{
  "Meta Data": {"2. Symbol": "SPX"},
  "Time Series (Daily)": {
    "2018-11-01": {"1. open": "2717.58", "2. high": "2741.67", "3. low": "2708.85", "4. close": "2740.37", "5. volume": "4708420000"},
    "2018-10-30": {"1. open": "2640.68", "2. high": "2685.43", "3. low": "2635.34", "4. close": "2682.63", "5. volume": "4010000000"},
    "2018-10-31": {"1. open": "2705.60", "2. high": "2736.69", "3. low": "2705.60", "4. close": "2711.74", "5. volume": "5130000000"}
  }
}`

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestClient(url string) *Client {
	return NewClient("demo",
		WithBaseURL(url),
		WithRateLimit(6000),
		WithClock(func() time.Time { return day(2018, 11, 2) }),
	)
}

func TestFetchSeries_Sorted(t *testing.T) {
	var query map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(dailyBody))
	}))
	defer server.Close()

	bars, err := newTestClient(server.URL).FetchSeries(context.Background(), "spx", models.Between(day(2018, 10, 30), day(2018, 11, 1)))
	require.NoError(t, err)

	assert.Equal(t, "TIME_SERIES_DAILY", query["function"][0])
	assert.Equal(t, "SPX", query["symbol"][0])
	assert.Equal(t, "compact", query["outputsize"][0])

	require.Len(t, bars, 3, "compact output is returned whole")
	assert.True(t, bars[0].Date.Equal(day(2018, 10, 30)))
	assert.True(t, bars[2].Date.Equal(day(2018, 11, 1)))
	assert.Equal(t, "2740.37", bars[2].Close.String())
	assert.Equal(t, int64(4708420000), bars[2].Volume)
}

func TestFetchSeries_FullHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "full", r.URL.Query().Get("outputsize"))
		w.Write([]byte(dailyBody))
	}))
	defer server.Close()

	bars, err := newTestClient(server.URL).FetchSeries(context.Background(), "SPX", models.FullHistory())
	require.NoError(t, err)
	require.Len(t, bars, 3)
	for i := 1; i < len(bars); i++ {
		assert.True(t, bars[i-1].Date.Before(bars[i].Date))
	}
}

func TestOutputSize(t *testing.T) {
	c := newTestClient("http://unused")
	assert.Equal(t, "full", c.OutputSize(models.FullHistory()))
	assert.Equal(t, "compact", c.OutputSize(models.Between(day(2018, 10, 1), day(2018, 11, 2))))
	assert.Equal(t, "full", c.OutputSize(models.Between(day(2017, 1, 1), day(2018, 11, 2))))
}

func TestFetchSeries_ErrorPayloads(t *testing.T) {
	for _, body := range []string{
		`{"Error Message": "Invalid API call."}`,
		`{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`,
		`{"Information": "The **demo** API key is for demo purposes only."}`,
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		_, err := newTestClient(server.URL).FetchSeries(context.Background(), "SPX", models.FullHistory())
		var apiErr *APIError
		assert.True(t, errors.As(err, &apiErr), "body %s: got %v", body, err)
		server.Close()
	}
}

func TestFetchSeries_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchSeries(context.Background(), "SPX", models.FullHistory())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestFetchSeries_BadNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Time Series (Daily)": {"2018-11-01": {"1. open": "x", "2. high": "1", "3. low": "1", "4. close": "1", "5. volume": "1"}}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchSeries(context.Background(), "SPX", models.FullHistory())
	assert.Error(t, err)
}

func TestName(t *testing.T) {
	assert.Equal(t, "alphavantage", NewClient("k").Name())
}
