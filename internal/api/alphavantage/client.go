// Package alphavantage fetches daily OHLCV series from the Alpha Vantage
// TIME_SERIES_DAILY endpoint.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"stockmaster/internal/model"
	platformhttp "stockmaster/internal/platform/http"
)

const defaultBaseURL = "https://www.alphavantage.co"

// compactBars is the bar count of the provider's compact output mode.
const compactBars = 100

// Client is the Alpha Vantage API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *platformhttp.Client
	logger     zerolog.Logger
}

// ClientOptions configures a Client.
type ClientOptions struct {
	APIKey         string
	BaseURL        string // test override, empty means production
	RequestTimeout time.Duration
	RequestsPerMin int
}

// NewClient creates a new Alpha Vantage client.
func NewClient(opts ClientOptions) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  opts.APIKey,
		baseURL: baseURL,
		httpClient: platformhttp.NewClient(platformhttp.ClientOptions{
			Timeout:        opts.RequestTimeout,
			RequestsPerMin: opts.RequestsPerMin,
		}),
		logger: log.With().Str("component", "alphavantage_client").Logger(),
	}
}

// dailyResponse mirrors the provider's JSON envelope. Error conditions
// arrive as 200 responses with one of three message fields set.
type dailyResponse struct {
	ErrorMessage string            `json:"Error Message"`
	Note         string            `json:"Note"`
	Information  string            `json:"Information"`
	Series       map[string]rawBar `json:"Time Series (Daily)"`
}

type rawBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// Daily fetches up to count daily candles for the symbol, oldest first.
func (c *Client) Daily(ctx context.Context, symbol string, count int) ([]model.Candle, error) {
	outputSize := "compact"
	if count > compactBars {
		outputSize = "full"
	}

	query := url.Values{}
	query.Set("function", "TIME_SERIES_DAILY")
	query.Set("symbol", symbol)
	query.Set("outputsize", outputSize)
	query.Set("apikey", c.apiKey)
	endpoint := c.baseURL + "/query?" + query.Encode()

	c.logger.Debug().Str("symbol", symbol).Str("outputsize", outputSize).Msg("fetching daily series")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var data dailyResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	switch {
	case data.ErrorMessage != "":
		return nil, fmt.Errorf("provider error for %s: %s", symbol, data.ErrorMessage)
	case data.Note != "":
		return nil, fmt.Errorf("provider throttled %s: %s", symbol, data.Note)
	case data.Information != "":
		return nil, fmt.Errorf("provider notice for %s: %s", symbol, data.Information)
	case len(data.Series) == 0:
		return nil, fmt.Errorf("empty daily series for %s", symbol)
	}

	candles, err := parseSeries(data.Series)
	if err != nil {
		return nil, fmt.Errorf("parsing %s series: %w", symbol, err)
	}
	if count > 0 && len(candles) > count {
		candles = candles[len(candles)-count:]
	}

	c.logger.Debug().Str("symbol", symbol).Int("bars", len(candles)).Msg("fetched daily series")
	return candles, nil
}

func parseSeries(series map[string]rawBar) ([]model.Candle, error) {
	dates := make([]string, 0, len(series))
	for d := range series {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	candles := make([]model.Candle, 0, len(dates))
	for _, d := range dates {
		ts, err := time.Parse("2006-01-02", d)
		if err != nil {
			return nil, fmt.Errorf("bad date %q: %w", d, err)
		}
		bar := series[d]
		open, err := strconv.ParseFloat(bar.Open, 64)
		if err != nil {
			return nil, fmt.Errorf("bad open on %s: %w", d, err)
		}
		high, err := strconv.ParseFloat(bar.High, 64)
		if err != nil {
			return nil, fmt.Errorf("bad high on %s: %w", d, err)
		}
		low, err := strconv.ParseFloat(bar.Low, 64)
		if err != nil {
			return nil, fmt.Errorf("bad low on %s: %w", d, err)
		}
		closePrice, err := strconv.ParseFloat(bar.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("bad close on %s: %w", d, err)
		}
		volume, err := strconv.ParseInt(bar.Volume, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad volume on %s: %w", d, err)
		}
		candles = append(candles, model.Candle{
			Timestamp: ts,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
		})
	}
	return candles, nil
}
