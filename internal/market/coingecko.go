package market

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
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	lookbackDays   = 7
	quoteCurrency  = "usd"
	apiKeyHeader   = "x-cg-demo-api-key"
)

// StatusError is returned when the API answers with anything but 200.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("coingecko returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("coingecko returned status %d: %s", e.StatusCode, e.Body)
}

// Client fetches price history from CoinGecko. Each call makes exactly one
// request; failures are reported, not retried.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// MarketChart returns the trailing seven days of USD prices for coinID.
func (c *Client) MarketChart(ctx context.Context, coinID string) (PriceSeries, error) {
	endpoint := fmt.Sprintf("%s/coins/%s/market_chart?%s", c.baseURL, url.PathEscape(coinID), url.Values{
		"vs_currency": {quoteCurrency},
		"days":        {strconv.Itoa(lookbackDays)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var data struct {
		Prices [][]json.Number `json:"prices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	return parsePrices(data.Prices)
}

func parsePrices(rows [][]json.Number) (PriceSeries, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySeries
	}

	series := make(PriceSeries, 0, len(rows))
	for i, row := range rows {
		if len(row) != 2 {
			return nil, fmt.Errorf("decode: price row %d has %d fields, want 2", i, len(row))
		}
		ms, err := strconv.ParseFloat(row[0].String(), 64)
		if err != nil {
			return nil, fmt.Errorf("decode: price row %d timestamp: %w", i, err)
		}
		price, err := decimal.NewFromString(row[1].String())
		if err != nil {
			return nil, fmt.Errorf("decode: price row %d price: %w", i, err)
		}
		series = append(series, PricePoint{
			Timestamp: time.UnixMilli(int64(ms)).UTC(),
			Price:     price,
		})
	}
	return series, nil
}
