package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single quote request.
const DefaultTimeout = 15 * time.Second

// Quote is one symbol's market data as returned by the quote service.
type Quote struct {
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	PostMarketPrice    float64 `json:"postMarketPrice"`
	PreMarketPrice     float64 `json:"preMarketPrice"`
	Currency           string  `json:"currency"`
}

// Price returns the regular market price, falling back to post-market and then
// pre-market. Zero means no price.
func (q Quote) Price() float64 {
	switch {
	case q.RegularMarketPrice != 0:
		return q.RegularMarketPrice
	case q.PostMarketPrice != 0:
		return q.PostMarketPrice
	default:
		return q.PreMarketPrice
	}
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []Quote `json:"result"`
	} `json:"quoteResponse"`
}

// YahooClient fetches quotes from a Yahoo Finance style /v7/finance/quote endpoint.
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewYahooClient creates a quote client. A non-positive timeout uses DefaultTimeout.
func NewYahooClient(baseURL string, timeout time.Duration) *YahooClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &YahooClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchQuotes requests quotes for all symbols in one call. It does not retry.
func (c *YahooClient) FetchQuotes(ctx context.Context, symbols []string) ([]Quote, error) {
	u := fmt.Sprintf("%s/v7/finance/quote?%s", c.baseURL, url.Values{"symbols": {strings.Join(symbols, ",")}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "pp-portfolio/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("quote HTTP %d: %s", resp.StatusCode, string(body))
	}

	var parsed quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing quote response: %w", err)
	}
	return parsed.QuoteResponse.Result, nil
}
