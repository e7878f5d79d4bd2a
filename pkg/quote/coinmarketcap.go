// Package quote provides adapters for external quote sources
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/StudioSol/set"
	"github.com/comporesano/curr-monitor-bot/pkg/core"
)

const defaultHTTPTimeout = 10 * time.Second

// CoinMarketCap implements core.QuoteSource against the CoinMarketCap
// pro API: the ranked listing endpoint backs TopSymbols and the quotes
// endpoint backs SpotPrice. Non-2xx responses surface as a
// QuoteFetchError carrying the API's own error message.
type CoinMarketCap struct {
	apiKey     string
	listingURL string
	quoteURL   string
	client     *http.Client
}

// CMCOption is a function that configures a CoinMarketCap client
type CMCOption func(*CoinMarketCap)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) CMCOption {
	return func(c *CoinMarketCap) {
		c.client = client
	}
}

// NewCoinMarketCap creates a CoinMarketCap quote source
func NewCoinMarketCap(settings core.QuoteSettings, options ...CMCOption) *CoinMarketCap {
	client := &CoinMarketCap{
		apiKey:     settings.APIKey,
		listingURL: settings.ListingURL,
		quoteURL:   settings.QuoteURL,
		client:     &http.Client{Timeout: defaultHTTPTimeout},
	}

	for _, option := range options {
		option(client)
	}

	return client
}

type listingResponse struct {
	Data []struct {
		Symbol string `json:"symbol"`
	} `json:"data"`
}

type quoteResponse struct {
	Data map[string]struct {
		Quote map[string]struct {
			Price float64 `json:"price"`
		} `json:"quote"`
	} `json:"data"`
}

type statusEnvelope struct {
	Status struct {
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}

// TopSymbols returns up to count distinct symbols in listing order
func (c *CoinMarketCap) TopSymbols(ctx context.Context, count int) ([]string, error) {
	body, err := c.get(ctx, c.listingURL, map[string]string{
		"start":   "1",
		"limit":   strconv.Itoa(count),
		"convert": "USD",
	})
	if err != nil {
		return nil, err
	}

	var listing listingResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, &core.QuoteFetchError{StatusCode: http.StatusOK, Message: err.Error()}
	}

	// The listing may repeat a symbol; keep the first occurrence only
	unique := set.NewLinkedHashSetString()
	for _, item := range listing.Data {
		unique.Add(item.Symbol)
	}

	symbols := make([]string, 0, unique.Length())
	for symbol := range unique.Iter() {
		symbols = append(symbols, symbol)
	}

	return symbols, nil
}

// SpotPrice returns the current USD price of one symbol
func (c *CoinMarketCap) SpotPrice(ctx context.Context, symbol string) (float64, error) {
	body, err := c.get(ctx, c.quoteURL, map[string]string{"symbol": symbol})
	if err != nil {
		return 0, err
	}

	var quotes quoteResponse
	if err := json.Unmarshal(body, &quotes); err != nil {
		return 0, &core.QuoteFetchError{StatusCode: http.StatusOK, Message: err.Error()}
	}

	entry, ok := quotes.Data[symbol]
	if !ok {
		return 0, &core.QuoteFetchError{StatusCode: http.StatusOK, Message: fmt.Sprintf("no quote for %s", symbol)}
	}

	usd, ok := entry.Quote["USD"]
	if !ok {
		return 0, &core.QuoteFetchError{StatusCode: http.StatusOK, Message: fmt.Sprintf("no USD quote for %s", symbol)}
	}

	return usd.Price, nil
}

// get performs one API request and returns the raw body on success
func (c *CoinMarketCap) get(ctx context.Context, url string, params map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &core.QuoteFetchError{Message: err.Error()}
	}

	query := req.URL.Query()
	for key, value := range params {
		query.Set(key, value)
	}
	req.URL.RawQuery = query.Encode()

	req.Header.Set("Accepts", "application/json")
	req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &core.QuoteFetchError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &core.QuoteFetchError{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		var envelope statusEnvelope
		_ = json.Unmarshal(body, &envelope)
		return nil, &core.QuoteFetchError{StatusCode: resp.StatusCode, Message: envelope.Status.ErrorMessage}
	}

	return body, nil
}
