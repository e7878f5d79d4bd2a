package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comporesano/curr-monitor-bot/pkg/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *CoinMarketCap {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewCoinMarketCap(core.QuoteSettings{
		APIKey:     "test-key",
		ListingURL: server.URL + "/listings",
		QuoteURL:   server.URL + "/quotes",
	}, WithHTTPClient(server.Client()))
}

func TestCoinMarketCap_TopSymbols(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/listings", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("X-CMC_PRO_API_KEY"))
		require.Equal(t, "application/json", r.Header.Get("Accepts"))
		require.Equal(t, "1", r.URL.Query().Get("start"))
		require.Equal(t, "3", r.URL.Query().Get("limit"))
		require.Equal(t, "USD", r.URL.Query().Get("convert"))

		fmt.Fprint(w, `{"data": [{"symbol": "BTC"}, {"symbol": "ETH"}, {"symbol": "BNB"}]}`)
	})

	symbols, err := client.TopSymbols(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, []string{"BTC", "ETH", "BNB"}, symbols)
}

func TestCoinMarketCap_TopSymbolsDeduplicates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [{"symbol": "BTC"}, {"symbol": "ETH"}, {"symbol": "BTC"}]}`)
	})

	symbols, err := client.TopSymbols(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, []string{"BTC", "ETH"}, symbols)
}

func TestCoinMarketCap_SpotPrice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quotes", r.URL.Path)
		require.Equal(t, "BTC", r.URL.Query().Get("symbol"))

		fmt.Fprint(w, `{"data": {"BTC": {"quote": {"USD": {"price": 61234.5}}}}}`)
	})

	price, err := client.SpotPrice(context.Background(), "BTC")
	require.NoError(t, err)
	require.Equal(t, 61234.5, price)
}

func TestCoinMarketCap_SpotPriceMissingSymbol(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {}}`)
	})

	_, err := client.SpotPrice(context.Background(), "BTC")

	var fetchErr *core.QuoteFetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, "no quote for BTC", fetchErr.Message)
}

func TestCoinMarketCap_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"status": {"error_message": "This API Key is invalid."}}`)
	})

	_, err := client.TopSymbols(context.Background(), 5)

	var fetchErr *core.QuoteFetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, http.StatusUnauthorized, fetchErr.StatusCode)
	require.Equal(t, "This API Key is invalid.", fetchErr.Message)
	require.Equal(t, "Error 401: This API Key is invalid.", err.Error())
}

func TestCoinMarketCap_ConnectionRefused(t *testing.T) {
	client := NewCoinMarketCap(core.QuoteSettings{
		ListingURL: "http://127.0.0.1:1/listings",
		QuoteURL:   "http://127.0.0.1:1/quotes",
	})

	_, err := client.SpotPrice(context.Background(), "BTC")

	var fetchErr *core.QuoteFetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Zero(t, fetchErr.StatusCode)
}
