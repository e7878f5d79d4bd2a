package quote

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/jpillora/backoff"

	"github.com/comporesano/curr-monitor-bot/pkg/core"
)

const pingAttempts = 3

// Binance implements core.QuoteSource on the Binance spot API.
// TopSymbols ranks by 24h quote volume; SpotPrice reads the ticker.
type Binance struct {
	client *binance.Client
}

// BinanceOption is a function that configures a Binance client
type BinanceOption func(*Binance)

// WithCredentials sets the API credentials for the Binance client
func WithCredentials(key, secret string) BinanceOption {
	return func(b *Binance) {
		b.client = binance.NewClient(key, secret)
	}
}

// NewBinance creates a Binance quote source. The connection is verified
// with a ping, retried briefly before giving up.
func NewBinance(ctx context.Context, options ...BinanceOption) (*Binance, error) {
	source := &Binance{client: binance.NewClient("", "")}

	for _, option := range options {
		option(source)
	}

	err := pingWithRetry(func() error {
		return source.client.NewPingService().Do(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("binance ping fail: %w", err)
	}

	return source, nil
}

// pingWithRetry runs ping up to pingAttempts times, backing off between
// attempts only. The last failure returns without a trailing sleep.
func pingWithRetry(ping func() error) error {
	retry := setupBackoffRetry()

	var err error
	for attempt := 0; attempt < pingAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(retry.Duration())
		}
		if err = ping(); err == nil {
			return nil
		}
	}

	return err
}

// setupBackoffRetry creates a backoff with sensible defaults
func setupBackoffRetry() *backoff.Backoff {
	return &backoff.Backoff{
		Min: 100 * time.Millisecond,
		Max: 1 * time.Second,
	}
}

// TopSymbols returns the count most traded symbols by 24h quote volume
func (b *Binance) TopSymbols(ctx context.Context, count int) ([]string, error) {
	stats, err := b.client.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, asFetchError(err)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return quoteVolume(stats[i].QuoteVolume) > quoteVolume(stats[j].QuoteVolume)
	})

	symbols := make([]string, 0, count)
	for _, stat := range stats {
		if len(symbols) == count {
			break
		}
		symbols = append(symbols, stat.Symbol)
	}

	return symbols, nil
}

// SpotPrice returns the current ticker price of one symbol
func (b *Binance) SpotPrice(ctx context.Context, symbol string) (float64, error) {
	prices, err := b.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, asFetchError(err)
	}

	if len(prices) == 0 {
		return 0, &core.QuoteFetchError{Message: fmt.Sprintf("no price for %s", symbol)}
	}

	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return 0, &core.QuoteFetchError{Message: fmt.Sprintf("invalid price for %s: %v", symbol, err)}
	}

	return price, nil
}

func quoteVolume(value string) float64 {
	volume, _ := strconv.ParseFloat(value, 64)
	return volume
}

// asFetchError maps client failures onto the shared fetch error type,
// keeping the exchange's own error code and message visible.
func asFetchError(err error) error {
	if apiErr, ok := err.(*common.APIError); ok {
		return &core.QuoteFetchError{StatusCode: int(apiErr.Code), Message: apiErr.Message}
	}
	return &core.QuoteFetchError{Message: err.Error()}
}
