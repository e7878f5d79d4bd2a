package core

import "context"

// WatchlistStorage persists the watchlist as a whole document. Load and
// Save are the only primitives the store exposes; upsert and remove are
// load-mutate-save sequences owned by the caller.
type WatchlistStorage interface {
	Load() (Watchlist, error)
	Save(Watchlist) error
	Close() error
}

// QuoteSource answers the two external market queries: a ranked symbol
// listing and a per-symbol spot price.
type QuoteSource interface {
	TopSymbols(ctx context.Context, count int) ([]string, error)
	SpotPrice(ctx context.Context, symbol string) (float64, error)
}

type Notifier interface {
	Notify(string)
	OnAlert(event AlertEvent)
	OnError(err error)
}

type NotifierWithStart interface {
	Notifier
	Start()
}
