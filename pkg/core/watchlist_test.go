package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWatchlist_SymbolsSorted(t *testing.T) {
	wl := Watchlist{
		"ETH": {Symbol: "ETH"},
		"ADA": {Symbol: "ADA"},
		"BTC": {Symbol: "BTC"},
	}

	require.Equal(t, []string{"ADA", "BTC", "ETH"}, wl.Symbols())
	require.Empty(t, Watchlist{}.Symbols())
}

func TestAlertEvent_String(t *testing.T) {
	up := AlertEvent{Symbol: "BTC", Kind: AlertUpper, Price: 61000}
	require.Equal(t, `BTC - reached "up" value`, up.String())

	down := AlertEvent{Symbol: "ETH", Kind: AlertLower, Price: 900}
	require.Equal(t, `ETH - reached "down" value`, down.String())
}
