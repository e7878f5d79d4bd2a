package core

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// WatchEntry holds the alert thresholds for one monitored symbol.
// Down fires when the price drops to or below it, Up when the price
// reaches or exceeds it. A freshly reserved entry carries (0, 0) until
// the user supplies real bounds.
type WatchEntry struct {
	Symbol string  `json:"symbol" gorm:"primaryKey"`
	Down   float64 `json:"down"`
	Up     float64 `json:"up"`
}

// Watchlist is the full set of monitored symbols, keyed by symbol. It is
// always loaded and saved as a whole document.
type Watchlist map[string]WatchEntry

// Symbols returns the watched symbols in sorted order. All iteration over
// the watchlist goes through this, keeping dispatch order deterministic.
func (w Watchlist) Symbols() []string {
	symbols := lo.Keys(w)
	sort.Strings(symbols)
	return symbols
}

// PriceSnapshot maps symbols to their current price. It is built fresh
// on every poll cycle and never persisted.
type PriceSnapshot map[string]float64

// AlertKind tells which bound was crossed
type AlertKind int

const (
	AlertUpper AlertKind = iota
	AlertLower
)

func (k AlertKind) String() string {
	if k == AlertLower {
		return "down"
	}
	return "up"
}

// AlertEvent signals that a symbol's price crossed one of its bounds
type AlertEvent struct {
	Symbol string
	Kind   AlertKind
	Price  float64
}

func (e AlertEvent) String() string {
	return fmt.Sprintf("%s - reached \"%s\" value", e.Symbol, e.Kind)
}
