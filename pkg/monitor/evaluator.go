// Package monitor drives the recurring price checks against the watchlist
package monitor

import "github.com/comporesano/curr-monitor-bot/pkg/core"

// Evaluate compares a price snapshot against the watchlist and returns
// the alerts to dispatch, in sorted symbol order. It is a pure function:
// identical inputs always produce identical events, and nothing here
// suppresses a repeat alert on the next cycle.
//
// The upper bound is checked first, so when misconfigured bounds make
// both conditions hold, the upper alert wins. Symbols missing from the
// snapshot are skipped without an error so one absent quote cannot block
// alerts for the rest.
func Evaluate(wl core.Watchlist, prices core.PriceSnapshot) []core.AlertEvent {
	events := make([]core.AlertEvent, 0)

	for _, symbol := range wl.Symbols() {
		price, ok := prices[symbol]
		if !ok {
			continue
		}

		entry := wl[symbol]
		switch {
		case price >= entry.Up:
			events = append(events, core.AlertEvent{Symbol: symbol, Kind: core.AlertUpper, Price: price})
		case price <= entry.Down:
			events = append(events, core.AlertEvent{Symbol: symbol, Kind: core.AlertLower, Price: price})
		}
	}

	return events
}
