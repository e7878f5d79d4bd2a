package currmonitor

import "github.com/comporesano/curr-monitor-bot/pkg/core"

// Option is a functional option for configuring a Bot instance
type Option func(*Bot)

// WithStorage sets the watchlist storage, by default a local JSON
// document called watchlist.json
func WithStorage(storage core.WatchlistStorage) Option {
	return func(bot *Bot) {
		bot.storage = storage
	}
}

// WithNotifier sets the alert notifier, replacing the Telegram default.
// The Telegram surface, when enabled, still serves the dialogs.
func WithNotifier(notifier core.Notifier) Option {
	return func(bot *Bot) {
		bot.notifier = notifier
	}
}
