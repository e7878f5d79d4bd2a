package core

import "time"

// Settings represents the main configuration for the application
type Settings struct {
	Watchlist    string           // Path of the persisted watchlist document
	PollInterval time.Duration    // Delay between two poll cycles
	FetchTimeout time.Duration    // Upper bound for a single quote request
	Telegram     TelegramSettings // Telegram surface settings
	Quote        QuoteSettings    // Quote source settings
}

// TelegramSettings holds configuration for the Telegram surface
type TelegramSettings struct {
	Enabled bool   // Whether the Telegram surface is enabled
	Token   string // Telegram bot token
	ChatID  int64  // The single chat allowed to drive the bot and receive alerts
}

// QuoteSettings holds configuration for the quote source
type QuoteSettings struct {
	APIKey     string // API key sent with every request
	ListingURL string // Ranked listing endpoint
	QuoteURL   string // Per-symbol spot price endpoint
}
