package currmonitor

import (
	"context"
	"fmt"

	"github.com/comporesano/curr-monitor-bot/pkg/conversation"
	"github.com/comporesano/curr-monitor-bot/pkg/core"
	"github.com/comporesano/curr-monitor-bot/pkg/logger"
	"github.com/comporesano/curr-monitor-bot/pkg/monitor"
	"github.com/comporesano/curr-monitor-bot/pkg/notification"
	"github.com/comporesano/curr-monitor-bot/pkg/storage"
	"github.com/comporesano/curr-monitor-bot/pkg/watchlist"
)

// DefaultLog is the default logger instance
var DefaultLog logger.Logger

const defaultWatchlist = "watchlist.json"

// Bot wires the watchlist, quote source, poll scheduler and chat
// surface into one monitoring service.
type Bot struct {
	settings *core.Settings
	storage  core.WatchlistStorage
	quotes   core.QuoteSource
	notifier core.Notifier
	telegram core.NotifierWithStart

	book      *watchlist.Book
	engine    *conversation.Engine
	scheduler *monitor.Scheduler
}

// NewBot creates a new Bot instance with the provided settings and dependencies
func NewBot(settings *core.Settings, quotes core.QuoteSource, options ...Option) (*Bot, error) {
	bot := &Bot{
		settings: settings,
		quotes:   quotes,
	}

	// Apply custom options
	for _, option := range options {
		option(bot)
	}

	// Initialize storage
	if err := initializeStorage(bot, settings); err != nil {
		return nil, err
	}

	bot.book = watchlist.NewBook(bot.storage)
	bot.engine = conversation.NewEngine(bot.book, bot.quotes, DefaultLog)

	// Initialize notification systems
	if err := initializeNotifications(bot, settings); err != nil {
		return nil, err
	}

	schedulerOptions := make([]monitor.SchedulerOption, 0, 2)
	if settings.PollInterval > 0 {
		schedulerOptions = append(schedulerOptions, monitor.WithInterval(settings.PollInterval))
	}
	if settings.FetchTimeout > 0 {
		schedulerOptions = append(schedulerOptions, monitor.WithFetchTimeout(settings.FetchTimeout))
	}
	bot.scheduler = monitor.NewScheduler(bot.book, bot.quotes, bot.notifier, DefaultLog, schedulerOptions...)

	return bot, nil
}

// initializeStorage sets up the watchlist storage
func initializeStorage(bot *Bot, settings *core.Settings) error {
	if bot.storage != nil {
		return nil
	}

	path := settings.Watchlist
	if path == "" {
		path = defaultWatchlist
	}

	store, err := storage.FromFile(path)
	if err != nil {
		return err
	}

	bot.storage = store
	return nil
}

// initializeNotifications sets up the chat surface and the alert notifier
func initializeNotifications(bot *Bot, settings *core.Settings) error {
	if settings.Telegram.Enabled {
		telegram, err := notification.NewTelegram(bot.engine, settings)
		if err != nil {
			return err
		}

		bot.telegram = telegram
		if bot.notifier == nil {
			bot.notifier = telegram
		}
	}

	if bot.notifier == nil {
		return fmt.Errorf("no notifier configured: enable telegram or provide one with WithNotifier")
	}

	return nil
}

// Book exposes the watchlist owner, mainly for the CLI
func (b *Bot) Book() *watchlist.Book {
	return b.book
}

// Run starts the chat surface and the poll loop, blocking until ctx is
// cancelled.
func (b *Bot) Run(ctx context.Context) error {
	defer b.storage.Close()

	if b.telegram != nil {
		b.telegram.Start()
	}

	b.scheduler.Run(ctx)
	return nil
}
