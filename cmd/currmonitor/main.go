package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	str2duration "github.com/xhit/go-str2duration/v2"

	currmonitor "github.com/comporesano/curr-monitor-bot"
	"github.com/comporesano/curr-monitor-bot/pkg/core"
	"github.com/comporesano/curr-monitor-bot/pkg/notification"
	"github.com/comporesano/curr-monitor-bot/pkg/quote"
	"github.com/comporesano/curr-monitor-bot/pkg/storage"
	"github.com/comporesano/curr-monitor-bot/pkg/watchlist"
)

const (
	defaultListingURL = "https://pro-api.coinmarketcap.com/v1/cryptocurrency/listings/latest"
	defaultQuoteURL   = "https://pro-api.coinmarketcap.com/v1/cryptocurrency/quotes/latest"
)

// Command line flags
var (
	storageBackend string
	quoteSource    string
	topCount       int
)

func main() {
	// Environment overrides may live in a local .env file
	_ = godotenv.Load()

	// Create root command
	rootCmd := &cobra.Command{
		Use:     "currmonitor",
		Short:   "Personal crypto currency price monitor",
		Version: "1.0.0",
	}

	// Add commands
	rootCmd.AddCommand(buildRunCmd(), buildListCmd(), buildTopCmd())

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start the price monitor and its Telegram surface",
		RunE:  runMonitor,
	}

	runCmd.Flags().StringVarP(&storageBackend, "storage", "s", "file", "Watchlist backend (file, buntdb or sql)")
	runCmd.Flags().StringVarP(&quoteSource, "source", "q", "cmc", "Quote source (cmc or binance)")

	return runCmd
}

func buildListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the persisted watchlist",
		RunE:  runList,
	}

	listCmd.Flags().StringVarP(&storageBackend, "storage", "s", "file", "Watchlist backend (file, buntdb or sql)")

	return listCmd
}

func buildTopCmd() *cobra.Command {
	topCmd := &cobra.Command{
		Use:   "top",
		Short: "Print the top ranked symbols from the quote source",
		RunE:  runTop,
	}

	topCmd.Flags().IntVarP(&topCount, "count", "c", 10, "Number of symbols to list")
	topCmd.Flags().StringVarP(&quoteSource, "source", "q", "cmc", "Quote source (cmc or binance)")

	return topCmd
}

func runMonitor(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := buildStorage(settings)
	if err != nil {
		return err
	}

	quotes, err := buildQuoteSource(cmd, settings)
	if err != nil {
		return err
	}

	options := []currmonitor.Option{currmonitor.WithStorage(store)}
	if mail, ok := buildMailNotifier(); ok {
		options = append(options, currmonitor.WithNotifier(mail))
	}

	bot, err := currmonitor.NewBot(settings, quotes, options...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return bot.Run(ctx)
}

func runList(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := buildStorage(settings)
	if err != nil {
		return err
	}
	defer store.Close()

	wl, err := watchlist.NewBook(store).Snapshot()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Symbol", "Down", "Up"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})

	for _, symbol := range wl.Symbols() {
		entry := wl[symbol]
		table.Append([]string{
			symbol,
			strconv.FormatFloat(entry.Down, 'f', -1, 64),
			strconv.FormatFloat(entry.Up, 'f', -1, 64),
		})
	}

	table.Render()
	return nil
}

func runTop(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	quotes, err := buildQuoteSource(cmd, settings)
	if err != nil {
		return err
	}

	symbols, err := quotes.TopSymbols(cmd.Context(), topCount)
	if err != nil {
		return err
	}

	for n, symbol := range symbols {
		fmt.Printf("%d. %s\n", n+1, symbol)
	}

	return nil
}

// loadSettings builds the settings from environment variables
func loadSettings() (*core.Settings, error) {
	settings := &core.Settings{
		Watchlist: getEnv("CURRMONITOR_WATCHLIST", "watchlist.json"),
		Quote: core.QuoteSettings{
			APIKey:     os.Getenv("CURRMONITOR_QUOTE_API_KEY"),
			ListingURL: getEnv("CURRMONITOR_QUOTE_LISTING_URL", defaultListingURL),
			QuoteURL:   getEnv("CURRMONITOR_QUOTE_URL", defaultQuoteURL),
		},
	}

	interval, err := str2duration.ParseDuration(getEnv("CURRMONITOR_POLL_INTERVAL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}
	settings.PollInterval = interval

	timeout, err := str2duration.ParseDuration(getEnv("CURRMONITOR_FETCH_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid fetch timeout: %w", err)
	}
	settings.FetchTimeout = timeout

	if token := os.Getenv("CURRMONITOR_TELEGRAM_TOKEN"); token != "" {
		chatID, err := strconv.ParseInt(os.Getenv("CURRMONITOR_TELEGRAM_CHAT_ID"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram chat id: %w", err)
		}

		settings.Telegram = core.TelegramSettings{
			Enabled: true,
			Token:   token,
			ChatID:  chatID,
		}
	}

	return settings, nil
}

// buildMailNotifier reads the optional SMTP block. Alerts go to email
// instead of the Telegram chat when a server is configured.
func buildMailNotifier() (core.Notifier, bool) {
	server := os.Getenv("CURRMONITOR_SMTP_SERVER")
	if server == "" {
		return nil, false
	}

	port, err := strconv.Atoi(getEnv("CURRMONITOR_SMTP_PORT", "587"))
	if err != nil {
		port = 587
	}

	return notification.NewMail(notification.MailParams{
		SMTPServerAddress: server,
		SMTPServerPort:    port,
		From:              os.Getenv("CURRMONITOR_SMTP_FROM"),
		To:                os.Getenv("CURRMONITOR_SMTP_TO"),
		Password:          os.Getenv("CURRMONITOR_SMTP_PASSWORD"),
	}), true
}

// buildStorage creates the selected watchlist backend, seeding an empty
// document on first run
func buildStorage(settings *core.Settings) (core.WatchlistStorage, error) {
	switch storageBackend {
	case "sql":
		return storage.FromSQLite(getEnv("CURRMONITOR_DATABASE_PATH", "watchlist.db"))
	case "buntdb":
		return storage.NewBuntStorage(settings.Watchlist)
	case "file":
		store, err := storage.FromFile(settings.Watchlist)
		if err != nil {
			return nil, err
		}
		if err := store.(*storage.FileStorage).Bootstrap(); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", storageBackend)
	}
}

// buildQuoteSource creates the selected quote source
func buildQuoteSource(cmd *cobra.Command, settings *core.Settings) (core.QuoteSource, error) {
	switch quoteSource {
	case "binance":
		return quote.NewBinance(cmd.Context())
	case "cmc":
		return quote.NewCoinMarketCap(settings.Quote), nil
	default:
		return nil, fmt.Errorf("unknown quote source: %s", quoteSource)
	}
}

// getEnv returns the value of the environment variable or the default if not set
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
