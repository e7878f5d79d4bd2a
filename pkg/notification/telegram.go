// Package notification provides implementations for various notification services
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comporesano/curr-monitor-bot/pkg/conversation"
	"github.com/comporesano/curr-monitor-bot/pkg/core"
	log "github.com/sirupsen/logrus"
	tb "gopkg.in/tucnak/telebot.v2"
)

const greeting = "This is currency monitoring bot. Type /menu to start."

// pickUnique tags the inline buttons used for symbol selection
const pickUnique = "pick"

// inputTimeout bounds the work behind one free-text message, which may
// include a listing fetch
const inputTimeout = 30 * time.Second

// Main menu buttons
var (
	checkButton  = tb.InlineButton{Unique: "check", Text: "Check currencies"}
	addButton    = tb.InlineButton{Unique: "add", Text: "Add currency"}
	deleteButton = tb.InlineButton{Unique: "delete", Text: "Delete currency"}
)

// Telegram implements the core.NotifierWithStart interface
type telegram struct {
	settings *core.Settings
	engine   *conversation.Engine
	mainMenu *tb.ReplyMarkup
	client   *tb.Bot
}

// Option is a function that configures a telegram instance
type Option func(telegram *telegram)

// NewTelegram creates and initializes a new Telegram service
func NewTelegram(engine *conversation.Engine, settings *core.Settings, options ...Option) (core.NotifierWithStart, error) {
	poller := &tb.LongPoller{Timeout: 10 * time.Second}

	// Create chat authorization middleware
	chatMiddleware := createAuthMiddleware(poller, settings)

	// Initialize bot client
	client, err := tb.NewBot(tb.Settings{
		Token:  settings.Telegram.Token,
		Poller: chatMiddleware,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	if err := setupCommands(client); err != nil {
		return nil, fmt.Errorf("failed to set commands: %w", err)
	}

	// Create and configure bot instance
	bot := &telegram{
		engine:   engine,
		client:   client,
		settings: settings,
		mainMenu: buildMainMenu(),
	}

	// Apply custom options if provided
	for _, option := range options {
		option(bot)
	}

	// Register command handlers
	registerHandlers(client, bot)

	return bot, nil
}

// createAuthMiddleware creates a middleware admitting the configured
// chat. A /start from anyone else still passes so strangers can receive
// the static greeting, and nothing more.
func createAuthMiddleware(poller *tb.LongPoller, settings *core.Settings) *tb.MiddlewarePoller {
	return tb.NewMiddlewarePoller(poller, func(u *tb.Update) bool {
		if u.Callback != nil {
			if u.Callback.Message == nil || u.Callback.Message.Chat == nil {
				log.Error("callback without chat ", u)
				return false
			}
			return u.Callback.Message.Chat.ID == settings.Telegram.ChatID
		}

		if u.Message == nil || u.Message.Chat == nil {
			log.Error("message or chat is nil ", u)
			return false
		}

		if u.Message.Chat.ID == settings.Telegram.ChatID {
			return true
		}

		return strings.HasPrefix(u.Message.Text, "/start")
	})
}

// buildMainMenu configures the inline menu layout
func buildMainMenu() *tb.ReplyMarkup {
	return &tb.ReplyMarkup{
		InlineKeyboard: [][]tb.InlineButton{
			{checkButton},
			{addButton},
			{deleteButton},
		},
	}
}

// setupCommands configures available bot commands
func setupCommands(client *tb.Bot) error {
	return client.SetCommands([]tb.Command{
		{Text: "/start", Description: "Display the greeting"},
		{Text: "/menu", Description: "Show monitoring options"},
	})
}

// registerHandlers registers all command handlers
func registerHandlers(client *tb.Bot, bot *telegram) {
	client.Handle("/start", bot.StartHandle)
	client.Handle("/menu", bot.MenuHandle)
	client.Handle(&checkButton, bot.CheckHandle)
	client.Handle(&addButton, bot.AddHandle)
	client.Handle(&deleteButton, bot.DeleteHandle)
	client.Handle(&tb.InlineButton{Unique: pickUnique}, bot.PickHandle)
	client.Handle(tb.OnText, bot.TextHandle)
}

// Start begins the Telegram bot and greets the configured chat
func (t *telegram) Start() {
	go t.client.Start()
	t.Notify("Bot initialized. Type /menu to start.")
}

// Notify sends a message to the configured chat
func (t *telegram) Notify(text string) {
	_, err := t.client.Send(&tb.Chat{ID: t.settings.Telegram.ChatID}, text)
	if err != nil {
		log.WithError(err).Error("failed to send notification")
	}
}

// OnAlert notifies the configured chat that a bound was crossed
func (t *telegram) OnAlert(event core.AlertEvent) {
	t.Notify(event.String())
}

// OnError notifies the configured chat about errors
func (t *telegram) OnError(err error) {
	var sb strings.Builder
	sb.WriteString("🛑 ERROR\n")

	var fetchError *core.QuoteFetchError
	if errors.As(err, &fetchError) {
		sb.WriteString("-----\n")
		fmt.Fprintf(&sb, "Status: %d\n", fetchError.StatusCode)
		sb.WriteString("-----\n")
		sb.WriteString(fetchError.Message)

		t.Notify(sb.String())
		return
	}

	sb.WriteString("-----\n")
	sb.WriteString(err.Error())

	t.Notify(sb.String())
}

// StartHandle replies with the static greeting. This is the only
// handler reachable from chats other than the configured one.
func (t *telegram) StartHandle(m *tb.Message) {
	t.sendTo(m.Chat, greeting)
}

// MenuHandle shows the main monitoring menu
func (t *telegram) MenuHandle(m *tb.Message) {
	t.sendTo(m.Chat, "Choose an option:", t.mainMenu)
}

// CheckHandle renders the current watchlist
func (t *telegram) CheckHandle(c *tb.Callback) {
	t.respond(c)
	t.sendReply(c.Message.Chat, t.engine.Check(c.Message.Chat.ID))
}

// AddHandle starts the add dialog
func (t *telegram) AddHandle(c *tb.Callback) {
	t.respond(c)
	t.sendReply(c.Message.Chat, t.engine.BeginAdd(c.Message.Chat.ID))
}

// DeleteHandle starts the delete dialog
func (t *telegram) DeleteHandle(c *tb.Callback) {
	t.respond(c)
	t.sendReply(c.Message.Chat, t.engine.BeginDelete(c.Message.Chat.ID))
}

// PickHandle reserves the symbol chosen from a listing
func (t *telegram) PickHandle(c *tb.Callback) {
	t.respond(c)
	symbol := strings.TrimSpace(c.Data)
	t.sendReply(c.Message.Chat, t.engine.SelectSymbol(c.Message.Chat.ID, symbol))
}

// TextHandle routes free text into the active dialog
func (t *telegram) TextHandle(m *tb.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), inputTimeout)
	defer cancel()

	t.sendReply(m.Chat, t.engine.Input(ctx, m.Chat.ID, m.Text))
}

func (t *telegram) respond(c *tb.Callback) {
	if err := t.client.Respond(c, &tb.CallbackResponse{}); err != nil {
		log.WithError(err).Error("failed to acknowledge callback")
	}
}

// sendReply renders an engine reply with the keyboard it asks for
func (t *telegram) sendReply(chat *tb.Chat, reply conversation.Reply) {
	switch reply.Keyboard {
	case conversation.KeyboardInline:
		t.sendTo(chat, reply.Text, inlineOptions(reply.Options))
	case conversation.KeyboardChoice:
		t.sendTo(chat, reply.Text, choiceOptions(reply.Options))
	case conversation.KeyboardRemove:
		t.sendTo(chat, reply.Text, &tb.ReplyMarkup{ReplyKeyboardRemove: true})
	default:
		t.sendTo(chat, reply.Text)
	}
}

// sendTo sends a message to a specific chat
func (t *telegram) sendTo(chat *tb.Chat, text string, options ...interface{}) {
	if _, err := t.client.Send(chat, text, options...); err != nil {
		log.WithError(err).Error("failed to send message")
	}
}

// inlineOptions builds one symbol-pick button per option
func inlineOptions(options []string) *tb.ReplyMarkup {
	rows := make([][]tb.InlineButton, 0, len(options))
	for _, option := range options {
		rows = append(rows, []tb.InlineButton{{
			Unique: pickUnique,
			Text:   option,
			Data:   option,
		}})
	}

	return &tb.ReplyMarkup{InlineKeyboard: rows}
}

// choiceOptions builds a one-column reply keyboard from the options
func choiceOptions(options []string) *tb.ReplyMarkup {
	rows := make([][]tb.ReplyButton, 0, len(options))
	for _, option := range options {
		rows = append(rows, []tb.ReplyButton{{Text: option}})
	}

	return &tb.ReplyMarkup{ReplyKeyboard: rows, ResizeReplyKeyboard: true}
}
