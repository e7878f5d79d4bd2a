// Package conversation implements the per-chat dialog state machine that
// mutates the watchlist through multi-step add and delete flows.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/comporesano/curr-monitor-bot/pkg/core"
	"github.com/comporesano/curr-monitor-bot/pkg/logger"
	"github.com/comporesano/curr-monitor-bot/pkg/watchlist"
)

// State identifies the step a chat is at inside a dialog
type State int

const (
	StateIdle State = iota
	StateAwaitingCount
	StateAwaitingBounds
	StateAwaitingDeleteChoice
)

// KeyboardKind tells the transport how to render a reply's options
type KeyboardKind int

const (
	KeyboardNone   KeyboardKind = iota
	KeyboardInline              // selectable options attached to the message
	KeyboardChoice              // options replacing the chat keyboard
	KeyboardRemove              // clear any previous chat keyboard
)

// Reply is the outbound side of one transition
type Reply struct {
	Text     string
	Options  []string
	Keyboard KeyboardKind
}

// session carries a chat's dialog step plus the symbol being configured
// in the add flow. Keeping it per chat means concurrent dialogs can
// never cross-contaminate.
type session struct {
	state  State
	symbol string
}

// Engine drives one dialog per chat. Sessions are created when a dialog
// starts and dropped when it completes or aborts; every completion,
// validation failure and reported error lands back on the idle state.
type Engine struct {
	book   *watchlist.Book
	quotes core.QuoteSource
	log    logger.Logger

	mu       sync.Mutex
	sessions map[int64]*session
}

func NewEngine(book *watchlist.Book, quotes core.QuoteSource, log logger.Logger) *Engine {
	return &Engine{
		book:     book,
		quotes:   quotes,
		log:      log,
		sessions: make(map[int64]*session),
	}
}

// Check renders the current watchlist. Read-only, the chat stays idle.
func (e *Engine) Check(chatID int64) Reply {
	wl, err := e.book.Snapshot()
	if err != nil {
		return e.fail(chatID, err)
	}

	if len(wl) == 0 {
		return Reply{Text: "Nothing to monitor"}
	}

	lines := make([]string, 0, len(wl))
	for n, symbol := range wl.Symbols() {
		entry := wl[symbol]
		lines = append(lines, fmt.Sprintf("%d. Currency: %s, Down value: %s$, Up value: %s$.",
			n+1, symbol, formatBound(entry.Down), formatBound(entry.Up)))
	}

	return Reply{Text: "Current monitoring crypto currencies:\n" + strings.Join(lines, "\n")}
}

// BeginAdd starts the add flow by asking for a listing size
func (e *Engine) BeginAdd(chatID int64) Reply {
	e.setState(chatID, StateAwaitingCount, "")
	return Reply{Text: "Choose count of crypto currencies in list"}
}

// BeginDelete starts the delete flow when there is something to delete
func (e *Engine) BeginDelete(chatID int64) Reply {
	wl, err := e.book.Snapshot()
	if err != nil {
		return e.fail(chatID, err)
	}

	if len(wl) == 0 {
		return Reply{Text: "Nothing to delete"}
	}

	e.setState(chatID, StateAwaitingDeleteChoice, "")
	return Reply{
		Text:     "Choose currency for delete:",
		Options:  wl.Symbols(),
		Keyboard: KeyboardChoice,
	}
}

// SelectSymbol reserves the chosen symbol with placeholder bounds and
// asks for the real ones. The reservation is persisted immediately, so
// the symbol is taken even if the bounds step never completes.
func (e *Engine) SelectSymbol(chatID int64, symbol string) Reply {
	if err := e.book.Upsert(core.WatchEntry{Symbol: symbol}); err != nil {
		return e.fail(chatID, err)
	}

	e.setState(chatID, StateAwaitingBounds, symbol)
	return Reply{
		Text:     fmt.Sprintf("Current crypto: %s\nEnter down and up value in USD for %s like - \"down up\"", symbol, symbol),
		Keyboard: KeyboardRemove,
	}
}

// Input routes free text according to the chat's dialog state
func (e *Engine) Input(ctx context.Context, chatID int64, text string) Reply {
	switch e.State(chatID) {
	case StateAwaitingCount:
		return e.handleCount(ctx, chatID, text)
	case StateAwaitingBounds:
		return e.handleBounds(chatID, text)
	case StateAwaitingDeleteChoice:
		return e.handleDelete(chatID, text)
	default:
		return Reply{Text: "Choose an option from /menu"}
	}
}

// State returns the chat's current dialog state
func (e *Engine) State(chatID int64) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.sessions[chatID]; ok {
		return s.state
	}
	return StateIdle
}

func (e *Engine) handleCount(ctx context.Context, chatID int64, text string) Reply {
	// The dialog step is consumed whether the input is valid or not
	e.reset(chatID)

	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || count <= 0 {
		verr := &core.ValidationError{Reason: "Count of crypto currencies value - invalid(not num)"}
		return Reply{Text: verr.Error()}
	}

	symbols, err := e.quotes.TopSymbols(ctx, count)
	if err != nil {
		return e.failReply(err)
	}

	return Reply{
		Text:     fmt.Sprintf("List of crypto currencies(%d)", count),
		Options:  symbols,
		Keyboard: KeyboardInline,
	}
}

func (e *Engine) handleBounds(chatID int64, text string) Reply {
	symbol := e.currentSymbol(chatID)
	e.reset(chatID)

	down, up, err := parseBounds(text)
	if err != nil {
		// The reservation stays at (0, 0); only the dialog aborts
		return Reply{Text: err.Error()}
	}

	if err := e.book.Upsert(core.WatchEntry{Symbol: symbol, Down: down, Up: up}); err != nil {
		return e.failReply(err)
	}

	return Reply{Text: fmt.Sprintf("Down value - %s$ and Up value - %s$ set for %s currency",
		formatBound(down), formatBound(up), symbol)}
}

func (e *Engine) handleDelete(chatID int64, text string) Reply {
	e.reset(chatID)

	symbol := strings.TrimSpace(text)
	if err := e.book.Remove(symbol); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return Reply{Text: fmt.Sprintf("%s is not monitored", symbol), Keyboard: KeyboardRemove}
		}
		return e.failReply(err)
	}

	return Reply{Text: fmt.Sprintf("%s was deleted from monitoring!", symbol), Keyboard: KeyboardRemove}
}

// parseBounds validates a "down up" pair: exactly two tokens, both
// positive numbers, with down not above up. The comparison is numeric.
func parseBounds(text string) (down, up float64, err error) {
	invalid := &core.ValidationError{
		Reason: "Invalid \"down up\" value (down > up or down, up are missing or down, up invalid values)",
	}

	tokens := strings.Fields(text)
	if len(tokens) != 2 {
		return 0, 0, invalid
	}

	down, errDown := strconv.ParseFloat(tokens[0], 64)
	up, errUp := strconv.ParseFloat(tokens[1], 64)
	if errDown != nil || errUp != nil || down <= 0 || up <= 0 || down > up {
		return 0, 0, invalid
	}

	return down, up, nil
}

func (e *Engine) fail(chatID int64, err error) Reply {
	e.reset(chatID)
	return e.failReply(err)
}

func (e *Engine) failReply(err error) Reply {
	e.log.WithError(err).Error("conversation: operation failed")
	return Reply{Text: err.Error()}
}

func (e *Engine) setState(chatID int64, state State, symbol string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessions[chatID] = &session{state: state, symbol: symbol}
}

func (e *Engine) currentSymbol(chatID int64) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[chatID]; ok {
		return s.symbol
	}
	return ""
}

func (e *Engine) reset(chatID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, chatID)
}

func formatBound(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
