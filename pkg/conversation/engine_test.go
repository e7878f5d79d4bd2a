package conversation

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/comporesano/curr-monitor-bot/pkg/core"
	logadapter "github.com/comporesano/curr-monitor-bot/pkg/logger/zerolog"
	"github.com/comporesano/curr-monitor-bot/pkg/storage"
	"github.com/comporesano/curr-monitor-bot/pkg/watchlist"
)

const chatID = int64(42)

type stubQuotes struct {
	symbols []string
	err     error
}

func (s *stubQuotes) TopSymbols(_ context.Context, count int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if count < len(s.symbols) {
		return s.symbols[:count], nil
	}
	return s.symbols, nil
}

func (s *stubQuotes) SpotPrice(_ context.Context, _ string) (float64, error) {
	return 0, nil
}

func newTestEngine(t *testing.T, quotes core.QuoteSource) (*Engine, *watchlist.Book) {
	t.Helper()

	store, err := storage.FromMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	nop := zerolog.Nop()
	book := watchlist.NewBook(store)
	return NewEngine(book, quotes, logadapter.NewAdapter(&nop)), book
}

func TestEngine_AddFlow(t *testing.T) {
	quotes := &stubQuotes{symbols: []string{"BTC", "ETH", "BNB"}}
	engine, book := newTestEngine(t, quotes)

	reply := engine.BeginAdd(chatID)
	require.Equal(t, "Choose count of crypto currencies in list", reply.Text)
	require.Equal(t, StateAwaitingCount, engine.State(chatID))

	reply = engine.Input(context.Background(), chatID, "2")
	require.Equal(t, "List of crypto currencies(2)", reply.Text)
	require.Equal(t, []string{"BTC", "ETH"}, reply.Options)
	require.Equal(t, KeyboardInline, reply.Keyboard)
	require.Equal(t, StateIdle, engine.State(chatID))

	reply = engine.SelectSymbol(chatID, "BTC")
	require.Equal(t, "Current crypto: BTC\nEnter down and up value in USD for BTC like - \"down up\"", reply.Text)
	require.Equal(t, StateAwaitingBounds, engine.State(chatID))

	// The symbol is reserved with placeholder bounds before bounds arrive
	wl, err := book.Snapshot()
	require.NoError(t, err)
	require.Equal(t, core.WatchEntry{Symbol: "BTC"}, wl["BTC"])

	reply = engine.Input(context.Background(), chatID, "100 200")
	require.Equal(t, "Down value - 100$ and Up value - 200$ set for BTC currency", reply.Text)
	require.Equal(t, StateIdle, engine.State(chatID))

	wl, err = book.Snapshot()
	require.NoError(t, err)
	require.Equal(t, core.WatchEntry{Symbol: "BTC", Down: 100, Up: 200}, wl["BTC"])
}

func TestEngine_InvalidCount(t *testing.T) {
	engine, _ := newTestEngine(t, &stubQuotes{symbols: []string{"BTC"}})

	engine.BeginAdd(chatID)
	reply := engine.Input(context.Background(), chatID, "abc")

	require.Equal(t, "Count of crypto currencies value - invalid(not num)", reply.Text)
	require.Equal(t, StateIdle, engine.State(chatID))
}

func TestEngine_CountFetchFailure(t *testing.T) {
	quotes := &stubQuotes{err: &core.QuoteFetchError{StatusCode: 429, Message: "rate limited"}}
	engine, _ := newTestEngine(t, quotes)

	engine.BeginAdd(chatID)
	reply := engine.Input(context.Background(), chatID, "5")

	require.Equal(t, "Error 429: rate limited", reply.Text)
	require.Equal(t, StateIdle, engine.State(chatID))
}

func TestEngine_InvalidBoundsKeepsReservation(t *testing.T) {
	engine, book := newTestEngine(t, &stubQuotes{symbols: []string{"BTC"}})

	engine.SelectSymbol(chatID, "BTC")
	reply := engine.Input(context.Background(), chatID, "abc 10")

	require.Equal(t, "Invalid \"down up\" value (down > up or down, up are missing or down, up invalid values)", reply.Text)
	require.Equal(t, StateIdle, engine.State(chatID))

	// No rollback: the placeholder entry stays persisted
	wl, err := book.Snapshot()
	require.NoError(t, err)
	require.Equal(t, core.WatchEntry{Symbol: "BTC"}, wl["BTC"])
}

func TestEngine_BoundsValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"down above up", "200 100", false},
		{"single token", "100", false},
		{"three tokens", "1 2 3", false},
		{"zero down", "0 100", false},
		{"negative up", "10 -5", false},
		{"numeric not lexicographic", "9 10", true},
		{"equal bounds", "100 100", true},
		{"fractional", "0.5 1.5", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := parseBounds(tc.input)
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestEngine_DeleteFlow(t *testing.T) {
	engine, book := newTestEngine(t, &stubQuotes{})
	require.NoError(t, book.Upsert(core.WatchEntry{Symbol: "BTC", Down: 100, Up: 200}))
	require.NoError(t, book.Upsert(core.WatchEntry{Symbol: "ETH", Down: 10, Up: 20}))

	reply := engine.BeginDelete(chatID)
	require.Equal(t, "Choose currency for delete:", reply.Text)
	require.Equal(t, []string{"BTC", "ETH"}, reply.Options)
	require.Equal(t, KeyboardChoice, reply.Keyboard)
	require.Equal(t, StateAwaitingDeleteChoice, engine.State(chatID))

	reply = engine.Input(context.Background(), chatID, "BTC")
	require.Equal(t, "BTC was deleted from monitoring!", reply.Text)
	require.Equal(t, KeyboardRemove, reply.Keyboard)
	require.Equal(t, StateIdle, engine.State(chatID))

	wl, err := book.Snapshot()
	require.NoError(t, err)
	require.NotContains(t, wl, "BTC")
	require.Contains(t, wl, "ETH")
}

func TestEngine_DeleteUnknownSymbol(t *testing.T) {
	engine, book := newTestEngine(t, &stubQuotes{})
	require.NoError(t, book.Upsert(core.WatchEntry{Symbol: "BTC", Down: 100, Up: 200}))

	engine.BeginDelete(chatID)
	reply := engine.Input(context.Background(), chatID, "DOGE")

	require.Equal(t, "DOGE is not monitored", reply.Text)
	require.Equal(t, StateIdle, engine.State(chatID))
}

func TestEngine_DeleteEmptyWatchlist(t *testing.T) {
	engine, _ := newTestEngine(t, &stubQuotes{})

	reply := engine.BeginDelete(chatID)
	require.Equal(t, "Nothing to delete", reply.Text)
	require.Equal(t, StateIdle, engine.State(chatID))
}

func TestEngine_CheckEmpty(t *testing.T) {
	engine, _ := newTestEngine(t, &stubQuotes{})
	require.Equal(t, "Nothing to monitor", engine.Check(chatID).Text)
}

func TestEngine_CheckRendersEntries(t *testing.T) {
	engine, book := newTestEngine(t, &stubQuotes{})
	require.NoError(t, book.Upsert(core.WatchEntry{Symbol: "ETH", Down: 1000, Up: 4000}))
	require.NoError(t, book.Upsert(core.WatchEntry{Symbol: "BTC", Down: 100.5, Up: 200}))

	reply := engine.Check(chatID)
	require.Equal(t,
		"Current monitoring crypto currencies:\n"+
			"1. Currency: BTC, Down value: 100.5$, Up value: 200$.\n"+
			"2. Currency: ETH, Down value: 1000$, Up value: 4000$.",
		reply.Text)
}

func TestEngine_IdleTextPrompt(t *testing.T) {
	engine, _ := newTestEngine(t, &stubQuotes{})

	reply := engine.Input(context.Background(), chatID, "hello")
	require.Equal(t, "Choose an option from /menu", reply.Text)
}

func TestEngine_SessionsAreIndependent(t *testing.T) {
	engine, _ := newTestEngine(t, &stubQuotes{symbols: []string{"BTC"}})

	engine.BeginAdd(chatID)
	other := int64(7)
	engine.SelectSymbol(other, "ETH")

	require.Equal(t, StateAwaitingCount, engine.State(chatID))
	require.Equal(t, StateAwaitingBounds, engine.State(other))
}
