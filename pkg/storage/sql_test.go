package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comporesano/curr-monitor-bot/pkg/core"
)

func newSQLStorage(t *testing.T) core.WatchlistStorage {
	t.Helper()

	store, err := FromSQLite(filepath.Join(t.TempDir(), "watchlist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLStorage_FreshTableIsEmpty(t *testing.T) {
	store := newSQLStorage(t)

	wl, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, wl)
}

func TestSQLStorage_SaveLoad(t *testing.T) {
	store := newSQLStorage(t)

	wl := core.Watchlist{
		"BTC": {Symbol: "BTC", Down: 10000, Up: 60000},
		"ETH": {Symbol: "ETH", Down: 1000, Up: 4000},
	}
	require.NoError(t, store.Save(wl))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, wl, loaded)
}

func TestSQLStorage_SaveOverwritesWholeTable(t *testing.T) {
	store := newSQLStorage(t)

	require.NoError(t, store.Save(core.Watchlist{
		"BTC": {Symbol: "BTC", Down: 10000, Up: 60000},
		"ETH": {Symbol: "ETH", Down: 1000, Up: 4000},
	}))

	// Every save replaces the whole table, like the other backends
	require.NoError(t, store.Save(core.Watchlist{
		"BTC": {Symbol: "BTC", Down: 20000, Up: 70000},
	}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, core.Watchlist{
		"BTC": {Symbol: "BTC", Down: 20000, Up: 70000},
	}, loaded)

	require.NoError(t, store.Save(core.Watchlist{}))

	loaded, err = store.Load()
	require.NoError(t, err)
	require.Empty(t, loaded)
}
