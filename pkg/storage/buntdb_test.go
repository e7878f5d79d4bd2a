package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comporesano/curr-monitor-bot/pkg/core"
)

func TestBuntStorage_FreshDocumentIsEmpty(t *testing.T) {
	store, err := FromMemory()
	require.NoError(t, err)
	defer store.Close()

	wl, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, wl)
}

func TestBuntStorage_SaveLoad(t *testing.T) {
	store, err := FromMemory()
	require.NoError(t, err)
	defer store.Close()

	wl := core.Watchlist{
		"BTC": {Symbol: "BTC", Down: 10000, Up: 60000},
	}
	require.NoError(t, store.Save(wl))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, wl, loaded)

	// Save overwrites the whole document
	require.NoError(t, store.Save(core.Watchlist{}))

	loaded, err = store.Load()
	require.NoError(t, err)
	require.Empty(t, loaded)
}
