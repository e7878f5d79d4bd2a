// Package watchlist owns all access to the persisted watchlist.
package watchlist

import (
	"fmt"
	"sync"

	"github.com/comporesano/curr-monitor-bot/pkg/core"
)

// Book serializes every load-modify-save sequence against the backing
// storage. It is the single owner of the persisted document: poll cycles
// and dialog mutations all pass through its lock, so no interleaving can
// lose a write.
type Book struct {
	mu      sync.Mutex
	storage core.WatchlistStorage
}

func NewBook(storage core.WatchlistStorage) *Book {
	return &Book{storage: storage}
}

// Snapshot returns the current persisted watchlist
func (b *Book) Snapshot() (core.Watchlist, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.storage.Load()
}

// Upsert inserts or replaces one entry. The persisted state is re-read
// first so earlier writes are never lost.
func (b *Book) Upsert(entry core.WatchEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	wl, err := b.storage.Load()
	if err != nil {
		return err
	}

	wl[entry.Symbol] = entry
	return b.storage.Save(wl)
}

// Remove deletes one symbol. Removing a symbol that is not monitored is
// reported, not silently ignored.
func (b *Book) Remove(symbol string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	wl, err := b.storage.Load()
	if err != nil {
		return err
	}

	if _, ok := wl[symbol]; !ok {
		return fmt.Errorf("%w: %s", core.ErrNotFound, symbol)
	}

	delete(wl, symbol)
	return b.storage.Save(wl)
}
