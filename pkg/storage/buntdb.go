package storage

import (
	"encoding/json"
	"fmt"

	"github.com/comporesano/curr-monitor-bot/pkg/core"
	"github.com/tidwall/buntdb"
)

// documentKey is the single key the whole watchlist document lives under
const documentKey = "watchlist"

// BuntStorage implements the core.WatchlistStorage interface using
// BuntDB. The watchlist stays a whole document under one key, so the
// load/save contract matches the file backend.
type BuntStorage struct {
	db *buntdb.DB
}

// FromMemory creates an in-memory storage
func FromMemory() (core.WatchlistStorage, error) {
	return NewBuntStorage(":memory:")
}

// NewBuntStorage creates a new BuntDB storage instance
func NewBuntStorage(sourceFile string) (core.WatchlistStorage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open buntdb: %v", core.ErrStorageUnavailable, err)
	}

	// Seed an empty document so the first load succeeds
	err = db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Get(documentKey)
		if err == buntdb.ErrNotFound {
			_, _, err = tx.Set(documentKey, "{}", nil)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to seed document: %v", core.ErrStorageUnavailable, err)
	}

	return &BuntStorage{db: db}, nil
}

// Load reads and parses the whole document
func (b *BuntStorage) Load() (core.Watchlist, error) {
	var wl core.Watchlist

	err := b.db.View(func(tx *buntdb.Tx) error {
		value, err := tx.Get(documentKey)
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(value), &wl)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStorageUnavailable, err)
	}

	if wl == nil {
		wl = core.Watchlist{}
	}

	return wl, nil
}

// Save overwrites the whole document
func (b *BuntStorage) Save(wl core.Watchlist) error {
	content, err := json.Marshal(wl)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal watchlist: %v", core.ErrStorageUnavailable, err)
	}

	err = b.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(documentKey, string(content), nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrStorageUnavailable, err)
	}

	return nil
}

// Close closes the database connection
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
