// Package storage provides persistence backends for the watchlist
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/comporesano/curr-monitor-bot/pkg/core"
)

// watchDocument is the on-disk shape: a single JSON object with one
// "data" field mapping symbols to their bounds, both numeric-as-string.
type watchDocument struct {
	Data map[string]documentBounds `json:"data"`
}

type documentBounds struct {
	Down string `json:"down"`
	Up   string `json:"up"`
}

// FileStorage implements core.WatchlistStorage over a single JSON
// document, read whole and overwritten whole on every operation.
type FileStorage struct {
	path string
}

// FromFile creates a file-based watchlist storage
func FromFile(path string) (core.WatchlistStorage, error) {
	return &FileStorage{path: path}, nil
}

// Bootstrap writes an empty document when none exists yet, so the first
// Load of a fresh installation succeeds.
func (f *FileStorage) Bootstrap() error {
	if _, err := os.Stat(f.path); err == nil {
		return nil
	}
	return f.Save(core.Watchlist{})
}

// Load reads and parses the whole document
func (f *FileStorage) Load() (core.Watchlist, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStorageUnavailable, err)
	}

	var doc watchDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: malformed document: %v", core.ErrStorageUnavailable, err)
	}

	wl := make(core.Watchlist, len(doc.Data))
	for symbol, bounds := range doc.Data {
		down, err := strconv.ParseFloat(bounds.Down, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad down value for %s: %v", core.ErrStorageUnavailable, symbol, err)
		}

		up, err := strconv.ParseFloat(bounds.Up, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad up value for %s: %v", core.ErrStorageUnavailable, symbol, err)
		}

		wl[symbol] = core.WatchEntry{Symbol: symbol, Down: down, Up: up}
	}

	return wl, nil
}

// Save overwrites the whole document
func (f *FileStorage) Save(wl core.Watchlist) error {
	doc := watchDocument{Data: make(map[string]documentBounds, len(wl))}
	for symbol, entry := range wl {
		doc.Data[symbol] = documentBounds{
			Down: formatBound(entry.Down),
			Up:   formatBound(entry.Up),
		}
	}

	content, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrStorageUnavailable, err)
	}

	if err := os.WriteFile(f.path, content, 0o644); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStorageUnavailable, err)
	}

	return nil
}

// Close is a no-op for the file backend
func (f *FileStorage) Close() error {
	return nil
}

// formatBound renders a bound with the shortest exact representation, so
// a loaded document saves back byte-identical.
func formatBound(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
