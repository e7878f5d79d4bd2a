package storage

import (
	"fmt"
	"time"

	"github.com/comporesano/curr-monitor-bot/pkg/core"
	"github.com/samber/lo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLStorage implements the core.WatchlistStorage interface using a SQL
// database via GORM. Save replaces the whole table inside a transaction
// to keep the whole-document overwrite semantics of the other backends.
type SQLStorage struct {
	db *gorm.DB
}

// FromSQLite creates a SQL storage backed by a local SQLite database
func FromSQLite(dbPath string, opts ...gorm.Option) (core.WatchlistStorage, error) {
	return FromSQL(sqlite.Open(dbPath), opts...)
}

// FromSQL creates a new SQL storage instance
func FromSQL(dialect gorm.Dialector, opts ...gorm.Option) (core.WatchlistStorage, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", core.ErrStorageUnavailable, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get database instance: %v", core.ErrStorageUnavailable, err)
	}

	// Configure connection pooling parameters
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&core.WatchEntry{}); err != nil {
		return nil, fmt.Errorf("%w: failed to run migrations: %v", core.ErrStorageUnavailable, err)
	}

	return &SQLStorage{db: db}, nil
}

// Load reads every entry into a fresh watchlist
func (s *SQLStorage) Load() (core.Watchlist, error) {
	var entries []core.WatchEntry

	result := s.db.Find(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: failed to fetch entries: %v", core.ErrStorageUnavailable, result.Error)
	}

	return lo.SliceToMap(entries, func(entry core.WatchEntry) (string, core.WatchEntry) {
		return entry.Symbol, entry
	}), nil
}

// Save replaces the whole table with the given watchlist
func (s *SQLStorage) Save(wl core.Watchlist) error {
	entries := lo.Map(wl.Symbols(), func(symbol string, _ int) core.WatchEntry {
		return wl[symbol]
	})

	err := s.db.Transaction(func(tx *gorm.DB) error {
		session := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := session.Delete(&core.WatchEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
	if err != nil {
		return fmt.Errorf("%w: failed to save watchlist: %v", core.ErrStorageUnavailable, err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
