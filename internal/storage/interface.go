/*
Package storage implements the persistent activity log.

This package provides SQLite-based storage for training runs and model queries
with graceful degradation if the database is unavailable: a storage that
failed to initialize turns every operation into a no-op instead of failing
the caller.

The database defaults to ~/.supply-intel/activity.db and uses modernc.org/sqlite
(a pure Go, CGo-free implementation).
*/
package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Storage defines the interface for persistent activity operations.
type Storage interface {
	// Init initializes the database and runs migrations.
	Init() error

	// RecordTrainingRun records a finished training run.
	RecordTrainingRun(run TrainingRun) error

	// RecentTrainingRuns returns the latest runs, newest first. An empty model matches all.
	RecentTrainingRuns(model string, limit int) ([]TrainingRun, error)

	// RecordQuery records a model query for analytics.
	RecordQuery(query QueryRecord) error

	// QueryCounts aggregates queries per operation since a given time.
	QueryCounts(since time.Time) ([]QueryCount, error)

	// Cleanup removes old records based on retention policy.
	Cleanup(retention time.Duration) error

	// Close closes the database connection.
	Close() error
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	logger   *zap.Logger
	mu       sync.Mutex
	initOnce sync.Once
}

// DefaultPath returns ~/.supply-intel/activity.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".supply-intel", "activity.db"), nil
}

// NewStorage creates a new SQLite storage instance at dbPath.
//
// An empty dbPath resolves to DefaultPath. If the directory doesn't exist, it
// will be created by Init. If the database cannot be opened, the storage will
// be disabled but operations will not fail.
func NewStorage(dbPath string, logger *zap.Logger) *SQLiteStorage {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dbPath == "" {
		p, err := DefaultPath()
		if err != nil {
			logger.Warn("activity log disabled", zap.Error(err))
			return &SQLiteStorage{enabled: false, logger: logger}
		}
		dbPath = p
	}

	return &SQLiteStorage{
		dbPath:  dbPath,
		enabled: true,
		logger:  logger,
	}
}

// Disabled returns a storage on which every operation is a no-op.
func Disabled() *SQLiteStorage {
	return &SQLiteStorage{enabled: false, logger: zap.NewNop()}
}

// Enabled reports whether the database is usable.
func (s *SQLiteStorage) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled && s.db != nil
}

// Init initializes the database and runs migrations.
//
// If initialization fails, storage is disabled and subsequent operations
// become no-ops (graceful degradation).
func (s *SQLiteStorage) Init() error {
	if !s.enabled {
		return nil
	}

	var initErr error
	s.initOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		disable := func(err error) {
			initErr = err
			s.enabled = false
			if s.db != nil {
				s.db.Close()
				s.db = nil
			}
			s.logger.Warn("activity log disabled", zap.String("path", s.dbPath), zap.Error(err))
		}

		// Ensure directory exists
		dbDir := filepath.Dir(s.dbPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			disable(fmt.Errorf("failed to create db directory: %w", err))
			return
		}

		// Open database
		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			disable(fmt.Errorf("failed to open database: %w", err))
			return
		}
		s.db = db

		// Test connection
		if err := db.Ping(); err != nil {
			disable(fmt.Errorf("failed to ping database: %w", err))
			return
		}

		// Run migrations
		if err := s.runMigrations(); err != nil {
			disable(fmt.Errorf("failed to run migrations: %w", err))
			return
		}
	})

	return initErr
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}

// HashQuery creates a SHA256 hash of a query string for privacy.
func HashQuery(query string) string {
	hash := sha256.Sum256([]byte(query))
	return hex.EncodeToString(hash[:])
}
