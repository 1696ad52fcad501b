package storage

import (
	"fmt"

	"go.uber.org/zap"
)

// migration represents a single database migration.
type migration struct {
	version int
	name    string
	up      func() error
}

// runMigrations executes database schema migrations. Callers hold s.mu.
func (s *SQLiteStorage) runMigrations() error {
	if s.db == nil {
		return nil
	}

	if err := s.createMigrationsTable(); err != nil {
		return err
	}

	version, err := s.getCurrentMigrationVersion()
	if err != nil {
		return err
	}

	// Run migrations in order
	migrations := []migration{
		{version: 1, name: "initial_schema", up: s.migration001InitialSchema},
		{version: 2, name: "query_operation_index", up: s.migration002QueryOperationIndex},
	}

	for _, m := range migrations {
		if version < m.version {
			s.logger.Debug("running migration", zap.Int("version", m.version), zap.String("name", m.name))
			if err := m.up(); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
			if err := s.setMigrationVersion(m.version, m.name); err != nil {
				return err
			}
		}
	}

	return nil
}

// createMigrationsTable creates the schema_migrations table.
func (s *SQLiteStorage) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`
	_, err := s.db.Exec(query)
	return err
}

// getCurrentMigrationVersion returns the highest applied migration version.
func (s *SQLiteStorage) getCurrentMigrationVersion() (int, error) {
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")

	var version int
	if err := row.Scan(&version); err != nil {
		return 0, err
	}

	return version, nil
}

// setMigrationVersion records a migration as applied.
func (s *SQLiteStorage) setMigrationVersion(version int, name string) error {
	_, err := s.db.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", version, name)
	return err
}

// migration001InitialSchema creates the training_runs and query_log tables.
// Timestamps are stored as unix nanoseconds so ordering is numeric.
func (s *SQLiteStorage) migration001InitialSchema() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS training_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			model TEXT NOT NULL,
			records INTEGER NOT NULL,
			duration_ns INTEGER NOT NULL,
			success INTEGER NOT NULL,
			error TEXT,
			timestamp INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create training_runs table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_training_runs_model_timestamp
		ON training_runs(model, timestamp DESC)
	`); err != nil {
		return fmt.Errorf("failed to create training_runs index: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS query_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query_id TEXT NOT NULL UNIQUE,
			operation TEXT NOT NULL,
			query_hash TEXT NOT NULL,
			results_count INTEGER NOT NULL,
			ready INTEGER NOT NULL,
			timestamp INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create query_log table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_query_log_timestamp
		ON query_log(timestamp DESC)
	`); err != nil {
		return fmt.Errorf("failed to create query_log timestamp index: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) migration002QueryOperationIndex() error {
	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_query_log_operation
		ON query_log(operation)
	`); err != nil {
		return fmt.Errorf("failed to create query_log operation index: %w", err)
	}
	return nil
}
