package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	storage := NewStorage(filepath.Join(t.TempDir(), "activity.db"), nil)
	if err := storage.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { storage.Close() })

	return storage
}

// TestInit verifies database initialization and schema creation.
func TestInit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "activity.db")

	storage := NewStorage(dbPath, nil)
	if err := storage.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer storage.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file not created")
	}

	if !storage.Enabled() {
		t.Error("Expected storage to be enabled after Init")
	}
}

// TestMigrationsIdempotent verifies reopening an existing database.
func TestMigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "activity.db")

	first := NewStorage(dbPath, nil)
	if err := first.Init(); err != nil {
		t.Fatalf("first Init failed: %v", err)
	}
	first.RecordTrainingRun(TrainingRun{RunID: uuid.NewString(), Model: "forecast", Records: 3, Success: true, Timestamp: time.Now()})
	first.Close()

	second := NewStorage(dbPath, nil)
	if err := second.Init(); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	defer second.Close()

	version, err := second.getCurrentMigrationVersion()
	if err != nil {
		t.Fatalf("getCurrentMigrationVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("Expected migration version 2, got %d", version)
	}

	runs, _ := second.RecentTrainingRuns("", 10)
	if len(runs) != 1 {
		t.Errorf("Expected 1 persisted run, got %d", len(runs))
	}
}

// TestRecordTrainingRun verifies recording and listing training runs.
func TestRecordTrainingRun(t *testing.T) {
	storage := newTestStorage(t)
	base := time.Now().Add(-time.Hour)

	for i, model := range []string{"similarity", "forecast", "similarity"} {
		run := TrainingRun{
			RunID:     uuid.NewString(),
			Model:     model,
			Records:   10 * (i + 1),
			Duration:  time.Duration(i+1) * time.Millisecond,
			Success:   true,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		if err := storage.RecordTrainingRun(run); err != nil {
			t.Fatalf("RecordTrainingRun failed: %v", err)
		}
	}

	storage.RecordTrainingRun(TrainingRun{
		RunID:     uuid.NewString(),
		Model:     "forecast",
		Success:   false,
		Error:     "context canceled",
		Timestamp: base.Add(10 * time.Minute),
	})

	runs, err := storage.RecentTrainingRuns("similarity", 10)
	if err != nil {
		t.Fatalf("RecentTrainingRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 similarity runs, got %d", len(runs))
	}
	if runs[0].Records != 30 {
		t.Errorf("Expected newest run first (30 records), got %d", runs[0].Records)
	}
	if runs[0].Duration != 3*time.Millisecond {
		t.Errorf("Expected duration 3ms, got %v", runs[0].Duration)
	}

	all, _ := storage.RecentTrainingRuns("", 2)
	if len(all) != 2 {
		t.Fatalf("Expected limit of 2, got %d", len(all))
	}
	if all[0].Success || all[0].Error != "context canceled" {
		t.Errorf("Expected failed run first, got %+v", all[0])
	}
}

// TestRecordQuery verifies query logging and aggregation.
func TestRecordQuery(t *testing.T) {
	storage := newTestStorage(t)
	now := time.Now()

	records := []QueryRecord{
		{Operation: "recommend", Ready: true, ResultsCount: 5},
		{Operation: "recommend", Ready: false},
		{Operation: "forecast", Ready: true, ResultsCount: 1},
	}
	for _, r := range records {
		r.QueryID = uuid.NewString()
		r.QueryHash = HashQuery(r.Operation)
		r.Timestamp = now
		if err := storage.RecordQuery(r); err != nil {
			t.Fatalf("RecordQuery failed: %v", err)
		}
	}

	// Outside the window
	storage.RecordQuery(QueryRecord{QueryID: uuid.NewString(), Operation: "forecast", Timestamp: now.Add(-48 * time.Hour)})

	counts, err := storage.QueryCounts(now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("QueryCounts failed: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("Expected 2 operations, got %d", len(counts))
	}
	if counts[0].Operation != "forecast" || counts[0].Total != 1 {
		t.Errorf("Unexpected forecast count: %+v", counts[0])
	}
	if counts[1].Operation != "recommend" || counts[1].Total != 2 || counts[1].NotReady != 1 {
		t.Errorf("Unexpected recommend count: %+v", counts[1])
	}
}

// TestCleanup verifies retention-based deletion.
func TestCleanup(t *testing.T) {
	storage := newTestStorage(t)
	now := time.Now()

	storage.RecordTrainingRun(TrainingRun{RunID: uuid.NewString(), Model: "forecast", Success: true, Timestamp: now.Add(-100 * 24 * time.Hour)})
	storage.RecordTrainingRun(TrainingRun{RunID: uuid.NewString(), Model: "forecast", Success: true, Timestamp: now})

	if err := storage.Cleanup(30 * 24 * time.Hour); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	runs, _ := storage.RecentTrainingRuns("forecast", 10)
	if len(runs) != 1 {
		t.Errorf("Expected 1 run after cleanup, got %d", len(runs))
	}
}

// TestHashQuery verifies query hashing consistency.
func TestHashQuery(t *testing.T) {
	query := "industrial fasteners wholesale"

	hash1 := HashQuery(query)
	hash2 := HashQuery(query)

	if hash1 != hash2 {
		t.Error("HashQuery produced inconsistent results")
	}

	if len(hash1) != 64 { // SHA256 hex = 64 chars
		t.Errorf("Expected hash length 64, got %d", len(hash1))
	}
}

// TestGracefulDegradation verifies behavior when DB is unavailable.
func TestGracefulDegradation(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	storage := NewStorage(filepath.Join(blocker, "activity.db"), nil)
	if err := storage.Init(); err == nil {
		t.Fatal("Expected Init to fail under a regular file")
	}
	if storage.Enabled() {
		t.Error("Expected storage to be disabled")
	}

	// Operations should not fail
	if err := storage.RecordTrainingRun(TrainingRun{RunID: "x", Model: "forecast"}); err != nil {
		t.Errorf("RecordTrainingRun should return nil on disabled storage, got: %v", err)
	}
	if err := storage.RecordQuery(QueryRecord{QueryID: "x"}); err != nil {
		t.Errorf("RecordQuery should return nil on disabled storage, got: %v", err)
	}

	runs, err := storage.RecentTrainingRuns("", 5)
	if err != nil || len(runs) != 0 {
		t.Errorf("Expected empty runs on disabled storage, got %d (%v)", len(runs), err)
	}

	if err := storage.Close(); err != nil {
		t.Errorf("Close should succeed on disabled storage, got: %v", err)
	}
}

// TestDisabled verifies the explicit no-op storage.
func TestDisabled(t *testing.T) {
	storage := Disabled()
	if err := storage.Init(); err != nil {
		t.Errorf("Init on disabled storage returned %v", err)
	}
	counts, err := storage.QueryCounts(time.Time{})
	if err != nil || len(counts) != 0 {
		t.Errorf("Expected no counts, got %d (%v)", len(counts), err)
	}
}
