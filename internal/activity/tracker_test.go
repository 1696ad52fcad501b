package activity

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/khanglvm/supply-intel/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStorage struct {
	mu      sync.Mutex
	runs    []storage.TrainingRun
	queries []storage.QueryRecord
	initErr error
}

func (m *mockStorage) Init() error { return m.initErr }

func (m *mockStorage) RecordTrainingRun(run storage.TrainingRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *mockStorage) RecentTrainingRuns(model string, limit int) ([]storage.TrainingRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]storage.TrainingRun(nil), m.runs...), nil
}

func (m *mockStorage) RecordQuery(q storage.QueryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	return nil
}

func (m *mockStorage) QueryCounts(since time.Time) ([]storage.QueryCount, error) {
	return nil, nil
}

func (m *mockStorage) Cleanup(retention time.Duration) error { return nil }

func (m *mockStorage) Close() error { return nil }

func (m *mockStorage) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs), len(m.queries)
}

func TestTracker_TrackAndFlush(t *testing.T) {
	store := &mockStorage{}
	tracker := NewTracker(store, nil)

	tracker.Track(NewTrainingEvent("similarity", 4, time.Millisecond, nil))
	tracker.Track(NewQueryEvent("recommend", "steel castings", 3, true))

	require.Eventually(t, func() bool {
		runs, queries := store.counts()
		return runs == 1 && queries == 1
	}, time.Second, 10*time.Millisecond)

	tracker.Stop()
}

func TestTracker_StopDrains(t *testing.T) {
	store := &mockStorage{}
	tracker := NewTracker(store, nil)

	for i := 0; i < 25; i++ {
		tracker.Track(NewQueryEvent("forecast", "", 1, true))
	}
	tracker.Stop()

	_, queries := store.counts()
	assert.Equal(t, 25, queries)

	// Stop is idempotent
	assert.NotPanics(t, tracker.Stop)
}

func TestTracker_InitFailureDisables(t *testing.T) {
	store := &mockStorage{initErr: errors.New("disk full")}
	tracker := NewTracker(store, nil)
	defer tracker.Stop()

	assert.False(t, tracker.IsEnabled())
	tracker.Track(NewTrainingEvent("forecast", 1, 0, nil))
	assert.Equal(t, 0, tracker.QueueSize())
}

func TestTracker_Disable(t *testing.T) {
	store := &mockStorage{}
	tracker := NewTracker(store, nil)

	tracker.Disable()
	tracker.Track(NewTrainingEvent("forecast", 1, 0, nil))
	tracker.Enable()
	tracker.Track(NewTrainingEvent("forecast", 2, 0, nil))
	tracker.Stop()

	runs, _ := store.counts()
	assert.Equal(t, 1, runs)
}

func TestTracker_Nil(t *testing.T) {
	var tracker *Tracker
	assert.NotPanics(t, func() {
		tracker.Track(NewQueryEvent("score", "", 0, true))
		tracker.Stop()
	})
}

func TestNewTrainingEvent(t *testing.T) {
	ok := NewTrainingEvent("forecast", 10, time.Second, nil)
	require.NotNil(t, ok.Run)
	assert.True(t, ok.Run.Success)
	assert.Len(t, ok.Run.RunID, 36)

	failed := NewTrainingEvent("forecast", 10, time.Second, errors.New("context canceled"))
	assert.False(t, failed.Run.Success)
	assert.Equal(t, "context canceled", failed.Run.Error)
}

func TestNewQueryEvent(t *testing.T) {
	e := NewQueryEvent("recommend", "buyer text", 5, false)
	require.NotNil(t, e.Query)
	assert.Nil(t, e.Run)
	assert.Equal(t, storage.HashQuery("buyer text"), e.Query.QueryHash)
	assert.False(t, e.Query.Ready)
}

func TestTracker_WithSQLite(t *testing.T) {
	store := storage.NewStorage(t.TempDir()+"/activity.db", nil)
	tracker := NewTracker(store, nil)

	tracker.Track(NewTrainingEvent("similarity", 7, 3*time.Millisecond, nil))
	tracker.Stop()
	defer store.Close()

	runs, err := store.RecentTrainingRuns("similarity", 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 7, runs[0].Records)
}
