/*
Package activity records training runs and model queries in the background.

Events are queued without blocking the caller and flushed in batches to the
storage activity log. A full queue drops events rather than stalling queries.
*/
package activity

import (
	"time"

	"github.com/google/uuid"
	"github.com/khanglvm/supply-intel/internal/storage"
)

// Event is one activity log entry. Exactly one of Run or Query is set.
type Event struct {
	Run   *storage.TrainingRun
	Query *storage.QueryRecord
}

// NewTrainingEvent creates an event for a finished training run.
func NewTrainingEvent(model string, records int, duration time.Duration, err error) Event {
	run := storage.TrainingRun{
		RunID:     uuid.NewString(),
		Model:     model,
		Records:   records,
		Duration:  duration,
		Success:   err == nil,
		Timestamp: time.Now(),
	}
	if err != nil {
		run.Error = err.Error()
	}
	return Event{Run: &run}
}

// NewQueryEvent creates an event for a model query. The raw input is hashed.
func NewQueryEvent(operation, input string, results int, ready bool) Event {
	return Event{Query: &storage.QueryRecord{
		QueryID:      uuid.NewString(),
		Operation:    operation,
		QueryHash:    storage.HashQuery(input),
		ResultsCount: results,
		Ready:        ready,
		Timestamp:    time.Now(),
	}}
}
