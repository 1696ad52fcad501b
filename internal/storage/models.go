package storage

import "time"

// TrainingRun represents a single model training run.
type TrainingRun struct {
	// RunID is a unique identifier for this run (UUID).
	RunID string `json:"run_id"`

	// Model is the trained model ("similarity" or "forecast").
	Model string `json:"model"`

	// Records is the number of input records.
	Records int `json:"records"`

	// Duration is the wall time spent training.
	Duration time.Duration `json:"duration"`

	// Success is false when training failed or was cancelled.
	Success bool `json:"success"`

	// Error holds the failure message, if any.
	Error string `json:"error,omitempty"`

	// Timestamp is when the run finished.
	Timestamp time.Time `json:"timestamp"`
}

// QueryRecord represents a model query for analytics.
type QueryRecord struct {
	// QueryID is a unique identifier for this query (UUID).
	QueryID string `json:"query_id"`

	// Operation is the service operation, e.g. "recommend" or "forecast".
	Operation string `json:"operation"`

	// QueryHash is the SHA256 hash of the query input for privacy.
	QueryHash string `json:"query_hash"`

	// ResultsCount is the number of results returned.
	ResultsCount int `json:"results_count"`

	// Ready is false when the query hit an untrained model.
	Ready bool `json:"ready"`

	// Timestamp is when the query was performed.
	Timestamp time.Time `json:"timestamp"`
}

// QueryCount is an aggregate over the query log.
type QueryCount struct {
	Operation string `json:"operation"`
	Total     int    `json:"total"`
	NotReady  int    `json:"not_ready"`
}
