package storage

import (
	"time"

	"go.uber.org/zap"
)

// RecordQuery records a model query for analytics.
func (s *SQLiteStorage) RecordQuery(q QueryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return nil
	}

	ready := 0
	if q.Ready {
		ready = 1
	}

	query := `
		INSERT INTO query_log (query_id, operation, query_hash, results_count, ready, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		q.QueryID,
		q.Operation,
		q.QueryHash,
		q.ResultsCount,
		ready,
		q.Timestamp.UnixNano(),
	)

	if err != nil {
		s.logger.Warn("failed to record query", zap.String("operation", q.Operation), zap.Error(err))
	}

	return nil
}

// QueryCounts aggregates queries per operation since a given time, ordered by operation.
func (s *SQLiteStorage) QueryCounts(since time.Time) ([]QueryCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return []QueryCount{}, nil
	}

	query := `
		SELECT operation, COUNT(*), SUM(CASE WHEN ready = 0 THEN 1 ELSE 0 END)
		FROM query_log
		WHERE timestamp >= ?
		GROUP BY operation
		ORDER BY operation
	`

	rows, err := s.db.Query(query, since.UnixNano())
	if err != nil {
		s.logger.Warn("failed to query query counts", zap.Error(err))
		return []QueryCount{}, nil
	}
	defer rows.Close()

	counts := []QueryCount{}
	for rows.Next() {
		var c QueryCount
		if err := rows.Scan(&c.Operation, &c.Total, &c.NotReady); err != nil {
			s.logger.Warn("failed to scan query count row", zap.Error(err))
			continue
		}
		counts = append(counts, c)
	}

	return counts, nil
}

// Cleanup removes old records based on retention policy.
func (s *SQLiteStorage) Cleanup(retention time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil || retention <= 0 {
		return nil
	}

	cutoff := time.Now().Add(-retention).UnixNano()

	if _, err := s.db.Exec("DELETE FROM training_runs WHERE timestamp < ?", cutoff); err != nil {
		s.logger.Warn("failed to cleanup training_runs", zap.Error(err))
	}

	if _, err := s.db.Exec("DELETE FROM query_log WHERE timestamp < ?", cutoff); err != nil {
		s.logger.Warn("failed to cleanup query_log", zap.Error(err))
	}

	// Vacuum to reclaim space
	if _, err := s.db.Exec("VACUUM"); err != nil {
		s.logger.Warn("failed to vacuum database", zap.Error(err))
	}

	return nil
}
