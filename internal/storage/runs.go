package storage

import (
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// RecordTrainingRun records a finished training run.
func (s *SQLiteStorage) RecordTrainingRun(run TrainingRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return nil
	}

	success := 0
	if run.Success {
		success = 1
	}

	query := `
		INSERT INTO training_runs (run_id, model, records, duration_ns, success, error, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		run.RunID,
		run.Model,
		run.Records,
		int64(run.Duration),
		success,
		nullString(run.Error),
		run.Timestamp.UnixNano(),
	)

	if err != nil {
		s.logger.Warn("failed to record training run", zap.String("run_id", run.RunID), zap.Error(err))
	}

	return nil
}

// RecentTrainingRuns returns the latest runs, newest first.
func (s *SQLiteStorage) RecentTrainingRuns(model string, limit int) ([]TrainingRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return []TrainingRun{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT run_id, model, records, duration_ns, success, error, timestamp
		FROM training_runs
		WHERE (? = '' OR model = ?)
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, model, model, limit)
	if err != nil {
		s.logger.Warn("failed to query training runs", zap.Error(err))
		return []TrainingRun{}, nil
	}
	defer rows.Close()

	runs := []TrainingRun{}
	for rows.Next() {
		var run TrainingRun
		var durationNs, timestampNs int64
		var success int
		var errMsg sql.NullString

		if err := rows.Scan(
			&run.RunID,
			&run.Model,
			&run.Records,
			&durationNs,
			&success,
			&errMsg,
			&timestampNs,
		); err != nil {
			s.logger.Warn("failed to scan training run row", zap.Error(err))
			continue
		}

		run.Duration = time.Duration(durationNs)
		run.Success = success == 1
		run.Error = errMsg.String
		run.Timestamp = time.Unix(0, timestampNs)

		runs = append(runs, run)
	}

	return runs, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
