package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"civic-apps/internal/quiz"
)

const defaultResultsLimit = 50

type resultRow struct {
	ID             string  `db:"id"`
	Mode           string  `db:"mode"`
	Topic          string  `db:"topic"`
	Total          int     `db:"total"`
	Correct        int     `db:"correct"`
	Percent        float64 `db:"percent"`
	Passed         int     `db:"passed"`
	PassMark       int     `db:"pass_mark"`
	Topics         string  `db:"topics"`
	Reason         string  `db:"reason"`
	StartedAtUnix  int64   `db:"started_at_unix"`
	FinishedAtUnix int64   `db:"finished_at_unix"`
}

func (s *Store) SaveResult(ctx context.Context, record quiz.Record) error {
	if record.ID == "" {
		return errors.New("result id is required")
	}

	topics, err := json.Marshal(record.Topics)
	if err != nil {
		return err
	}
	passed := 0
	if record.Passed {
		passed = 1
	}

	row := resultRow{
		ID:             record.ID,
		Mode:           string(record.Mode),
		Topic:          record.Topic,
		Total:          record.Total,
		Correct:        record.Correct,
		Percent:        record.Percent,
		Passed:         passed,
		PassMark:       record.PassMark,
		Topics:         string(topics),
		Reason:         string(record.Reason),
		StartedAtUnix:  record.StartedAt.UnixNano(),
		FinishedAtUnix: record.FinishedAt.UnixNano(),
	}

	_, err = s.db.NamedExecContext(ctx,
		`INSERT INTO results (id, mode, topic, total, correct, percent, passed, pass_mark, topics, reason, started_at_unix, finished_at_unix)
		 VALUES (:id, :mode, :topic, :total, :correct, :percent, :passed, :pass_mark, :topics, :reason, :started_at_unix, :finished_at_unix)`,
		row)
	if err != nil {
		return fmt.Errorf("insert result %s: %w", record.ID, err)
	}
	return nil
}

// Results returns up to limit records, most recently finished first.
func (s *Store) Results(ctx context.Context, limit int) ([]quiz.Record, error) {
	if limit <= 0 {
		limit = defaultResultsLimit
	}

	var rows []resultRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(
		`SELECT id, mode, topic, total, correct, percent, passed, pass_mark, topics, reason, started_at_unix, finished_at_unix
		 FROM results ORDER BY finished_at_unix DESC, id LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}

	records := make([]quiz.Record, 0, len(rows))
	for _, row := range rows {
		topics := map[string]quiz.TopicScore{}
		if err := json.Unmarshal([]byte(row.Topics), &topics); err != nil {
			return nil, fmt.Errorf("result %s topics: %w", row.ID, err)
		}
		records = append(records, quiz.Record{
			ID:    row.ID,
			Mode:  quiz.Mode(row.Mode),
			Topic: row.Topic,
			Result: quiz.Result{
				Total:    row.Total,
				Correct:  row.Correct,
				Percent:  row.Percent,
				Passed:   row.Passed != 0,
				PassMark: row.PassMark,
				Topics:   topics,
			},
			Reason:     quiz.FinishReason(row.Reason),
			StartedAt:  time.Unix(0, row.StartedAtUnix).UTC(),
			FinishedAt: time.Unix(0, row.FinishedAtUnix).UTC(),
		})
	}
	return records, nil
}
