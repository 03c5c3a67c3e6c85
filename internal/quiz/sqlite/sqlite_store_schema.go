package sqlite

import (
	"context"
)

func (s *Store) initSchema(ctx context.Context) error {
	// Options and per-topic scores are JSON text so the same schema runs on
	// SQLite and PostgreSQL.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY,
			topic TEXT NOT NULL,
			question TEXT NOT NULL,
			options TEXT NOT NULL,
			correct_answer TEXT NOT NULL,
			explanation TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			topic TEXT NOT NULL DEFAULT '',
			total INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			percent DOUBLE PRECISION NOT NULL,
			passed INTEGER NOT NULL,
			pass_mark INTEGER NOT NULL,
			topics TEXT NOT NULL,
			reason TEXT NOT NULL,
			started_at_unix BIGINT NOT NULL,
			finished_at_unix BIGINT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_questions_topic ON questions(topic);`,
		`CREATE INDEX IF NOT EXISTS idx_results_finished_at ON results(finished_at_unix DESC);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
