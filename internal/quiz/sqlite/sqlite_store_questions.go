package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"civic-apps/internal/quiz"
)

type questionRow struct {
	ID            int    `db:"id"`
	Topic         string `db:"topic"`
	Question      string `db:"question"`
	Options       string `db:"options"`
	CorrectAnswer string `db:"correct_answer"`
	Explanation   string `db:"explanation"`
}

const insertQuestion = `INSERT INTO questions (id, topic, question, options, correct_answer, explanation)
	VALUES (:id, :topic, :question, :options, :correct_answer, :explanation)`

func toRow(question quiz.Question) (questionRow, error) {
	options, err := json.Marshal(question.Options)
	if err != nil {
		return questionRow{}, err
	}
	return questionRow{
		ID:            question.ID,
		Topic:         question.Topic,
		Question:      question.Question,
		Options:       string(options),
		CorrectAnswer: question.CorrectAnswer,
		Explanation:   question.Explanation,
	}, nil
}

func (r questionRow) toQuestion() (quiz.Question, error) {
	var options []string
	if err := json.Unmarshal([]byte(r.Options), &options); err != nil {
		return quiz.Question{}, fmt.Errorf("question %d options: %w", r.ID, err)
	}
	return quiz.Question{
		ID:            r.ID,
		Topic:         r.Topic,
		Question:      r.Question,
		Options:       options,
		CorrectAnswer: r.CorrectAnswer,
		Explanation:   r.Explanation,
	}, nil
}

func toQuestions(rows []questionRow) ([]quiz.Question, error) {
	questions := make([]quiz.Question, 0, len(rows))
	for _, row := range rows {
		question, err := row.toQuestion()
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, nil
}

// ReplaceAll swaps the whole question bank in one transaction.
func (s *Store) ReplaceAll(ctx context.Context, questions []quiz.Question) (int, error) {
	if err := validateAll(questions); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions`); err != nil {
		return 0, err
	}
	for _, question := range questions {
		if err := insertRow(ctx, tx, insertQuestion, question); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(questions), nil
}

// AddNew inserts questions whose IDs are not yet stored and reports how many
// were added. Existing rows are left as they are.
func (s *Store) AddNew(ctx context.Context, questions []quiz.Question) (int, error) {
	if err := validateAll(questions); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	added := 0
	for _, question := range questions {
		row, err := toRow(question)
		if err != nil {
			return 0, err
		}
		result, err := tx.NamedExecContext(ctx, insertQuestion+` ON CONFLICT (id) DO NOTHING`, row)
		if err != nil {
			return 0, fmt.Errorf("insert question %d: %w", question.ID, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, err
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

func insertRow(ctx context.Context, tx *sqlx.Tx, query string, question quiz.Question) error {
	row, err := toRow(question)
	if err != nil {
		return err
	}
	if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("insert question %d: %w", question.ID, err)
	}
	return nil
}

func validateAll(questions []quiz.Question) error {
	seen := make(map[int]bool, len(questions))
	for _, question := range questions {
		if err := question.Validate(); err != nil {
			return err
		}
		if seen[question.ID] {
			return fmt.Errorf("%w: duplicate id %d", quiz.ErrInvalidQuestion, question.ID)
		}
		seen[question.ID] = true
	}
	return nil
}

// Questions returns the whole bank ordered by ID.
func (s *Store) Questions(ctx context.Context) ([]quiz.Question, error) {
	var rows []questionRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, topic, question, options, correct_answer, explanation FROM questions ORDER BY id`); err != nil {
		return nil, err
	}
	return toQuestions(rows)
}

// MaxID is the highest stored question ID, or 0 for an empty bank.
func (s *Store) MaxID(ctx context.Context) (int, error) {
	var maxID int
	if err := s.db.GetContext(ctx, &maxID, `SELECT COALESCE(MAX(id), 0) FROM questions`); err != nil {
		return 0, err
	}
	return maxID, nil
}

func (s *Store) TopicCounts(ctx context.Context) ([]quiz.TopicInfo, error) {
	var topics []quiz.TopicInfo
	err := s.db.SelectContext(ctx, &topics, `SELECT topic AS name, COUNT(*) AS count FROM questions GROUP BY topic ORDER BY topic`)
	if err != nil {
		return nil, err
	}
	if topics == nil {
		topics = []quiz.TopicInfo{}
	}
	return topics, nil
}

// RandomQuestions draws up to limit questions in random order, restricted
// to topic when it is non-empty.
func (s *Store) RandomQuestions(ctx context.Context, topic string, limit int) ([]quiz.Question, error) {
	if limit <= 0 {
		limit = quiz.MockTestSize
	}

	query := `SELECT id, topic, question, options, correct_answer, explanation FROM questions`
	args := []any{}
	if topic = strings.TrimSpace(topic); topic != "" {
		query += ` WHERE topic = ?`
		args = append(args, topic)
	}
	query += ` ORDER BY RANDOM() LIMIT ?`
	args = append(args, limit)

	var rows []questionRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return toQuestions(rows)
}

func (s *Store) Index(ctx context.Context) (quiz.Index, error) {
	topics, err := s.TopicCounts(ctx)
	if err != nil {
		return quiz.Index{}, err
	}
	return quiz.Index{
		Topics: topics,
		Tests:  []quiz.TestInfo{{ID: quiz.DynamicTestID}},
	}, nil
}

func (s *Store) TopicQuestions(ctx context.Context, topic string, limit int) ([]quiz.Question, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, quiz.ErrNoQuestions
	}
	return s.nonEmpty(s.RandomQuestions(ctx, topic, limit))
}

func (s *Store) TestQuestions(ctx context.Context, limit int) ([]quiz.Question, error) {
	return s.nonEmpty(s.RandomQuestions(ctx, "", limit))
}

func (s *Store) nonEmpty(questions []quiz.Question, err error) ([]quiz.Question, error) {
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, quiz.ErrNoQuestions
	}
	return questions, nil
}
