package quiz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Source supplies questions to the quiz service. Implementations: the
// in-memory MemorySource, the encrypted chunk set in quiz/chunks, the REST
// client in quiz/rest and the SQL store in quiz/sqlite.
type Source interface {
	Index(ctx context.Context) (Index, error)
	// TopicQuestions returns up to limit random questions from topic, or
	// ErrNoQuestions when the topic is empty or unknown.
	TopicQuestions(ctx context.Context, topic string, limit int) ([]Question, error)
	TestQuestions(ctx context.Context, limit int) ([]Question, error)
}

// ResultStore persists finished sessions.
type ResultStore interface {
	SaveResult(ctx context.Context, record Record) error
	Results(ctx context.Context, limit int) ([]Record, error)
}

// Index lists what a source can serve.
type Index struct {
	Topics []TopicInfo `json:"topics"`
	Tests  []TestInfo  `json:"tests"`
}

type TopicInfo struct {
	Name  string `json:"name"`
	File  string `json:"file,omitempty"`
	Count int    `json:"count"`
}

type TestInfo struct {
	ID   TestID `json:"id"`
	File string `json:"file,omitempty"`
}

// DynamicTestID marks a test sampled on request rather than pre-built.
const DynamicTestID TestID = "dynamic"

// TestID is a pre-built test number or a name such as "dynamic". Numeric
// IDs are written as JSON numbers.
type TestID string

func (id TestID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.Atoi(string(id)); err == nil {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(string(id))
}

func (id *TestID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TestID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("test id: %w", err)
	}
	*id = TestID(n.String())
	return nil
}

type FinishReason string

const (
	FinishCompleted FinishReason = "completed"
	FinishExpired   FinishReason = "expired"
	FinishAbandoned FinishReason = "abandoned"
)

// Record is a finished session as stored by a ResultStore.
type Record struct {
	ID    string `json:"id"`
	Mode  Mode   `json:"mode"`
	Topic string `json:"topic,omitempty"`
	Result
	Reason     FinishReason `json:"reason"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

func (r Record) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
