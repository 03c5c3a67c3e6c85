package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"sync"
)

// MemorySource serves questions from a slice held in memory.
type MemorySource struct {
	questions []Question

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMemorySource(questions []Question, rng *rand.Rand) *MemorySource {
	if rng == nil {
		rng = newRand()
	}
	return &MemorySource{questions: questions, rng: rng}
}

// LoadMemorySource decodes a JSON array of questions. Invalid questions
// fail the load.
func LoadMemorySource(r io.Reader, rng *rand.Rand) (*MemorySource, error) {
	var questions []Question
	if err := json.NewDecoder(r).Decode(&questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	for _, question := range questions {
		if err := question.Validate(); err != nil {
			return nil, err
		}
	}
	return NewMemorySource(questions, rng), nil
}

func (m *MemorySource) Index(context.Context) (Index, error) {
	return Index{
		Topics: CountTopics(m.questions),
		Tests:  []TestInfo{{ID: DynamicTestID}},
	}, nil
}

func (m *MemorySource) TopicQuestions(_ context.Context, topic string, limit int) ([]Question, error) {
	if topic == "" {
		return nil, ErrNoQuestions
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Sample(m.rng, m.questions, topic, limit)
}

func (m *MemorySource) TestQuestions(_ context.Context, limit int) ([]Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Sample(m.rng, m.questions, "", limit)
}

// All returns every question held by the source.
func (m *MemorySource) All() []Question {
	out := make([]Question, len(m.questions))
	copy(out, m.questions)
	return out
}
