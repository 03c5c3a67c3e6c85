package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-apps/internal/quiz"
)

type scriptedCompleter struct {
	answers []string
	errs    []error
	prompts []string
}

func (s *scriptedCompleter) Complete(_ context.Context, prompt string) (string, error) {
	i := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.answers) {
		return s.answers[i], nil
	}
	return "[]", nil
}

func batchJSON(n int, fenced bool) string {
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(`{"id": 1, "topic": "History", "question": "Q%d", "options": ["a","b","c","d"], "correctAnswer": "c", "explanation": "e"}`, i))
	}
	body := "[" + strings.Join(items, ",") + "]"
	if fenced {
		return "```json\n" + body + "\n```"
	}
	return body
}

func TestParseBatchStripsFenceAndRenumbers(t *testing.T) {
	raw := "```json\n" + `[
		{"id": 7, "topic": " History ", "question": "Q1", "options": ["a","b"], "correctAnswer": "a"},
		{"id": 8, "topic": "History", "question": "Q2", "options": ["a","b"], "correctAnswer": "nope"},
		{"id": 9, "topic": "History", "question": "Q3", "options": ["a","b"], "correctAnswer": "b"}
	]` + "\n```"

	questions, rejected, err := ParseBatch(raw, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, rejected)
	require.Len(t, questions, 2)
	assert.Equal(t, 1000, questions[0].ID)
	assert.Equal(t, "History", questions[0].Topic)
	assert.Equal(t, 1001, questions[1].ID)
	assert.Equal(t, "Q3", questions[1].Question)
}

func TestParseBatchRejectsGarbage(t *testing.T) {
	_, _, err := ParseBatch("Sorry, I cannot help with that.", 1)
	assert.Error(t, err)
}

func TestSplitText(t *testing.T) {
	assert.Nil(t, SplitText("   ", 10))
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, SplitText("abcdefghij", 4))
	assert.Equal(t, []string{"££", "£"}, SplitText("£££", 2))
}

func TestNextID(t *testing.T) {
	assert.Equal(t, DefaultStartID, NextID(nil))
	assert.Equal(t, 43, NextID([]quiz.Question{{ID: 5}, {ID: 42}, {ID: 17}}))
}

func TestGenerateStopsAtTarget(t *testing.T) {
	completer := &scriptedCompleter{answers: []string{batchJSON(20, true), batchJSON(20, false), batchJSON(20, false)}}
	gen := New(completer, Config{ChunkSize: 5, BatchSize: 20, Target: 30}, nil)

	var batches []int
	questions, err := gen.Generate(context.Background(), strings.Repeat("x", 50), 2000, func(batch []quiz.Question) error {
		batches = append(batches, len(batch))
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, questions, 30)
	assert.Equal(t, []int{20, 10}, batches)
	assert.Len(t, completer.prompts, 2)
	assert.Contains(t, completer.prompts[1], "generate exactly 10 unique")
	assert.Contains(t, completer.prompts[1], "starting from 2020")
	assert.Equal(t, 2000, questions[0].ID)
	assert.Equal(t, 2029, questions[29].ID)
}

func TestGenerateSkipsFailedBatches(t *testing.T) {
	completer := &scriptedCompleter{
		errs:    []error{errors.New("rate limited")},
		answers: []string{"", "not json", batchJSON(3, false)},
	}
	gen := New(completer, Config{ChunkSize: 10, BatchSize: 5, Target: 5}, nil)

	questions, err := gen.Generate(context.Background(), strings.Repeat("y", 30), 1, nil)
	require.NoError(t, err)
	assert.Len(t, completer.prompts, 3)
	assert.Len(t, questions, 3)
	assert.Equal(t, 1, questions[0].ID)
}

func TestGenerateStopsOnCallbackError(t *testing.T) {
	completer := &scriptedCompleter{answers: []string{batchJSON(2, false), batchJSON(2, false)}}
	gen := New(completer, Config{ChunkSize: 1, BatchSize: 2, Target: 10}, nil)

	saveErr := errors.New("disk full")
	questions, err := gen.Generate(context.Background(), "abc", 1, func([]quiz.Question) error { return saveErr })
	assert.ErrorIs(t, err, saveErr)
	assert.Len(t, questions, 2)
}

func TestGenerateEmptyText(t *testing.T) {
	gen := New(&scriptedCompleter{}, Config{}, nil)
	_, err := gen.Generate(context.Background(), "", 1, nil)
	assert.Error(t, err)
}
