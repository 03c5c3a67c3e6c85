package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"civic-apps/internal/quiz"
	"civic-apps/internal/quiz/chunks"
)

// QuestionLister is the part of the question store the rotation reads.
type QuestionLister interface {
	Questions(ctx context.Context) ([]quiz.Question, error)
}

// Resetter drops cached chunks after the files on disk change.
type Resetter interface {
	Reset()
}

// TestRotation rebuilds the pre-built test chunks in Dir from the full
// question bank, then resets the cache that serves them.
type TestRotation struct {
	Store  QuestionLister
	Dir    string
	Key    []byte
	Tests  int
	Cache  Resetter
	Rand   *rand.Rand
	Logger *zap.Logger

	mu sync.Mutex
}

// Run satisfies Job.
func (t *TestRotation) Run(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	questions, err := t.Store.Questions(ctx)
	if err != nil {
		return fmt.Errorf("load question bank: %w", err)
	}
	if len(questions) == 0 {
		return quiz.ErrNoQuestions
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if t.Rand == nil {
		t.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	index, err := chunks.BuildTests(t.Dir, questions, t.Key, t.Tests, t.Rand)
	if err != nil {
		return fmt.Errorf("rebuild tests: %w", err)
	}
	if t.Cache != nil {
		t.Cache.Reset()
	}
	if t.Logger != nil {
		t.Logger.Info("tests rotated",
			zap.Int("tests", len(index.Tests)),
			zap.Int("questions", len(questions)))
	}
	return nil
}
