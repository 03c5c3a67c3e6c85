package scheduler

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-apps/internal/quiz"
	"civic-apps/internal/quiz/chunks"
)

func TestRotatorRunsImmediatelyOnStart(t *testing.T) {
	var calls atomic.Int32
	rotator := New(time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, nil)
	assert.True(t, rotator.LastRun().IsZero())

	before := time.Now()
	require.NoError(t, rotator.Start())
	defer rotator.Stop()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, rotator.Start(), ErrAlreadyStarted)

	runs, failures, lastErr := rotator.Stats()
	assert.Equal(t, 1, runs)
	assert.Zero(t, failures)
	assert.NoError(t, lastErr)
	assert.False(t, rotator.LastRun().Before(before))
}

func TestRotatorRejectsNonPositiveInterval(t *testing.T) {
	rotator := New(0, func(context.Context) error { return nil }, nil)
	defer rotator.Stop()
	assert.Error(t, rotator.Start())
}

func TestRotatorRunNowRecordsFailures(t *testing.T) {
	boom := errors.New("boom")
	fail := true
	rotator := New(time.Hour, func(context.Context) error {
		if fail {
			return boom
		}
		return nil
	}, nil)
	defer rotator.Stop()

	assert.ErrorIs(t, rotator.RunNow(context.Background()), boom)
	fail = false
	assert.NoError(t, rotator.RunNow(context.Background()))

	runs, failures, lastErr := rotator.Stats()
	assert.Equal(t, 2, runs)
	assert.Equal(t, 1, failures)
	assert.NoError(t, lastErr)
}

func TestRotatorStopCancelsJobContext(t *testing.T) {
	entered := make(chan struct{})
	var once sync.Once
	rotator := New(time.Hour, func(ctx context.Context) error {
		once.Do(func() { close(entered) })
		<-ctx.Done()
		return ctx.Err()
	}, nil)

	require.NoError(t, rotator.Start())
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not start")
	}

	rotator.Stop()
	require.Eventually(t, func() bool {
		_, failures, _ := rotator.Stats()
		return failures == 1
	}, 2*time.Second, 10*time.Millisecond)
	_, _, lastErr := rotator.Stats()
	assert.ErrorIs(t, lastErr, context.Canceled)
}

type fakeLister struct {
	questions []quiz.Question
	err       error
}

func (f fakeLister) Questions(context.Context) ([]quiz.Question, error) {
	return f.questions, f.err
}

type countingResetter struct {
	resets int
}

func (c *countingResetter) Reset() { c.resets++ }

func bank(n int) []quiz.Question {
	questions := make([]quiz.Question, 0, n)
	for i := 1; i <= n; i++ {
		topic := "History"
		if i%2 == 0 {
			topic = "Law"
		}
		questions = append(questions, quiz.Question{
			ID:            i,
			Topic:         topic,
			Question:      "Q?",
			Options:       []string{"a", "b", "c"},
			CorrectAnswer: "c",
		})
	}
	return questions
}

func TestTestRotationRebuildsTests(t *testing.T) {
	dir := t.TempDir()
	key := []byte("0123456789abcdef0123456789abcdef")
	questions := bank(40)

	_, err := chunks.Build(dir, questions, key, 2, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	cache := &countingResetter{}
	rotation := &TestRotation{
		Store: fakeLister{questions: questions},
		Dir:   dir,
		Key:   key,
		Tests: 5,
		Cache: cache,
		Rand:  rand.New(rand.NewSource(2)),
	}
	require.NoError(t, rotation.Run(context.Background()))
	assert.Equal(t, 1, cache.resets)

	index, err := chunks.ReadIndex(dir)
	require.NoError(t, err)
	assert.Len(t, index.Tests, 5)
	assert.Len(t, index.Topics, 2, "topic chunks are kept")

	source := chunks.NewDirSource(dir, key, rand.New(rand.NewSource(3)), nil)
	test, err := source.TestQuestions(context.Background(), quiz.MockTestSize)
	require.NoError(t, err)
	assert.Len(t, test, quiz.MockTestSize)
}

func TestTestRotationFailures(t *testing.T) {
	dir := t.TempDir()
	key := []byte("0123456789abcdef0123456789abcdef")

	rotation := &TestRotation{Store: fakeLister{}, Dir: dir, Key: key}
	assert.ErrorIs(t, rotation.Run(context.Background()), quiz.ErrNoQuestions)

	rotation.Store = fakeLister{err: errors.New("db locked")}
	assert.ErrorContains(t, rotation.Run(context.Background()), "db locked")

	rotation.Store = fakeLister{questions: bank(30)}
	assert.Error(t, rotation.Run(context.Background()), "missing index.json")
}
