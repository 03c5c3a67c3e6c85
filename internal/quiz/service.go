package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTestDuration is the time allowed for a mock test.
const DefaultTestDuration = 45 * time.Minute

type ServiceConfig struct {
	TestDuration time.Duration
	// Rand and Now are replaced in tests.
	Rand *rand.Rand
	Now  func() time.Time
}

// Service starts and finishes quiz sessions against a Source. Sessions are
// values owned by the caller; the service keeps no per-session state.
type Service struct {
	source       Source
	results      ResultStore
	logger       *zap.Logger
	testDuration time.Duration
	now          func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService builds a service. results may be nil when finished sessions
// are not persisted.
func NewService(source Source, results ResultStore, cfg ServiceConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TestDuration <= 0 {
		cfg.TestDuration = DefaultTestDuration
	}
	if cfg.Rand == nil {
		cfg.Rand = newRand()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		source:       source,
		results:      results,
		logger:       logger,
		testDuration: cfg.TestDuration,
		now:          cfg.Now,
		rng:          cfg.Rand,
	}
}

func (s *Service) Index(ctx context.Context) (Index, error) {
	return s.source.Index(ctx)
}

// StartTopicPractice samples TopicPracticeSize questions from topic.
// Practice sessions are untimed.
func (s *Service) StartTopicPractice(ctx context.Context, topic string) (Session, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Session{}, ErrNoQuestions
	}

	pool, err := s.source.TopicQuestions(ctx, topic, TopicPracticeSize)
	if err != nil {
		return Session{}, fmt.Errorf("load topic %q: %w", topic, err)
	}
	return s.start(ModeTopic, topic, pool, TopicPracticeSize, 0)
}

// StartMockTest samples MockTestSize questions across all topics with a
// deadline of the configured test duration.
func (s *Service) StartMockTest(ctx context.Context) (Session, error) {
	pool, err := s.source.TestQuestions(ctx, MockTestSize)
	if err != nil {
		return Session{}, fmt.Errorf("load test: %w", err)
	}
	return s.start(ModeTest, "", pool, MockTestSize, s.testDuration)
}

func (s *Service) start(mode Mode, topic string, pool []Question, size int, duration time.Duration) (Session, error) {
	session := Session{
		ID:      uuid.NewString(),
		Mode:    mode,
		Topic:   topic,
		Answers: map[int]int{},
		Phase:   PhaseSampling,
	}

	s.mu.Lock()
	questions, err := Sample(s.rng, pool, "", size)
	if err == nil {
		for i := range questions {
			questions[i] = ShuffleOptions(s.rng, questions[i])
		}
	}
	s.mu.Unlock()
	if err != nil {
		return Session{}, err
	}

	session.Questions = questions
	session.StartedAt = s.now().UTC()
	if duration > 0 {
		session.Deadline = session.StartedAt.Add(duration)
	}
	session.Phase = PhaseInProgress

	s.logger.Info("quiz session started",
		zap.String("session_id", session.ID),
		zap.String("mode", string(mode)),
		zap.String("topic", topic),
		zap.Int("questions", len(questions)))
	return session, nil
}

// Finish scores the session and stores the result. A failed save is logged
// and returned alongside the record, which is still valid.
func (s *Service) Finish(ctx context.Context, session Session, reason FinishReason) (Record, error) {
	_, result, err := session.Score()
	if err != nil {
		return Record{}, err
	}
	if reason == "" {
		reason = FinishCompleted
	}

	record := Record{
		ID:         uuid.NewString(),
		Mode:       session.Mode,
		Topic:      session.Topic,
		Result:     result,
		Reason:     reason,
		StartedAt:  session.StartedAt,
		FinishedAt: s.now().UTC(),
	}

	s.logger.Info("quiz session finished",
		zap.String("session_id", session.ID),
		zap.String("reason", string(reason)),
		zap.Int("correct", result.Correct),
		zap.Int("total", result.Total),
		zap.Bool("passed", result.Passed))

	if s.results == nil {
		return record, nil
	}
	if err := s.results.SaveResult(ctx, record); err != nil {
		s.logger.Error("save quiz result", zap.String("record_id", record.ID), zap.Error(err))
		return record, fmt.Errorf("save result: %w", err)
	}
	return record, nil
}

// History returns stored results, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]Record, error) {
	if s.results == nil {
		return nil, errors.New("result store is not configured")
	}
	return s.results.Results(ctx, limit)
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
