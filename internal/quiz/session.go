package quiz

import (
	"errors"
	"time"
)

type Mode string

const (
	ModeTopic Mode = "topic"
	ModeTest  Mode = "test"
)

// Phase tracks a session through idle, sampling, in-progress and scoring.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSampling   Phase = "sampling"
	PhaseInProgress Phase = "in-progress"
	PhaseScoring    Phase = "scoring"
)

var (
	ErrUnknownQuestion = errors.New("question is not part of this session")
	ErrInvalidOption   = errors.New("option index out of range")
	ErrSessionClosed   = errors.New("session is not in progress")
)

// Session is one run through a sampled set of questions. Methods never
// modify the receiver; they return the updated session.
type Session struct {
	ID        string
	Mode      Mode
	Topic     string
	Questions []Question
	// Answers maps question ID to the selected option index.
	Answers   map[int]int
	Current   int
	Phase     Phase
	StartedAt time.Time
	// Deadline is zero for untimed sessions.
	Deadline time.Time
}

// Answer records optionIndex for questionID, replacing any earlier choice.
func (s Session) Answer(questionID, optionIndex int) (Session, error) {
	if s.Phase != PhaseInProgress {
		return s, ErrSessionClosed
	}

	question, ok := s.question(questionID)
	if !ok {
		return s, ErrUnknownQuestion
	}
	if optionIndex < 0 || optionIndex >= len(question.Options) {
		return s, ErrInvalidOption
	}

	answers := make(map[int]int, len(s.Answers)+1)
	for id, index := range s.Answers {
		answers[id] = index
	}
	answers[questionID] = optionIndex
	s.Answers = answers
	return s, nil
}

// AnswerCurrent records optionIndex for the question under the cursor.
func (s Session) AnswerCurrent(optionIndex int) (Session, error) {
	question, ok := s.CurrentQuestion()
	if !ok {
		return s, ErrSessionClosed
	}
	return s.Answer(question.ID, optionIndex)
}

func (s Session) Next() Session {
	if s.Phase == PhaseInProgress && s.Current < len(s.Questions)-1 {
		s.Current++
	}
	return s
}

func (s Session) Prev() Session {
	if s.Phase == PhaseInProgress && s.Current > 0 {
		s.Current--
	}
	return s
}

func (s Session) CurrentQuestion() (Question, bool) {
	if s.Current < 0 || s.Current >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Current], true
}

// Selected returns the recorded option index for questionID.
func (s Session) Selected(questionID int) (int, bool) {
	index, ok := s.Answers[questionID]
	return index, ok
}

func (s Session) AnsweredCount() int {
	count := 0
	for _, question := range s.Questions {
		if _, ok := s.Answers[question.ID]; ok {
			count++
		}
	}
	return count
}

func (s Session) IsLast() bool {
	return s.Current >= len(s.Questions)-1
}

func (s Session) Timed() bool {
	return !s.Deadline.IsZero()
}

// Remaining is the time left before the deadline, never negative.
func (s Session) Remaining(now time.Time) time.Duration {
	if !s.Timed() {
		return 0
	}
	if left := s.Deadline.Sub(now); left > 0 {
		return left
	}
	return 0
}

func (s Session) Expired(now time.Time) bool {
	return s.Timed() && !now.Before(s.Deadline)
}

// Score moves the session to the scoring phase and grades it. Mock tests
// carry a pass or fail verdict; topic practice does not.
func (s Session) Score() (Session, Result, error) {
	if s.Phase != PhaseInProgress {
		return s, Result{}, ErrSessionClosed
	}

	s.Phase = PhaseScoring
	result := Score(s.Questions, s.Answers)
	if s.Mode == ModeTest {
		result = result.WithPassMark(PassMark)
	}
	return s, result, nil
}

func (s Session) question(id int) (Question, bool) {
	for _, question := range s.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}
