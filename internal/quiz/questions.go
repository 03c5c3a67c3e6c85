package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

const (
	TopicPracticeSize = 10
	MockTestSize      = 24

	// PassFraction of MockTestSize must be answered correctly to pass.
	PassFraction = 0.75
	PassMark     = 18
)

var (
	ErrNoQuestions     = errors.New("no questions available")
	ErrInvalidQuestion = errors.New("invalid question")
)

// Question is one multiple-choice item. CorrectAnswer holds the option
// value, not its index, so options can be reordered freely.
type Question struct {
	ID            int      `json:"id"`
	Topic         string   `json:"topic"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

func (q Question) Validate() error {
	switch {
	case q.ID <= 0:
		return fmt.Errorf("%w: id must be positive", ErrInvalidQuestion)
	case strings.TrimSpace(q.Topic) == "":
		return fmt.Errorf("%w %d: missing topic", ErrInvalidQuestion, q.ID)
	case strings.TrimSpace(q.Question) == "":
		return fmt.Errorf("%w %d: missing question text", ErrInvalidQuestion, q.ID)
	case len(q.Options) < 2:
		return fmt.Errorf("%w %d: needs at least two options", ErrInvalidQuestion, q.ID)
	}
	for _, option := range q.Options {
		if option == q.CorrectAnswer {
			return nil
		}
	}
	return fmt.Errorf("%w %d: correct answer %q is not an option", ErrInvalidQuestion, q.ID, q.CorrectAnswer)
}

// IsCorrect reports whether the option at index is the correct answer.
func (q Question) IsCorrect(index int) bool {
	if index < 0 || index >= len(q.Options) {
		return false
	}
	return q.Options[index] == q.CorrectAnswer
}

// Sample draws up to size questions from pool without repetition, keeping
// only those in topic when topic is non-empty. The pool is not modified.
// A non-positive size returns the whole permuted pool.
func Sample(rng *rand.Rand, pool []Question, topic string, size int) ([]Question, error) {
	candidates := make([]Question, 0, len(pool))
	for _, question := range pool {
		if topic == "" || strings.EqualFold(question.Topic, topic) {
			candidates = append(candidates, question)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoQuestions
	}

	for i := len(candidates) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}

	if size > 0 && size < len(candidates) {
		candidates = candidates[:size]
	}
	return candidates, nil
}

// ShuffleOptions returns q with its options in a new random order.
func ShuffleOptions(rng *rand.Rand, q Question) Question {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	q.Options = options
	return q
}

// CountTopics tallies questions per topic, sorted by name.
func CountTopics(questions []Question) []TopicInfo {
	counts := make(map[string]int)
	for _, question := range questions {
		counts[question.Topic]++
	}

	topics := make([]TopicInfo, 0, len(counts))
	for name, count := range counts {
		topics = append(topics, TopicInfo{Name: name, Count: count})
	}
	sort.Slice(topics, func(i, j int) bool {
		return topics[i].Name < topics[j].Name
	})
	return topics
}
