package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
)

func makePool(topics map[string]int) []Question {
	var pool []Question
	id := 1
	for topic, count := range topics {
		for i := 0; i < count; i++ {
			pool = append(pool, Question{
				ID:            id,
				Topic:         topic,
				Question:      fmt.Sprintf("%s question %d", topic, i),
				Options:       []string{"alpha", "beta", "gamma", "delta"},
				CorrectAnswer: "gamma",
			})
			id++
		}
	}
	return pool
}

func TestSampleReturnsDistinctMinOfPoolAndSize(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pool := makePool(map[string]int{"History": 30})

	for _, tc := range []struct {
		size int
		want int
	}{
		{size: 10, want: 10},
		{size: 24, want: 24},
		{size: 30, want: 30},
		{size: 50, want: 30},
		{size: 0, want: 30},
	} {
		got, err := Sample(rng, pool, "", tc.size)
		if err != nil {
			t.Fatalf("Sample(size=%d) failed: %v", tc.size, err)
		}
		if len(got) != tc.want {
			t.Fatalf("Sample(size=%d) returned %d questions, want %d", tc.size, len(got), tc.want)
		}
		seen := make(map[int]bool, len(got))
		for _, question := range got {
			if seen[question.ID] {
				t.Fatalf("Sample(size=%d) returned duplicate id %d", tc.size, question.ID)
			}
			seen[question.ID] = true
		}
	}
}

func TestSampleFiltersByTopicAndLeavesPoolAlone(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	pool := makePool(map[string]int{"History": 5, "Government": 20})
	before := make([]int, len(pool))
	for i, question := range pool {
		before[i] = question.ID
	}

	got, err := Sample(rng, pool, "history", TopicPracticeSize)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected the 5 History questions, got %d", len(got))
	}
	for _, question := range got {
		if question.Topic != "History" {
			t.Fatalf("unexpected topic %q in sample", question.Topic)
		}
	}
	for i, question := range pool {
		if question.ID != before[i] {
			t.Fatalf("pool reordered at %d: got id %d, want %d", i, question.ID, before[i])
		}
	}
}

func TestSampleEmptyPool(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	if _, err := Sample(rng, nil, "", 10); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions for empty pool, got %v", err)
	}
	pool := makePool(map[string]int{"History": 3})
	if _, err := Sample(rng, pool, "Sport", 10); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions for unknown topic, got %v", err)
	}
}

func TestShuffleOptionsKeepsCorrectValue(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	original := Question{
		ID:            7,
		Topic:         "Values",
		Question:      "Which is correct?",
		Options:       []string{"one", "two", "three", "four"},
		CorrectAnswer: "three",
	}

	for i := 0; i < 50; i++ {
		shuffled := ShuffleOptions(rng, original)
		if shuffled.CorrectAnswer != "three" {
			t.Fatalf("correct answer changed to %q", shuffled.CorrectAnswer)
		}
		found := 0
		for idx := range shuffled.Options {
			if shuffled.IsCorrect(idx) {
				found++
			}
		}
		if found != 1 {
			t.Fatalf("expected exactly one correct option after shuffle, got %d in %v", found, shuffled.Options)
		}
	}
	if original.Options[2] != "three" {
		t.Fatalf("ShuffleOptions modified the input: %v", original.Options)
	}
}

func TestQuestionValidate(t *testing.T) {
	valid := Question{ID: 1, Topic: "History", Question: "Q?", Options: []string{"a", "b"}, CorrectAnswer: "b"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid question, got %v", err)
	}

	tests := map[string]Question{
		"zero id":        {Topic: "History", Question: "Q?", Options: []string{"a", "b"}, CorrectAnswer: "a"},
		"missing topic":  {ID: 1, Question: "Q?", Options: []string{"a", "b"}, CorrectAnswer: "a"},
		"missing text":   {ID: 1, Topic: "History", Options: []string{"a", "b"}, CorrectAnswer: "a"},
		"one option":     {ID: 1, Topic: "History", Question: "Q?", Options: []string{"a"}, CorrectAnswer: "a"},
		"answer missing": {ID: 1, Topic: "History", Question: "Q?", Options: []string{"a", "b"}, CorrectAnswer: "c"},
	}
	for name, question := range tests {
		if err := question.Validate(); !errors.Is(err, ErrInvalidQuestion) {
			t.Fatalf("%s: expected ErrInvalidQuestion, got %v", name, err)
		}
	}
}

func TestCountTopicsSorted(t *testing.T) {
	topics := CountTopics(makePool(map[string]int{"Values": 2, "History": 3}))
	if len(topics) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(topics))
	}
	if topics[0].Name != "History" || topics[0].Count != 3 || topics[1].Name != "Values" || topics[1].Count != 2 {
		t.Fatalf("unexpected topic counts: %+v", topics)
	}
}
