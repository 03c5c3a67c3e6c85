package quiz

// TopicScore is the per-topic breakdown of a scored session.
type TopicScore struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

type Result struct {
	Total   int     `json:"total"`
	Correct int     `json:"correct"`
	Percent float64 `json:"percent"`
	Passed  bool    `json:"passed"`
	// PassMark is zero when the session carries no pass or fail verdict.
	PassMark int                   `json:"pass_mark,omitempty"`
	Topics   map[string]TopicScore `json:"topics"`
}

// Score compares the option at each recorded index against the correct
// answer. Unanswered questions count towards the total as wrong.
func Score(questions []Question, answers map[int]int) Result {
	result := Result{
		Total:  len(questions),
		Topics: make(map[string]TopicScore),
	}

	for _, question := range questions {
		topic := result.Topics[question.Topic]
		topic.Total++

		if index, ok := answers[question.ID]; ok && question.IsCorrect(index) {
			topic.Correct++
			result.Correct++
		}
		result.Topics[question.Topic] = topic
	}

	if result.Total > 0 {
		result.Percent = float64(result.Correct) * 100 / float64(result.Total)
	}
	return result
}

// WithPassMark applies a pass or fail verdict against mark correct answers.
func (r Result) WithPassMark(mark int) Result {
	r.PassMark = mark
	r.Passed = r.Correct >= mark
	return r
}
