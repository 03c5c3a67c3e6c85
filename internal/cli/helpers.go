package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"civic-apps/internal/quiz"
	"civic-apps/internal/quiz/rest"
)

func printQuestion(out io.Writer, session quiz.Session) {
	question, ok := session.CurrentQuestion()
	if !ok {
		return
	}

	fmt.Fprintln(out)
	header := fmt.Sprintf("Q%d/%d [%s]", session.Current+1, len(session.Questions), question.Topic)
	if session.Timed() {
		header += fmt.Sprintf(" (%s left)", formatDuration(session.Remaining(time.Now())))
	}
	fmt.Fprintln(out, header)
	fmt.Fprintf(out, "%s\n\n", question.Question)

	selected, answered := session.Selected(question.ID)
	for i, option := range question.Options {
		marker := " "
		if answered && selected == i {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %c. %s\n", marker, 'A'+i, option)
	}
	fmt.Fprintf(out, "\nYour answer (A-%c): ", maxLetter(len(question.Options)))
}

func printResult(out io.Writer, session quiz.Session, record quiz.Record) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Score: %d/%d (%.1f%%)\n", record.Correct, record.Total, record.Percent)
	if record.PassMark > 0 {
		verdict := "FAIL"
		if record.Passed {
			verdict = "PASS"
		}
		fmt.Fprintf(out, "Result: %s (pass mark %d)\n", verdict, record.PassMark)
	}

	topics := make([]string, 0, len(record.Topics))
	for topic := range record.Topics {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	if len(topics) > 1 {
		fmt.Fprintln(out, "\nBy topic:")
		for _, topic := range topics {
			score := record.Topics[topic]
			fmt.Fprintf(out, "  %-30s %d/%d\n", topic, score.Correct, score.Total)
		}
	}

	var missed []quiz.Question
	for _, question := range session.Questions {
		index, ok := session.Answers[question.ID]
		if !ok || !question.IsCorrect(index) {
			missed = append(missed, question)
		}
	}
	if len(missed) == 0 {
		return
	}
	fmt.Fprintln(out, "\nReview:")
	for _, question := range missed {
		fmt.Fprintf(out, "- %s\n  Correct answer: %s\n", question.Question, question.CorrectAnswer)
		if strings.TrimSpace(question.Explanation) != "" {
			fmt.Fprintf(out, "  %s\n", question.Explanation)
		}
	}
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d/time.Minute), int(d%time.Minute/time.Second))
}

// DescribeSourceError turns a transport failure from the REST source into
// a message naming the server.
func DescribeSourceError(err error, serverURL string) error {
	switch {
	case errors.Is(err, rest.ErrServiceUnavailable):
		return fmt.Errorf("quiz service unavailable at %s", serverURL)
	case errors.Is(err, quiz.ErrNoQuestions):
		return errors.New("no questions available for that selection")
	default:
		return err
	}
}
