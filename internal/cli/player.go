// Package cli plays quiz sessions in a terminal.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"civic-apps/internal/quiz"
)

const defaultWarnAt = 5 * time.Minute

type Config struct {
	Mode  quiz.Mode
	Topic string
	// TickInterval is how often the countdown checks the clock.
	TickInterval time.Duration
	// WarnAt prints a one-off warning when this much time is left.
	WarnAt time.Duration
}

type command int

const (
	cmdAnswer command = iota
	cmdBack
	cmdNext
	cmdFinish
	cmdInvalid
)

// Play runs one session from start to finish. Input is read line by line:
// an option letter answers, "back" and "next" move between questions and
// "finish" scores the session. The session also finishes when input ends or
// the countdown expires.
func Play(ctx context.Context, service *quiz.Service, in io.Reader, out io.Writer, cfg Config) (quiz.Record, error) {
	session, err := start(ctx, service, cfg)
	if err != nil {
		return quiz.Record{}, err
	}

	warnAt := cfg.WarnAt
	if warnAt <= 0 {
		warnAt = defaultWarnAt
	}

	expired := make(chan struct{})
	ticks := make(chan time.Duration, 1)
	if session.Timed() {
		countdown := quiz.StartCountdown(session.Remaining(time.Now()), cfg.TickInterval,
			func(remaining time.Duration) {
				select {
				case ticks <- remaining:
				default:
				}
			},
			func() { close(expired) },
		)
		defer countdown.Stop()
		fmt.Fprintf(out, "Mock test: %d questions, %s allowed, pass mark %d.\n",
			len(session.Questions), formatDuration(session.Remaining(time.Now())), quiz.PassMark)
	} else {
		fmt.Fprintf(out, "Topic practice: %s, %d questions.\n", session.Topic, len(session.Questions))
	}

	done := make(chan struct{})
	defer close(done)
	lines := readLines(in, done)
	warned := false
	reason := quiz.FinishCompleted

	printQuestion(out, session)
loop:
	for {
		select {
		case <-ctx.Done():
			reason = quiz.FinishAbandoned
			break loop
		case <-expired:
			fmt.Fprintln(out, "\nTime is up!")
			reason = quiz.FinishExpired
			break loop
		case remaining := <-ticks:
			if !warned && remaining <= warnAt {
				warned = true
				fmt.Fprintf(out, "\n%s remaining.\n", formatDuration(remaining))
			}
		case line, ok := <-lines:
			if !ok {
				reason = quiz.FinishAbandoned
				break loop
			}

			question, _ := session.CurrentQuestion()
			cmd, index := parseInput(line, len(question.Options))
			switch cmd {
			case cmdAnswer:
				if session, err = session.AnswerCurrent(index); err != nil {
					return quiz.Record{}, err
				}
				if session.IsLast() {
					fmt.Fprintf(out, "Answered %d of %d. Enter finish to score, or back to review.\n",
						session.AnsweredCount(), len(session.Questions))
					continue
				}
				session = session.Next()
			case cmdBack:
				session = session.Prev()
			case cmdNext:
				session = session.Next()
			case cmdFinish:
				break loop
			default:
				fmt.Fprintf(out, "Invalid input. Enter a letter A-%c, back, next or finish.\n", maxLetter(len(question.Options)))
				continue
			}
			printQuestion(out, session)
		}
	}

	record, err := service.Finish(context.WithoutCancel(ctx), session, reason)
	if record.ID == "" {
		return record, err
	}
	printResult(out, session, record)
	if err == nil && reason == quiz.FinishAbandoned && ctx.Err() != nil {
		err = ctx.Err()
	}
	return record, err
}

func start(ctx context.Context, service *quiz.Service, cfg Config) (quiz.Session, error) {
	switch cfg.Mode {
	case quiz.ModeTest:
		return service.StartMockTest(ctx)
	case quiz.ModeTopic, "":
		if strings.TrimSpace(cfg.Topic) == "" {
			return quiz.Session{}, errors.New("a topic is required for topic practice")
		}
		return service.StartTopicPractice(ctx, cfg.Topic)
	default:
		return quiz.Session{}, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}

// readLines feeds input lines into a channel so the main loop can also
// watch the countdown. The channel is closed at end of input; closing done
// stops delivery.
func readLines(in io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return lines
}

// parseInput maps a line to a command. A single letter answers; the
// navigation words have one-character aliases that cannot clash with an
// option letter.
func parseInput(line string, optionCount int) (command, int) {
	input := strings.ToUpper(strings.TrimSpace(line))
	switch input {
	case "BACK", "<":
		return cmdBack, -1
	case "NEXT", ">":
		return cmdNext, -1
	case "FINISH", "!":
		return cmdFinish, -1
	}

	if len(input) == 1 && optionCount > 0 && input[0] >= 'A' && input[0] <= maxLetter(optionCount) {
		return cmdAnswer, int(input[0] - 'A')
	}
	return cmdInvalid, -1
}

func maxLetter(optionCount int) byte {
	return byte('A' + optionCount - 1)
}
