package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"civic-apps/internal/quiz"
	"civic-apps/internal/web"
)

const maxQuestionLimit = 200

var errInvalidRecord = errors.New("invalid result record")

func writeServiceError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, quiz.ErrNoQuestions):
		web.WriteError(w, http.StatusNotFound, notFound)
	case errors.Is(err, errInvalidRecord):
		web.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		web.WriteError(w, http.StatusInternalServerError, "request failed")
	}
}

func parseIntParam(r *http.Request, key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return min(parsed, maxQuestionLimit), nil
}

// validateRecord checks a posted result for internal consistency. The
// server fills in what the client left out.
func validateRecord(record quiz.Record) error {
	if record.Mode != quiz.ModeTopic && record.Mode != quiz.ModeTest {
		return fmt.Errorf("%w: mode must be topic or test", errInvalidRecord)
	}
	if record.Total <= 0 || record.Correct < 0 || record.Correct > record.Total {
		return fmt.Errorf("%w: correct must be between 0 and total", errInvalidRecord)
	}
	if !record.FinishedAt.IsZero() && record.FinishedAt.Before(record.StartedAt) {
		return fmt.Errorf("%w: finished_at is before started_at", errInvalidRecord)
	}
	return nil
}
