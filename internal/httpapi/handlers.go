package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"civic-apps/internal/quiz"
	"civic-apps/internal/web"
)

const (
	defaultResultsLimit = 50
	maxResultBodyBytes  = 1 << 20
)

func (a *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		web.MethodNotAllowed(w, http.MethodGet)
		return
	}
	web.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (a *API) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		web.MethodNotAllowed(w, http.MethodGet)
		return
	}

	index, err := a.source.Index(r.Context())
	if err != nil {
		a.logger.Error("load index", zap.Error(err))
		writeServiceError(w, err, "index not available")
		return
	}
	// Chunk file names stay server side.
	for i := range index.Topics {
		index.Topics[i].File = ""
	}
	if index.Topics == nil {
		index.Topics = []quiz.TopicInfo{}
	}
	if len(index.Tests) == 0 {
		index.Tests = []quiz.TestInfo{{ID: quiz.DynamicTestID}}
	}
	web.WriteJSON(w, http.StatusOK, index)
}

func (a *API) HandleTopicQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		web.MethodNotAllowed(w, http.MethodGet)
		return
	}

	limit, err := parseIntParam(r, "limit", quiz.TopicPracticeSize)
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	topic := strings.TrimSpace(r.PathValue("topic_name"))

	questions, err := a.source.TopicQuestions(r.Context(), topic, limit)
	if err == nil && len(questions) == 0 {
		err = quiz.ErrNoQuestions
	}
	if err != nil {
		writeServiceError(w, err, "Topic not found or empty")
		return
	}
	web.WriteJSON(w, http.StatusOK, questions)
}

func (a *API) HandleTestQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		web.MethodNotAllowed(w, http.MethodGet)
		return
	}

	limit, err := parseIntParam(r, "limit", quiz.MockTestSize)
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	questions, err := a.source.TestQuestions(r.Context(), limit)
	if err == nil && len(questions) == 0 {
		err = quiz.ErrNoQuestions
	}
	if err != nil {
		writeServiceError(w, err, "No questions available")
		return
	}
	web.WriteJSON(w, http.StatusOK, questions)
}

func (a *API) HandleResults(w http.ResponseWriter, r *http.Request) {
	if a.results == nil {
		web.WriteError(w, http.StatusServiceUnavailable, "result storage is not configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.listResults(w, r)
	case http.MethodPost:
		a.saveResult(w, r)
	default:
		web.MethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listResults(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r, "limit", defaultResultsLimit)
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := a.results.Results(r.Context(), limit)
	if err != nil {
		a.logger.Error("list results", zap.Error(err))
		writeServiceError(w, err, "")
		return
	}
	if records == nil {
		records = []quiz.Record{}
	}
	web.WriteJSON(w, http.StatusOK, records)
}

func (a *API) saveResult(w http.ResponseWriter, r *http.Request) {
	var record quiz.Record
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxResultBodyBytes))
	if err := decoder.Decode(&record); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validateRecord(record); err != nil {
		writeServiceError(w, err, "")
		return
	}

	if strings.TrimSpace(record.ID) == "" {
		record.ID = uuid.NewString()
	}
	if record.FinishedAt.IsZero() {
		record.FinishedAt = a.now().UTC()
	}
	if record.StartedAt.IsZero() {
		record.StartedAt = record.FinishedAt
	}
	if record.Reason == "" {
		record.Reason = quiz.FinishCompleted
	}
	if record.Percent == 0 && record.Correct > 0 {
		record.Percent = float64(record.Correct) * 100 / float64(record.Total)
	}

	if err := a.results.SaveResult(r.Context(), record); err != nil {
		a.logger.Error("save result", zap.String("result_id", record.ID), zap.Error(err))
		writeServiceError(w, err, "")
		return
	}
	web.WriteJSON(w, http.StatusCreated, saveResultResponse{ID: record.ID})
}
