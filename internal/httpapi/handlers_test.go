package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"civic-apps/internal/quiz"
)

type fakeResultStore struct {
	mu      sync.Mutex
	records []quiz.Record
	saveErr error
}

func (f *fakeResultStore) SaveResult(_ context.Context, record quiz.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeResultStore) Results(_ context.Context, limit int) ([]quiz.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]quiz.Record, 0, len(f.records))
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.records[i])
	}
	return out, nil
}

func makeQuestions(topic string, n, firstID int) []quiz.Question {
	questions := make([]quiz.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, quiz.Question{
			ID:            firstID + i,
			Topic:         topic,
			Question:      "Question?",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: "b",
		})
	}
	return questions
}

func newTestAPI(t *testing.T, store *fakeResultStore) http.Handler {
	t.Helper()
	pool := append(makeQuestions("History", 15, 1), makeQuestions("Law", 20, 100)...)
	source := quiz.NewMemorySource(pool, rand.New(rand.NewSource(7)))

	var results quiz.ResultStore
	if store != nil {
		results = store
	}
	return NewRouter(source, results, RouterConfig{}, nil)
}

func doRequest(handler http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, target, bytes.NewReader(body)))
	return rec
}

func decodeQuestions(t *testing.T, rec *httptest.ResponseRecorder) []quiz.Question {
	t.Helper()
	var questions []quiz.Question
	if err := json.Unmarshal(rec.Body.Bytes(), &questions); err != nil {
		t.Fatalf("decode questions %q: %v", rec.Body.String(), err)
	}
	return questions
}

func TestParseIntParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	if got, err := parseIntParam(req, "limit", 24); err != nil || got != 24 {
		t.Fatalf("default parseIntParam = (%d, %v), want (24, nil)", got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/test?limit=5", nil)
	if got, err := parseIntParam(req, "limit", 24); err != nil || got != 5 {
		t.Fatalf("valid parseIntParam = (%d, %v), want (5, nil)", got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/test?limit=100000", nil)
	if got, err := parseIntParam(req, "limit", 24); err != nil || got != maxQuestionLimit {
		t.Fatalf("large parseIntParam = (%d, %v), want (%d, nil)", got, err, maxQuestionLimit)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/test?limit=0", nil)
	if _, err := parseIntParam(req, "limit", 24); err == nil {
		t.Fatalf("expected error for non-positive limit")
	}
}

func TestHandleIndex(t *testing.T) {
	rec := doRequest(newTestAPI(t, nil), http.MethodGet, "/api/index", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var index quiz.Index
	if err := json.Unmarshal(rec.Body.Bytes(), &index); err != nil {
		t.Fatalf("decode index: %v", err)
	}
	want := quiz.Index{
		Topics: []quiz.TopicInfo{{Name: "History", Count: 15}, {Name: "Law", Count: 20}},
		Tests:  []quiz.TestInfo{{ID: quiz.DynamicTestID}},
	}
	if diff := cmp.Diff(want, index); diff != "" {
		t.Fatalf("index mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(rec.Body.String(), `"id":"dynamic"`) {
		t.Fatalf("body = %s, want dynamic test id", rec.Body.String())
	}
}

func TestHandleTopicQuestions(t *testing.T) {
	handler := newTestAPI(t, nil)

	rec := doRequest(handler, http.MethodGet, "/api/topics/History", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	questions := decodeQuestions(t, rec)
	if len(questions) != quiz.TopicPracticeSize {
		t.Fatalf("question count = %d, want %d", len(questions), quiz.TopicPracticeSize)
	}
	seen := make(map[int]bool)
	for _, question := range questions {
		if question.Topic != "History" {
			t.Fatalf("question %d has topic %q", question.ID, question.Topic)
		}
		if seen[question.ID] {
			t.Fatalf("question %d returned twice", question.ID)
		}
		seen[question.ID] = true
	}

	rec = doRequest(handler, http.MethodGet, "/api/topics/History?limit=3", nil)
	if got := len(decodeQuestions(t, rec)); got != 3 {
		t.Fatalf("limited question count = %d, want 3", got)
	}

	rec = doRequest(handler, http.MethodGet, "/api/topics/Cookery", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown topic status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Topic not found or empty") {
		t.Fatalf("unknown topic body = %s", rec.Body.String())
	}

	rec = doRequest(handler, http.MethodGet, "/api/topics/History?limit=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d, want 400", rec.Code)
	}
}

func TestHandleTestQuestions(t *testing.T) {
	rec := doRequest(newTestAPI(t, nil), http.MethodGet, "/api/test", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := len(decodeQuestions(t, rec)); got != quiz.MockTestSize {
		t.Fatalf("question count = %d, want %d", got, quiz.MockTestSize)
	}

	empty := NewRouter(quiz.NewMemorySource(nil, nil), nil, RouterConfig{}, nil)
	rec = doRequest(empty, http.MethodGet, "/api/test", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("empty bank status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No questions available") {
		t.Fatalf("empty bank body = %s", rec.Body.String())
	}
}

func TestHandleResultsRoundTrip(t *testing.T) {
	store := &fakeResultStore{}
	handler := newTestAPI(t, store)

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	payload, err := json.Marshal(quiz.Record{
		Mode: quiz.ModeTest,
		Result: quiz.Result{
			Total:    24,
			Correct:  19,
			Percent:  79.17,
			Passed:   true,
			PassMark: quiz.PassMark,
		},
		StartedAt:  started,
		FinishedAt: started.Add(30 * time.Minute),
	})
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}

	rec := doRequest(handler, http.MethodPost, "/api/results", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("post status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	var saved saveResultResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil || saved.ID == "" {
		t.Fatalf("post response = %s (%v)", rec.Body.String(), err)
	}

	rec = doRequest(handler, http.MethodGet, "/api/results?limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
	var records []quiz.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	got := records[0]
	if got.ID != saved.ID || got.Reason != quiz.FinishCompleted || got.Correct != 19 {
		t.Fatalf("stored record = %+v", got)
	}
	if got.Duration() != 30*time.Minute {
		t.Fatalf("duration = %s, want 30m", got.Duration())
	}
}

func TestHandleResultsRejectsInvalidRecords(t *testing.T) {
	store := &fakeResultStore{}
	handler := newTestAPI(t, store)

	cases := map[string]string{
		"bad json":     `{"mode":`,
		"bad mode":     `{"mode":"exam","total":24,"correct":1}`,
		"too many":     `{"mode":"test","total":24,"correct":25}`,
		"empty result": `{"mode":"topic","total":0,"correct":0}`,
	}
	for name, body := range cases {
		rec := doRequest(handler, http.MethodPost, "/api/results", []byte(body))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", name, rec.Code)
		}
	}
	if len(store.records) != 0 {
		t.Fatalf("invalid records were stored: %d", len(store.records))
	}
}

func TestHandleResultsStoreFailure(t *testing.T) {
	store := &fakeResultStore{saveErr: errors.New("disk full")}
	rec := doRequest(newTestAPI(t, store), http.MethodPost, "/api/results", []byte(`{"mode":"topic","total":10,"correct":4}`))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "disk full") {
		t.Fatalf("internal error leaked to client: %s", rec.Body.String())
	}
}

func TestHandleResultsWithoutStore(t *testing.T) {
	rec := doRequest(newTestAPI(t, nil), http.MethodGet, "/api/results", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestAPI(t, &fakeResultStore{})
	for _, target := range []string{"/api/index", "/api/test", "/api/topics/Law", "/api/health"} {
		rec := doRequest(handler, http.MethodPost, target, nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("POST %s status = %d, want 405", target, rec.Code)
		}
	}
	rec := doRequest(handler, http.MethodDelete, "/api/results", nil)
	if rec.Code != http.StatusMethodNotAllowed || rec.Header().Get("Allow") != "GET, POST" {
		t.Fatalf("DELETE /api/results = %d Allow=%q", rec.Code, rec.Header().Get("Allow"))
	}
}

func TestStaticAndDataRoutes(t *testing.T) {
	static := t.TempDir()
	data := t.TempDir()
	files := map[string]string{
		filepath.Join(static, "index.html"):         "<h1>quiz</h1>",
		filepath.Join(static, "sw.js"):              "self.addEventListener('fetch', () => {})",
		filepath.Join(static, "manifest.json"):      `{"name":"quiz"}`,
		filepath.Join(static, "css", "app.css"):     "body{}",
		filepath.Join(data, "index.json"):           `{"topics":[],"tests":[]}`,
		filepath.Join(data, "chunks", "test_1.enc"): "ciphertext",
	}
	for path, content := range files {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	handler := NewRouter(quiz.NewMemorySource(nil, nil), nil, RouterConfig{StaticDir: static, DataDir: data}, nil)
	cases := map[string]string{
		"/":                     "<h1>quiz</h1>",
		"/sw.js":                "self.addEventListener('fetch', () => {})",
		"/manifest.json":        `{"name":"quiz"}`,
		"/css/app.css":          "body{}",
		"/db/index.json":        `{"topics":[],"tests":[]}`,
		"/db/chunks/test_1.enc": "ciphertext",
	}
	for target, want := range cases {
		rec := doRequest(handler, http.MethodGet, target, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d, want 200", target, rec.Code)
		}
		if rec.Body.String() != want {
			t.Fatalf("GET %s body = %q, want %q", target, rec.Body.String(), want)
		}
	}

	rec := doRequest(handler, http.MethodGet, "/api/unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown api status = %d, want 404", rec.Code)
	}
}
