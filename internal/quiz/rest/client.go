// Package rest is a quiz.Source backed by the quiz REST API served by
// internal/httpapi.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"civic-apps/internal/quiz"
)

var ErrServiceUnavailable = errors.New("quiz service unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

type errorResponse struct {
	Error string `json:"error"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8000"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *Client) Index(ctx context.Context) (quiz.Index, error) {
	var index quiz.Index
	if err := c.doJSON(ctx, http.MethodGet, "/api/index", nil, &index); err != nil {
		return quiz.Index{}, err
	}
	return index, nil
}

func (c *Client) TopicQuestions(ctx context.Context, topic string, limit int) ([]quiz.Question, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, quiz.ErrNoQuestions
	}
	if limit <= 0 {
		limit = quiz.TopicPracticeSize
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	path := "/api/topics/" + url.PathEscape(topic) + "?" + query.Encode()

	return c.questions(ctx, path)
}

func (c *Client) TestQuestions(ctx context.Context, limit int) ([]quiz.Question, error) {
	if limit <= 0 {
		limit = quiz.MockTestSize
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	return c.questions(ctx, "/api/test?"+query.Encode())
}

func (c *Client) questions(ctx context.Context, path string) ([]quiz.Question, error) {
	var questions []quiz.Question
	err := c.doJSON(ctx, http.MethodGet, path, nil, &questions)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil, quiz.ErrNoQuestions
	}
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, quiz.ErrNoQuestions
	}
	return questions, nil
}

// SaveResult posts a finished session to the server's result store.
func (c *Client) SaveResult(ctx context.Context, record quiz.Record) error {
	return c.doJSON(ctx, http.MethodPost, "/api/results", record, nil)
}

func (c *Client) Results(ctx context.Context, limit int) ([]quiz.Record, error) {
	path := "/api/results"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var records []quiz.Record
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}
