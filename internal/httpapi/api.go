// Package httpapi serves the quiz REST API and the browser app's static
// assets.
package httpapi

import (
	"time"

	"go.uber.org/zap"

	"civic-apps/internal/quiz"
)

type API struct {
	source  quiz.Source
	results quiz.ResultStore
	logger  *zap.Logger
	now     func() time.Time
}

// NewAPI wires the handlers to a question source. results may be nil, in
// which case the results endpoints answer 503.
func NewAPI(source quiz.Source, results quiz.ResultStore, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		source:  source,
		results: results,
		logger:  logger,
		now:     time.Now,
	}
}
