// Package proxy exposes the company registry to browsers. The API key stays
// on the server; requests are validated and forwarded through
// registry.Client, and upstream failures are mapped to fixed messages.
package proxy

import (
	"net/http"

	"go.uber.org/zap"

	"civic-apps/internal/registry"
	"civic-apps/internal/web"
)

type API struct {
	client *registry.Client
	logger *zap.Logger
}

func NewAPI(client *registry.Client, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{client: client, logger: logger}
}

type RouterConfig struct {
	StaticDir       string
	AllowedOrigins  []string
	MaxLogBodyBytes int
}

func NewRouter(client *registry.Client, cfg RouterConfig, logger *zap.Logger) http.Handler {
	api := NewAPI(client, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", api.HandleHealth)
	mux.HandleFunc("/api/company/{company_number}", api.HandleCompany)
	mux.HandleFunc("/api/company/{company_number}/{resource}", api.HandleCompanyResource)
	mux.HandleFunc("/api/search/{kind}", api.HandleSearch)
	mux.HandleFunc("/api/officers/{officer_id}/appointments", api.HandleAppointments)
	mux.HandleFunc("/api/document/{document_id}/content", api.HandleDocumentContent)
	mux.HandleFunc("/api/document/{document_id}/balance-sheet", api.HandleBalanceSheet)
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		web.WriteError(w, http.StatusNotFound, "Resource not found")
	})
	if cfg.StaticDir != "" {
		mux.Handle("/", web.Static(cfg.StaticDir))
	}

	return web.Chain(mux,
		web.LogRequests(logger, cfg.MaxLogBodyBytes),
		web.SecurityHeaders,
		web.CORS(cfg.AllowedOrigins),
	)
}
