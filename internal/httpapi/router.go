package httpapi

import (
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"civic-apps/internal/quiz"
	"civic-apps/internal/web"
)

type RouterConfig struct {
	// StaticDir holds index.html, sw.js, manifest.json, css/ and js/.
	StaticDir string
	// DataDir holds the encrypted chunk set, served under /db/.
	DataDir         string
	AllowedOrigins  []string
	MaxLogBodyBytes int
}

func NewRouter(source quiz.Source, results quiz.ResultStore, cfg RouterConfig, logger *zap.Logger) http.Handler {
	api := NewAPI(source, results, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", api.HandleHealth)
	mux.HandleFunc("/api/index", api.HandleIndex)
	mux.HandleFunc("/api/topics/{topic_name}", api.HandleTopicQuestions)
	mux.HandleFunc("/api/test", api.HandleTestQuestions)
	mux.HandleFunc("/api/results", api.HandleResults)
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		web.WriteError(w, http.StatusNotFound, "not found")
	})

	if cfg.StaticDir != "" {
		mux.Handle("/{$}", web.File(filepath.Join(cfg.StaticDir, "index.html")))
		for _, name := range []string{"sw.js", "manifest.json", "test_runner.html"} {
			mux.Handle("/"+name, web.File(filepath.Join(cfg.StaticDir, name)))
		}
		static := web.Static(cfg.StaticDir)
		mux.Handle("/css/", static)
		mux.Handle("/js/", static)
	}
	if cfg.DataDir != "" {
		mux.Handle("/db/", http.StripPrefix("/db", web.Static(cfg.DataDir)))
	}

	return web.Chain(mux,
		web.LogRequests(logger, cfg.MaxLogBodyBytes),
		web.SecurityHeaders,
		web.CORS(cfg.AllowedOrigins),
	)
}
