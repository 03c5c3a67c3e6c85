package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"civic-apps/internal/config"
	"civic-apps/internal/httpapi"
	"civic-apps/internal/quiz"
	"civic-apps/internal/quiz/chunks"
	"civic-apps/internal/scheduler"
	"civic-apps/internal/web"
)

var (
	serveAddr   string
	serveSource string
	noRotate    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz REST API and the web app",
	Long: `Serves /api/index, /api/topics/{name}, /api/test and /api/results from
the question database (or the encrypted chunk set with --source chunks), the
web app from server.static_dir, and the chunk set under /db/.

When a chunk key is configured the pre-built mock tests are regenerated
every quiz.rotate_every.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr, PORT or :8000)")
	serveCmd.Flags().StringVar(&serveSource, "source", "db", "Question source: db or chunks")
	serveCmd.Flags().BoolVar(&noRotate, "no-rotate", false, "Do not regenerate the pre-built tests")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext()
	defer stop()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var (
		source     quiz.Source = store
		chunkCache *chunks.Source
	)
	key, keyErr := chunkKey()
	switch serveSource {
	case "db":
	case "chunks":
		if keyErr != nil {
			return keyErr
		}
		chunkCache = chunks.NewDirSource(cfg.Quiz.DataDir, key, nil, logger)
		source = chunkCache
	default:
		return fmt.Errorf("unknown source %q (want db or chunks)", serveSource)
	}

	if keyErr == nil && !noRotate {
		rotation := &scheduler.TestRotation{
			Store:  store,
			Dir:    cfg.Quiz.DataDir,
			Key:    key,
			Tests:  cfg.Quiz.Tests,
			Rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
			Logger: logger,
		}
		if chunkCache != nil {
			rotation.Cache = chunkCache
		}
		rotator := scheduler.New(config.Duration(cfg.Quiz.RotateEvery, 24*time.Hour), rotation.Run, logger)
		if err := rotator.Start(); err != nil {
			return err
		}
		defer rotator.Stop()
	} else if keyErr != nil {
		logger.Info("test rotation disabled", zap.Error(keyErr))
	}

	handler := httpapi.NewRouter(source, store, httpapi.RouterConfig{
		StaticDir:       cfg.Server.StaticDir,
		DataDir:         cfg.Quiz.DataDir,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		MaxLogBodyBytes: cfg.Server.MaxLogBodyBytes,
	}, logger)

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.AddrOr(config.DefaultQuizAddr)
	}
	server := web.NewServer(web.ServerConfig{
		Addr:         addr,
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout, 90*time.Second),
	}, handler)

	logger.Info("quiz service starting", zap.String("addr", addr), zap.String("source", serveSource))
	return web.Serve(ctx, server, config.Duration(cfg.Server.ShutdownTimeout, 10*time.Second), logger)
}
