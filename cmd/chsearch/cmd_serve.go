package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"civic-apps/internal/config"
	"civic-apps/internal/proxy"
	"civic-apps/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the registry proxy and the search web app",
	Long: `Serves /api/* as a proxy to the Companies House API with the server's
API key, plus the static search app from server.static_dir.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr, PORT or :5000)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := newRegistryClient()
	if !client.HasCredentials() {
		logger.Warn("COMPANIES_HOUSE_API_KEY is not set; registry requests will fail with a configuration error")
	}

	handler := proxy.NewRouter(client, proxy.RouterConfig{
		StaticDir:       cfg.Server.StaticDir,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		MaxLogBodyBytes: cfg.Server.MaxLogBodyBytes,
	}, logger)

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.AddrOr(config.DefaultRegistryAddr)
	}
	server := web.NewServer(web.ServerConfig{
		Addr:         addr,
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout, 90*time.Second),
	}, handler)

	logger.Info("registry proxy starting", zap.String("addr", addr), zap.String("static_dir", cfg.Server.StaticDir))
	return web.Serve(ctx, server, config.Duration(cfg.Server.ShutdownTimeout, 10*time.Second), logger)
}
