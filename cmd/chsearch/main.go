package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"civic-apps/internal/config"
	"civic-apps/internal/logging"
	"civic-apps/internal/registry"
)

var (
	configPath string
	verbose    bool
	proxyURL   string
	jsonOutput bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "chsearch",
	Short: "Search the Companies House register",
	Long: `chsearch queries the Companies House register for companies, officers
and filed accounts, and can serve a browser proxy that keeps the API key on
the server.

The API key is read from COMPANIES_HOUSE_API_KEY (a .env file is loaded
when present). With --proxy the commands go through a running proxy instead
and need no key.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		logger, err = logging.New(cfg.Logging)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&proxyURL, "proxy", "", "Query through a running chsearch proxy at this base URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(companyCmd)
	rootCmd.AddCommand(officerCmd)
	rootCmd.AddCommand(balanceSheetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRegistryClient talks to the registry directly, or to the proxy's /api
// prefix when --proxy is set.
func newRegistryClient() *registry.Client {
	rc := registry.Config{
		BaseURL:         cfg.Registry.BaseURL,
		DocumentBaseURL: cfg.Registry.DocumentBaseURL,
		APIKey:          cfg.Registry.APIKey,
		Timeout:         config.Duration(cfg.Registry.Timeout, 30*time.Second),
		DocumentTimeout: config.Duration(cfg.Registry.DocumentTimeout, 60*time.Second),
	}
	if proxyURL != "" {
		rc.BaseURL = strings.TrimRight(proxyURL, "/") + "/api"
		rc.DocumentBaseURL = strings.TrimRight(proxyURL, "/") + "/api"
		rc.APIKey = ""
	}
	return registry.NewClient(rc, nil, logger)
}

