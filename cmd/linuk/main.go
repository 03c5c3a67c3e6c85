package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"civic-apps/internal/config"
	"civic-apps/internal/logging"
	"civic-apps/internal/quiz/chunks"
	"civic-apps/internal/quiz/sqlite"
)

var (
	configPath string
	verbose    bool
	dbDriver   string
	dbDSN      string
	dataDir    string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "linuk",
	Short: "Life in the UK test practice",
	Long: `linuk manages a bank of Life in the UK practice questions and plays them.

  serve     serve the quiz REST API and the web app
  play      practise a topic or sit a timed mock test in the terminal
  import    load questions from JSON, XLSX or CSV into the database
  encrypt   build the encrypted chunk set the web app can load offline
  generate  draft new questions from study material with Gemini`,
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
		if dbDriver != "" {
			cfg.Quiz.DBDriver = dbDriver
		}
		if dbDSN != "" {
			cfg.Quiz.DBDSN = dbDSN
		}
		if dataDir != "" {
			cfg.Quiz.DataDir = dataDir
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
	rootCmd.PersistentFlags().StringVar(&dbDriver, "db-driver", "", "Database driver: sqlite3, sqlite or postgres")
	rootCmd.PersistentFlags().StringVar(&dbDSN, "db", "", "Database DSN or SQLite file path")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory holding index.json and chunks/")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(encryptCmd)
	rootCmd.AddCommand(generateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func openStore() (*sqlite.Store, error) {
	store, err := sqlite.Open(cfg.Quiz.DBDriver, cfg.Quiz.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open question database: %w", err)
	}
	logger.Debug("question database opened",
		zap.String("driver", cfg.Quiz.DBDriver),
		zap.String("dsn", redactDSN(cfg.Quiz.DBDSN)))
	return store, nil
}

func chunkKey() ([]byte, error) {
	if strings.TrimSpace(cfg.Quiz.ChunkKey) == "" {
		return nil, errors.New("LINUK_CHUNK_KEY is required for encrypted chunks")
	}
	return chunks.ParseKey(cfg.Quiz.ChunkKey)
}

// redactDSN hides credentials in a postgres URL before it is logged.
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}
