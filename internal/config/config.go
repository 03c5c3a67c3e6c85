// Package config loads settings for both binaries from config.yaml, an
// optional .env file and the process environment, in rising priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath = "config.yaml"

	DefaultRegistryAddr = ":5000"
	DefaultQuizAddr     = ":8000"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Registry RegistryConfig `yaml:"registry"`
	Quiz     QuizConfig     `yaml:"quiz"`
	Generate GenerateConfig `yaml:"generate"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	// Addr is empty by default; each binary falls back to its own port.
	Addr            string   `yaml:"addr"`
	StaticDir       string   `yaml:"static_dir"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	ReadTimeout     string   `yaml:"read_timeout"`
	WriteTimeout    string   `yaml:"write_timeout"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	MaxLogBodyBytes int      `yaml:"max_log_body_bytes"`
}

type RegistryConfig struct {
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url"`
	DocumentBaseURL string `yaml:"document_base_url"`
	Timeout         string `yaml:"timeout"`
	DocumentTimeout string `yaml:"document_timeout"`
}

type QuizConfig struct {
	DBDriver string `yaml:"db_driver"`
	DBDSN    string `yaml:"db_dsn"`
	// DataDir holds index.json and the chunks/ directory.
	DataDir      string `yaml:"data_dir"`
	ChunkKey     string `yaml:"chunk_key"`
	Tests        int    `yaml:"tests"`
	RotateEvery  string `yaml:"rotate_every"`
	TestDuration string `yaml:"test_duration"`
}

type GenerateConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	ChunkSize int    `yaml:"chunk_size"`
	BatchSize int    `yaml:"batch_size"`
	Target    int    `yaml:"target"`
	Pause     string `yaml:"pause"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			StaticDir: "static",
			AllowedOrigins: []string{
				"http://localhost:5000",
				"http://127.0.0.1:5000",
				"http://localhost:8000",
				"http://127.0.0.1:8000",
			},
			ReadTimeout:     "15s",
			WriteTimeout:    "90s",
			ShutdownTimeout: "10s",
			MaxLogBodyBytes: 512,
		},
		Registry: RegistryConfig{
			Timeout:         "30s",
			DocumentTimeout: "60s",
		},
		Quiz: QuizConfig{
			DBDriver:     "sqlite3",
			DBDSN:        "db/questions.db",
			DataDir:      "db",
			Tests:        15,
			RotateEvery:  "24h",
			TestDuration: "45m",
		},
		Generate: GenerateConfig{
			Model:     "gemini-2.5-flash",
			ChunkSize: 20000,
			BatchSize: 20,
			Target:    120,
			Pause:     "3s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
// Environment variables are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// LoadDotEnv loads each existing file into the environment without
// replacing variables that are already set.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("COMPANIES_HOUSE_API_KEY"); key != "" {
		c.Registry.APIKey = key
	}
	if addr := os.Getenv("ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	// PORT wins over ADDR, as on most hosting platforms.
	if port := os.Getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err == nil {
			c.Server.Addr = ":" + port
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	if driver := os.Getenv("LINUK_DB_DRIVER"); driver != "" {
		c.Quiz.DBDriver = driver
	}
	if dsn := os.Getenv("LINUK_DB_DSN"); dsn != "" {
		c.Quiz.DBDSN = dsn
	}
	if key := os.Getenv("LINUK_CHUNK_KEY"); key != "" {
		c.Quiz.ChunkKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Generate.APIKey = key
	}
}

// AddrOr returns the configured address or def when none is set.
func (s ServerConfig) AddrOr(def string) string {
	if strings.TrimSpace(s.Addr) == "" {
		return def
	}
	return s.Addr
}

// Duration parses value, returning def when it is empty or invalid.
func Duration(value string, def time.Duration) time.Duration {
	if strings.TrimSpace(value) == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d < 0 {
		return def
	}
	return d
}
