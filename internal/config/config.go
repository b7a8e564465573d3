// Package config loads the server configuration from the environment.
//
// Values come from process environment variables. A .env file in the working
// directory is read first (github.com/joho/godotenv) but never overrides a
// variable that is already set, so deployments can rely on real env vars and
// local development can keep secrets in .env.
//
// Config is loaded once in main and passed down explicitly. Nothing else in
// the module reads os.Getenv.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all application configuration.
type Config struct {
	// HTTP
	Port        int
	CORSOrigins []string
	StaticDir   string // optional pre-built client, served with SPA fallback

	// Runtime
	AppEnv   string
	LogLevel slog.Level

	// Storage
	DBPath    string
	UploadDir string

	// Auth
	JWTSecret string

	// Gemini
	GeminiAPIKey      string
	GeminiModel       string
	GeminiBaseURL     string
	ExtractionTimeout time.Duration
}

// Load reads .env (if present) and the environment.
// JWT_SECRET and GEMINI_API_KEY are required; everything else has a default.
func Load() (*Config, error) {
	// A missing .env is the normal case in production.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: reading .env: %w", err)
	}

	cfg := &Config{
		Port:        getEnvAsInt("PORT", 5001),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		StaticDir:   getEnv("STATIC_DIR", ""),

		AppEnv:   strings.ToLower(getEnv("APP_ENV", EnvProduction)),
		LogLevel: parseLevel(getEnv("LOG_LEVEL", "info")),

		DBPath:    getEnv("DB_PATH", "data/flashcards.db"),
		UploadDir: getEnv("UPLOAD_DIR", filepath.Join(os.TempDir(), "study-cards-uploads")),

		JWTSecret: getEnv("JWT_SECRET", ""),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", ""),
		ExtractionTimeout: getEnvAsDuration("EXTRACTION_TIMEOUT", 60*time.Second),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.GeminiAPIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}
	if c.ExtractionTimeout <= 0 {
		errs = append(errs, errors.New("EXTRACTION_TIMEOUT must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment reports whether internal error details may be shown to
// clients. Only an explicit APP_ENV=development enables it.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// Addr returns the listen address for http.Server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("90s", "2m") and falls back
// to plain integers as seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
