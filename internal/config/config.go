// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-dynform/internal/logging"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/state"
)

// Defaults
const (
	DefaultAddr        = ":8080"
	DefaultMaxSessions = 256
	DefaultIdleTimeout = 30 * time.Minute
)

// Config holds the settings shared by the server and the CLI.
type Config struct {
	Addr             string        // DYNFORM_ADDR, default ":8080"
	SchemaPath       string        // DYNFORM_SCHEMA, default "" (embedded default schema)
	CatalogDir       string        // DYNFORM_CATALOG_DIR, default "" (no catalog)
	MaxSessions      int           // DYNFORM_MAX_SESSIONS, default 256
	IdleTimeout      time.Duration // DYNFORM_IDLE_TIMEOUT_MS, default 30m
	ThemeVariant     string        // DYNFORM_THEME_VARIANT, default "light"
	ToggleValidation string        // DYNFORM_TOGGLE_VALIDATION, "post" or "pre", default "post"
	SubmitURL        string        // DYNFORM_SUBMIT_URL, default "" (no webhook)
	SubmitTimeout    time.Duration // DYNFORM_SUBMIT_TIMEOUT_MS, default 10s
	ReadTimeout      time.Duration // DYNFORM_READ_TIMEOUT_MS, default 15s
	ShutdownTimeout  time.Duration // DYNFORM_SHUTDOWN_TIMEOUT_MS, default 10s
	MaxUploadBytes   int64         // DYNFORM_MAX_UPLOAD_BYTES, default 4MiB

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 3
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Addr:             getEnvString("DYNFORM_ADDR", DefaultAddr),
		SchemaPath:       getEnvString("DYNFORM_SCHEMA", ""),
		CatalogDir:       getEnvString("DYNFORM_CATALOG_DIR", ""),
		MaxSessions:      getEnvInt("DYNFORM_MAX_SESSIONS", DefaultMaxSessions),
		IdleTimeout:      getEnvDurationMs("DYNFORM_IDLE_TIMEOUT_MS", int(DefaultIdleTimeout/time.Millisecond)),
		ThemeVariant:     strings.ToLower(getEnvString("DYNFORM_THEME_VARIANT", render.VariantLight)),
		ToggleValidation: getEnvString("DYNFORM_TOGGLE_VALIDATION", "post"),
		SubmitURL:        getEnvString("DYNFORM_SUBMIT_URL", ""),
		SubmitTimeout:    getEnvDurationMs("DYNFORM_SUBMIT_TIMEOUT_MS", 10000),
		ReadTimeout:      getEnvDurationMs("DYNFORM_READ_TIMEOUT_MS", 15000),
		ShutdownTimeout:  getEnvDurationMs("DYNFORM_SHUTDOWN_TIMEOUT_MS", 10000),
		MaxUploadBytes:   int64(getEnvInt("DYNFORM_MAX_UPLOAD_BYTES", 4<<20)),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// Logging returns the logging section.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:      c.LogLevel,
		FilePath:   c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
		Compress:   c.LogCompress,
	}
}

// Toggle parses ToggleValidation, falling back to post-toggle validation.
func (c *Config) Toggle() state.ToggleValidation {
	mode, _ := state.ParseToggleValidation(c.ToggleValidation)
	return mode
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}
