package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Backend     string `validate:"oneof=file sqlite postgres memory"`
	DataDir     string `validate:"required"`
	DatabaseURL string `validate:"required_if=Backend postgres"`

	MaxOpenConns    int `validate:"gte=1"`
	MaxIdleConns    int `validate:"gte=0"`
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	HTTPAddr string `validate:"required"`

	AutosaveDelay time.Duration `validate:"gt=0"`
	ToastTTL      time.Duration `validate:"gt=0"`

	LogFile string
	Env     string `validate:"oneof=development production"`
}

// Load reads a .env file when present, then the process environment.
// Empty or unparsable values fall back to defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Backend:         getenv("NOTES_BACKEND", BackendFile),
		DataDir:         getenv("NOTES_DIR", defaultDataDir()),
		DatabaseURL:     getenv("DATABASE_URL", ""),
		MaxOpenConns:    getenvInt("DB_MAX_OPEN", 4),
		MaxIdleConns:    getenvInt("DB_MAX_IDLE", 2),
		ConnMaxLifetime: getenvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnMaxIdleTime: getenvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		HTTPAddr:        getenv("HTTP_ADDR", "127.0.0.1:8080"),
		AutosaveDelay:   getenvDuration("AUTOSAVE_DELAY", 450*time.Millisecond),
		ToastTTL:        getenvDuration("TOAST_TTL", 2500*time.Millisecond),
		LogFile:         getenv("LOG_FILE", ""),
		Env:             getenv("APP_ENV", "development"),
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) Production() bool {
	return c.Env == "production"
}

// LogPath is where the rotating log file lives.
func (c Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "ocean-notes.log")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".ocean-notes"
	}
	return filepath.Join(home, ".ocean-notes")
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
