// Package config reads the client and server settings from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/Vinw199/Voice-note/internal/auth"
	"github.com/Vinw199/Voice-note/internal/daemon"
	"github.com/Vinw199/Voice-note/internal/db"
)

// BackendLocal selects the on-disk database instead of a notesd server.
const BackendLocal = "local"

// ErrMissingSecret is returned when no JWT secret is configured.
var ErrMissingSecret = errors.New("jwt secret is not configured")

// Client configures the voicenote terminal client.
type Client struct {
	Backend     string
	DBPath      string
	SocketPath  string
	SessionPath string
	JWTSecret   string
	LogPath     string
	Debug       bool
}

// Local reports whether notes live in the local database.
func (c Client) Local() bool {
	return c.Backend == BackendLocal
}

// Server configures notesd.
type Server struct {
	Addr                string
	DBPath              string
	JWTSecret           string
	TokenTTL            time.Duration
	RedisURL            string
	CacheTTL            time.Duration
	RequireConfirmation bool
	Debug               bool
}

// LoadDotEnv loads a .env file into the environment when one exists.
// Variables already set win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadClient reads the client settings.
func LoadClient() (Client, error) {
	cfg := Client{
		Backend:     envOrDefault("VOICENOTE_BACKEND", BackendLocal),
		DBPath:      envOrDefault("VOICENOTE_DB", db.DefaultDBPath()),
		SocketPath:  envOrDefault("VOICENOTE_SOCKET", daemon.SocketPath()),
		SessionPath: envOrDefault("VOICENOTE_SESSION_FILE", auth.DefaultSessionPath()),
		JWTSecret:   os.Getenv("VOICENOTE_JWT_SECRET"),
		LogPath:     envOrDefault("VOICENOTE_LOG", defaultLogPath()),
	}

	debug, err := parseBoolEnv("DEBUG", false)
	if err != nil {
		return Client{}, fmt.Errorf("parse DEBUG: %w", err)
	}
	cfg.Debug = debug

	if cfg.Local() && cfg.JWTSecret == "" {
		return Client{}, fmt.Errorf("VOICENOTE_JWT_SECRET: %w", ErrMissingSecret)
	}
	return cfg, nil
}

// LoadServer reads the notesd settings.
func LoadServer() (Server, error) {
	cfg := Server{
		Addr:      envOrDefault("NOTESD_ADDR", ":8080"),
		DBPath:    envOrDefault("NOTESD_DB", "notesd.db"),
		JWTSecret: os.Getenv("NOTESD_JWT_SECRET"),
		RedisURL:  os.Getenv("REDIS_URL"),
	}
	if cfg.JWTSecret == "" {
		return Server{}, fmt.Errorf("NOTESD_JWT_SECRET: %w", ErrMissingSecret)
	}

	var err error
	if cfg.TokenTTL, err = parseDurationEnv("NOTESD_TOKEN_TTL", 24*time.Hour); err != nil {
		return Server{}, fmt.Errorf("parse NOTESD_TOKEN_TTL: %w", err)
	}
	if cfg.CacheTTL, err = parseDurationEnv("NOTESD_CACHE_TTL", 5*time.Minute); err != nil {
		return Server{}, fmt.Errorf("parse NOTESD_CACHE_TTL: %w", err)
	}
	if cfg.RequireConfirmation, err = parseBoolEnv("NOTESD_REQUIRE_CONFIRMATION", false); err != nil {
		return Server{}, fmt.Errorf("parse NOTESD_REQUIRE_CONFIRMATION: %w", err)
	}
	if cfg.Debug, err = parseBoolEnv("DEBUG", false); err != nil {
		return Server{}, fmt.Errorf("parse DEBUG: %w", err)
	}
	return cfg, nil
}

func defaultLogPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "voicenote", "voicenote.log")
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseBoolEnv(key string, fallback bool) (bool, error) {
	value := envOrDefault(key, "")
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := envOrDefault(key, "")
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", value)
	}
	return d, nil
}
