package app

import (
	"os"
	"strconv"
	"time"

	"github.com/quietlane/voicegate/internal/server/whisper"
	"github.com/quietlane/voicegate/pkg/jwtx"
)

type Config struct {
	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)

	Port                int           // HTTP server port (default: 8080)
	PublicURL           string        // Optional: externally reachable base URL, used for the OAuth callback
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	DatabaseFile string // Optional: path to SQLite database file (default: ./voicegate.db)

	JWTSecret    string        // Required: HMAC signing secret for access tokens
	JWTAlgorithm string        // Optional: HMAC algorithm (HS256, HS384, HS512) (default: HS256)
	JWTTTL       time.Duration // Optional: access token lifetime (default: 168h)

	GithubClientID     string // Required for login: GitHub OAuth client id
	GithubClientSecret string // Required for login: GitHub OAuth client secret

	InitialAdminGithubID       string // Optional: GitHub id seeded into the whitelist on first boot
	InitialAdminGithubUsername string // Optional: display name recorded for the seeded entry

	WhisperURL     string        // Required for transcription: whisper.cpp server base URL
	WhisperTimeout time.Duration // Optional: per-request transcription timeout (default: 60s)
}

func LoadConfig() Config {
	return Config{
		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		Port:                getEnvIntOrDefault("PORT", 8080),
		PublicURL:           os.Getenv("PUBLIC_URL"),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "voicegate.db"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTAlgorithm: getEnvOrDefault("JWT_ALGORITHM", "HS256"),
		JWTTTL:       getEnvDurationOrDefault("JWT_TTL", jwtx.DefaultTTL),

		GithubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GithubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),

		InitialAdminGithubID:       os.Getenv("INITIAL_ADMIN_GITHUB_ID"),
		InitialAdminGithubUsername: os.Getenv("INITIAL_ADMIN_GITHUB_USERNAME"),

		WhisperURL:     getEnvOrDefault("WHISPER_URL", "http://localhost:8100"),
		WhisperTimeout: getEnvDurationOrDefault("WHISPER_TIMEOUT", whisper.DefaultTimeout),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are taken as seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
