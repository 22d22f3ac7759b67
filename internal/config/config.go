package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider identifies the hosted model backend.
type Provider string

const (
	ProviderGoogleAI  Provider = "googleai"
	ProviderBedrock   Provider = "bedrock"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
)

// Store backends for the profile record.
const (
	StoreFile    = "file"
	StoreSurreal = "surrealdb"
	StoreRedis   = "redis"
)

// Config holds all configuration values.
type Config struct {
	// LLM
	LLMProvider     Provider
	LLMModel        string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string
	AWSRegion       string
	LLMTimeout      time.Duration
	LLMRate         float64

	// Profile store
	Store   string
	DataDir string

	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string

	// Redis connection
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Logging
	LogFile  string
	LogLevel slog.Level

	// API server
	ServerPort string
}

// Load reads configuration from environment variables.
// A .env file in the working directory is applied first; variables already
// set in the environment win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		LLMProvider:     Provider(strings.ToLower(getEnv("GLOBOTRACK_LLM_PROVIDER", string(ProviderGoogleAI)))),
		LLMModel:        getEnv("GLOBOTRACK_LLM_MODEL", "gemini-3-flash-preview"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		LLMTimeout:      parseDuration(getEnv("GLOBOTRACK_LLM_TIMEOUT", "60s"), 60*time.Second),
		LLMRate:         parseFloat(getEnv("GLOBOTRACK_LLM_RATE", "1"), 1),

		Store:   strings.ToLower(getEnv("GLOBOTRACK_STORE", StoreFile)),
		DataDir: getEnv("GLOBOTRACK_DATA_DIR", defaultDataDir()),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "globotrack"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "profiles"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       parseInt(getEnv("REDIS_DB", "0"), 0),

		LogFile:  getEnv("GLOBOTRACK_LOG_FILE", "/tmp/globotrack.log"),
		LogLevel: parseLogLevel(getEnv("GLOBOTRACK_LOG_LEVEL", "INFO")),

		ServerPort: getEnv("GLOBOTRACK_SERVER_PORT", "8585"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".globotrack"
	}
	return filepath.Join(dir, "globotrack")
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func parseInt(s string, fallback int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return i
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
