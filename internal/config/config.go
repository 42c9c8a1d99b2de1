package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/PabloGalante/mindlens/internal/domain"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port    string
	LogMode string

	// Model
	ModelProvider string // "gemini", "openai" or "mock"
	GCPProjectID  string
	GCPLocation   string
	GeminiAPIKey  string // set = Gemini API backend instead of Vertex AI
	ModelName     string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Storage
	StorageBackend string // "memory", "sqlite", "redis", "postgres" or "firestore"
	SQLitePath     string
	RedisAddr      string
	PostgresDSN    string
	SessionsKey    string

	// Analysis
	PromptProfile        string
	PromptProfilesPath   string
	ExtractCaptions      bool
	FetchTimeout         time.Duration
	MaxConcurrentFetches int
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Load reads an optional .env file, then all env vars, and builds the config.
// Like FromEnv, it does not validate.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only. The result
// is not validated; callers apply their overrides and then call Validate.
func FromEnv() (*Config, error) {
	modeStr := getEnv("MINDLENS_MODE", "local")
	var mode Mode
	switch modeStr {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	defaultProvider, defaultStorage := "gemini", "firestore"
	if mode == ModeLocal {
		defaultProvider, defaultStorage = "mock", "sqlite"
	}

	cfg := &Config{
		Mode: mode,

		Port:    getEnv("MINDLENS_PORT", getEnv("PORT", "8080")),
		LogMode: getEnv("MINDLENS_LOG_MODE", "production"),

		ModelProvider: strings.ToLower(getEnv("MINDLENS_MODEL_PROVIDER", defaultProvider)),
		GCPProjectID:  getEnv("MINDLENS_GCP_PROJECT", ""),
		GCPLocation:   getEnv("MINDLENS_GCP_LOCATION", "us-central1"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		ModelName:     getEnv("MINDLENS_MODEL_NAME", "gemini-2.5-flash"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("MINDLENS_OPENAI_BASE_URL", ""),
		OpenAIModel:   getEnv("MINDLENS_OPENAI_MODEL", "gpt-4o-mini"),

		StorageBackend: strings.ToLower(getEnv("MINDLENS_STORAGE_BACKEND", defaultStorage)),
		SQLitePath:     getEnv("MINDLENS_SQLITE_PATH", "mindlens.db"),
		RedisAddr:      getEnv("MINDLENS_REDIS_ADDR", "localhost:6379"),
		PostgresDSN:    getEnv("MINDLENS_POSTGRES_DSN", ""),
		SessionsKey:    getEnv("MINDLENS_SESSIONS_KEY", domain.SessionsBlobKey),

		PromptProfile:        getEnv("MINDLENS_PROMPT_PROFILE", "wellbeing"),
		PromptProfilesPath:   getEnv("MINDLENS_PROMPT_PROFILES", ""),
		ExtractCaptions:      getBoolEnv("MINDLENS_EXTRACT_CAPTIONS", true),
		FetchTimeout:         getDurationEnv("MINDLENS_FETCH_TIMEOUT", 15*time.Second),
		MaxConcurrentFetches: getIntEnv("MINDLENS_MAX_CONCURRENT_FETCHES", 4),
	}

	return cfg, nil
}

// Validate checks combinations that cannot work at runtime.
func (c *Config) Validate() error {
	switch c.ModelProvider {
	case "mock", "openai":
	case "gemini":
		if c.GeminiAPIKey == "" && c.GCPProjectID == "" {
			return errors.New("gemini provider needs GEMINI_API_KEY or MINDLENS_GCP_PROJECT")
		}
	default:
		return fmt.Errorf("unknown model provider %q", c.ModelProvider)
	}
	if c.ModelProvider == "openai" && c.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY must be set for the openai provider")
	}

	switch c.StorageBackend {
	case "memory", "sqlite", "redis":
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("MINDLENS_POSTGRES_DSN is required for postgres storage")
		}
	case "firestore":
		if c.GCPProjectID == "" {
			return errors.New("MINDLENS_GCP_PROJECT is required for firestore storage")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	if c.MaxConcurrentFetches <= 0 {
		c.MaxConcurrentFetches = 1
	}
	return nil
}
