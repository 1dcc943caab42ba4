package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the environment-level configuration surface. Provider credentials
// are independently optional: a missing credential switches that capability to
// deterministic placeholder output instead of failing startup.
type Config struct {
	TelegramToken     string
	ReplicateAPIToken string
	AnthropicAPIKey   string
	GoogleAIAPIKey    string

	LogLevel   string
	Debug      bool
	PreferIPv4 bool

	MaxRevisions       int
	MaxConcurrent      int
	MediaGroupDebounce time.Duration
	RequestTimeout     time.Duration
	HTTPTimeout        time.Duration

	ReplicateBaseURL      string
	ReplicateModel        string
	ReplicatePollInterval time.Duration
	ReplicatePollAttempts int

	AnthropicBaseURL string
	AnthropicModel   string

	GeminiBaseURL    string
	GeminiAPIVersion string
	GeminiModel      string

	WebAddr string
}

func Load() (Config, error) {
	cfg := Config{
		LogLevel:           strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),
		Debug:              getEnvBool("DEBUG", false),
		PreferIPv4:         getEnvBool("PREFER_IPV4", true),
		MaxRevisions:       getEnvInt("MAX_REVISIONS", 3),
		MaxConcurrent:      getEnvInt("MAX_CONCURRENT", 4),
		MediaGroupDebounce: time.Duration(getEnvInt("MEDIA_GROUP_DEBOUNCE_MS", 1200)) * time.Millisecond,
		RequestTimeout:     time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 180)) * time.Second,
		HTTPTimeout:        time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,

		ReplicateBaseURL:      strings.TrimSpace(getEnv("REPLICATE_BASE_URL", "https://api.replicate.com")),
		ReplicateModel:        strings.TrimSpace(getEnv("REPLICATE_MODEL", "black-forest-labs/flux-schnell")),
		ReplicatePollInterval: time.Duration(getEnvInt("REPLICATE_POLL_INTERVAL_MS", 2000)) * time.Millisecond,
		ReplicatePollAttempts: getEnvInt("REPLICATE_POLL_ATTEMPTS", 60),

		AnthropicBaseURL: strings.TrimSpace(getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com")),
		AnthropicModel:   strings.TrimSpace(getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514")),

		GeminiBaseURL:    strings.TrimSpace(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")),
		GeminiAPIVersion: strings.TrimSpace(getEnv("GEMINI_API_VERSION", "v1beta")),
		GeminiModel:      strings.TrimSpace(getEnv("GEMINI_MODEL", "gemini-2.0-flash-exp")),

		WebAddr: strings.TrimSpace(getEnv("WEB_ADDR", ":8080")),
	}

	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	cfg.ReplicateAPIToken = strings.TrimSpace(os.Getenv("REPLICATE_API_TOKEN"))
	cfg.AnthropicAPIKey = strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	cfg.GoogleAIAPIKey = strings.TrimSpace(os.Getenv("GOOGLE_AI_API_KEY"))

	if cfg.MaxRevisions < 1 {
		cfg.MaxRevisions = 1
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.ReplicatePollAttempts < 1 {
		cfg.ReplicatePollAttempts = 1
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 180 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
