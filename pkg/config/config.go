// Package config holds runtime configuration for the honeypot service.
// All values are environment-driven with safe defaults so the binary runs
// with no configuration at all (LLM features degrade to deterministic
// fallbacks, the rate limiter falls back to in-process counters).
package config

import (
	"os"
	"strconv"
	"time"
)

// LLMProvider identifies which chat-completion backend is in use.
type LLMProvider string

const (
	// ProviderNone disables remote LLM calls entirely. The reasoning judge
	// uses its deterministic fallback and the reply generator uses templates.
	ProviderNone LLMProvider = "none"

	// ProviderGroq uses the Groq OpenAI-compatible chat completions API.
	ProviderGroq LLMProvider = "groq"
)

// Defaults. The API key default exists only so local testing works without
// a .env file; any real deployment sets HONEYPOT_API_KEY.
const (
	DefaultAPIKey      = "mySecretKey123"
	DefaultAddr        = ":8080"
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	DefaultGroqModel   = "llama-3.1-8b-instant"
	DefaultReportURL   = "https://hackathon.guvi.in/api/updateHoneyPotFinalResult"

	Version = "2.0.0"
)

// Config is the resolved runtime configuration.
type Config struct {
	// HTTP
	Addr   string
	APIKey string

	// LLM
	LLMProvider LLMProvider
	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string
	LLMTimeout  time.Duration

	// Outbound reporting
	ReportURL     string
	ReportTimeout time.Duration

	// Optional YAML overrides (rule weights, seed phrases)
	ConfigDir string

	// Optional Redis-backed rate limiting; empty disables Redis and the
	// limiter falls back to in-process fixed windows.
	RedisAddr          string
	RateLimitPerMinute int

	// Optional ONNX classifier (hugot). Empty model path disables it.
	OnnxModelPath   string
	OnnxLibraryPath string

	// Engagement bounds
	MaxTurns int
}

// NewDefaultConfig builds a Config from the environment with defaults for
// every unset value.
func NewDefaultConfig() *Config {
	cfg := &Config{
		Addr:               GetEnv("HONEYPOT_ADDR", DefaultAddr),
		APIKey:             GetEnv("HONEYPOT_API_KEY", DefaultAPIKey),
		GroqAPIKey:         os.Getenv("GROQ_API_KEY"),
		GroqBaseURL:        GetEnv("GROQ_BASE_URL", DefaultGroqBaseURL),
		GroqModel:          GetEnv("GROQ_MODEL", DefaultGroqModel),
		LLMTimeout:         time.Duration(clampInt(GetEnvInt("HONEYPOT_LLM_TIMEOUT_SECONDS", 10), 1, 10)) * time.Second,
		ReportURL:          GetEnv("HONEYPOT_REPORT_URL", DefaultReportURL),
		ReportTimeout:      time.Duration(clampInt(GetEnvInt("HONEYPOT_REPORT_TIMEOUT_SECONDS", 10), 1, 10)) * time.Second,
		ConfigDir:          os.Getenv("HONEYPOT_CONFIG_DIR"),
		RedisAddr:          os.Getenv("HONEYPOT_REDIS_ADDR"),
		RateLimitPerMinute: GetEnvInt("HONEYPOT_RATE_LIMIT_PER_MINUTE", 120),
		OnnxModelPath:      os.Getenv("HONEYPOT_ONNX_MODEL_PATH"),
		OnnxLibraryPath:    os.Getenv("HONEYPOT_ONNX_LIBRARY_PATH"),
		MaxTurns:           clampInt(GetEnvInt("HONEYPOT_MAX_TURNS", 20), 5, 100),
	}

	cfg.LLMProvider = ProviderNone
	if cfg.GroqAPIKey != "" {
		cfg.LLMProvider = ProviderGroq
	}

	return cfg
}

// NewOfflineConfig returns a config with all remote capabilities disabled,
// regardless of environment. Used by tests and air-gapped deployments.
func NewOfflineConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.LLMProvider = ProviderNone
	cfg.GroqAPIKey = ""
	cfg.RedisAddr = ""
	cfg.OnnxModelPath = ""
	return cfg
}

// HasLLM reports whether a remote chat-completion backend is configured.
func (c *Config) HasLLM() bool {
	return c.LLMProvider != ProviderNone && c.GroqAPIKey != ""
}

// GetEnv returns the env var value or a default when unset/empty.
func GetEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetEnvInt returns the env var parsed as int, or the default when unset
// or unparseable.
func GetEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
