package config

import (
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration for the gateway. API keys are NOT
// configured here: both completion keys are supplied by the user per session
// and live only in that session's memory.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Session store
	SessionStore  string `env:"SESSION_STORE" envDefault:"memory"` // "memory" (default) or "redis"
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	SessionTTL    int    `env:"SESSION_TTL_SECONDS" envDefault:"3600"` // redis store only

	// Lifecycle events
	EventsProvider string `env:"EVENTS_PROVIDER" envDefault:"noop"` // "noop" (default) or "nats"
	NATSURL        string `env:"NATS_URL"`

	// Primary completion API (chat turns + credential probe)
	GenAIBaseURL string `env:"GENAI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GenAIModel   string `env:"GENAI_MODEL" envDefault:"gemini-2.0-flash"`

	// Secondary completion API (end-of-session summarization)
	SummaryModel string `env:"SUMMARY_MODEL" envDefault:"gpt-3.5-turbo"`

	// The credential probe always runs with safety filters relaxed; regular
	// chat turns only do so when this is set.
	ChatRelaxedSafety bool `env:"CHAT_RELAXED_SAFETY" envDefault:"false"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
