package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"chat-relay/internal/chat"
	"chat-relay/internal/config"
	"chat-relay/internal/events"
	"chat-relay/internal/genai"
	"chat-relay/internal/logger"
	"chat-relay/internal/session"
	"chat-relay/internal/summarizer"
)

// Deps bundles common runtime dependencies for the gateway.
type Deps struct {
	Config     config.Config
	Log        *slog.Logger
	Sessions   session.Store
	GenAI      genai.Client
	Summarizer summarizer.Client
	Events     events.Publisher
	Chat       *chat.Service
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	sessions, err := buildSessionStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize session store: %w", err)
	}
	pub, err := buildEvents(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	gen, err := genai.NewGeminiClient(cfg.GenAIBaseURL, cfg.GenAIModel)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize primary completion client: %w", err)
	}
	sum := summarizer.NewOpenAIClient(openai.ChatModel(cfg.SummaryModel))

	return Deps{
		Config:     cfg,
		Log:        log,
		Sessions:   sessions,
		GenAI:      gen,
		Summarizer: sum,
		Events:     pub,
		Chat:       chat.NewService(sessions, gen, sum, pub, cfg.ChatRelaxedSafety, log),
	}, nil
}

func buildSessionStore(cfg config.Config, log *slog.Logger) (session.Store, error) {
	switch cfg.SessionStore {
	case "memory":
		log.Info("using in-memory session store")
		return session.NewMemoryStore(), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when SESSION_STORE=redis")
		}
		store, err := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, time.Duration(cfg.SessionTTL)*time.Second)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis session store: %w", err)
		}
		log.Info("using Redis session store", "ttl_seconds", cfg.SessionTTL)
		return store, nil
	default:
		return nil, fmt.Errorf("invalid SESSION_STORE: %s (valid options: memory, redis)", cfg.SessionStore)
	}
}

func buildEvents(cfg config.Config, log *slog.Logger) (events.Publisher, error) {
	switch cfg.EventsProvider {
	case "noop":
		return events.NewNoopPublisher(), nil
	case "nats":
		if cfg.NATSURL == "" {
			return nil, fmt.Errorf("NATS_URL is required when EVENTS_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS event publisher")
		return events.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid EVENTS_PROVIDER: %s (valid options: noop, nats)", cfg.EventsProvider)
	}
}
