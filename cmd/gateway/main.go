package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-listening-gateway/internal/ai"
	"social-listening-gateway/internal/api"
	"social-listening-gateway/internal/config"
	"social-listening-gateway/internal/panel"
	"social-listening-gateway/internal/ratelimit"
	"social-listening-gateway/internal/server"
	"social-listening-gateway/internal/trigger"
	"social-listening-gateway/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))
	if cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator := trigger.New(cfg.TriggerTimeout, trigger.WithAuthToken(cfg.TriggerAuthToken))

	var summarizer ai.Summarizer
	if s := ai.NewOpenAISummarizer(cfg.OpenAIKey, cfg.OpenAIModel); s != nil {
		summarizer = s
	} else {
		slog.Info("OPENAI_KEY not set, failure summaries disabled")
	}

	limiter, closeLimiter := newLimiter(ctx, cfg)
	defer closeLimiter()

	if !cfg.AuthEnabled() {
		slog.Warn("PANEL_SIGNING_SECRET not set, operator authentication disabled")
	}

	svc := panel.NewService(cfg, orchestrator, summarizer)

	s := server.NewServer(cfg.Port)
	server.RegisterRoutes(s.Engine, api.NewHandler(svc), websocket.NewPanelSocket(svc, limiter), cfg.SigningSecret, limiter)

	if err := s.Start(ctx); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Gateway stopped")
}

func newLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, func()) {
	if cfg.RedisAddr == "" {
		slog.Info("REDIS_ADDR not set, rate limiting disabled")
		return ratelimit.Noop{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Warn("Redis unreachable, requests will pass until it recovers", "addr", cfg.RedisAddr, "error", err)
	}

	return ratelimit.NewRedisLimiter(client, cfg.RateLimitPerMinute), func() { client.Close() }
}
