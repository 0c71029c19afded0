package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ws-flare/ws-flare-graphql/internal/backend"
	httpx "github.com/ws-flare/ws-flare-graphql/internal/http"
	"github.com/ws-flare/ws-flare-graphql/internal/queue"
	"github.com/ws-flare/ws-flare-graphql/internal/resolver"
	"github.com/ws-flare/ws-flare-graphql/internal/service/auth"
	"github.com/ws-flare/ws-flare-graphql/internal/service/job"
	"github.com/ws-flare/ws-flare-graphql/internal/service/node"
	"github.com/ws-flare/ws-flare-graphql/internal/service/project"
	"github.com/ws-flare/ws-flare-graphql/internal/service/task"
	"github.com/ws-flare/ws-flare-graphql/internal/service/telemetry"
	"github.com/ws-flare/ws-flare-graphql/internal/service/user"
	"github.com/ws-flare/ws-flare-graphql/internal/ws"
	"github.com/ws-flare/ws-flare-graphql/pkg/config"
	"github.com/ws-flare/ws-flare-graphql/pkg/logger"
)

func main() {
	cfg := config.LoadGatewayConfig()
	log := logger.New("gateway", logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clients := make(map[string]*backend.Client, 4)
	for name, base := range map[string]string{
		"user":     cfg.UserAPI,
		"projects": cfg.ProjectsAPI,
		"jobs":     cfg.JobsAPI,
		"monitor":  cfg.MonitorAPI,
	} {
		client, err := backend.New(name, base, backend.WithTimeout(cfg.BackendTimeout))
		if err != nil {
			log.Error("invalid backend configuration", "backend", name, "error", err)
			os.Exit(1)
		}
		clients[name] = client
	}

	publisher := queue.NewPublisher(cfg.AMQPURI(), cfg.JobCreateQueue, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("broker close failed", "error", err)
		}
	}()
	jobHub := ws.NewHub()
	defer jobHub.Close()

	authSvc := auth.New(cfg.JWTSecret, cfg.CITokenTTL, log)
	taskSvc := task.New(clients["projects"], log)
	root := resolver.New(resolver.Deps{
		Auth:     authSvc,
		Users:    user.New(clients["user"], log),
		Projects: project.New(clients["projects"], log),
		Tasks:    taskSvc,
		Jobs:     job.New(clients["jobs"], taskSvc, publisher, jobHub, log),
		Nodes:    node.New(clients["jobs"], log),
		Sockets:  telemetry.NewSocketService(clients["jobs"], cfg.MaxTicks, log),
		Usages:   telemetry.NewUsageService(clients["monitor"], cfg.MaxTicks, log),
		Logger:   log,
	})
	schema, err := resolver.NewSchema(root)
	if err != nil {
		log.Error("failed to parse graphql schema", "error", err)
		os.Exit(1)
	}

	checks := map[string]httpx.HealthCheck{"broker": publisher.Ping}
	limiter := httpx.NewMemoryRateLimiter()
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		redisLimiter, err := httpx.NewRedisRateLimiter(addr, cfg.RateLimitRedisPass, cfg.RateLimitRedisDB, log)
		if err != nil {
			log.Warn("redis rate limiter unavailable", "error", err)
		} else {
			limiter.Close()
			limiter = redisLimiter
			checks["rate_limit_store"] = redisLimiter.Ping
		}
	}

	router := httpx.NewRouter(log, authSvc, schema, jobHub, limiter, cfg.RateLimitPerMinute, checks)
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("gateway starting", "addr", cfg.Addr, "env", cfg.Environment)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("gateway stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
