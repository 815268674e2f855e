package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/cache"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/config"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/database"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/logging"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/repository"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/services"
)

const (
	dequeueTimeout = 5 * time.Second
	sweepInterval  = 1 * time.Hour
)

// The worker delivers queued notifications and suspends lapsed
// subscriptions on a timer.
func main() {
	cfg := config.Load()

	logger := logging.New(cfg.App.LogLevel, cfg.App.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	sweeper := services.NewSubscriptionSweeper(
		repository.NewPostgresSubscriptionRepository(pool),
		repository.NewPostgresTenantRepository(pool),
		repository.NewPostgresUserRepository(pool),
		redisClient,
		redisClient,
		logger,
	)

	go runSweeper(ctx, sweeper, logger)

	logger.Info("worker started")
	runNotificationLoop(ctx, redisClient, logger)
	logger.Info("worker exited")
}

func runNotificationLoop(ctx context.Context, redisClient *cache.Client, logger *slog.Logger) {
	for {
		if ctx.Err() != nil {
			return
		}

		data, err := redisClient.DequeueNotification(ctx, dequeueTimeout)
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			logger.Error("failed to dequeue notification", "error", err)
			time.Sleep(time.Second)
			continue
		}

		var n services.Notification
		if err := json.Unmarshal(data, &n); err != nil {
			logger.Error("failed to decode notification", "error", err)
			continue
		}

		deliver(n, logger)
	}
}

// deliver hands the notification to the mail transport. Until one is
// configured delivery is a structured log line.
func deliver(n services.Notification, logger *slog.Logger) {
	logger.Info("notification delivered",
		"type", n.Type,
		"email", n.Email,
		"tenant", n.Tenant,
		"data", n.Data,
	)
}

func runSweeper(ctx context.Context, sweeper *services.SubscriptionSweeper, logger *slog.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			suspended, err := sweeper.Sweep(ctx, now)
			if err != nil {
				logger.Error("subscription sweep failed", "error", err)
				continue
			}
			if suspended > 0 {
				logger.Info("subscription sweep finished", "suspended", suspended)
			}
		}
	}
}
