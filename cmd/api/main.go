package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Vodeneev/matchpredict/internal/api"
	"github.com/Vodeneev/matchpredict/internal/pkg/config"
	"github.com/Vodeneev/matchpredict/internal/pkg/footballdata"
	"github.com/Vodeneev/matchpredict/internal/pkg/health"
	"github.com/Vodeneev/matchpredict/internal/pkg/logging"
	"github.com/Vodeneev/matchpredict/internal/pkg/notify"
	"github.com/Vodeneev/matchpredict/internal/pkg/predictor"
	"github.com/Vodeneev/matchpredict/internal/pkg/storage"
)

const (
	defaultConfigPath = "configs/production.yaml"
)

func main() {
	fmt.Println("Starting prediction API...")

	var configPath string

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	_, logCloser, err := logging.SetupLogger(&cfg.Logging, "api")
	if err != nil {
		log.Printf("Warning: failed to setup logging: %v, continuing with default logger", err)
	} else {
		defer logCloser.Close()
	}
	slog.Info("Config loaded", "path", configPath)

	cache := openCache(&cfg.Redis)
	defer cache.Close()

	history := openHistory(cfg)
	if history != nil {
		defer func() {
			if err := history.Close(); err != nil {
				slog.Error("Error closing prediction history", "error", err)
			}
		}()
	}

	deps, predictions := newDeps(cfg, cache, history)
	if !predictions.UsesLLM() {
		slog.Warn("No OpenAI API key found, using statistical predictions")
	}

	if cfg.Telegram.BotToken != "" {
		notifier, err := notify.NewTelegramNotifier(&cfg.Telegram)
		if err != nil {
			slog.Warn("Telegram notifier disabled", "error", err)
		} else {
			deps.Notifier = notifier
			defer func() {
				notifier.Close()
				if n := notifier.Dropped(); n > 0 {
					slog.Warn("Telegram messages dropped", "count", n)
				}
			}()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Received shutdown signal, stopping API...")
		cancel()
	}()

	server := api.NewServer(deps)
	if err := health.Run(ctx, cfg.API.Addr, "api", server.Router(), cfg.API.ReadHeaderTimeout); err != nil {
		slog.Error("API server failed", "error", err)
		log.Fatalf("API server failed: %v", err)
	}
	slog.Info("Prediction API stopped")
}

// openCache returns the Redis cache when configured and reachable, else an
// in-memory cache.
func openCache(cfg *config.RedisConfig) storage.Cache {
	if cfg.Addr != "" {
		redisClient, err := storage.NewRedisClient(cfg)
		if err == nil {
			slog.Info("Redis cache enabled", "addr", cfg.Addr)
			return redisClient
		}
		slog.Warn("Redis unavailable, falling back to in-memory cache", "addr", cfg.Addr, "error", err)
	} else {
		slog.Info("Redis not configured, using in-memory cache")
	}
	return storage.NewMemoryCache()
}

func newDeps(cfg *config.Config, cache storage.Cache, history storage.PredictionStorage) (api.Deps, *predictor.Service) {
	predictions := predictor.NewService(&cfg.Prediction, cache)
	return api.Deps{
		Matches:   footballdata.NewClient(&cfg.FootballData, cache),
		Predictor: predictions,
		History:   history,
	}, predictions
}

// openHistory returns the Postgres history when a DSN is set, else SQLite
// when a path is set, else nil. Failures disable history.
func openHistory(cfg *config.Config) storage.PredictionStorage {
	if cfg.Postgres.DSN != "" {
		pg, err := storage.NewPostgresPredictionStorage(&cfg.Postgres)
		if err != nil {
			slog.Warn("PostgreSQL unavailable, prediction history disabled", "error", err)
			return nil
		}
		slog.Info("PostgreSQL prediction history enabled")
		return pg
	}
	if cfg.SQLite.Path != "" {
		lite, err := storage.NewSQLitePredictionStorage(&cfg.SQLite)
		if err != nil {
			slog.Warn("SQLite unavailable, prediction history disabled", "path", cfg.SQLite.Path, "error", err)
			return nil
		}
		slog.Info("SQLite prediction history enabled", "path", cfg.SQLite.Path)
		return lite
	}
	return nil
}
