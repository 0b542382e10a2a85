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

	"github.com/Vodeneev/matchpredict/internal/pkg/config"
	"github.com/Vodeneev/matchpredict/internal/pkg/logging"
	"github.com/Vodeneev/matchpredict/internal/web"
)

const (
	defaultConfigPath = "configs/production.yaml"
)

func main() {
	fmt.Println("Starting web front...")

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

	_, logCloser, err := logging.SetupLogger(&cfg.Logging, "web")
	if err != nil {
		log.Printf("Warning: failed to setup logging: %v, continuing with default logger", err)
	} else {
		defer logCloser.Close()
	}
	slog.Info("Using backend", "url", cfg.Web.BackendURL, "locale", cfg.Web.Locale)

	backend := web.NewHTTPBackend(cfg.Web.BackendURL, cfg.Web.RequestTimeout)
	server, err := web.NewServer(&cfg.Web, backend)
	if err != nil {
		log.Fatalf("Failed to create web server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Received shutdown signal, stopping web front...")
		cancel()
	}()

	if err := server.Serve(ctx); err != nil {
		slog.Error("Web server failed", "error", err)
		log.Fatalf("Web server failed: %v", err)
	}
	slog.Info("Web front stopped")
}
