package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"agrigeo/internal/config"
	httpserver "agrigeo/internal/server/http"
	"agrigeo/pkg/cfg"
	"agrigeo/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	env := cfg.String("APP_ENV", "dev")

	cleanup := logger.Setup(env, cfg.String("LOG_DIR", "logs"))
	defer cleanup()

	configPath := cfg.String("APP_CONFIG", "config.yaml")

	conf, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if pretty, err := conf.Pretty(); err == nil {
		log.Printf("[agrigeo] config:\n%s", pretty)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, storesCleanup, err := httpserver.SetupStores(ctx, conf.Cache)
	if err != nil {
		log.Fatalf("failed to init cache: %v", err)
	}
	defer storesCleanup()

	// per-provider timeouts are applied through the request context
	svc := httpserver.NewService(conf, stores, &http.Client{})
	log.Printf("[agrigeo] soil ttl=%s facilities ttl=%s", conf.Soil.CacheTTL(), conf.Facilities.CacheTTL())

	srv := httpserver.New(conf, svc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
		// give the server a moment to finish graceful shutdown
		select {
		case err := <-errCh:
			if err != nil {
				log.Printf("shutdown error: %v", err)
			}
		case <-time.After(time.Duration(conf.Server.ShutdownTimeoutSec+1) * time.Second):
		}
	}
}
