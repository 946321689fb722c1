package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stayclose/stayclose/internal/config"
	"github.com/stayclose/stayclose/internal/notifier"
	"github.com/stayclose/stayclose/internal/store"
	"github.com/stayclose/stayclose/internal/syncer"
	"github.com/stayclose/stayclose/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAgent()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	l.Info("Starting stayclose-agent...")

	client := store.NewClient(cfg.APIBaseURL, cfg.APIToken, l)

	// The in-memory bridge stands in for the platform notification
	// surface until a real device bridge is plugged in.
	bridge := notifier.NewMemoryBridge(notifier.PermissionPrompt, true)
	adapter := notifier.New(bridge, cfg.LocalScheduling, l)

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", promhttp.Handler())
		l.Infof("Metrics listening on :%s", cfg.MetricsPort)
		if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil {
			l.Errorf("Metrics server error: %v", err)
		}
	}()

	// Full resync on startup: the store is authoritative, local state is
	// rebuilt from scratch.
	svc := syncer.New(client, client, adapter, l)
	result, err := svc.Sync(context.Background())
	if err != nil {
		l.Fatalf("Sync failed: %v", err)
	}
	l.Infof("Sync finished: %d scheduled, %d failed, %d skipped of %d",
		result.Scheduled, result.Failed, result.Skipped, result.Total)
}
