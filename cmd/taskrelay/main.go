package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ent0n29/taskrelay/internal/backend"
	"github.com/ent0n29/taskrelay/internal/chat"
	"github.com/ent0n29/taskrelay/internal/config"
	"github.com/ent0n29/taskrelay/internal/httpapi"
	"github.com/ent0n29/taskrelay/internal/observability"
	"github.com/ent0n29/taskrelay/internal/policy"
	"github.com/ent0n29/taskrelay/internal/relay"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	adapter, err := chat.NewTelegramAdapter(chat.TelegramConfig{Token: cfg.TelegramToken})
	if err != nil {
		log.Fatalf("telegram init failed: %v", err)
	}

	// Resolve and cache our own identity before the listen loop; failing
	// here must abort startup rather than surface per message.
	self, err := adapter.SelfIdentity(context.Background())
	if err != nil {
		log.Fatalf("identity resolution failed: %v", err)
	}
	log.Printf("relay identity: %s", self)
	if cfg.AllowedUserID == "" {
		log.Printf("no ALLOWED_USER_ID configured; only our own account may submit tasks")
	}

	gate := policy.NewGate(self, cfg.AllowedUserID)

	control, err := backend.NewControlClient(cfg.BackendWSURL)
	if err != nil {
		log.Fatalf("backend url invalid: %v", err)
	}

	dial := func(ctx context.Context) (relay.Streamer, error) {
		return backend.Dial(ctx, cfg.BackendWSURL)
	}

	rl := relay.New(relay.Options{
		Chat:           adapter,
		Gate:           gate,
		Control:        control,
		Dial:           dial,
		UpdateInterval: cfg.UpdateInterval,
		DisplayLimit:   cfg.DisplayLimit,
		Metrics:        metrics,
	})

	api := httpapi.New(cfg.BackendWSURL, self)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	go func() {
		log.Printf("ops server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	listenDone := make(chan error, 1)
	go func() {
		log.Printf("relay listening for messages (backend %s)", cfg.BackendWSURL)
		listenDone <- rl.Listen(runCtx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Printf("shutdown signal received")
	case err := <-listenDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("listener stopped: %v", err)
		}
	}

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
