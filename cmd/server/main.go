package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klazomenai/landing-service/pkg/api"
	"github.com/klazomenai/landing-service/pkg/auth"
	"github.com/klazomenai/landing-service/pkg/config"
	"github.com/klazomenai/landing-service/pkg/page"
	"github.com/klazomenai/landing-service/pkg/storage"
	"github.com/klazomenai/landing-service/pkg/sweeper"
	"github.com/klazomenai/landing-service/pkg/telemetry"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Tracing is opt-in
	otelEndpoint := ""
	if cfg.TracingEnabled() {
		otelEndpoint = cfg.OTelEndpoint
	}
	shutdownTracing, err := telemetry.Setup(context.Background(), otelEndpoint)
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}
	if otelEndpoint != "" {
		log.Printf("Exporting traces to %s", otelEndpoint)
	}

	tokens, err := newTokenService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize token service: %v", err)
	}

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize view store: %v", err)
	}

	renderer, err := page.NewRenderer()
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	server := api.NewServer(tokens, store, renderer, cfg.ViewTTL)

	sweepWorker := sweeper.NewWorker(&sweeper.WorkerConfig{CheckInterval: cfg.SweepInterval}, store)
	go sweepWorker.Start()

	addr := ":" + cfg.Port
	log.Printf("Starting landing service on %s (view_ttl=%s)", addr, cfg.ViewTTL)
	log.Printf("Endpoints:")
	log.Printf("  GET    / - Landing page, initial pass (?render=full for inline layers)")
	log.Printf("  GET    /views/{token}/layers - Client-capable pass, star and particle layers")
	log.Printf("  GET    /api/views/{token}/field - Client-capable pass as JSON")
	log.Printf("  GET    /chat - Chat view")
	log.Printf("  GET    /health - Health check")
	log.Printf("  GET    /metrics - Prometheus metrics")

	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutdown signal received, stopping services...")

	sweepWorker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Warning: HTTP shutdown: %v", err)
	}

	if err := store.Close(); err != nil {
		log.Printf("Warning: Closing view store: %v", err)
	}

	if err := shutdownTracing(ctx); err != nil {
		log.Printf("Warning: Flushing traces: %v", err)
	}

	log.Println("Shutdown complete")
}

// newTokenService uses the configured secret or generates one for this process
func newTokenService(cfg *config.Config) (*auth.TokenService, error) {
	secret := []byte(cfg.TokenSecret)
	if len(secret) == 0 {
		log.Printf("LANDING_TOKEN_SECRET not set, generating a per-process secret")
		generated, err := auth.GenerateSecret()
		if err != nil {
			return nil, err
		}
		secret = generated
	}
	return auth.NewTokenService(cfg.TokenIssuer, secret)
}

// newStore connects to Redis when configured and falls back to memory otherwise
func newStore(cfg *config.Config) (storage.Store, error) {
	if !cfg.UseRedis() {
		log.Printf("REDIS_ADDR not set, keeping views in memory")
		return storage.NewMemoryStore(), nil
	}

	store, err := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to Redis at %s", cfg.RedisAddr)
	return store, nil
}
