package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/antoniostano/kyra/internal/completion"
	"github.com/antoniostano/kyra/internal/config"
	"github.com/antoniostano/kyra/internal/httpapi"
	"github.com/antoniostano/kyra/internal/kyra"
	"github.com/antoniostano/kyra/internal/memory"
	"github.com/antoniostano/kyra/internal/observability"
	"github.com/antoniostano/kyra/internal/webpage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := memory.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("memory store init failed: %v", err)
	}
	defer store.Close()
	if cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL not set; conversation memory is in-process only")
	}

	if cfg.CompletionAPIKey == "" {
		log.Printf("COMPLETION_API_KEY not set; completion calls will be rejected upstream")
	}
	completer := completion.NewClient(cfg.CompletionAPIKey, cfg.CompletionBaseURL, cfg.CompletionModel)
	extractor := webpage.NewExtractor(cfg.PageFetchTimeout)

	orchestrator := kyra.NewOrchestrator(store, completer, extractor, metrics, cfg.MemoryWindow)

	api := httpapi.New(cfg, orchestrator, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
