package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meshmap/internal/config"
	"meshmap/internal/handler"
	"meshmap/internal/hub"
	"meshmap/internal/repository/sqlite"
	"meshmap/internal/service"
	"meshmap/internal/watcher"
)

func main() {
	// Command line flags override the config file
	addr := flag.String("addr", "", "HTTP listen address")
	dbPath := flag.String("db", "", "SQLite database path")
	captureDir := flag.String("captures", "", "capture directory to watch")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting meshmap server...")

	cfg, cfgPath, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfgPath != "" {
		log.Printf("Config loaded: %s", cfgPath)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *captureDir != "" {
		cfg.Captures.Directory = *captureDir
	}

	// Initialize SQLite repository
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	// Initialize event bus
	eventBus := service.NewEventBus()

	// Initialize SSE hub
	sseHub := hub.New()
	go sseHub.Run()

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for event := range eventChan {
			sseHub.Broadcast(event)
		}
	}()

	// Initialize service and run the first pass over any existing captures
	topoSvc := service.NewTopologyService(repo, eventBus, cfg.InferenceOptions(), cfg.Captures.Directory, cfg.Captures.Pattern)
	if err := topoSvc.Refresh(context.Background()); err != nil {
		log.Printf("Warning: initial refresh failed: %v", err)
	}

	// Watch the capture directory; new captures trigger a fresh pass
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()

	captureWatcher := watcher.New(cfg.Captures.Directory, cfg.Captures.Pattern, func() {
		if err := topoSvc.Refresh(context.Background()); err != nil {
			log.Printf("Refresh after capture change failed: %v", err)
		}
	})
	go func() {
		if err := captureWatcher.Watch(watchCtx); err != nil && err != context.Canceled {
			log.Printf("Capture watcher stopped: %v", err)
		}
	}()

	// Initialize HTTP handlers
	topoHandler := handler.NewTopologyHandler(topoSvc)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/snapshots", topoHandler.ImportSnapshot)
	mux.HandleFunc("GET /api/snapshots", topoHandler.ListSnapshots)
	mux.HandleFunc("GET /api/sources", topoHandler.GetSources)

	mux.HandleFunc("POST /api/infer", topoHandler.RunInference)
	mux.HandleFunc("POST /api/reload", topoHandler.Reload)

	mux.HandleFunc("GET /api/passes", topoHandler.ListPasses)
	mux.HandleFunc("GET /api/passes/latest", topoHandler.GetLatestPass)
	mux.HandleFunc("GET /api/passes/{id}", topoHandler.GetPass)

	mux.HandleFunc("GET /api/topology", topoHandler.GetTopology)
	mux.HandleFunc("GET /api/graph", topoHandler.GetGraph)

	// SSE events endpoint
	mux.Handle("GET /events", sseHub)

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	watchCancel()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
