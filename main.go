// lookout.report ingests per-frame object detections from a camera
// pipeline and raises behavioural alerts (loitering, abandoned objects)
// over a small HTTP API.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/lookout.report/db"
	"github.com/banshee-data/lookout.report/internal/api"
	"github.com/banshee-data/lookout.report/internal/config"
	"github.com/banshee-data/lookout.report/internal/vision"
	"github.com/banshee-data/lookout.report/internal/vision/monitor"
)

var (
	listen     = flag.String("listen", ":8080", "Listen address")
	dbPath     = flag.String("db", "alerts.db", "Path to sqlite alert database (empty to disable persistence)")
	camera     = flag.String("camera", "", "Camera name recorded with the session")
	tuningPath = flag.String("tuning", "", "Optional behavioural tuning JSON")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := vision.DefaultConfig()
	if *tuningPath != "" {
		tc, err := config.LoadTuningConfig(*tuningPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
		cfg, err = tc.EngineConfig()
		if err != nil {
			log.Fatalf("invalid tuning config: %v", err)
		}
	}

	engine, err := vision.NewEngine(cfg)
	if err != nil {
		log.Fatalf("failed to create engine: %v", err)
	}

	var store *db.DB
	if *dbPath != "" {
		store, err = db.NewDB(*dbPath)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer store.Close()
		if err := store.RecordSession(engine.SessionID(), *camera, time.Now()); err != nil {
			log.Fatalf("failed to record session: %v", err)
		}
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		srv := api.NewServer(engine, store, *camera)

		mux := http.NewServeMux()
		mux.Handle("/api/", http.StripPrefix("/api", srv.ServeMux()))

		// debugging chart pages, no auth
		monitor.New(srv, store, *camera).Register(mux)

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		go func() {
			log.Printf("listening on %s (session %s)", *listen, engine.SessionID())
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
