package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/tsfdb/tsfdb-go/pkg/server"
	"github.com/tsfdb/tsfdb-go/pkg/server/monitor"
)

const (
	serverReadTimeout  = 10 * time.Second
	serverWriteTimeout = 10 * time.Second
	shutdownTimeout    = 30 * time.Second
)

func main() {
	cfg := server.LoadConfig()

	store, facade, err := server.InitializeStore(cfg)
	if err != nil {
		log.Fatalf("failed to initialize store: %v", err)
	}
	defer store.Close()

	storageMonitor := monitor.NewStorageMonitor(cfg.DataDir, cfg.MaxStorageGB*1024*1024*1024)
	gcMonitor := server.InitializeGCMonitor()

	ingestHandler, queryHandler := server.InitializeHandlers(facade)

	var wg sync.WaitGroup
	stopGC := make(chan bool)
	wg.Add(1)
	go server.RunBadgerGC(store, gcMonitor, stopGC, &wg)

	router := mux.NewRouter()
	server.SetupRoutes(router, ingestHandler, queryHandler, storageMonitor, gcMonitor, cfg.Port)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
	}

	go func() {
		log.Printf("server starting on http://localhost:%s", cfg.Port)
		log.Println("API endpoints:")
		log.Println("   POST /v1/write      - ingest a line-protocol batch")
		log.Println("   GET  /v1/fetch      - range query")
		log.Println("   GET  /v1/resources  - discover resources")
		log.Println("   GET  /v1/metrics    - discover metrics for a resource")
		log.Println("   GET  /v1/storage    - storage usage")
		log.Println("   GET  /v1/health     - service health")
		log.Println("server ready to accept requests")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutdown signal received...")
	close(stopGC)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown warning: %v", err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("all background tasks stopped cleanly")
	case <-time.After(5 * time.Second):
		log.Println("some background tasks did not stop in time (forcing exit)")
	}

	log.Println("server exited cleanly")
}
