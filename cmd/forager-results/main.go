package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lixenwraith/forager/api"
	"github.com/lixenwraith/forager/store"
)

var (
	dbPath = flag.String("db", "forager.db", "SQLite results database written by forager")
	addr   = flag.String("addr", "127.0.0.1:8080", "Listen address")
)

func main() {
	flag.Parse()
	logger := log.New(os.Stderr, "[API] ", log.LstdFlags)

	db, err := store.NewSQLiteStore(*dbPath)
	if err != nil {
		logger.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           api.NewServer(db, logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
	}()

	logger.Printf("Serving %s on %s", *dbPath, *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server error: %v", err)
	}
	logger.Printf("Stopped")
}
