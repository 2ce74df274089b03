package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/names-api/backend/internal/config"
	"github.com/zhouzirui/names-api/backend/internal/handler"
	"github.com/zhouzirui/names-api/backend/internal/model/name"
	"github.com/zhouzirui/names-api/backend/internal/storage/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.Store.Driver, err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("failed to close store: %v", err)
		}
	}()

	router, err := handler.NewRouter(store)
	if err != nil {
		log.Fatalf("failed to build router: %v", err)
	}

	startServer(ctx, cfg.Server, router)
}

func openStore(ctx context.Context, cfg config.StoreConfig) (name.Store, func() error, error) {
	var seed []name.Record
	if cfg.Seed {
		seed = name.Seed()
	}

	if cfg.Driver != config.DriverSQLite {
		log.Printf("using in-memory names store (%d seeded records)", len(seed))
		return name.NewMemoryStore(seed), func() error { return nil }, nil
	}

	store, err := sqlite.Open(ctx, cfg.Path)
	if err != nil {
		return nil, nil, err
	}

	written, err := store.Seed(ctx, seed)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	log.Printf("using sqlite names store at %s (%d seeded records)", cfg.Path, written)
	return store, store.Close, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("names API listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Printf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
