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

	"github.com/zhouzirui/talker-manager/backend/internal/config"
	"github.com/zhouzirui/talker-manager/backend/internal/handler"
	"github.com/zhouzirui/talker-manager/backend/internal/model/talker"
	"github.com/zhouzirui/talker-manager/backend/internal/service/events"
	talkerService "github.com/zhouzirui/talker-manager/backend/internal/service/talker"
	"github.com/zhouzirui/talker-manager/backend/internal/store"
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

	if cfg.Auth.Generated {
		log.Printf("AUTH_TOKEN not set, generated token for this run: %s", cfg.Auth.Token)
	}

	talkerStore, err := store.Open(cfg.Store)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.Store.Driver, err)
	}
	defer talkerStore.Close()

	if cfg.Store.Seed {
		seeded, err := store.SeedIfEmpty(ctx, talkerStore, talker.Seed())
		if err != nil {
			log.Fatalf("failed to seed store: %v", err)
		}
		if seeded {
			log.Printf("seeded %s store at %s with default talkers", cfg.Store.Driver, cfg.Store.Path)
		}
	}
	log.Printf("using %s store at %s", cfg.Store.Driver, cfg.Store.Path)

	hub := events.NewHub(cfg.Feed.Buffer)
	talkerSvc := talkerService.NewService(talkerStore, hub)

	router := handler.NewRouter(cfg, talkerSvc, hub)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("talker-manager listening on %s", addr)
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
