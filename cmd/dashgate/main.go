package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"dashgate/internal/config"
	"dashgate/internal/db"
	"dashgate/internal/nav"
	"dashgate/internal/router"
	"dashgate/internal/service"
	"dashgate/internal/store"
)

func main() {
	cfg := config.Load()

	backend, err := openBackend(cfg)
	if err != nil {
		log.Fatalf("open session backend: %v", err)
	}
	st := store.New(backend)

	tree, err := nav.Load(cfg.NavTreePath)
	if err != nil {
		log.Printf("navigation tree unavailable (%v), continuing with an empty tree", err)
	}

	api := service.NewHTTPAuthAPI(cfg.AuthBaseURL)
	handler := router.New(cfg, st, api, tree, nil)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("dashgate listening on :%s (store=%s)", cfg.Port, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-done
	log.Println("shutting down...")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	log.Println("stopped")
}

func openBackend(cfg *config.Config) (store.Backend, error) {
	switch cfg.StoreDriver {
	case "memory":
		return store.NewMemoryBackend(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		ttl := time.Duration(cfg.CookieExpiryDays) * 24 * time.Hour
		return store.NewRedisBackend(client, ttl), nil
	case "sqlite", "postgres":
		database, err := db.Open(cfg)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(database, cfg.StoreDriver); err != nil {
			return nil, err
		}
		log.Println("database migrations applied")
		return store.NewSQLBackend(database, cfg.StoreDriver), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}
