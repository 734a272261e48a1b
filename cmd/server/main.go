package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"micronation/internal/platform/config"
	"micronation/internal/platform/httpserver"
	"micronation/internal/platform/logger"
	"micronation/internal/platform/metrics"
	"micronation/internal/platform/postgres"
	"micronation/internal/repository"
	httptransport "micronation/internal/transport/http"
	"micronation/internal/user"
	"micronation/internal/user/hash"
	"micronation/internal/user/service"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	users, err := repository.NewPostgres[user.Document](db, "users")
	if err != nil {
		log.Error("failed to create user store", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	identity := service.New(users, hash.New(cfg.BcryptCost), m)
	handler := httptransport.NewUserHandler(identity, log)
	router := httptransport.NewRouter(handler, log, m)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting micronation identity service", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
