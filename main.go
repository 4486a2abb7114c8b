package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"movura-admin/api"
	"movura-admin/cli"
	"movura-admin/config"
	"movura-admin/core/bootstrap"
	"movura-admin/core/store"
	"movura-admin/core/utils"
	"movura-admin/jobs"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] != "serve" {
		cli.Run()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger := utils.NewLogger()
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalf("db init: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(context.Background(), db, logger); err != nil {
		logger.Fatalf("migrations: %v", err)
	}

	sessions, err := newSessionStore(cfg, db)
	if err != nil {
		logger.Fatalf("session backend: %v", err)
	}

	users := store.NewUsersStore(db)
	facilities := store.NewFacilitiesStore(db)
	merchants := store.NewMerchantsStore(db)
	if err := bootstrap.Seed(context.Background(), cfg, logger, users, facilities, merchants); err != nil {
		logger.Fatalf("seed: %v", err)
	}

	housekeeping := jobs.NewHousekeeping(cfg.Housekeeping, sessions, store.NewAuditStore(db), logger)
	if err := housekeeping.Start(context.Background()); err != nil {
		logger.Fatalf("housekeeping: %v", err)
	}
	housekeeping.RunOnce(context.Background(), time.Now().UTC())

	srv, err := api.NewServer(cfg, db, sessions, logger)
	if err != nil {
		logger.Fatalf("server init: %v", err)
	}
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := housekeeping.Stop(ctx); err != nil {
		logger.Errorf("housekeeping stop: %v", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("graceful shutdown: %v", err)
	}
}

func newSessionStore(cfg *config.AppConfig, db *sql.DB) (store.SessionStore, error) {
	if cfg.Sessions.Backend == "redis" {
		return store.NewRedisSessionStore(cfg.Sessions.RedisURL)
	}
	return store.NewSQLSessionStore(db), nil
}
