package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/talDoFlemis/health-hub/internal/auth"
	"github.com/talDoFlemis/health-hub/internal/clinic"
	"github.com/talDoFlemis/health-hub/internal/config"
	"github.com/talDoFlemis/health-hub/internal/httpapi"
	"github.com/talDoFlemis/health-hub/internal/obs"
)

var version = "1.0.0"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()

	var db *sql.DB
	if cfg.DatabaseDSN != "" {
		db, err = sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	} else {
		log.Fatal("HEALTHHUB_PG_DSN is required")
	}

	codec, err := auth.NewCodec(auth.SigningConfig{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	})
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	authSvc, err := auth.NewService(
		auth.NewPGUserStore(db),
		auth.NewPGTokenRegistry(db),
		codec,
	)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	clinicSvc, err := clinic.NewService(clinic.NewPGStore(db))
	if err != nil {
		log.Fatalf("clinic service: %v", err)
	}

	api := httpapi.New(authSvc, clinicSvc, httpapi.ReadyProbe{DB: db}, version,
		httpapi.WithAllowedOrigins(cfg.AllowedOrigins))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting health-hub-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	_ = db.Close()
	log.Println("Stopped")
}
