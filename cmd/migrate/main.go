// Command migrate applies the database schema and, optionally, the CSV
// seed data.
//
// Usage:
//
//	migrate up|down|status|seed
package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/talDoFlemis/health-hub/internal/auth"
	"github.com/talDoFlemis/health-hub/internal/clinic"
	"github.com/talDoFlemis/health-hub/internal/migrations"
	"github.com/talDoFlemis/health-hub/internal/seed"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		log.Fatal("usage: migrate up|down|status|seed")
	}
	command := os.Args[1]

	dsn := os.Getenv("HEALTHHUB_PG_DSN")
	if dsn == "" {
		log.Fatal("HEALTHHUB_PG_DSN is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	switch command {
	case "up":
		err = migrations.Up(ctx, db)
	case "down":
		err = migrations.Down(ctx, db)
	case "status":
		err = migrations.Status(ctx, db)
	case "seed":
		err = runSeed(ctx, db)
	default:
		log.Fatalf("unknown command %q", command)
	}
	if err != nil {
		log.Fatalf("%s: %v", command, err)
	}
	log.Printf("%s: done", command)
}

func runSeed(ctx context.Context, db *sql.DB) error {
	dir := os.Getenv("HEALTHHUB_SEED_DIR")
	if dir == "" {
		dir = "seed-data"
	}
	if err := migrations.Up(ctx, db); err != nil {
		return err
	}
	s := seed.New(clinic.NewPGStore(db), auth.NewPGUserStore(db), log.Default())
	return s.Run(ctx, dir)
}
