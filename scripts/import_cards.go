// Command import_cards validates a card data file and imports the card
// definitions into PostgreSQL for deck builders and other external tools.
//
// Usage:
//
//	go run scripts/import_cards.go -data data/cards.json -db postgres://...
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trophicgame/trophic-server-go/internal/game/cards"
)

var (
	dataPath = flag.String("data", "data/cards.json", "path to the card data file")
	dbURL    = flag.String("db", os.Getenv("TROPHIC_DATABASE_URL"), "database connection URL")
	dryRun   = flag.Bool("dry-run", false, "validate the data file without writing to the database")
)

func main() {
	flag.Parse()

	registry, err := cards.LoadFile(*dataPath)
	if err != nil {
		log.Fatalf("card data validation failed: %v", err)
	}
	fmt.Printf("validated %d card definitions from %s\n", registry.CardCount(), *dataPath)

	if *dryRun {
		return
	}
	if *dbURL == "" {
		log.Fatal("no database URL: pass -db or set TROPHIC_DATABASE_URL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, *dbURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := ensureSchema(ctx, pool); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	imported, err := importCards(ctx, pool, registry)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}
	fmt.Printf("imported %d card definitions\n", imported)
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS card_definitions (
			id             INTEGER PRIMARY KEY,
			name           TEXT NOT NULL,
			name_key       TEXT NOT NULL DEFAULT '',
			trophic_level  INTEGER NOT NULL,
			category       INTEGER NOT NULL,
			domain         INTEGER NOT NULL,
			victory_points INTEGER NOT NULL,
			imported_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

func importCards(ctx context.Context, pool *pgxpool.Pool, registry *cards.Registry) (int, error) {
	imported := 0
	for _, def := range registry.AllCards() {
		_, err := pool.Exec(ctx, `
			INSERT INTO card_definitions (id, name, name_key, trophic_level, category, domain, victory_points, imported_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				name_key = EXCLUDED.name_key,
				trophic_level = EXCLUDED.trophic_level,
				category = EXCLUDED.category,
				domain = EXCLUDED.domain,
				victory_points = EXCLUDED.victory_points,
				imported_at = now()`,
			def.ID, def.Name, def.NameKey, int(def.Level), int(def.Category), int(def.Domain), def.VictoryPoints)
		if err != nil {
			return imported, fmt.Errorf("card %d (%s): %w", def.ID, def.Name, err)
		}
		imported++
	}
	return imported, nil
}
