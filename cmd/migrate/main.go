package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pulsesocial/pulse/internal/config"
	"github.com/pulsesocial/pulse/internal/repository/postgres"
	"github.com/pulsesocial/pulse/migrations"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := postgres.New(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("Connected to %s database\n", cfg.Database.Driver)

	schema, err := migrations.GetFS(cfg.Database.Driver)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	applied, err := postgres.RunMigrations(context.Background(), db, schema)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	if len(applied) == 0 {
		fmt.Println("Schema is up to date")
		return
	}
	for _, name := range applied {
		fmt.Printf("Applied %s\n", name)
	}
	fmt.Printf("%d migration(s) applied\n", len(applied))
}
