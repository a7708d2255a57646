package main

import (
	"ecosort/internal/config" // Custom import path (Config)
	"ecosort/internal/db"     // Custom import path (Database)
	"ecosort/internal/store"  // Database connection

	"github.com/sirupsen/logrus" // Logging library
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	gdb, err := store.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	// Demo accounts are seeded everywhere except production.
	if err := db.Migrate(gdb, !cfg.IsProd); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
}
