package main

import (
	"flag"
	"log"

	"coursehub/config"
	"coursehub/database"
	"coursehub/logger"
)

// Imports an admin account and courses with their lessons from a YAML file.
// Courses whose slug already exists are skipped, so the import can be re-run.
//
//	go run ./scripts -file scripts/catalog.example.yaml
func main() {
	file := flag.String("file", "catalog.yaml", "YAML file with admin and courses")
	flag.Parse()

	// Load config and connect to database
	config.LoadConfig()
	if err := logger.Init(config.AppConfig.AppEnv); err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}
	database.ConnectDb()

	log.Printf("Importing catalog from %s", *file)
	if err := database.SeedFromFile(database.Database.Db, *file, config.AppConfig.SaltRound); err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Println("Import completed")
}
