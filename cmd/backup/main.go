package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"pubhub/config"
	"pubhub/database"
	"pubhub/services"
	"pubhub/storage"
)

// backup exportiert einmalig einen Publikations-Snapshot nach S3 und rotiert
// alte Snapshots. Gedacht für einen externen Cron-Job.
func main() {
	log.Println("Starte Snapshot-Export...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fehler beim Laden der Konfiguration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Fehler beim Initialisieren des Loggers: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// 1. Datenbank öffnen
	db, err := database.Open(cfg, logger)
	if err != nil {
		log.Fatalf("Fehler beim Verbinden mit der Datenbank: %v", err)
	}

	// 2. S3-Client erstellen
	s3Client, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		log.Fatalf("Fehler beim Erstellen des S3-Clients: %v", err)
	}

	// 3. Snapshot schreiben und alte Snapshots rotieren
	snapshots := services.NewSnapshotService(cfg, services.NewAggregationReader(db), s3Client, logger, nil)
	link, err := snapshots.Export(ctx)
	if err != nil {
		log.Fatalf("Fehler beim Snapshot-Export: %v", err)
	}

	log.Printf("Snapshot erfolgreich hochgeladen: %s", link)
}
