package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/verdant-app/verdant-server/catalog"
	"github.com/verdant-app/verdant-server/config"
	"github.com/verdant-app/verdant-server/utils"
)

// Starter set for a fresh catalog. Pass plant names as arguments to
// ingest a different list.
var defaultPlants = []string{
	"Tomato", "Rose", "Tulsi", "Neem", "Aloe Vera", "Mint",
	"Marigold", "Jasmine", "Bamboo", "Money Plant", "Petunia",
}

func main() {
	config.LoadConfig()

	db := utils.NewDB(config.MongoURI, config.DBName)
	ctx := context.Background()
	pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	if err := db.Ping(pingCtx); err != nil {
		cancel()
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	cancel()
	defer db.Close(ctx)

	names := os.Args[1:]
	if len(names) == 0 {
		names = defaultPlants
	}

	ing := &catalog.Ingester{
		HTTP:   &http.Client{Timeout: 30 * time.Second},
		Delay:  2 * time.Second,
		Save:   catalog.MongoSave(db),
		Exists: catalog.MongoExists(db),
	}

	saved, err := ing.Ingest(ctx, names)
	if err != nil {
		log.Fatalf("Catalog ingestion stopped after %d plants: %v", saved, err)
	}
	log.Printf("Catalog ingestion finished: %d of %d plants saved", saved, len(names))
}
