// Command catalogue-import loads a catalogue.json file into the product
// table. Catalogue validation itself happens upstream; this only
// persists what the onboarding pipeline produced.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/mittal-parth/agentic-commerce/internal/domain"
	"github.com/mittal-parth/agentic-commerce/internal/store"
)

type catalogueEntry struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	PricePaise   int64  `json:"price_paise"`
	InventoryQty int64  `json:"inventory_qty"`
	Category     string `json:"category"`
	ImageURL     string `json:"image_url"`
}

func main() {
	cataloguePath := flag.String("catalogue", "data/catalogue.json", "path to catalogue.json")
	dbPath := flag.String("db", "data/merchant.db", "path to sqlite database")
	migrationsPath := flag.String("migrations", "internal/store/migrations", "path to migrations directory")
	flag.Parse()

	raw, err := os.ReadFile(*cataloguePath)
	if err != nil {
		log.Fatalf("failed to read catalogue: %v", err)
	}

	var entries []catalogueEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		// The onboarding pipeline sometimes wraps entries in an object.
		var wrapped struct {
			Products []catalogueEntry `json:"products"`
		}
		if err2 := json.Unmarshal(raw, &wrapped); err2 != nil {
			log.Fatalf("failed to parse catalogue: %v", err)
		}
		entries = wrapped.Products
	}

	db, err := store.New(*dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(*migrationsPath); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	ctx := context.Background()
	imported := 0
	for _, entry := range entries {
		if entry.ID == "" || entry.Title == "" {
			log.Printf("skipping catalogue entry with missing id or title: %+v", entry)
			continue
		}
		product := &domain.Product{
			ID:           entry.ID,
			Title:        entry.Title,
			Description:  entry.Description,
			PricePaise:   entry.PricePaise,
			InventoryQty: entry.InventoryQty,
			Category:     entry.Category,
			ImageURL:     entry.ImageURL,
		}
		if err := db.UpsertProduct(ctx, product); err != nil {
			log.Fatalf("failed to import product %s: %v", entry.ID, err)
		}
		imported++
	}

	log.Printf("imported %d products", imported)
}
