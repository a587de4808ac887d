// Package main provides a tool to seed the database with demo
// inventory data.
//
// This creates a demo board with vocabulary lists and a spread of
// items across sale states to exercise listing, search, and export.
//
// Usage:
//
//	DATA_PATH=~/Stockroom/data go run ./cmd/seed
//	DATA_PATH=~/Stockroom/data go run ./cmd/seed --items 50
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/stockroomapp/stockroom-server/internal/domain"
	"github.com/stockroomapp/stockroom-server/internal/store"
)

var itemCount = flag.Int("items", 25, "Number of demo items to create")

var categories = []string{"Seating", "Tables", "Lighting", "Rugs", "Home Décor", "Storage"}
var labels = []string{"vintage", "restored", "new-arrival", "clearance"}
var payees = []string{"Main Account", "Petty Cash"}

var titles = []string{
	"Velvet armchair", "Walnut coffee table", "Brass floor lamp",
	"Persian rug", "Ceramic vase", "Oak bookshelf", "Rattan stool",
	"Marble side table", "Linen sofa", "Copper pendant light",
	"Teak sideboard", "Wool throw rug", "Glass display cabinet",
}

var customers = []domain.Customer{
	{Name: "Priya Sharma", Email: "priya@example.com", Phone: "555-0101"},
	{Name: "Marcus Webb", Email: "marcus@example.com"},
	{Name: "Elena Rossi", Phone: "555-0145"},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Stockroom/data")
	}
	dbPath := filepath.Join(dataPath, "db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	board, err := s.CreateBoard(ctx, &domain.Board{Name: "Demo Shop"})
	if err != nil {
		log.Fatalf("Failed to create board: %v", err)
	}
	fmt.Printf("Created board %s (%s)\n", board.Name, board.ID)

	for _, c := range categories {
		if err := s.AddCategory(ctx, board.ID, c); err != nil {
			log.Fatalf("Failed to add category: %v", err)
		}
	}
	for _, l := range labels {
		if err := s.AddLabel(ctx, board.ID, l); err != nil {
			log.Fatalf("Failed to add label: %v", err)
		}
	}
	for _, p := range payees {
		if err := s.AddPayee(ctx, board.ID, p); err != nil {
			log.Fatalf("Failed to add payee: %v", err)
		}
	}
	fmt.Printf("Seeded vocabulary: %d categories, %d labels, %d payees\n",
		len(categories), len(labels), len(payees))

	created := 0
	for i := range *itemCount {
		item := &domain.InventoryItem{
			BoardID:       board.ID,
			ProductID:     fmt.Sprintf("SKU-%04d", i+1),
			Title:         titles[rng.Intn(len(titles))],
			Category:      categories[rng.Intn(len(categories))],
			Label:         labels[rng.Intn(len(labels))],
			PurchasePrice: int64(2000 + rng.Intn(50000)),
		}
		item.ListedPrice = item.PurchasePrice + int64(1000+rng.Intn(30000))

		// Roughly a third sold, a sixth pending, the rest available.
		switch rng.Intn(6) {
		case 0, 1:
			item.SaleStatus = domain.SaleStatusSold
			item.SoldAt = item.ListedPrice - int64(rng.Intn(2000))
			item.DeliveryCharges = int64(rng.Intn(3000))
			item.PaidTo = payees[rng.Intn(len(payees))]
			item.Customer = customers[rng.Intn(len(customers))]
			if rng.Intn(2) == 0 {
				item.SaleType = domain.SaleTypeOnline
			} else {
				item.SaleType = domain.SaleTypeOffline
			}
		case 2:
			item.SaleStatus = domain.SaleStatusPending
		default:
			item.SaleStatus = domain.SaleStatusAvailable
		}

		if _, err := s.CreateItem(ctx, item); err != nil {
			log.Fatalf("Failed to create item: %v", err)
		}
		created++
	}

	fmt.Printf("Created %d items on board %s\n", created, board.ID)
	fmt.Println("Done")
}
