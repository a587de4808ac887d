// Package main provides a read-only inspection tool for the badger
// database: entity counts per prefix plus a dangling image reference
// report.
//
// Usage:
//
//	DATA_PATH=~/Stockroom/data go run ./cmd/dbinspect
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/stockroomapp/stockroom-server/internal/domain"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Stockroom/data")
	}
	dbPath := filepath.Join(dataPath, "db")

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	boards := countPrefix(db, "board:")
	assets := map[string]bool{}
	items := []*domain.InventoryItem{}

	err = db.View(func(txn *badger.Txn) error {
		if err := collect(txn, "asset:", func(key string, val []byte) error {
			var asset domain.Asset
			if err := json.Unmarshal(val, &asset); err != nil {
				return fmt.Errorf("decode %s: %w", key, err)
			}
			assets[asset.ID] = true
			return nil
		}); err != nil {
			return err
		}

		return collect(txn, "item:", func(key string, val []byte) error {
			var item domain.InventoryItem
			if err := json.Unmarshal(val, &item); err != nil {
				return fmt.Errorf("decode %s: %w", key, err)
			}
			items = append(items, &item)
			return nil
		})
	})
	if err != nil {
		log.Fatalf("Inspection failed: %v", err)
	}

	fmt.Printf("Boards: %d\n", boards)
	fmt.Printf("Items:  %d\n", len(items))
	fmt.Printf("Assets: %d\n", len(assets))
	fmt.Println()

	dangling := 0
	for _, item := range items {
		for _, ref := range item.ImageIDs {
			if !assets[ref] {
				fmt.Printf("dangling reference: item %s -> %s\n", item.ID, ref)
				dangling++
			}
		}
	}
	if dangling == 0 {
		fmt.Println("All image references resolve.")
	} else {
		fmt.Printf("\n%d dangling image reference(s)\n", dangling)
	}
}

// collect walks a prefix, skipping secondary index keys.
func collect(txn *badger.Txn, prefix string, fn func(key string, val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	indexPrefix := prefix + "idx:"
	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		item := it.Item()
		key := string(item.Key())
		if strings.HasPrefix(key, indexPrefix) {
			continue
		}
		if err := item.Value(func(val []byte) error {
			return fn(key, val)
		}); err != nil {
			return err
		}
	}
	return nil
}

func countPrefix(db *badger.DB, prefix string) int {
	count := 0
	_ = db.View(func(txn *badger.Txn) error {
		return collect(txn, prefix, func(string, []byte) error {
			count++
			return nil
		})
	})
	return count
}
