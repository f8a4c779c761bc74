// Command cardimport merges a CSV export of card definitions into the
// YAML static data file the server loads.
//
// CSV columns, with a header row:
//
//	id,name,trophic_level,category,domain,energy_cost,requirements,keywords,abilities,victory_points
//
// requirements is "category:count" pairs separated by ";", keywords and
// abilities are ";"-separated ids. Rows replace existing cards with the
// same id.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/biomasters/biomasters-server-go/internal/game/cards"
)

func main() {
	csvPath := flag.String("csv", "data/cards_export.csv", "CSV file to import")
	dataPath := flag.String("data", "data/cards.yaml", "static data file to update")
	dryRun := flag.Bool("dry-run", false, "validate without writing")
	flag.Parse()

	absPath, err := filepath.Abs(*csvPath)
	if err != nil {
		log.Fatalf("Failed to get absolute path: %v", err)
	}

	fmt.Println("=== BioMasters Card Data Import ===")
	fmt.Printf("CSV file: %s\n", absPath)
	fmt.Printf("Data file: %s\n", *dataPath)

	csvFile, err := os.Open(absPath)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer csvFile.Close()

	existing, err := os.ReadFile(*dataPath)
	if err != nil {
		log.Fatalf("Failed to read data file: %v", err)
	}
	base, err := cards.ParseFile(existing)
	if err != nil {
		log.Fatalf("Failed to parse data file: %v", err)
	}

	startTime := time.Now()

	rows, rowErrs := readCards(csvFile)
	for _, e := range rowErrs {
		log.Printf("Warning: %v", e)
	}
	fmt.Printf("Parsed %d valid cards\n", len(rows))
	if len(rows) == 0 {
		log.Fatal("CSV file has no usable rows")
	}

	merged, added, replaced := merge(base, rows)
	tables, err := merged.Tables()
	if err != nil {
		log.Fatalf("Imported data is invalid: %v", err)
	}

	fmt.Println("\n=== Import Complete ===")
	fmt.Printf("✓ Added: %d cards\n", added)
	fmt.Printf("✓ Replaced: %d cards\n", replaced)
	if len(rowErrs) > 0 {
		fmt.Printf("✗ Skipped: %d rows\n", len(rowErrs))
	}
	fmt.Printf("Total cards: %d\n", len(tables.CardIDs()))
	fmt.Printf("Time taken: %s\n", time.Since(startTime))

	if *dryRun {
		fmt.Println("Dry run: data file not written")
		return
	}

	out, err := yaml.Marshal(merged)
	if err != nil {
		log.Fatalf("Failed to encode data file: %v", err)
	}
	if err := os.WriteFile(*dataPath, out, 0o644); err != nil {
		log.Fatalf("Failed to write data file: %v", err)
	}
	fmt.Printf("✓ Wrote %s\n", *dataPath)
}
