// Command morfeo-index loads a dictionary file and, optionally, a sense
// inventory into a SQLite database that morfeo can use in place of the
// plain-text files (resources.dictionary ending in .db).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cognicore/morfeo/pkg/morfeo/store/sqlite"
)

type importStats struct {
	Forms  int
	Senses int
}

func main() {
	var (
		dbPath     = flag.String("db", "", "SQLite database to create or extend (required)")
		dictPath   = flag.String("dict", "", "Dictionary file: form (lemma tag)+ per line")
		sensesPath = flag.String("senses", "", "Sense inventory file: lemma pos (sense[:score])+ per line")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}
	if *dictPath == "" && *sensesPath == "" {
		log.Fatal("nothing to import: pass --dict and/or --senses")
	}

	start := time.Now()
	stats, err := index(context.Background(), *dbPath, *dictPath, *sensesPath)
	if err != nil {
		log.Fatalf("index: %v", err)
	}
	log.Printf("Indexed %d forms and %d sense entries into %s in %s",
		stats.Forms, stats.Senses, *dbPath, time.Since(start).Round(time.Millisecond))
}

// index imports whichever of dictPath and sensesPath is set.
func index(ctx context.Context, dbPath, dictPath, sensesPath string) (importStats, error) {
	var stats importStats

	st, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		return stats, err
	}
	defer st.Close()

	if dictPath != "" {
		n, err := importFile(dictPath, func(f *os.File) (int, error) { return st.ImportDictionary(ctx, f) })
		if err != nil {
			return stats, fmt.Errorf("dictionary %s: %w", dictPath, err)
		}
		stats.Forms = n
	}
	if sensesPath != "" {
		n, err := importFile(sensesPath, func(f *os.File) (int, error) { return st.ImportSenses(ctx, f) })
		if err != nil {
			return stats, fmt.Errorf("senses %s: %w", sensesPath, err)
		}
		stats.Senses = n
	}
	return stats, nil
}

func importFile(path string, load func(*os.File) (int, error)) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return load(f)
}
