package main

import (
	"encoding/csv"
	"flag"
	"log"
	"os"
	"strings"

	"card-clash/internal/config"
	"card-clash/internal/db"
)

func main() {
	cardsPath := flag.String("cards", "cards.csv", "path to cards csv")
	promptsPath := flag.String("prompts", "", "optional path to prompts csv")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	cards, err := readColumn(*cardsPath)
	if err != nil {
		log.Fatalf("failed to read cards: %v", err)
	}
	for _, text := range cards {
		entry := db.CardLibrary{Text: text}
		if err := conn.FirstOrCreate(&entry, db.CardLibrary{Text: text}).Error; err != nil {
			log.Fatalf("failed to upsert card: %v", err)
		}
	}
	log.Printf("loaded %d cards", len(cards))

	if *promptsPath == "" {
		return
	}
	prompts, err := readColumn(*promptsPath)
	if err != nil {
		log.Fatalf("failed to read prompts: %v", err)
	}
	for _, text := range prompts {
		entry := db.PromptLibrary{Text: text}
		if err := conn.FirstOrCreate(&entry, db.PromptLibrary{Text: text}).Error; err != nil {
			log.Fatalf("failed to upsert prompt: %v", err)
		}
	}
	log.Printf("loaded %d prompts", len(prompts))
}

// readColumn reads the first column of a csv, skipping the header row.
func readColumn(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var values []string
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		text := strings.TrimSpace(row[0])
		if text == "" {
			continue
		}
		values = append(values, text)
	}
	return values, nil
}
