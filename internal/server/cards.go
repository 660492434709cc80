package server

import (
	"log"

	"card-clash/internal/db"

	"gorm.io/gorm"
)

// fallbackCards keeps the game playable without a database or before
// load-cards has run.
var fallbackCards = []string{
	"A giant robot",
	"A haunted mansion",
	"An angry chef",
	"A talking dog",
	"A broken time machine",
	"The world's worst magician",
	"A suspicious sandwich",
	"An overdue library book",
	"A pirate with stage fright",
	"A runaway shopping cart",
	"The last slice of pizza",
	"A vampire on vacation",
	"An alien tourist",
	"A grumpy wizard",
	"A malfunctioning jetpack",
	"A secret underground lair",
	"The office printer",
	"A very polite bear",
	"An invisible bicycle",
	"A cursed karaoke machine",
	"A detective's lost notebook",
	"The moon, but closer",
	"A dramatic weather forecast",
	"An army of garden gnomes",
	"A sentient houseplant",
	"The wrong trousers",
	"A knight afraid of horses",
	"An extremely long escalator",
	"A ghost who loves paperwork",
	"The final boss",
	"A birthday cake with no candles",
	"An octopus learning to juggle",
	"A map to nowhere",
	"The loudest sneeze in history",
	"A squirrel with a plan",
	"An unplugged arcade cabinet",
	"A mirror that compliments you",
	"The backup dancer",
	"A lighthouse in the desert",
	"An expired coupon",
}

// loadCards reads the card library from the database, falling back to the
// built-in list when the database is absent or empty.
func loadCards(conn *gorm.DB) []Card {
	if conn != nil {
		var records []db.CardLibrary
		if err := conn.Order("id").Find(&records).Error; err != nil {
			log.Printf("card library load failed err=%v", err)
		} else if len(records) > 0 {
			cards := make([]Card, len(records))
			for i, record := range records {
				cards[i] = Card{ID: int(record.ID), Text: record.Text}
			}
			return cards
		}
	}
	cards := make([]Card, len(fallbackCards))
	for i, text := range fallbackCards {
		cards[i] = Card{ID: i + 1, Text: text}
	}
	return cards
}
