package db

import "time"

// HandCard is one dealt card. The (round, card) unique index is the
// durable form of the per-round disjointness invariant.
type HandCard struct {
	ID        uint      `gorm:"primaryKey"`
	RoundID   uint      `gorm:"index;not null;uniqueIndex:idx_hand_cards_round_card"`
	PlayerID  uint      `gorm:"index;not null"`
	CardID    int       `gorm:"not null;uniqueIndex:idx_hand_cards_round_card"`
	Position  int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
