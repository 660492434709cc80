package db

import "time"

type Room struct {
	ID           uint      `gorm:"primaryKey"`
	JoinCode     string    `gorm:"size:12;uniqueIndex;not null"`
	Status       string    `gorm:"size:32;not null"`
	CurrentRound int       `gorm:"not null;default:0"`
	MaxRounds    int       `gorm:"not null;default:5"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
	Players      []Player
	Rounds       []Round
	Events       []Event
}
