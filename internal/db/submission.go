package db

import "time"

type Submission struct {
	ID           uint      `gorm:"primaryKey"`
	RoundID      uint      `gorm:"index;not null;uniqueIndex:idx_submissions_round_player"`
	PlayerID     uint      `gorm:"index;not null;uniqueIndex:idx_submissions_round_player"`
	FirstCardID  int       `gorm:"not null"`
	SecondCardID int       `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}
