package db

import "time"

type CardLibrary struct {
	ID        uint      `gorm:"primaryKey"`
	Text      string    `gorm:"size:280;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
