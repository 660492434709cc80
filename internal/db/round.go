package db

import "time"

type Round struct {
	ID          uint      `gorm:"primaryKey"`
	RoomID      uint      `gorm:"index;not null;uniqueIndex:idx_rounds_room_number"`
	Number      int       `gorm:"not null;uniqueIndex:idx_rounds_room_number"`
	Key         string    `gorm:"size:36;not null;index"`
	Prompt      string    `gorm:"size:280;not null"`
	Status      string    `gorm:"size:32;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	HandCards   []HandCard
	Submissions []Submission
	Votes       []Vote
	Events      []Event
}
