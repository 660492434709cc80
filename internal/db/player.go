package db

import "time"

type Player struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    uint      `gorm:"index;not null;uniqueIndex:idx_players_room_name"`
	Name      string    `gorm:"size:64;not null;uniqueIndex:idx_players_room_name"`
	IsHost    bool      `gorm:"not null;default:false"`
	Score     int       `gorm:"not null;default:0"`
	Connected bool      `gorm:"not null;default:true"`
	JoinedAt  time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Hands     []HandCard
	Votes     []Vote `gorm:"foreignKey:VoterID"`
	Events    []Event
}
