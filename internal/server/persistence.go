package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"card-clash/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// Persistence is write-behind: the in-memory store is the source of truth
// and every function here no-ops without a database connection.

func (s *Server) persistRoom(room *Room) error {
	if s.db == nil {
		return nil
	}
	record := db.Room{
		JoinCode:     room.JoinCode,
		Status:       room.Status,
		CurrentRound: room.CurrentRound,
		MaxRounds:    room.MaxRounds,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return err
	}
	room.DBID = record.ID
	newID := fmt.Sprintf("room-%d", record.ID)
	if room.ID != newID {
		s.store.SetRoomID(room.ID, newID)
		room.ID = newID
	}
	return s.persistEvent(room, "room_created", EventPayload{
		RoomID:   room.ID,
		JoinCode: room.JoinCode,
	})
}

func (s *Server) persistPlayer(room *Room, player *Player) error {
	if s.db == nil {
		return nil
	}
	if player.DBID != 0 {
		return nil
	}
	if err := s.ensureRoomDBID(room); err != nil {
		return err
	}
	if room.DBID == 0 {
		return errors.New("room not found")
	}
	record := db.Player{
		RoomID:    room.DBID,
		Name:      player.Name,
		IsHost:    player.IsHost,
		Score:     player.Score,
		Connected: player.Connected,
		JoinedAt:  player.JoinedAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			existing, lookupErr := s.findPlayerDBID(room.DBID, player.Name)
			if lookupErr == nil && existing != 0 {
				player.DBID = existing
				return nil
			}
		}
		return err
	}
	player.DBID = record.ID
	return s.persistEvent(room, "player_joined", EventPayload{
		PlayerID:   player.ID,
		PlayerName: player.Name,
	})
}

func (s *Server) persistSettings(room *Room) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureRoomDBID(room); err != nil {
		return err
	}
	if room.DBID == 0 {
		return errors.New("room not found")
	}
	if err := s.db.Model(&db.Room{}).Where("id = ?", room.DBID).
		Update("max_rounds", room.MaxRounds).Error; err != nil {
		return err
	}
	return s.persistEvent(room, "settings_updated", EventPayload{
		MaxRounds: room.MaxRounds,
	})
}

// persistRoomSync pushes the room's status, round statuses and player
// scores to the database after a lifecycle transition. New rounds are
// created along with their dealt hands.
func (s *Server) persistRoomSync(room *Room) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureRoomDBID(room); err != nil {
		return err
	}
	if room.DBID == 0 {
		return errors.New("room not found")
	}
	updates := map[string]any{
		"status":        room.Status,
		"current_round": room.CurrentRound,
	}
	if err := s.db.Model(&db.Room{}).Where("id = ?", room.DBID).Updates(updates).Error; err != nil {
		return err
	}
	for i := range room.Rounds {
		round := &room.Rounds[i]
		if round.DBID == 0 {
			if err := s.persistRound(room, round); err != nil {
				return err
			}
			continue
		}
		if err := s.db.Model(&db.Round{}).Where("id = ?", round.DBID).
			Update("status", round.Status).Error; err != nil {
			return err
		}
	}
	for i := range room.Players {
		player := &room.Players[i]
		dbID := s.playerDBID(room, player)
		if dbID == 0 {
			continue
		}
		if err := s.db.Model(&db.Player{}).Where("id = ?", dbID).Updates(map[string]any{
			"score":     player.Score,
			"connected": player.Connected,
		}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) persistRound(room *Room, round *RoundState) error {
	if s.db == nil || round.DBID != 0 {
		return nil
	}
	if err := s.ensureRoomDBID(room); err != nil {
		return err
	}
	if room.DBID == 0 {
		return errors.New("room not found")
	}
	record := db.Round{
		RoomID: room.DBID,
		Number: round.Number,
		Key:    round.ID,
		Prompt: round.Prompt,
		Status: round.Status,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if !isUniqueViolation(err) {
			return err
		}
		var existing db.Round
		if lookupErr := s.db.Where("room_id = ? AND number = ?", room.DBID, round.Number).
			First(&existing).Error; lookupErr != nil {
			return err
		}
		record = existing
	}
	round.DBID = record.ID
	roundID := round.ID
	recordID := record.ID
	_, _ = s.store.UpdateRoom(room.ID, func(room *Room) error {
		if r := roundByID(room, roundID); r != nil {
			r.DBID = recordID
		}
		return nil
	})
	return s.persistHands(room, round)
}

func (s *Server) persistHands(room *Room, round *RoundState) error {
	if s.db == nil || round.DBID == 0 {
		return nil
	}
	for i := range round.Hands {
		hand := &round.Hands[i]
		player := findPlayer(room, hand.PlayerID)
		if player == nil {
			continue
		}
		playerDBID := s.playerDBID(room, player)
		if playerDBID == 0 {
			continue
		}
		for position, cardID := range hand.CardIDs {
			record := db.HandCard{
				RoundID:  round.DBID,
				PlayerID: playerDBID,
				CardID:   cardID,
				Position: position,
			}
			if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Server) persistSubmission(room *Room, round *RoundState, sub *SubmissionEntry) error {
	if s.db == nil {
		return s.persistEvent(room, "cards_submitted", EventPayload{
			PlayerID: sub.PlayerID,
		})
	}
	if round.DBID == 0 {
		if err := s.persistRound(room, round); err != nil {
			return err
		}
	}
	player := findPlayer(room, sub.PlayerID)
	if player == nil {
		return errors.New("player not found")
	}
	playerDBID := s.playerDBID(room, player)
	if playerDBID == 0 {
		return errors.New("player not persisted")
	}
	record := db.Submission{
		RoundID:      round.DBID,
		PlayerID:     playerDBID,
		FirstCardID:  sub.CardIDs[0],
		SecondCardID: sub.CardIDs[1],
	}
	if err := s.db.Create(&record).Error; err != nil && !isUniqueViolation(err) {
		return err
	}
	return s.persistEvent(room, "cards_submitted", EventPayload{
		PlayerID: sub.PlayerID,
	})
}

func (s *Server) persistVote(room *Room, round *RoundState, vote *VoteEntry) error {
	if s.db == nil {
		return s.persistEvent(room, "vote_submitted", EventPayload{
			PlayerID:   vote.VoterID,
			VotedForID: vote.VotedForID,
		})
	}
	if round.DBID == 0 {
		if err := s.persistRound(room, round); err != nil {
			return err
		}
	}
	voter := findPlayer(room, vote.VoterID)
	target := findPlayer(room, vote.VotedForID)
	if voter == nil || target == nil {
		return errors.New("player not found")
	}
	voterDBID := s.playerDBID(room, voter)
	targetDBID := s.playerDBID(room, target)
	if voterDBID == 0 || targetDBID == 0 {
		return errors.New("player not persisted")
	}
	record := db.Vote{
		RoundID:    round.DBID,
		VoterID:    voterDBID,
		VotedForID: targetDBID,
	}
	if err := s.db.Create(&record).Error; err != nil && !isUniqueViolation(err) {
		return err
	}
	return s.persistEvent(room, "vote_submitted", EventPayload{
		PlayerID:   vote.VoterID,
		VotedForID: vote.VotedForID,
	})
}

func (s *Server) persistConnection(room *Room, player *Player) error {
	if s.db == nil {
		return nil
	}
	dbID := s.playerDBID(room, player)
	if dbID == 0 {
		return nil
	}
	return s.db.Model(&db.Player{}).Where("id = ?", dbID).
		Update("connected", player.Connected).Error
}

func (s *Server) persistEvent(room *Room, eventType string, payload EventPayload) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureRoomDBID(room); err != nil {
		return err
	}
	if room.DBID == 0 {
		return errors.New("room not found")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := db.Event{
		RoomID:   room.DBID,
		RoundID:  s.resolveEventRoundID(room),
		PlayerID: s.resolveEventPlayerID(room, payload),
		Type:     eventType,
		Payload:  datatypes.JSON(data),
	}
	return s.db.Create(&event).Error
}

func (s *Server) resolveEventRoundID(room *Room) *uint {
	round := currentRound(room)
	if round == nil {
		return nil
	}
	if round.DBID == 0 {
		if err := s.persistRound(room, round); err != nil {
			return nil
		}
	}
	if round.DBID == 0 {
		return nil
	}
	id := round.DBID
	return &id
}

func (s *Server) resolveEventPlayerID(room *Room, payload EventPayload) *uint {
	if payload.PlayerID <= 0 {
		return nil
	}
	player := findPlayer(room, payload.PlayerID)
	if player == nil {
		return nil
	}
	if dbID := s.playerDBID(room, player); dbID != 0 {
		value := dbID
		return &value
	}
	return nil
}

func (s *Server) ensureRoomDBID(room *Room) error {
	if s.db == nil || room.DBID != 0 {
		return nil
	}
	var record db.Room
	if err := s.db.Where("join_code = ?", room.JoinCode).First(&record).Error; err != nil {
		return nil
	}
	room.DBID = record.ID
	return nil
}

func (s *Server) playerDBID(room *Room, player *Player) uint {
	if player.DBID != 0 {
		return player.DBID
	}
	if err := s.ensureRoomDBID(room); err != nil || room.DBID == 0 {
		return 0
	}
	id, err := s.findPlayerDBID(room.DBID, player.Name)
	if err != nil {
		return 0
	}
	player.DBID = id
	return id
}

func (s *Server) findPlayerDBID(roomDBID uint, name string) (uint, error) {
	var record db.Player
	if err := s.db.Where("room_id = ? AND name = ?", roomDBID, name).First(&record).Error; err != nil {
		return 0, err
	}
	return record.ID, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
