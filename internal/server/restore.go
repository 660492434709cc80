package server

import (
	"fmt"
	"log"
	"time"

	"card-clash/internal/db"

	"github.com/google/uuid"
)

// RestoreActiveRooms loads every unfinished room from the database back
// into the store after a restart. Deadlines are reopened from now so
// clients get a full window rather than an instantly expired one.
func (s *Server) RestoreActiveRooms() error {
	if s.db == nil {
		return nil
	}
	var records []db.Room
	if err := s.db.Where("status <> ?", roomFinished).Find(&records).Error; err != nil {
		return err
	}
	restored := 0
	for i := range records {
		if err := s.restoreRoom(&records[i]); err != nil {
			log.Printf("room restore failed room_id=%d err=%v", records[i].ID, err)
			continue
		}
		restored++
	}
	if restored > 0 {
		log.Printf("rooms restored count=%d", restored)
	}
	return nil
}

func (s *Server) restoreRoom(record *db.Room) error {
	roomID := fmt.Sprintf("room-%d", record.ID)
	if _, exists := s.store.GetRoom(roomID); exists {
		return nil
	}

	var players []db.Player
	if err := s.db.Where("room_id = ?", record.ID).Order("joined_at asc").Find(&players).Error; err != nil {
		return err
	}
	var rounds []db.Round
	if err := s.db.Where("room_id = ?", record.ID).Order("number asc").Find(&rounds).Error; err != nil {
		return err
	}

	room := &Room{
		ID:           roomID,
		DBID:         record.ID,
		JoinCode:     record.JoinCode,
		Status:       record.Status,
		CurrentRound: record.CurrentRound,
		MaxRounds:    record.MaxRounds,
		UsedPrompts:  make(map[string]struct{}),
	}
	byDBID := make(map[uint]int, len(players))
	for _, player := range players {
		// Reconnection is websocket-driven; everyone starts out away.
		restored := Player{
			ID:        int(player.ID),
			DBID:      player.ID,
			Name:      player.Name,
			IsHost:    player.IsHost,
			Score:     player.Score,
			Connected: false,
			JoinedAt:  player.JoinedAt,
		}
		if player.IsHost && room.HostID == 0 {
			room.HostID = restored.ID
		}
		byDBID[player.ID] = restored.ID
		room.Players = append(room.Players, restored)
	}

	now := timeNowUTC()
	for i := range rounds {
		state, err := s.restoreRound(&rounds[i], byDBID, now)
		if err != nil {
			return err
		}
		room.UsedPrompts[state.Prompt] = struct{}{}
		room.Rounds = append(room.Rounds, *state)
	}

	s.store.RestoreRoom(room)
	s.scheduleRoundTimer(room)
	return nil
}

func (s *Server) restoreRound(record *db.Round, byDBID map[uint]int, now time.Time) (*RoundState, error) {
	key := record.Key
	if key == "" {
		key = uuid.NewString()
	}
	state := &RoundState{
		ID:        key,
		DBID:      record.ID,
		Number:    record.Number,
		Prompt:    record.Prompt,
		Status:    record.Status,
		StartedAt: record.CreatedAt,
	}
	switch record.Status {
	case roundPlaying:
		state.Deadline = now.Add(time.Duration(s.cfg.SubmitDurationSeconds) * time.Second)
	case roundVoting:
		state.Deadline = now.Add(time.Duration(s.cfg.VoteDurationSeconds) * time.Second)
	default:
		state.Deadline = now.Add(time.Duration(s.cfg.ResultDurationSeconds) * time.Second)
	}

	var handCards []db.HandCard
	if err := s.db.Where("round_id = ?", record.ID).Order("player_id asc, position asc").Find(&handCards).Error; err != nil {
		return nil, err
	}
	hands := make(map[int][]int)
	order := make([]int, 0)
	for _, card := range handCards {
		playerID, ok := byDBID[card.PlayerID]
		if !ok {
			continue
		}
		if _, seen := hands[playerID]; !seen {
			order = append(order, playerID)
		}
		hands[playerID] = append(hands[playerID], card.CardID)
	}
	for _, playerID := range order {
		state.Hands = append(state.Hands, HandEntry{PlayerID: playerID, CardIDs: hands[playerID]})
	}

	var submissions []db.Submission
	if err := s.db.Where("round_id = ?", record.ID).Order("id asc").Find(&submissions).Error; err != nil {
		return nil, err
	}
	for _, sub := range submissions {
		playerID, ok := byDBID[sub.PlayerID]
		if !ok {
			continue
		}
		state.Submissions = append(state.Submissions, SubmissionEntry{
			PlayerID: playerID,
			CardIDs:  [2]int{sub.FirstCardID, sub.SecondCardID},
			DBID:     sub.ID,
		})
	}

	var votes []db.Vote
	if err := s.db.Where("round_id = ?", record.ID).Order("id asc").Find(&votes).Error; err != nil {
		return nil, err
	}
	for _, vote := range votes {
		voterID, okVoter := byDBID[vote.VoterID]
		targetID, okTarget := byDBID[vote.VotedForID]
		if !okVoter || !okTarget {
			continue
		}
		state.Votes = append(state.Votes, VoteEntry{
			VoterID:    voterID,
			VotedForID: targetID,
			DBID:       vote.ID,
		})
	}

	if state.Status == roundEnded {
		tallies := tallyVotes(state)
		best := 0
		for _, count := range tallies {
			if count > best {
				best = count
			}
		}
		if best > 0 {
			for i := range state.Submissions {
				if tallies[state.Submissions[i].PlayerID] == best {
					state.Winners = append(state.Winners, state.Submissions[i].PlayerID)
				}
			}
		}
	}
	return state, nil
}
