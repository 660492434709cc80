package server

import (
	"sort"
	"time"
)

// roomSnapshot is the shared state pushed to every client. Hands are never
// included; submission contents stay hidden until voting opens and vote
// tallies stay hidden until the round ends.
func (s *Server) roomSnapshot(room *Room) map[string]any {
	players := make([]map[string]any, 0, len(room.Players))
	for i := range room.Players {
		player := &room.Players[i]
		players = append(players, map[string]any{
			"player_id": player.ID,
			"name":      player.Name,
			"is_host":   player.IsHost,
			"score":     player.Score,
			"connected": player.Connected,
		})
	}
	snapshot := map[string]any{
		"room_id":       room.ID,
		"join_code":     room.JoinCode,
		"status":        room.Status,
		"current_round": room.CurrentRound,
		"max_rounds":    room.MaxRounds,
		"host_id":       room.HostID,
		"players":       players,
		"can_join":      room.Status == roomWaiting,
	}
	if round := currentRound(room); round != nil {
		snapshot["round"] = s.roundSnapshot(room, round)
	}
	if room.Status == roomFinished {
		snapshot["results"] = finalStandings(room)
	}
	return snapshot
}

func (s *Server) roundSnapshot(room *Room, round *RoundState) map[string]any {
	submitted := make([]int, 0, len(round.Submissions))
	for i := range round.Submissions {
		submitted = append(submitted, round.Submissions[i].PlayerID)
	}
	sort.Ints(submitted)
	snapshot := map[string]any{
		"round_id":             round.ID,
		"number":               round.Number,
		"prompt":               round.Prompt,
		"status":               round.Status,
		"started_at":           round.StartedAt.Format(time.RFC3339),
		"deadline":             round.Deadline.Format(time.RFC3339),
		"submitted_player_ids": submitted,
	}
	if round.Status != roundVoting && round.Status != roundEnded {
		return snapshot
	}

	submissions := make([]map[string]any, 0, len(round.Submissions))
	for i := range round.Submissions {
		sub := &round.Submissions[i]
		cards := make([]string, 0, 2)
		for _, cardID := range sub.CardIDs {
			if text, ok := s.deck.CardText(cardID); ok {
				cards = append(cards, text)
			}
		}
		submissions = append(submissions, map[string]any{
			"player_id":   sub.PlayerID,
			"player_name": playerName(room, sub.PlayerID),
			"cards":       cards,
		})
	}
	voted := make([]int, 0, len(round.Votes))
	for i := range round.Votes {
		voted = append(voted, round.Votes[i].VoterID)
	}
	sort.Ints(voted)
	snapshot["submissions"] = submissions
	snapshot["voted_player_ids"] = voted

	if round.Status == roundEnded {
		tallies := tallyVotes(round)
		results := make([]map[string]any, 0, len(round.Submissions))
		for i := range round.Submissions {
			playerID := round.Submissions[i].PlayerID
			results = append(results, map[string]any{
				"player_id":   playerID,
				"player_name": playerName(room, playerID),
				"votes":       tallies[playerID],
			})
		}
		snapshot["tallies"] = results
		snapshot["winner_ids"] = append([]int(nil), round.Winners...)
	}
	return snapshot
}

// finalStandings ranks players by score, ties sharing the higher placing.
func finalStandings(room *Room) map[string]any {
	ranked := make([]Player, len(room.Players))
	copy(ranked, room.Players)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})
	standings := make([]map[string]any, 0, len(ranked))
	winners := make([]int, 0, 1)
	for _, player := range ranked {
		standings = append(standings, map[string]any{
			"player_id": player.ID,
			"name":      player.Name,
			"score":     player.Score,
		})
		if len(ranked) > 0 && player.Score == ranked[0].Score {
			winners = append(winners, player.ID)
		}
	}
	return map[string]any{
		"standings":  standings,
		"winner_ids": winners,
	}
}

func playerName(room *Room, playerID int) string {
	if player := findPlayer(room, playerID); player != nil {
		return player.Name
	}
	return ""
}
