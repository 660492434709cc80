package server

import (
	"time"

	"github.com/google/uuid"
)

func currentRound(room *Room) *RoundState {
	if room.CurrentRound == 0 {
		return nil
	}
	return roundByNumber(room, room.CurrentRound)
}

func roundByNumber(room *Room, number int) *RoundState {
	for i := range room.Rounds {
		if room.Rounds[i].Number == number {
			return &room.Rounds[i]
		}
	}
	return nil
}

func roundByID(room *Room, id string) *RoundState {
	for i := range room.Rounds {
		if room.Rounds[i].ID == id {
			return &room.Rounds[i]
		}
	}
	return nil
}

func findPlayer(room *Room, playerID int) *Player {
	for i := range room.Players {
		if room.Players[i].ID == playerID {
			return &room.Players[i]
		}
	}
	return nil
}

func handFor(round *RoundState, playerID int) []int {
	for i := range round.Hands {
		if round.Hands[i].PlayerID == playerID {
			return round.Hands[i].CardIDs
		}
	}
	return nil
}

func submissionFor(round *RoundState, playerID int) *SubmissionEntry {
	for i := range round.Submissions {
		if round.Submissions[i].PlayerID == playerID {
			return &round.Submissions[i]
		}
	}
	return nil
}

func hasVoted(round *RoundState, voterID int) bool {
	for i := range round.Votes {
		if round.Votes[i].VoterID == voterID {
			return true
		}
	}
	return false
}

func (s *Server) startRoom(room *Room, at time.Time) error {
	if room.Status != roomWaiting {
		return stateConflict("game already started")
	}
	if len(room.Players) < s.cfg.MinPlayers {
		return stateConflict("not enough players")
	}
	room.Status = roomPlaying
	room.CurrentRound = 1
	return s.beginRound(room, at)
}

// beginRound deals a fresh hand to every player and opens the submission
// window for the round numbered room.CurrentRound.
func (s *Server) beginRound(room *Room, at time.Time) error {
	playerIDs := make([]int, len(room.Players))
	for i := range room.Players {
		playerIDs[i] = room.Players[i].ID
	}
	hands, err := s.deck.Deal(playerIDs, s.cfg.HandSize)
	if err != nil {
		return err
	}
	round := RoundState{
		ID:        uuid.NewString(),
		Number:    room.CurrentRound,
		Prompt:    s.pickPrompt(room),
		Status:    roundPlaying,
		StartedAt: at,
		Deadline:  at.Add(time.Duration(s.cfg.SubmitDurationSeconds) * time.Second),
	}
	for _, playerID := range playerIDs {
		round.Hands = append(round.Hands, HandEntry{PlayerID: playerID, CardIDs: hands[playerID]})
	}
	room.Rounds = append(room.Rounds, round)
	return nil
}

func (s *Server) recordSubmission(room *Room, playerID int, roundID string, cardIDs []int) error {
	round := roundByID(room, roundID)
	if round == nil {
		return notFound("round not found")
	}
	if findPlayer(room, playerID) == nil {
		return notFound("player not found")
	}
	if round.Status != roundPlaying {
		return stateConflict("cards are not being accepted right now")
	}
	if len(cardIDs) != 2 {
		return validationError("exactly two cards are required")
	}
	if cardIDs[0] == cardIDs[1] {
		return validationError("cards must be distinct")
	}
	hand := handFor(round, playerID)
	for _, cardID := range cardIDs {
		if !containsInt(hand, cardID) {
			return validationError("card is not in your hand")
		}
	}
	if submissionFor(round, playerID) != nil {
		return stateConflict("cards already submitted")
	}
	round.Submissions = append(round.Submissions, SubmissionEntry{
		PlayerID: playerID,
		CardIDs:  [2]int{cardIDs[0], cardIDs[1]},
	})
	return nil
}

func (s *Server) recordVote(room *Room, voterID int, roundID string, votedForID int) error {
	round := roundByID(room, roundID)
	if round == nil {
		return notFound("round not found")
	}
	if findPlayer(room, voterID) == nil {
		return notFound("player not found")
	}
	if round.Status != roundVoting {
		return stateConflict("votes are not being accepted right now")
	}
	if voterID == votedForID {
		return validationError("you cannot vote for yourself")
	}
	if submissionFor(round, votedForID) == nil {
		return validationError("that player has no cards this round")
	}
	if hasVoted(round, voterID) {
		return stateConflict("vote already recorded")
	}
	round.Votes = append(round.Votes, VoteEntry{VoterID: voterID, VotedForID: votedForID})
	return nil
}

// allSubmitted reports whether every connected player has cards in. A
// player who dropped mid-round does not hold the room hostage.
func allSubmitted(room *Room, round *RoundState) bool {
	for i := range room.Players {
		if !room.Players[i].Connected {
			continue
		}
		if submissionFor(round, room.Players[i].ID) == nil {
			return false
		}
	}
	return true
}

// eligibleVoters are connected players who have someone else's submission
// to vote on.
func eligibleVoters(room *Room, round *RoundState) []int {
	var ids []int
	for i := range room.Players {
		if !room.Players[i].Connected {
			continue
		}
		for j := range round.Submissions {
			if round.Submissions[j].PlayerID != room.Players[i].ID {
				ids = append(ids, room.Players[i].ID)
				break
			}
		}
	}
	return ids
}

func allVoted(room *Room, round *RoundState) bool {
	for _, voterID := range eligibleVoters(room, round) {
		if !hasVoted(round, voterID) {
			return false
		}
	}
	return true
}

func (s *Server) openVoting(room *Room, round *RoundState, at time.Time) {
	round.Status = roundVoting
	round.Deadline = at.Add(time.Duration(s.cfg.VoteDurationSeconds) * time.Second)
}

// closeRound tallies the votes, awards points to every player tied for the
// most, and either opens the between-round interlude or finishes the room.
func (s *Server) closeRound(room *Room, round *RoundState, at time.Time) {
	tallies := tallyVotes(round)
	best := 0
	for _, count := range tallies {
		if count > best {
			best = count
		}
	}
	round.Winners = nil
	if best > 0 {
		for i := range round.Submissions {
			playerID := round.Submissions[i].PlayerID
			if tallies[playerID] != best {
				continue
			}
			round.Winners = append(round.Winners, playerID)
			if player := findPlayer(room, playerID); player != nil {
				player.Score += s.cfg.PointsPerWin
			}
		}
	}
	round.Status = roundEnded
	round.Deadline = at.Add(time.Duration(s.cfg.ResultDurationSeconds) * time.Second)
	if round.Number >= room.MaxRounds {
		room.Status = roomFinished
	}
}

func tallyVotes(round *RoundState) map[int]int {
	tallies := make(map[int]int)
	for i := range round.Votes {
		tallies[round.Votes[i].VotedForID]++
	}
	return tallies
}

// tryAdvance performs at most one lifecycle transition. Each case checks
// its own guard, so duplicate or late calls fall through as no-ops.
func (s *Server) tryAdvance(room *Room, at time.Time) bool {
	if room.Status != roomPlaying {
		return false
	}
	round := currentRound(room)
	if round == nil {
		return false
	}
	switch round.Status {
	case roundPlaying:
		if !allSubmitted(room, round) && at.Before(round.Deadline) {
			return false
		}
		if len(round.Submissions) == 0 {
			s.closeRound(room, round, at)
		} else {
			s.openVoting(room, round, at)
		}
		return true
	case roundVoting:
		if !allVoted(room, round) && at.Before(round.Deadline) {
			return false
		}
		s.closeRound(room, round, at)
		return true
	case roundEnded:
		if at.Before(round.Deadline) {
			return false
		}
		room.CurrentRound++
		if err := s.beginRound(room, at); err != nil {
			room.CurrentRound--
			return false
		}
		return true
	}
	return false
}

// advanceRoom chains transitions until the room settles, e.g. a voting
// phase with nobody eligible closes in the same call that opened it.
func (s *Server) advanceRoom(room *Room, at time.Time) bool {
	advanced := false
	for s.tryAdvance(room, at) {
		advanced = true
	}
	return advanced
}

// endRoom finishes the game early, tallying whatever the current round has.
func (s *Server) endRoom(room *Room, at time.Time) error {
	if room.Status == roomFinished {
		return stateConflict("game already finished")
	}
	if round := currentRound(room); round != nil && round.Status != roundEnded {
		s.closeRound(room, round, at)
	}
	room.Status = roomFinished
	return nil
}

func containsInt(values []int, want int) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
