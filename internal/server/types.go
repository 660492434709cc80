package server

import "time"

const (
	roomWaiting  = "waiting"
	roomPlaying  = "playing"
	roomFinished = "finished"
)

const (
	roundPlaying = "playing"
	roundVoting  = "voting"
	roundEnded   = "ended"
)

type RoomSummary struct {
	ID       string
	JoinCode string
	Status   string
	Players  int
}

type Room struct {
	ID           string
	DBID         uint
	JoinCode     string
	Status       string
	CurrentRound int
	MaxRounds    int
	HostID       int
	UsedPrompts  map[string]struct{}
	Players      []Player
	Rounds       []RoundState
}

type Player struct {
	ID        int
	DBID      uint
	Name      string
	IsHost    bool
	Score     int
	Connected bool
	JoinedAt  time.Time
}

// RoundState is one prompt-and-vote cycle. Deadline is the authoritative
// cutoff for the current status; any client may request advancement once it
// has passed.
type RoundState struct {
	ID          string
	DBID        uint
	Number      int
	Prompt      string
	Status      string
	StartedAt   time.Time
	Deadline    time.Time
	Hands       []HandEntry
	Submissions []SubmissionEntry
	Votes       []VoteEntry
	Winners     []int
}

type HandEntry struct {
	PlayerID int
	CardIDs  []int
}

// SubmissionEntry is a player's ordered pair of cards, immutable once recorded.
type SubmissionEntry struct {
	PlayerID int
	CardIDs  [2]int
	DBID     uint
}

type VoteEntry struct {
	VoterID    int
	VotedForID int
	DBID       uint
}
