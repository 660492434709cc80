package server

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

const joinCodeAttempts = 10

// Store holds all live rooms in memory. A single mutex guards the whole
// map; every mutation goes through UpdateRoom so each operation observes
// and produces a consistent room.
type Store struct {
	mu           sync.Mutex
	nextID       int
	nextPlayerID int
	rooms        map[string]*Room
}

func NewStore() *Store {
	return &Store{rooms: make(map[string]*Room)}
}

// CreateRoom allocates a room with a unique join code and its host player.
func (s *Store) CreateRoom(hostName string, maxRounds int) (*Room, *Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := ""
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		candidate := newJoinCode()
		if s.findByCodeLocked(candidate) == nil {
			code = candidate
			break
		}
	}
	if code == "" {
		return nil, nil, resourceExhausted("could not allocate a join code")
	}

	s.nextID++
	s.nextPlayerID++
	host := Player{
		ID:        s.nextPlayerID,
		Name:      hostName,
		IsHost:    true,
		Connected: true,
		JoinedAt:  timeNowUTC(),
	}
	room := &Room{
		ID:          fmt.Sprintf("room-%d", s.nextID),
		JoinCode:    code,
		Status:      roomWaiting,
		MaxRounds:   maxRounds,
		HostID:      host.ID,
		UsedPrompts: make(map[string]struct{}),
		Players:     []Player{host},
	}
	s.rooms[room.ID] = room
	return copyRoom(room), copyPlayer(&host), nil
}

func (s *Store) GetRoom(id string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, false
	}
	return copyRoom(room), true
}

// UpdateRoom applies update to the room under the store lock. The room is
// only mutated if update returns nil; the returned copy reflects the
// post-update state.
func (s *Store) UpdateRoom(id string, update func(room *Room) error) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, notFound("room not found")
	}
	scratch := copyRoom(room)
	if err := update(scratch); err != nil {
		return nil, err
	}
	s.rooms[id] = scratch
	return copyRoom(scratch), nil
}

func (s *Store) FindRoomByCode(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room := s.findByCodeLocked(code)
	if room == nil {
		return nil, false
	}
	return copyRoom(room), true
}

func (s *Store) findByCodeLocked(code string) *Room {
	for _, room := range s.rooms {
		if strings.EqualFold(room.JoinCode, code) && room.Status != roomFinished {
			return room
		}
	}
	return nil
}

// AddPlayer joins a player to the room identified by id or join code. A
// returning player with the same name is reconnected instead of duplicated.
func (s *Store) AddPlayer(idOrCode, name string) (*Room, *Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := s.rooms[idOrCode]
	if room != nil && room.Status == roomFinished {
		room = nil
	}
	if room == nil {
		room = s.findByCodeLocked(idOrCode)
	}
	if room == nil {
		return nil, nil, notFound("room not found")
	}

	for i := range room.Players {
		if strings.EqualFold(room.Players[i].Name, name) {
			room.Players[i].Connected = true
			return copyRoom(room), copyPlayer(&room.Players[i]), nil
		}
	}

	if room.Status != roomWaiting {
		return nil, nil, stateConflict("game already started")
	}
	if len(room.Players) >= maxLobbyPlayers {
		return nil, nil, stateConflict("room is full")
	}

	s.nextPlayerID++
	player := Player{
		ID:        s.nextPlayerID,
		Name:      name,
		Connected: true,
		JoinedAt:  timeNowUTC(),
	}
	room.Players = append(room.Players, player)
	return copyRoom(room), copyPlayer(&player), nil
}

func (s *Store) GetPlayer(roomID string, playerID int) (*Room, *Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, nil, false
	}
	for i := range room.Players {
		if room.Players[i].ID == playerID {
			return copyRoom(room), copyPlayer(&room.Players[i]), true
		}
	}
	return nil, nil, false
}

func (s *Store) ListRoomSummaries() []RoomSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	summaries := make([]RoomSummary, 0, len(s.rooms))
	for _, room := range s.rooms {
		summaries = append(summaries, RoomSummary{
			ID:       room.ID,
			JoinCode: room.JoinCode,
			Status:   room.Status,
			Players:  len(room.Players),
		})
	}
	sortSummaries(summaries)
	return summaries
}

// RestoreRoom reinserts a room loaded from the database and bumps the ID
// counters past anything it references.
func (s *Store) RestoreRoom(room *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = copyRoom(room)
	if n := roomSortKey(room.ID); n > s.nextID {
		s.nextID = n
	}
	for i := range room.Players {
		if room.Players[i].ID > s.nextPlayerID {
			s.nextPlayerID = room.Players[i].ID
		}
	}
}

// SetRoomID renames a room after persistence assigns its durable ID.
func (s *Store) SetRoomID(oldID, newID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[oldID]
	if !ok || oldID == newID {
		return
	}
	delete(s.rooms, oldID)
	room.ID = newID
	s.rooms[newID] = room
	if n := roomSortKey(newID); n > s.nextID {
		s.nextID = n
	}
}

func sortSummaries(summaries []RoomSummary) {
	for i := 1; i < len(summaries); i++ {
		for j := i; j > 0 && roomSortKey(summaries[j].ID) > roomSortKey(summaries[j-1].ID); j-- {
			summaries[j], summaries[j-1] = summaries[j-1], summaries[j]
		}
	}
}

func roomSortKey(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "room-"))
	if err != nil {
		return 0
	}
	return n
}

func copyRoom(room *Room) *Room {
	dup := *room
	dup.Players = append([]Player(nil), room.Players...)
	dup.Rounds = make([]RoundState, len(room.Rounds))
	for i := range room.Rounds {
		dup.Rounds[i] = copyRound(&room.Rounds[i])
	}
	dup.UsedPrompts = make(map[string]struct{}, len(room.UsedPrompts))
	for prompt := range room.UsedPrompts {
		dup.UsedPrompts[prompt] = struct{}{}
	}
	return &dup
}

func copyRound(round *RoundState) RoundState {
	dup := *round
	dup.Hands = make([]HandEntry, len(round.Hands))
	for i := range round.Hands {
		dup.Hands[i] = HandEntry{
			PlayerID: round.Hands[i].PlayerID,
			CardIDs:  append([]int(nil), round.Hands[i].CardIDs...),
		}
	}
	dup.Submissions = append([]SubmissionEntry(nil), round.Submissions...)
	dup.Votes = append([]VoteEntry(nil), round.Votes...)
	dup.Winners = append([]int(nil), round.Winners...)
	return dup
}

func copyPlayer(player *Player) *Player {
	dup := *player
	return &dup
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
