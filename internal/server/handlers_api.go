package server

import (
	"log"
	"net/http"
	"strconv"

	"card-clash/internal/db"

	qrcode "github.com/skip2/go-qrcode"
)

type createRoomRequest struct {
	Name      string `json:"name"`
	MaxRounds int    `json:"max_rounds"`
}

type joinRequest struct {
	Name string `json:"name"`
}

type startRequest struct {
	PlayerID int `json:"player_id"`
}

type settingsRequest struct {
	PlayerID  int `json:"player_id"`
	MaxRounds int `json:"max_rounds"`
}

type submissionRequest struct {
	PlayerID int    `json:"player_id"`
	RoundID  string `json:"round_id"`
	CardIDs  []int  `json:"card_ids"`
}

type voteRequest struct {
	PlayerID   int    `json:"player_id"`
	RoundID    string `json:"round_id"`
	VotedForID int    `json:"voted_for_id"`
}

type advanceRequest struct {
	PlayerID int `json:"player_id"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "create") {
		return
	}
	var req createRoomRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeGameError(w, err)
		return
	}
	maxRounds := req.MaxRounds
	if maxRounds == 0 {
		maxRounds = s.cfg.MaxRounds
	}
	if err := validateMaxRounds(maxRounds); err != nil {
		writeGameError(w, err)
		return
	}

	room, host, err := s.store.CreateRoom(name, maxRounds)
	if err != nil {
		writeGameError(w, err)
		return
	}
	if err := s.persistRoom(room); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create room")
		return
	}
	if err := s.persistPlayer(room, host); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create room")
		return
	}
	log.Printf("room created room=%s join_code=%s host=%s", room.ID, room.JoinCode, host.Name)

	if s.sessions != nil {
		s.sessions.SetName(w, r, name)
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"room_id":   room.ID,
		"join_code": room.JoinCode,
		"player_id": host.ID,
	})
	s.broadcastHomeUpdate()
}

func (s *Server) handleRoomSubroutes(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if roomID, playerID, ok := parseHandPath(r.URL.Path); ok {
			s.handleHand(w, r, roomID, playerID)
			return
		}
	}

	roomID, action, ok := parseRoomPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if action == "" {
		s.handleGetRoom(w, r, roomID)
		return
	}

	switch r.Method {
	case http.MethodGet:
		switch action {
		case "results":
			s.handleResults(w, r, roomID)
		case "events":
			s.handleEvents(w, r, roomID)
		case "qr":
			s.handleRoomQR(w, r, roomID)
		default:
			http.NotFound(w, r)
		}
	case http.MethodPost:
		switch action {
		case "join":
			s.handleJoinRoom(w, r, roomID)
		case "start":
			s.handleStartRoom(w, r, roomID)
		case "settings":
			s.handleSettings(w, r, roomID)
		case "submissions":
			s.handleSubmissions(w, r, roomID)
		case "votes":
			s.handleVotes(w, r, roomID)
		case "advance":
			s.handleAdvance(w, r, roomID)
		case "end":
			s.handleEndRoom(w, r, roomID)
		default:
			http.NotFound(w, r)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// findRoom resolves either a room ID or a join code.
func (s *Server) findRoom(idOrCode string) (*Room, bool) {
	if room, ok := s.store.GetRoom(idOrCode); ok {
		return room, true
	}
	return s.store.FindRoomByCode(idOrCode)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	room, ok := s.findRoom(roomID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s.roomSnapshot(room))
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	if !s.enforceRateLimit(w, r, "join") {
		return
	}
	var req joinRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeGameError(w, err)
		return
	}

	room, player, err := s.store.AddPlayer(roomID, name)
	if err != nil {
		writeGameError(w, err)
		return
	}
	if err := s.persistPlayer(room, player); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to join room")
		return
	}
	log.Printf("player joined room=%s player_id=%d player_name=%s", room.ID, player.ID, name)

	if s.sessions != nil {
		s.sessions.SetName(w, r, name)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room_id":   room.ID,
		"join_code": room.JoinCode,
		"player_id": player.ID,
	})
	s.broadcastRoomUpdate(room)
}

func (s *Server) handleStartRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	var req startRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	now := timeNowUTC()
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		player := findPlayer(room, req.PlayerID)
		if player == nil {
			return notFound("player not found")
		}
		if player.ID != room.HostID {
			return stateConflict("only the host can start the game")
		}
		return s.startRoom(room, now)
	})
	if err != nil {
		writeGameError(w, err)
		return
	}
	log.Printf("game started room=%s players=%d rounds=%d", room.ID, len(room.Players), room.MaxRounds)
	if err := s.persistRoomSync(room); err != nil {
		log.Printf("persist start failed room=%s err=%v", room.ID, err)
	}
	if err := s.persistEvent(room, "game_started", EventPayload{
		RoomID:      room.ID,
		RoundNumber: room.CurrentRound,
		PlayerID:    req.PlayerID,
	}); err != nil {
		log.Printf("persist event failed room=%s err=%v", room.ID, err)
	}
	writeJSON(w, http.StatusOK, s.roomSnapshot(room))
	s.broadcastRoomUpdate(room)
	s.scheduleRoundTimer(room)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request, roomID string) {
	var req settingsRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings")
		return
	}
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		player := findPlayer(room, req.PlayerID)
		if player == nil {
			return notFound("player not found")
		}
		if player.ID != room.HostID {
			return stateConflict("only the host can change settings")
		}
		if room.Status != roomWaiting {
			return stateConflict("settings are locked once the game starts")
		}
		if err := validateMaxRounds(req.MaxRounds); err != nil {
			return err
		}
		room.MaxRounds = req.MaxRounds
		return nil
	})
	if err != nil {
		writeGameError(w, err)
		return
	}
	if err := s.persistSettings(room); err != nil {
		log.Printf("persist settings failed room=%s err=%v", room.ID, err)
	}
	writeJSON(w, http.StatusOK, s.roomSnapshot(room))
	s.broadcastRoomUpdate(room)
}

// handleHand returns one player's cards for a round. Hands are the only
// per-player state and are never part of the shared snapshot.
func (s *Server) handleHand(w http.ResponseWriter, r *http.Request, roomID string, playerID int) {
	room, player, ok := s.store.GetPlayer(roomID, playerID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	number := room.CurrentRound
	if raw := r.URL.Query().Get("round"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "round must be a positive number")
			return
		}
		number = parsed
	}
	round := roundByNumber(room, number)
	if round == nil {
		writeError(w, http.StatusNotFound, "round not found")
		return
	}
	cardIDs := handFor(round, player.ID)
	cards := make([]map[string]any, 0, len(cardIDs))
	for _, cardID := range cardIDs {
		text, _ := s.deck.CardText(cardID)
		cards = append(cards, map[string]any{
			"card_id": cardID,
			"text":    text,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room_id":   room.ID,
		"player_id": player.ID,
		"round":     round.Number,
		"round_id":  round.ID,
		"cards":     cards,
	})
}

func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request, roomID string) {
	var req submissionRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid submission")
		return
	}
	now := timeNowUTC()
	advanced := false
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		if err := s.recordSubmission(room, req.PlayerID, req.RoundID, req.CardIDs); err != nil {
			return err
		}
		advanced = s.advanceRoom(room, now)
		return nil
	})
	if err != nil {
		writeGameError(w, err)
		return
	}
	log.Printf("cards submitted room=%s player_id=%d round_id=%s", room.ID, req.PlayerID, req.RoundID)

	if round := roundByID(room, req.RoundID); round != nil {
		if sub := submissionFor(round, req.PlayerID); sub != nil {
			if err := s.persistSubmission(room, round, sub); err != nil {
				log.Printf("persist submission failed room=%s err=%v", room.ID, err)
			}
		}
	}
	if advanced {
		if err := s.persistRoomSync(room); err != nil {
			log.Printf("persist advance failed room=%s err=%v", room.ID, err)
		}
	}
	writeJSON(w, http.StatusOK, s.roomSnapshot(room))
	s.broadcastRoomUpdate(room)
	s.scheduleRoundTimer(room)
}

func (s *Server) handleVotes(w http.ResponseWriter, r *http.Request, roomID string) {
	var req voteRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid vote")
		return
	}
	now := timeNowUTC()
	advanced := false
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		if err := s.recordVote(room, req.PlayerID, req.RoundID, req.VotedForID); err != nil {
			return err
		}
		advanced = s.advanceRoom(room, now)
		return nil
	})
	if err != nil {
		writeGameError(w, err)
		return
	}
	log.Printf("vote recorded room=%s voter_id=%d voted_for_id=%d", room.ID, req.PlayerID, req.VotedForID)

	if round := roundByID(room, req.RoundID); round != nil {
		for i := range round.Votes {
			if round.Votes[i].VoterID == req.PlayerID {
				if err := s.persistVote(room, round, &round.Votes[i]); err != nil {
					log.Printf("persist vote failed room=%s err=%v", room.ID, err)
				}
				break
			}
		}
	}
	if advanced {
		if err := s.persistRoomSync(room); err != nil {
			log.Printf("persist advance failed room=%s err=%v", room.ID, err)
		}
	}
	writeJSON(w, http.StatusOK, s.roomSnapshot(room))
	s.broadcastRoomUpdate(room)
	s.scheduleRoundTimer(room)
}

// handleAdvance moves the room forward when its guards allow it. A call
// whose conditions no longer hold is a no-op that still returns the
// current snapshot, so racing clients all land on the same state.
func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request, roomID string) {
	var req advanceRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	now := timeNowUTC()
	advanced := false
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		advanced = s.advanceRoom(room, now)
		return nil
	})
	if err != nil {
		writeGameError(w, err)
		return
	}
	if advanced {
		log.Printf("room advanced room=%s status=%s round=%d", room.ID, room.Status, room.CurrentRound)
		if err := s.persistRoomSync(room); err != nil {
			log.Printf("persist advance failed room=%s err=%v", room.ID, err)
		}
		if err := s.persistEvent(room, "round_advanced", EventPayload{
			RoomID:      room.ID,
			Status:      room.Status,
			RoundNumber: room.CurrentRound,
			PlayerID:    req.PlayerID,
			Reason:      "request",
		}); err != nil {
			log.Printf("persist event failed room=%s err=%v", room.ID, err)
		}
	}
	writeJSON(w, http.StatusOK, s.roomSnapshot(room))
	if advanced {
		s.broadcastRoomUpdate(room)
	}
	s.scheduleRoundTimer(room)
}

func (s *Server) handleEndRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	var req startRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	now := timeNowUTC()
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		player := findPlayer(room, req.PlayerID)
		if player == nil {
			return notFound("player not found")
		}
		if player.ID != room.HostID {
			return stateConflict("only the host can end the game")
		}
		return s.endRoom(room, now)
	})
	if err != nil {
		writeGameError(w, err)
		return
	}
	log.Printf("game ended room=%s reason=host_request", room.ID)
	s.cancelRoundTimer(room.ID)
	if err := s.persistRoomSync(room); err != nil {
		log.Printf("persist end failed room=%s err=%v", room.ID, err)
	}
	if err := s.persistEvent(room, "game_ended", EventPayload{
		RoomID:   room.ID,
		PlayerID: req.PlayerID,
		Reason:   "host_request",
	}); err != nil {
		log.Printf("persist event failed room=%s err=%v", room.ID, err)
	}
	writeJSON(w, http.StatusOK, s.roomSnapshot(room))
	s.broadcastRoomUpdate(room)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request, roomID string) {
	room, ok := s.findRoom(roomID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	rounds := make([]map[string]any, 0, len(room.Rounds))
	for i := range room.Rounds {
		round := &room.Rounds[i]
		if round.Status != roundEnded {
			continue
		}
		tallies := tallyVotes(round)
		entries := make([]map[string]any, 0, len(round.Submissions))
		for j := range round.Submissions {
			playerID := round.Submissions[j].PlayerID
			entries = append(entries, map[string]any{
				"player_id":   playerID,
				"player_name": playerName(room, playerID),
				"votes":       tallies[playerID],
			})
		}
		rounds = append(rounds, map[string]any{
			"number":     round.Number,
			"prompt":     round.Prompt,
			"winner_ids": append([]int(nil), round.Winners...),
			"tallies":    entries,
		})
	}
	results := finalStandings(room)
	results["room_id"] = room.ID
	results["status"] = room.Status
	results["rounds"] = rounds
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, roomID string) {
	room, ok := s.findRoom(roomID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	events := make([]map[string]any, 0)
	if s.db != nil && room.DBID != 0 {
		var records []db.Event
		if err := s.db.Where("room_id = ?", room.DBID).Order("id").Find(&records).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load events")
			return
		}
		for _, record := range records {
			events = append(events, map[string]any{
				"id":         record.ID,
				"type":       record.Type,
				"payload":    record.Payload,
				"created_at": record.CreatedAt,
			})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room_id": room.ID,
		"events":  events,
	})
}

// handleRoomQR renders the join URL as a PNG for the host screen.
func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request, roomID string) {
	room, ok := s.findRoom(roomID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	joinURL := scheme + "://" + r.Host + "/join/" + room.JoinCode
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render qr code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
