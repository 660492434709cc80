package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"

	"card-clash/internal/web"

	"github.com/gorilla/websocket"
)

// Each connection carries its own write mutex: gorilla/websocket allows at
// most one concurrent writer per connection, and broadcasts happen from
// whichever goroutine mutated the room.
type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*websocket.Conn]*sync.Mutex
}

type homeHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]*sync.Mutex
}

func newWSHub() *wsHub {
	return &wsHub{
		groups: make(map[string]map[*websocket.Conn]*sync.Mutex),
	}
}

func newHomeHub() *homeHub {
	return &homeHub{
		conns: make(map[*websocket.Conn]*sync.Mutex),
	}
}

func writeConn(conn *websocket.Conn, wmu *sync.Mutex, data []byte) error {
	wmu.Lock()
	defer wmu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (h *wsHub) Add(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		group = make(map[*websocket.Conn]*sync.Mutex)
		h.groups[roomID] = group
	}
	group[conn] = &sync.Mutex{}
}

func (h *wsHub) Remove(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		return
	}
	delete(group, conn)
	_ = conn.Close()
	if len(group) == 0 {
		delete(h.groups, roomID)
	}
}

func (h *wsHub) Send(roomID string, conn *websocket.Conn, payload any) {
	h.mu.Lock()
	wmu := h.groups[roomID][conn]
	h.mu.Unlock()
	if wmu == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = writeConn(conn, wmu, data)
}

func (h *wsHub) Broadcast(roomID string, payload any) {
	h.mu.Lock()
	group := h.groups[roomID]
	conns := make([]*websocket.Conn, 0, len(group))
	mus := make([]*sync.Mutex, 0, len(group))
	for conn, wmu := range group {
		conns = append(conns, conn)
		mus = append(mus, wmu)
	}
	h.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for i, conn := range conns {
		if err := writeConn(conn, mus[i], data); err != nil {
			h.Remove(roomID, conn)
		}
	}
}

func (h *homeHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = &sync.Mutex{}
}

func (h *homeHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	_ = conn.Close()
}

func (h *homeHub) Send(conn *websocket.Conn, payload any) {
	h.mu.Lock()
	wmu := h.conns[conn]
	h.mu.Unlock()
	if wmu == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = writeConn(conn, wmu, data)
}

func (h *homeHub) Broadcast(payload any) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	mus := make([]*sync.Mutex, 0, len(h.conns))
	for conn, wmu := range h.conns {
		conns = append(conns, conn)
		mus = append(mus, wmu)
	}
	h.mu.Unlock()
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for i, conn := range conns {
		if err := writeConn(conn, mus[i], data); err != nil {
			h.Remove(conn)
		}
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseWebsocketPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if _, exists := s.store.GetRoom(roomID); !exists {
		http.NotFound(w, r)
		return
	}
	playerID, _ := strconv.Atoi(r.URL.Query().Get("player_id"))
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected room=%s player_id=%d remote=%s", roomID, playerID, r.RemoteAddr)
	s.ws.Add(roomID, conn)
	if playerID > 0 {
		s.setConnected(roomID, playerID, true)
	}
	if room, ok := s.store.GetRoom(roomID); ok {
		s.ws.Send(roomID, conn, s.roomSnapshot(room))
	}
	go s.readWS(roomID, playerID, conn)
}

func (s *Server) handleHomeWebsocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected home remote=%s", r.RemoteAddr)
	s.homeWS.Add(conn)
	s.homeWS.Send(conn, map[string]any{
		"rooms": s.homeSummaries(),
	})
	go s.readHomeWS(conn)
}

func (s *Server) readWS(roomID string, playerID int, conn *websocket.Conn) {
	defer func() {
		s.ws.Remove(roomID, conn)
		if playerID > 0 {
			s.setConnected(roomID, playerID, false)
		}
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("ws disconnected room=%s player_id=%d error=%v", roomID, playerID, err)
			return
		}
	}
}

func (s *Server) readHomeWS(conn *websocket.Conn) {
	defer s.homeWS.Remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("home ws disconnected error=%v", err)
			return
		}
	}
}

// setConnected flips a player's presence flag. Membership, score and
// submissions are untouched; a dropped player can pick up where they left
// off. A drop can also satisfy the everyone-in condition for the current
// phase, so the room is advanced under the same lock.
func (s *Server) setConnected(roomID string, playerID int, connected bool) {
	var player *Player
	now := timeNowUTC()
	advanced := false
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		found := findPlayer(room, playerID)
		if found == nil {
			return notFound("player not found")
		}
		found.Connected = connected
		player = copyPlayer(found)
		advanced = s.advanceRoom(room, now)
		return nil
	})
	if err != nil {
		return
	}
	if err := s.persistConnection(room, player); err != nil {
		log.Printf("persist connection failed room=%s player_id=%d err=%v", room.ID, playerID, err)
	}
	if advanced {
		log.Printf("presence advance room=%s status=%s round=%d", room.ID, room.Status, room.CurrentRound)
		if err := s.persistRoomSync(room); err != nil {
			log.Printf("persist advance failed room=%s err=%v", room.ID, err)
		}
		s.scheduleRoundTimer(room)
	}
	s.broadcastRoomUpdate(room)
}

func (s *Server) broadcastRoomUpdate(room *Room) {
	if s.ws == nil {
		return
	}
	s.ws.Broadcast(room.ID, s.roomSnapshot(room))
	s.broadcastHomeUpdate()
}

func (s *Server) broadcastHomeUpdate() {
	if s.homeWS == nil {
		return
	}
	s.homeWS.Broadcast(map[string]any{
		"rooms": s.homeSummaries(),
	})
}

func (s *Server) homeSummaries() []web.RoomSummary {
	summaries := make([]web.RoomSummary, 0)
	for _, room := range s.store.ListRoomSummaries() {
		summaries = append(summaries, web.RoomSummary{
			ID:       room.ID,
			JoinCode: room.JoinCode,
			Status:   room.Status,
			Players:  room.Players,
		})
	}
	return summaries
}
