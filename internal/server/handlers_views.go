package server

import (
	"log"
	"net/http"
	"strings"

	"card-clash/internal/web"

	"github.com/a-h/templ"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	flash := ""
	name := ""
	if s.sessions != nil {
		flash = s.sessions.PopFlash(w, r)
		name = s.sessions.GetName(w, r)
	}
	templ.Handler(web.Home(flash, name, s.homeSummaries())).ServeHTTP(w, r)
}

func (s *Server) handleJoinView(w http.ResponseWriter, r *http.Request) {
	code := ""
	name := ""
	if strings.HasPrefix(r.URL.Path, "/join/") {
		code = strings.TrimPrefix(r.URL.Path, "/join/")
		code = strings.Trim(code, "/")
		if code != "" && strings.Contains(code, "/") {
			http.NotFound(w, r)
			return
		}
	}
	if s.sessions != nil {
		name = s.sessions.GetName(w, r)
	}
	templ.Handler(web.JoinView(code, name)).ServeHTTP(w, r)
}

// handleRoomView is the shared screen: join code, QR, prompt, submissions
// and scores.
func (s *Server) handleRoomView(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseRoomViewPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	room, exists := s.findRoom(roomID)
	if !exists {
		log.Printf("room view missing room=%s", roomID)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	templ.Handler(web.RoomView(room.ID, room.JoinCode)).ServeHTTP(w, r)
}

func (s *Server) handlePlayerView(w http.ResponseWriter, r *http.Request) {
	roomID, playerID, ok := parsePlayerPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	room, player, found := s.store.GetPlayer(roomID, playerID)
	if !found {
		if s.sessions != nil {
			s.sessions.SetFlash(w, r, "Room not found. Start a new one or join with a fresh code.")
		}
		log.Printf("player view missing room=%s player_id=%d", roomID, playerID)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if room.Status == roomFinished {
		if s.sessions != nil {
			s.sessions.SetFlash(w, r, "That game has finished. Start a new one!")
		}
		log.Printf("player view finished room=%s player_id=%d", roomID, playerID)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	templ.Handler(web.PlayerView(room.ID, player.ID, player.Name)).ServeHTTP(w, r)
}
