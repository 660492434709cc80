package server

import (
	"log"
	"time"
)

// timerSlack keeps the wall clock safely past the deadline when the timer
// fires.
const timerSlack = 50 * time.Millisecond

// scheduleRoundTimer arms the auto-advance timer for the room's current
// deadline, replacing any previous timer for that room.
func (s *Server) scheduleRoundTimer(room *Room) {
	round := currentRound(room)
	if room.Status != roomPlaying || round == nil {
		s.cancelRoundTimer(room.ID)
		return
	}
	wait := time.Until(round.Deadline)
	if wait < 0 {
		wait = 0
	}
	roomID := room.ID
	roundID := round.ID
	expected := round.Status
	s.timersMu.Lock()
	if prev, ok := s.timers[roomID]; ok {
		prev.Stop()
	}
	s.timers[roomID] = time.AfterFunc(wait+timerSlack, func() {
		s.autoAdvance(roomID, roundID, expected)
	})
	s.timersMu.Unlock()
}

func (s *Server) cancelRoundTimer(roomID string) {
	s.timersMu.Lock()
	if timer, ok := s.timers[roomID]; ok {
		timer.Stop()
		delete(s.timers, roomID)
	}
	s.timersMu.Unlock()
}

// autoAdvance fires when a deadline passes. It re-validates that the round
// is still in the state the timer was armed for, so a stale timer that
// lost the race to a manual advance does nothing.
func (s *Server) autoAdvance(roomID, roundID, expectedStatus string) {
	advanced := false
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		round := currentRound(room)
		if round == nil || round.ID != roundID || round.Status != expectedStatus {
			return nil
		}
		advanced = s.advanceRoom(room, timeNowUTC())
		return nil
	})
	if err != nil || !advanced {
		return
	}
	log.Printf("deadline advance room=%s status=%s round=%d", room.ID, room.Status, room.CurrentRound)
	if err := s.persistRoomSync(room); err != nil {
		log.Printf("persist advance failed room=%s err=%v", room.ID, err)
	}
	if err := s.persistEvent(room, "round_advanced", EventPayload{
		RoomID:      room.ID,
		Status:      room.Status,
		RoundNumber: room.CurrentRound,
		Reason:      "deadline",
	}); err != nil {
		log.Printf("persist event failed room=%s err=%v", room.ID, err)
	}
	s.broadcastRoomUpdate(room)
	s.broadcastHomeUpdate()
	s.scheduleRoundTimer(room)
}
