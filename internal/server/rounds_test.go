package server

import (
	"testing"
	"time"

	"card-clash/internal/config"
)

type fixture struct {
	srv    *Server
	roomID string
	hostID int
	ids    []int
}

// newFixture builds an in-memory game with the host plus extra players,
// already started when start is true.
func newFixture(t *testing.T, cfg config.Config, extraPlayers int, start bool) *fixture {
	t.Helper()
	srv := NewWithSeed(nil, cfg, 3)
	room, host, err := srv.store.CreateRoom("Ada", cfg.MaxRounds)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	f := &fixture{srv: srv, roomID: room.ID, hostID: host.ID, ids: []int{host.ID}}
	names := []string{"Grace", "Linus", "Edsger", "Barbara"}
	for i := 0; i < extraPlayers; i++ {
		_, player, err := srv.store.AddPlayer(room.ID, names[i])
		if err != nil {
			t.Fatalf("join: %v", err)
		}
		f.ids = append(f.ids, player.ID)
	}
	if start {
		if _, err := srv.store.UpdateRoom(room.ID, func(room *Room) error {
			return srv.startRoom(room, timeNowUTC())
		}); err != nil {
			t.Fatalf("start: %v", err)
		}
	}
	return f
}

func (f *fixture) room(t *testing.T) *Room {
	t.Helper()
	room, ok := f.srv.store.GetRoom(f.roomID)
	if !ok {
		t.Fatalf("room %s missing", f.roomID)
	}
	return room
}

func (f *fixture) update(t *testing.T, fn func(room *Room) error) error {
	t.Helper()
	_, err := f.srv.store.UpdateRoom(f.roomID, fn)
	return err
}

func (f *fixture) submitAll(t *testing.T) {
	t.Helper()
	room := f.room(t)
	round := currentRound(room)
	if round == nil {
		t.Fatal("no current round")
	}
	for _, id := range f.ids {
		hand := handFor(round, id)
		playerID := id
		cards := []int{hand[0], hand[1]}
		if err := f.update(t, func(room *Room) error {
			if err := f.srv.recordSubmission(room, playerID, round.ID, cards); err != nil {
				return err
			}
			f.srv.advanceRoom(room, timeNowUTC())
			return nil
		}); err != nil {
			t.Fatalf("submit for %d: %v", playerID, err)
		}
	}
}

func TestStartRequiresMinimumPlayers(t *testing.T) {
	cfg := config.Default()
	cfg.MinPlayers = 2
	f := newFixture(t, cfg, 0, false)
	err := f.update(t, func(room *Room) error {
		return f.srv.startRoom(room, timeNowUTC())
	})
	if err == nil || errorStatus(err) != 409 {
		t.Fatalf("expected conflict starting with too few players, got %v", err)
	}
}

func TestStartDealsDisjointHands(t *testing.T) {
	f := newFixture(t, config.Default(), 2, true)
	room := f.room(t)
	if room.Status != roomPlaying || room.CurrentRound != 1 {
		t.Fatalf("expected playing round 1, got %s round %d", room.Status, room.CurrentRound)
	}
	round := currentRound(room)
	if round == nil || round.Status != roundPlaying {
		t.Fatal("expected an open round")
	}
	if round.Prompt == "" {
		t.Fatal("expected a prompt")
	}
	if !round.Deadline.After(round.StartedAt) {
		t.Fatal("expected deadline after start")
	}
	seen := make(map[int]struct{})
	for _, id := range f.ids {
		hand := handFor(round, id)
		if len(hand) != f.srv.cfg.HandSize {
			t.Fatalf("expected hand of %d, got %d", f.srv.cfg.HandSize, len(hand))
		}
		for _, cardID := range hand {
			if _, dup := seen[cardID]; dup {
				t.Fatalf("card %d dealt twice", cardID)
			}
			seen[cardID] = struct{}{}
		}
	}
}

func TestSubmissionGuards(t *testing.T) {
	f := newFixture(t, config.Default(), 1, true)
	room := f.room(t)
	round := currentRound(room)
	hand := handFor(round, f.hostID)
	otherHand := handFor(round, f.ids[1])

	cases := []struct {
		name   string
		player int
		cards  []int
		status int
	}{
		{"one card", f.hostID, []int{hand[0]}, 400},
		{"duplicate card", f.hostID, []int{hand[0], hand[0]}, 400},
		{"not in hand", f.hostID, []int{hand[0], otherHand[0]}, 400},
		{"unknown player", 999, []int{hand[0], hand[1]}, 404},
	}
	for _, tc := range cases {
		err := f.update(t, func(room *Room) error {
			return f.srv.recordSubmission(room, tc.player, round.ID, tc.cards)
		})
		if err == nil || errorStatus(err) != tc.status {
			t.Fatalf("%s: expected status %d, got %v", tc.name, tc.status, err)
		}
	}

	if err := f.update(t, func(room *Room) error {
		return f.srv.recordSubmission(room, f.hostID, round.ID, []int{hand[0], hand[1]})
	}); err != nil {
		t.Fatalf("valid submission: %v", err)
	}
	err := f.update(t, func(room *Room) error {
		return f.srv.recordSubmission(room, f.hostID, round.ID, []int{hand[2], hand[3]})
	})
	if err == nil || errorStatus(err) != 409 {
		t.Fatalf("expected duplicate submission conflict, got %v", err)
	}
}

func TestSubmissionOrderIsPreserved(t *testing.T) {
	f := newFixture(t, config.Default(), 1, true)
	room := f.room(t)
	round := currentRound(room)
	hand := handFor(round, f.hostID)

	if err := f.update(t, func(room *Room) error {
		return f.srv.recordSubmission(room, f.hostID, round.ID, []int{hand[1], hand[0]})
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	sub := submissionFor(currentRound(f.room(t)), f.hostID)
	if sub.CardIDs[0] != hand[1] || sub.CardIDs[1] != hand[0] {
		t.Fatalf("expected order [%d %d], got %v", hand[1], hand[0], sub.CardIDs)
	}
}

func TestAllSubmittedOpensVoting(t *testing.T) {
	f := newFixture(t, config.Default(), 1, true)
	f.submitAll(t)
	round := currentRound(f.room(t))
	if round.Status != roundVoting {
		t.Fatalf("expected voting after all submissions, got %q", round.Status)
	}
}

func TestDisconnectedPlayerDoesNotBlockSubmissions(t *testing.T) {
	f := newFixture(t, config.Default(), 2, true)
	if err := f.update(t, func(room *Room) error {
		findPlayer(room, f.ids[2]).Connected = false
		return nil
	}); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	for _, id := range f.ids[:2] {
		round := currentRound(f.room(t))
		hand := handFor(round, id)
		playerID := id
		if err := f.update(t, func(room *Room) error {
			if err := f.srv.recordSubmission(room, playerID, round.ID, []int{hand[0], hand[1]}); err != nil {
				return err
			}
			f.srv.advanceRoom(room, timeNowUTC())
			return nil
		}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if round := currentRound(f.room(t)); round.Status != roundVoting {
		t.Fatalf("expected voting with one player away, got %q", round.Status)
	}
}

func TestLastDisconnectAdvancesPhase(t *testing.T) {
	f := newFixture(t, config.Default(), 2, true)
	round := currentRound(f.room(t))
	for _, id := range f.ids[:2] {
		hand := handFor(round, id)
		playerID := id
		if err := f.update(t, func(room *Room) error {
			return f.srv.recordSubmission(room, playerID, round.ID, []int{hand[0], hand[1]})
		}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	// Linus drops before submitting; everyone still here has cards in.
	f.srv.setConnected(f.roomID, f.ids[2], false)
	round = currentRound(f.room(t))
	if round.Status != roundVoting {
		t.Fatalf("expected voting once the only pending player dropped, got %q", round.Status)
	}

	// Grace votes, then the host drops mid-vote. Grace is the only eligible
	// voter left and has voted, so the round closes.
	if err := f.update(t, func(room *Room) error {
		return f.srv.recordVote(room, f.ids[1], round.ID, f.hostID)
	}); err != nil {
		t.Fatalf("vote: %v", err)
	}
	f.srv.setConnected(f.roomID, f.hostID, false)
	if round := roundByNumber(f.room(t), 1); round.Status != roundEnded {
		t.Fatalf("expected round to end once the only pending voter dropped, got %q", round.Status)
	}
}

func TestReconnectDoesNotAdvancePhase(t *testing.T) {
	f := newFixture(t, config.Default(), 1, true)
	f.srv.setConnected(f.roomID, f.ids[1], false)
	f.srv.setConnected(f.roomID, f.ids[1], true)
	if round := currentRound(f.room(t)); round.Status != roundPlaying {
		t.Fatalf("expected round untouched by a reconnect, got %q", round.Status)
	}
}

func TestVoteGuards(t *testing.T) {
	f := newFixture(t, config.Default(), 2, true)
	room := f.room(t)
	round := currentRound(room)

	// Votes before voting opens are rejected.
	err := f.update(t, func(room *Room) error {
		return f.srv.recordVote(room, f.hostID, round.ID, f.ids[1])
	})
	if err == nil || errorStatus(err) != 409 {
		t.Fatalf("expected conflict voting during playing, got %v", err)
	}

	// Only host and Grace submit; Linus misses the deadline.
	for _, id := range f.ids[:2] {
		current := currentRound(f.room(t))
		hand := handFor(current, id)
		playerID := id
		if err := f.update(t, func(room *Room) error {
			return f.srv.recordSubmission(room, playerID, current.ID, []int{hand[0], hand[1]})
		}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if err := f.update(t, func(room *Room) error {
		currentRound(room).Deadline = timeNowUTC().Add(-time.Second)
		f.srv.advanceRoom(room, timeNowUTC())
		return nil
	}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	round = currentRound(f.room(t))
	if round.Status != roundVoting {
		t.Fatalf("expected voting, got %q", round.Status)
	}

	cases := []struct {
		name   string
		voter  int
		target int
		status int
	}{
		{"self vote", f.hostID, f.hostID, 400},
		{"target without submission", f.hostID, f.ids[2], 400},
		{"unknown voter", 999, f.ids[1], 404},
	}
	for _, tc := range cases {
		err := f.update(t, func(room *Room) error {
			return f.srv.recordVote(room, tc.voter, round.ID, tc.target)
		})
		if err == nil || errorStatus(err) != tc.status {
			t.Fatalf("%s: expected status %d, got %v", tc.name, tc.status, err)
		}
	}

	if err := f.update(t, func(room *Room) error {
		return f.srv.recordVote(room, f.hostID, round.ID, f.ids[1])
	}); err != nil {
		t.Fatalf("valid vote: %v", err)
	}
	err = f.update(t, func(room *Room) error {
		return f.srv.recordVote(room, f.hostID, round.ID, f.ids[1])
	})
	if err == nil || errorStatus(err) != 409 {
		t.Fatalf("expected duplicate vote conflict, got %v", err)
	}
}

func TestScoringAwardsTiedWinners(t *testing.T) {
	cfg := config.Default()
	f := newFixture(t, cfg, 3, true)
	f.submitAll(t)
	round := currentRound(f.room(t))
	if round.Status != roundVoting {
		t.Fatalf("expected voting, got %q", round.Status)
	}

	// Two votes each for the host and Grace, none for the others.
	votes := map[int]int{
		f.ids[0]: f.ids[1],
		f.ids[1]: f.ids[0],
		f.ids[2]: f.ids[0],
		f.ids[3]: f.ids[1],
	}
	for voter, target := range votes {
		voter, target := voter, target
		if err := f.update(t, func(room *Room) error {
			if err := f.srv.recordVote(room, voter, round.ID, target); err != nil {
				return err
			}
			f.srv.advanceRoom(room, timeNowUTC())
			return nil
		}); err != nil {
			t.Fatalf("vote: %v", err)
		}
	}

	room := f.room(t)
	ended := roundByID(room, round.ID)
	if ended.Status != roundEnded {
		t.Fatalf("expected round ended after all votes, got %q", ended.Status)
	}
	if len(ended.Winners) != 2 {
		t.Fatalf("expected 2 tied winners, got %v", ended.Winners)
	}
	for _, id := range []int{f.ids[0], f.ids[1]} {
		if score := findPlayer(room, id).Score; score != cfg.PointsPerWin {
			t.Fatalf("expected winner %d to score %d, got %d", id, cfg.PointsPerWin, score)
		}
	}
	for _, id := range []int{f.ids[2], f.ids[3]} {
		if score := findPlayer(room, id).Score; score != 0 {
			t.Fatalf("expected player %d to score 0, got %d", id, score)
		}
	}
}

func TestDeadlineWithNoSubmissionsSkipsVoting(t *testing.T) {
	f := newFixture(t, config.Default(), 1, true)
	if err := f.update(t, func(room *Room) error {
		currentRound(room).Deadline = timeNowUTC().Add(-time.Second)
		f.srv.advanceRoom(room, timeNowUTC())
		return nil
	}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	room := f.room(t)
	round := roundByNumber(room, 1)
	if round.Status != roundEnded {
		t.Fatalf("expected empty round to end, got %q", round.Status)
	}
	if len(round.Winners) != 0 {
		t.Fatalf("expected no winners, got %v", round.Winners)
	}
	for i := range room.Players {
		if room.Players[i].Score != 0 {
			t.Fatalf("expected no points, got %d", room.Players[i].Score)
		}
	}
}

func TestAdvanceIsIdempotent(t *testing.T) {
	f := newFixture(t, config.Default(), 1, true)
	for i := 0; i < 3; i++ {
		if err := f.update(t, func(room *Room) error {
			if f.srv.advanceRoom(room, timeNowUTC()) {
				t.Fatal("expected no-op advance before deadline")
			}
			return nil
		}); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	if round := currentRound(f.room(t)); round.Status != roundPlaying {
		t.Fatalf("expected round untouched, got %q", round.Status)
	}
}

func TestEndedInterludeLeadsToNextRound(t *testing.T) {
	f := newFixture(t, config.Default(), 1, true)
	f.submitAll(t)

	// Force the vote window shut, then the interlude.
	if err := f.update(t, func(room *Room) error {
		currentRound(room).Deadline = timeNowUTC().Add(-time.Second)
		f.srv.advanceRoom(room, timeNowUTC())
		return nil
	}); err != nil {
		t.Fatalf("close voting: %v", err)
	}
	if round := roundByNumber(f.room(t), 1); round.Status != roundEnded {
		t.Fatalf("expected round 1 ended, got %q", round.Status)
	}
	if err := f.update(t, func(room *Room) error {
		currentRound(room).Deadline = timeNowUTC().Add(-time.Second)
		f.srv.advanceRoom(room, timeNowUTC())
		return nil
	}); err != nil {
		t.Fatalf("advance interlude: %v", err)
	}

	room := f.room(t)
	if room.CurrentRound != 2 {
		t.Fatalf("expected round 2, got %d", room.CurrentRound)
	}
	round := currentRound(room)
	if round.Status != roundPlaying {
		t.Fatalf("expected new round playing, got %q", round.Status)
	}
	if round.Prompt == roundByNumber(room, 1).Prompt {
		t.Fatal("expected a fresh prompt for round 2")
	}
}

func TestFinalRoundFinishesRoom(t *testing.T) {
	cfg := config.Default()
	cfg.MaxRounds = 1
	f := newFixture(t, cfg, 1, true)
	f.submitAll(t)
	if err := f.update(t, func(room *Room) error {
		currentRound(room).Deadline = timeNowUTC().Add(-time.Second)
		f.srv.advanceRoom(room, timeNowUTC())
		return nil
	}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	room := f.room(t)
	if room.Status != roomFinished {
		t.Fatalf("expected finished after final round, got %q", room.Status)
	}
	if round := roundByNumber(room, 1); round.Status != roundEnded {
		t.Fatalf("expected final round ended, got %q", round.Status)
	}
}

func TestPromptsDoNotRepeatAcrossRounds(t *testing.T) {
	cfg := config.Default()
	cfg.MaxRounds = 5
	f := newFixture(t, cfg, 1, true)
	seen := make(map[string]struct{})
	for i := 0; i < cfg.MaxRounds; i++ {
		room := f.room(t)
		prompt := currentRound(room).Prompt
		if _, dup := seen[prompt]; dup {
			t.Fatalf("prompt %q repeated", prompt)
		}
		seen[prompt] = struct{}{}
		if err := f.update(t, func(room *Room) error {
			round := currentRound(room)
			round.Deadline = timeNowUTC().Add(-time.Second)
			f.srv.advanceRoom(room, timeNowUTC())
			if round := currentRound(room); round != nil && round.Status == roundEnded {
				round.Deadline = timeNowUTC().Add(-time.Second)
				f.srv.advanceRoom(room, timeNowUTC())
			}
			return nil
		}); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	if room := f.room(t); room.Status != roomFinished {
		t.Fatalf("expected finished, got %q", room.Status)
	}
}
