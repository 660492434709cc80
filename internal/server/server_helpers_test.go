package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"card-clash/internal/config"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	return newTestServerWithConfig(t, config.Default())
}

func newTestServerWithConfig(t *testing.T, cfg config.Config) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewWithSeed(nil, cfg, 1)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func createRoom(t *testing.T, ts *httptest.Server, hostName string) (string, string, int) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms", map[string]any{
		"name": hostName,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return body["room_id"].(string), body["join_code"].(string), int(body["player_id"].(float64))
}

func joinPlayer(t *testing.T, ts *httptest.Server, roomID, name string) int {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/join", map[string]string{
		"name": name,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return int(body["player_id"].(float64))
}

func startGame(t *testing.T, ts *httptest.Server, roomID string, hostID int) map[string]any {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/start", map[string]any{
		"player_id": hostID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func fetchSnapshot(t *testing.T, ts *httptest.Server, roomID string) map[string]any {
	t.Helper()
	resp := doRequest(t, ts, http.MethodGet, "/api/rooms/"+roomID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func roundField(t *testing.T, snapshot map[string]any) map[string]any {
	t.Helper()
	round, ok := snapshot["round"].(map[string]any)
	if !ok {
		t.Fatalf("expected round in snapshot, got %#v", snapshot["round"])
	}
	return round
}

func fetchHand(t *testing.T, ts *httptest.Server, roomID string, playerID int) (string, []int) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodGet, "/api/rooms/"+roomID+"/players/"+itoa(playerID)+"/hand", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	roundID := body["round_id"].(string)
	rawCards, ok := body["cards"].([]any)
	if !ok {
		t.Fatalf("expected cards list, got %#v", body["cards"])
	}
	cardIDs := make([]int, 0, len(rawCards))
	for _, raw := range rawCards {
		card := raw.(map[string]any)
		cardIDs = append(cardIDs, int(card["card_id"].(float64)))
	}
	return roundID, cardIDs
}

func submitCards(t *testing.T, ts *httptest.Server, roomID string, playerID int, roundID string, cardIDs []int) *http.Response {
	t.Helper()
	return doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/submissions", map[string]any{
		"player_id": playerID,
		"round_id":  roundID,
		"card_ids":  cardIDs,
	})
}

func castVote(t *testing.T, ts *httptest.Server, roomID string, playerID int, roundID string, votedForID int) *http.Response {
	t.Helper()
	return doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/votes", map[string]any{
		"player_id":    playerID,
		"round_id":     roundID,
		"voted_for_id": votedForID,
	})
}

// rewindDeadline moves the current round's deadline into the past so a
// follow-up advance call sees it as expired.
func rewindDeadline(t *testing.T, srv *Server, roomID string) {
	t.Helper()
	_, err := srv.store.UpdateRoom(roomID, func(room *Room) error {
		round := currentRound(room)
		if round == nil {
			t.Fatal("expected a current round")
		}
		round.Deadline = timeNowUTC().Add(-time.Second)
		return nil
	})
	if err != nil {
		t.Fatalf("rewind deadline: %v", err)
	}
}

func advanceRoomRequest(t *testing.T, ts *httptest.Server, roomID string) map[string]any {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/advance", map[string]any{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func itoa(value int) string {
	return strconv.Itoa(value)
}
