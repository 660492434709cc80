package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func readWSMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set read deadline: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}
	return payload
}

func TestWebsocketSendsSnapshotOnConnect(t *testing.T) {
	_, ts := newTestServer(t)
	roomID, _, _ := createRoom(t, ts, "Ada")

	conn := dialWS(t, ts, "/ws/rooms/"+roomID)
	snapshot := readWSMessage(t, conn)
	if snapshot["room_id"] != roomID {
		t.Fatalf("expected room_id %q, got %#v", roomID, snapshot["room_id"])
	}
	if snapshot["status"] != "waiting" {
		t.Fatalf("expected waiting, got %#v", snapshot["status"])
	}
}

func TestWebsocketUnknownRoom(t *testing.T) {
	_, ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/rooms/room-404"
	if _, _, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Fatal("expected dial to an unknown room to fail")
	}
}

func TestWebsocketBroadcastsJoins(t *testing.T) {
	_, ts := newTestServer(t)
	roomID, _, _ := createRoom(t, ts, "Ada")

	conn := dialWS(t, ts, "/ws/rooms/"+roomID)
	readWSMessage(t, conn)

	joinPlayer(t, ts, roomID, "Grace")
	snapshot := readWSMessage(t, conn)
	players := snapshot["players"].([]any)
	if len(players) != 2 {
		t.Fatalf("expected 2 players after join, got %d", len(players))
	}
}

func TestWebsocketTracksPresence(t *testing.T) {
	srv, ts := newTestServer(t)
	roomID, _, _ := createRoom(t, ts, "Ada")
	playerID := joinPlayer(t, ts, roomID, "Grace")

	conn := dialWS(t, ts, "/ws/rooms/"+roomID+"?player_id="+itoa(playerID))
	readWSMessage(t, conn)
	if !playerConnected(t, srv, roomID, playerID) {
		t.Fatal("expected player to be connected while the socket is open")
	}

	_ = conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for playerConnected(t, srv, roomID, playerID) {
		if time.Now().After(deadline) {
			t.Fatal("expected player to be marked disconnected after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func playerConnected(t *testing.T, srv *Server, roomID string, playerID int) bool {
	t.Helper()
	_, player, ok := srv.store.GetPlayer(roomID, playerID)
	if !ok {
		t.Fatalf("player %d missing from room %s", playerID, roomID)
	}
	return player.Connected
}

func TestConcurrentBroadcastsDeliverCleanFrames(t *testing.T) {
	srv, ts := newTestServer(t)
	roomID, _, _ := createRoom(t, ts, "Ada")
	conn := dialWS(t, ts, "/ws/rooms/"+roomID)
	readWSMessage(t, conn)

	room, ok := srv.store.GetRoom(roomID)
	if !ok {
		t.Fatalf("room %s missing", roomID)
	}
	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			srv.ws.Broadcast(roomID, srv.roomSnapshot(room))
		}()
	}
	wg.Wait()

	// Every frame must decode on its own; interleaved writes would corrupt
	// the stream.
	for i := 0; i < writers; i++ {
		snapshot := readWSMessage(t, conn)
		if snapshot["room_id"] != roomID {
			t.Fatalf("frame %d: expected room_id %q, got %#v", i, roomID, snapshot["room_id"])
		}
	}
}

func TestHomeWebsocketListsOpenRooms(t *testing.T) {
	_, ts := newTestServer(t)
	_, joinCode, _ := createRoom(t, ts, "Ada")

	conn := dialWS(t, ts, "/ws/home")
	payload := readWSMessage(t, conn)
	rooms, ok := payload["rooms"].([]any)
	if !ok || len(rooms) != 1 {
		t.Fatalf("expected 1 open room, got %#v", payload["rooms"])
	}
	room := rooms[0].(map[string]any)
	if room["join_code"] != joinCode {
		t.Fatalf("expected join code %q, got %#v", joinCode, room["join_code"])
	}
}
