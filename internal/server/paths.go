package server

import (
	"strconv"
	"strings"
)

func parseRoomPath(path string) (string, string, bool) {
	const prefix = "/api/rooms/"
	if !strings.HasPrefix(path, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", "", false
	}
	roomID := parts[0]
	if len(parts) == 1 {
		return roomID, "", true
	}
	if len(parts) == 2 {
		return roomID, parts[1], true
	}
	return "", "", false
}

func parseHandPath(path string) (string, int, bool) {
	const prefix = "/api/rooms/"
	if !strings.HasPrefix(path, prefix) {
		return "", 0, false
	}
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 4 {
		return "", 0, false
	}
	if parts[1] != "players" || parts[3] != "hand" {
		return "", 0, false
	}
	playerID, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, false
	}
	if playerID <= 0 {
		return "", 0, false
	}
	return parts[0], playerID, true
}

func parseWebsocketPath(path string) (string, bool) {
	const prefix = "/ws/rooms/"
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

func parseRoomViewPath(path string) (string, bool) {
	const prefix = "/rooms/"
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	id := strings.TrimPrefix(path, prefix)
	id = strings.Trim(id, "/")
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func parsePlayerPath(path string) (string, int, bool) {
	const prefix = "/play/"
	if !strings.HasPrefix(path, prefix) {
		return "", 0, false
	}
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 {
		return "", 0, false
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, false
	}
	if id <= 0 {
		return "", 0, false
	}
	return parts[0], id, true
}
