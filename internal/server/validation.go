package server

import (
	"fmt"
	"strings"
)

const (
	maxNameLength    = 20
	maxRoundsPerRoom = 10
	maxLobbyPlayers  = 12
)

func validateName(name string) (string, error) {
	trimmed := normalizeText(name)
	if trimmed == "" {
		return "", validationError("name is required")
	}
	if len(trimmed) > maxNameLength {
		return "", validationError(fmt.Sprintf("name must be %d characters or fewer", maxNameLength))
	}
	if !isSafeText(trimmed) {
		return "", validationError("name contains unsupported characters")
	}
	return trimmed, nil
}

func validateMaxRounds(maxRounds int) error {
	if maxRounds < 1 || maxRounds > maxRoundsPerRoom {
		return validationError(fmt.Sprintf("max rounds must be between 1 and %d", maxRoundsPerRoom))
	}
	return nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

func isSafeText(text string) bool {
	for _, r := range text {
		if r > 127 {
			return false
		}
		if r >= 'a' && r <= 'z' {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		switch r {
		case ' ', '-', '_', '\'', '"', '.', ',', '!', '?', ':', ';', '&', '(', ')', '/':
			continue
		default:
			return false
		}
	}
	return true
}
