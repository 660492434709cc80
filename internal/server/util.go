package server

import "crypto/rand"

const joinCodeLength = 4

// newJoinCode returns a short room code. Lookup is case-insensitive, so the
// alphabet only carries uppercase letters.
func newJoinCode() string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	buf := make([]byte, joinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "AAAA"
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}
