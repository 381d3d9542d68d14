package domain

import (
	"strings"
	"time"
)

const (
	RoomCodeLength   = 6
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type Room struct {
	Code       string
	Name       string
	SecretHash string
	HostId     string
	Player     Player
	CreatedAt  time.Time
}

func (r Room) HasSecret() bool {
	return r.SecretHash != ""
}

// Snapshot is shorthand for r.Player.Snapshot(now).
func (r Room) Snapshot(now time.Time) Snapshot {
	return r.Player.Snapshot(now)
}

// CanonicalCode normalizes user supplied room codes to the stored form.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func IsValidCode(code string) bool {
	if len(code) != RoomCodeLength {
		return false
	}

	for _, c := range code {
		if !strings.ContainsRune(RoomCodeAlphabet, c) {
			return false
		}
	}

	return true
}
