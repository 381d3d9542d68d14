package domain

import (
	"fmt"
	"time"
)

type MediaKind string

const (
	MediaKindYoutube MediaKind = "youtube"
	MediaKindLocal   MediaKind = "local"
)

// ParseMediaKind accepts the wire values and their long names. Empty input means youtube.
func ParseMediaKind(s string) (MediaKind, error) {
	switch s {
	case "", "youtube", "embedded-stream":
		return MediaKindYoutube, nil
	case "local", "uploaded-file":
		return MediaKindLocal, nil
	default:
		return "", fmt.Errorf("unknown media kind %q", s)
	}
}

// Player is the authoritative playback state of a room.
type Player struct {
	MediaURL  string
	MediaKind MediaKind
	Position  float64
	Playing   bool
	LastSync  time.Time
	// Version counts applied control actions.
	Version int
}

type Snapshot struct {
	MediaURL  string    `json:"video_url"`
	MediaKind MediaKind `json:"video_type"`
	Position  float64   `json:"current_time"`
	Playing   bool      `json:"is_playing"`
	LastSync  time.Time `json:"last_sync"`
	Version   int       `json:"version"`
}

// Snapshot computes the drift compensated view of p at now. Both push and pull paths go through here.
func (p Player) Snapshot(now time.Time) Snapshot {
	return Snapshot{
		MediaURL:  p.MediaURL,
		MediaKind: p.MediaKind,
		Position:  EffectivePosition(p.Position, p.Playing, p.LastSync, now),
		Playing:   p.Playing,
		LastSync:  p.LastSync.UTC(),
		Version:   p.Version,
	}
}

// EffectivePosition extrapolates position by the time elapsed since lastSync while playing.
// A clock behind lastSync yields the stored position.
func EffectivePosition(position float64, playing bool, lastSync, now time.Time) float64 {
	if !playing {
		return position
	}

	elapsed := now.Sub(lastSync).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	return position + elapsed
}
