package service

import (
	"context"

	"github.com/sharetube/watchparty/internal/domain"
)

type GetSnapshotParams struct {
	RoomCode      string `json:"room_code"`
	ParticipantId string `json:"participant_id"`
}

// GetSnapshot returns the room's current playback state with the position extrapolated to now.
// It never writes.
func (s service) GetSnapshot(ctx context.Context, params *GetSnapshotParams) (domain.Snapshot, error) {
	code, err := s.canonicalCode(params.RoomCode)
	if err != nil {
		return domain.Snapshot{}, err
	}

	var snapshot domain.Snapshot
	if err := s.registry.Read(ctx, code, func(ctx context.Context, rm domain.Room) error {
		if _, err := s.observe(ctx, code, params.ParticipantId); err != nil {
			return err
		}

		snapshot = rm.Snapshot(s.registry.Now())
		return nil
	}); err != nil {
		return domain.Snapshot{}, s.mapRegistryError(err)
	}

	return snapshot, nil
}
