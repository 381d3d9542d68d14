package redis

import (
	"context"

	"github.com/sharetube/watchparty/internal/repository/room"
)

func (r repo) getPlayerKey(roomCode string) string {
	return "room:" + roomCode + ":player"
}

func (r repo) SetPlayer(ctx context.Context, params *room.SetPlayerParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	r.hSetStruct(ctx, pipe, r.getPlayerKey(params.RoomCode), room.Player{
		MediaURL:  params.MediaURL,
		MediaKind: params.MediaKind,
		Position:  params.Position,
		Playing:   params.Playing,
		LastSync:  params.LastSync,
		Version:   params.Version,
	})

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetPlayer(ctx context.Context, roomCode string) (room.Player, error) {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_code": roomCode,
	})
	cmd := r.rc.HGetAll(ctx, r.getPlayerKey(roomCode))
	res, err := cmd.Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Player{}, err
	}

	if len(res) == 0 {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrPlayerNotFound)
		return room.Player{}, room.ErrPlayerNotFound
	}

	var player room.Player
	if err := cmd.Scan(&player); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Player{}, err
	}

	return player, nil
}
