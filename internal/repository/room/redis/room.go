package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/watchparty/internal/repository/room"
)

func (r repo) getRoomCodesKey() string {
	return "rooms"
}

func (r repo) getRoomKey(roomCode string) string {
	return "room:" + roomCode
}

func (r repo) ReserveRoomCode(ctx context.Context, roomCode string) error {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_code": roomCode,
	})
	added, err := r.rc.SAdd(ctx, r.getRoomCodesKey(), roomCode).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	if added == 0 {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrCodeAlreadyTaken)
		return room.ErrCodeAlreadyTaken
	}

	return nil
}

// SetRoom stores the room, its initial player and the host membership in one transaction.
func (r repo) SetRoom(ctx context.Context, params *room.SetRoomParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	r.hSetStruct(ctx, pipe, r.getRoomKey(params.RoomCode), room.Room{
		Name:       params.Name,
		SecretHash: params.SecretHash,
		HostId:     params.HostId,
		CreatedAt:  params.CreatedAt,
	})

	r.hSetStruct(ctx, pipe, r.getPlayerKey(params.RoomCode), room.Player{
		LastSync: params.CreatedAt,
	})

	r.hSetStruct(ctx, pipe, r.getMemberKey(params.RoomCode, params.HostId), room.Member{
		DisplayName: params.HostName,
		Role:        "host",
		Approved:    true,
		JoinedAt:    params.CreatedAt,
	})
	pipe.Set(ctx, r.getMemberSeqKey(params.RoomCode), 1, 0)
	pipe.ZAdd(ctx, r.getMemberListKey(params.RoomCode), redis.Z{Score: 1, Member: params.HostId})

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomCode string) (room.Room, error) {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_code": roomCode,
	})
	cmd := r.rc.HGetAll(ctx, r.getRoomKey(roomCode))
	res, err := cmd.Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Room{}, err
	}

	if len(res) == 0 {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.Room{}, room.ErrRoomNotFound
	}

	var rm room.Room
	if err := cmd.Scan(&rm); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Room{}, err
	}

	return rm, nil
}

// RemoveRoom deletes the room with its player, members and notifications and frees the code.
func (r repo) RemoveRoom(ctx context.Context, roomCode string) error {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_code": roomCode,
	})
	memberIds, err := r.rc.ZRange(ctx, r.getMemberListKey(roomCode), 0, -1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	pipe := r.rc.TxPipeline()

	delRoom := pipe.Del(ctx, r.getRoomKey(roomCode))
	pipe.Del(ctx, r.getPlayerKey(roomCode))
	for _, memberId := range memberIds {
		pipe.Del(ctx, r.getMemberKey(roomCode, memberId))
	}
	pipe.Del(ctx, r.getMemberListKey(roomCode))
	pipe.Del(ctx, r.getMemberSeqKey(roomCode))
	pipe.Del(ctx, r.getNotificationsKey(roomCode))
	pipe.SRem(ctx, r.getRoomCodesKey(), roomCode)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	if delRoom.Val() == 0 {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.ErrRoomNotFound
	}

	return nil
}
