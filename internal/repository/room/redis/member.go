package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/watchparty/internal/repository/room"
)

func (r repo) getMemberKey(roomCode, participantId string) string {
	return "room:" + roomCode + ":member:" + participantId
}

func (r repo) getMemberListKey(roomCode string) string {
	return "room:" + roomCode + ":memberlist"
}

func (r repo) getMemberSeqKey(roomCode string) string {
	return "room:" + roomCode + ":memberseq"
}

func (r repo) SetMember(ctx context.Context, params *room.SetMemberParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	score, err := r.nextScore(ctx, r.getMemberSeqKey(params.RoomCode))
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	pipe := r.rc.TxPipeline()

	r.hSetStruct(ctx, pipe, r.getMemberKey(params.RoomCode, params.ParticipantId), room.Member{
		DisplayName: params.DisplayName,
		Role:        params.Role,
		Approved:    params.Approved,
		JoinedAt:    params.JoinedAt,
	})
	pipe.ZAdd(ctx, r.getMemberListKey(params.RoomCode), redis.Z{Score: score, Member: params.ParticipantId})

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetMember(ctx context.Context, params *room.GetMemberParams) (room.Member, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	cmd := r.rc.HGetAll(ctx, r.getMemberKey(params.RoomCode, params.ParticipantId))
	res, err := cmd.Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Member{}, err
	}

	if len(res) == 0 {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrMemberNotFound)
		return room.Member{}, room.ErrMemberNotFound
	}

	var member room.Member
	if err := cmd.Scan(&member); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Member{}, err
	}

	return member, nil
}

// RemoveMember reports whether a membership existed.
func (r repo) RemoveMember(ctx context.Context, params *room.RemoveMemberParams) (bool, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	del := pipe.Del(ctx, r.getMemberKey(params.RoomCode, params.ParticipantId))
	pipe.ZRem(ctx, r.getMemberListKey(params.RoomCode), params.ParticipantId)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return false, err
	}

	return del.Val() > 0, nil
}

func (r repo) GetMemberIds(ctx context.Context, roomCode string) ([]string, error) {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_code": roomCode,
	})
	memberIds, err := r.rc.ZRange(ctx, r.getMemberListKey(roomCode), 0, -1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	return memberIds, nil
}
