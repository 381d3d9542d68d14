package redis

import (
	"context"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/watchparty/internal/repository/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*repo, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	t.Cleanup(func() { rc.Close() })

	return NewRepo(rc, slog.Default()), s
}

func TestRoomLifecycle(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.ReserveRoomCode(ctx, "AB12CD"))
	assert.ErrorIs(t, r.ReserveRoomCode(ctx, "AB12CD"), room.ErrCodeAlreadyTaken)

	err := r.SetRoom(ctx, &room.SetRoomParams{
		RoomCode:   "AB12CD",
		Name:       "friday movies",
		SecretHash: "hash",
		HostId:     "host-1",
		HostName:   "Hanna",
		CreatedAt:  1000,
	})
	require.NoError(t, err)

	rm, err := r.GetRoom(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, room.Room{Name: "friday movies", SecretHash: "hash", HostId: "host-1", CreatedAt: 1000}, rm)

	player, err := r.GetPlayer(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, room.Player{LastSync: 1000}, player)

	host, err := r.GetMember(ctx, &room.GetMemberParams{RoomCode: "AB12CD", ParticipantId: "host-1"})
	require.NoError(t, err)
	assert.Equal(t, room.Member{DisplayName: "Hanna", Role: "host", Approved: true, JoinedAt: 1000}, host)

	require.NoError(t, r.SetMember(ctx, &room.SetMemberParams{
		RoomCode:      "AB12CD",
		ParticipantId: "guest-1",
		DisplayName:   "Gus",
		Role:          "guest",
		Approved:      true,
		JoinedAt:      2000,
	}))
	require.NoError(t, r.AddNotification(ctx, &room.AddNotificationParams{RoomCode: "AB12CD", Text: "Gus joined the room", CreatedAt: 2000}))

	ids, err := r.GetMemberIds(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, []string{"host-1", "guest-1"}, ids)

	require.NoError(t, r.RemoveRoom(ctx, "AB12CD"))

	_, err = r.GetRoom(ctx, "AB12CD")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
	_, err = r.GetPlayer(ctx, "AB12CD")
	assert.ErrorIs(t, err, room.ErrPlayerNotFound)
	_, err = r.GetMember(ctx, &room.GetMemberParams{RoomCode: "AB12CD", ParticipantId: "guest-1"})
	assert.ErrorIs(t, err, room.ErrMemberNotFound)
	assert.False(t, s.Exists("room:AB12CD:notifications"))
	assert.False(t, s.Exists("room:AB12CD:memberlist"))
	assert.False(t, s.Exists("room:AB12CD:memberseq"))

	// the code is free again
	require.NoError(t, r.ReserveRoomCode(ctx, "AB12CD"))

	assert.ErrorIs(t, r.RemoveRoom(ctx, "ZZZZZZ"), room.ErrRoomNotFound)
}

func TestSetPlayer(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	params := room.SetPlayerParams{
		RoomCode:  "AB12CD",
		MediaURL:  "https://example/video.mp4",
		MediaKind: "local",
		Position:  12.75,
		Playing:   true,
		LastSync:  1234567,
		Version:   3,
	}
	require.NoError(t, r.SetPlayer(ctx, &params))

	player, err := r.GetPlayer(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, room.Player{
		MediaURL:  "https://example/video.mp4",
		MediaKind: "local",
		Position:  12.75,
		Playing:   true,
		LastSync:  1234567,
		Version:   3,
	}, player)

	params.Playing = false
	require.NoError(t, r.SetPlayer(ctx, &params))
	player, err = r.GetPlayer(ctx, "AB12CD")
	require.NoError(t, err)
	assert.False(t, player.Playing)
}

func TestRemoveMemberIsIdempotent(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SetMember(ctx, &room.SetMemberParams{
		RoomCode:      "AB12CD",
		ParticipantId: "guest-1",
		DisplayName:   "Gus",
		Role:          "guest",
		Approved:      true,
	}))

	removed, err := r.RemoveMember(ctx, &room.RemoveMemberParams{RoomCode: "AB12CD", ParticipantId: "guest-1"})
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = r.RemoveMember(ctx, &room.RemoveMemberParams{RoomCode: "AB12CD", ParticipantId: "guest-1"})
	require.NoError(t, err)
	assert.False(t, removed)

	ids, err := r.GetMemberIds(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestNotifications(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.AddNotification(ctx, &room.AddNotificationParams{RoomCode: "AB12CD", Text: "Room 'x' created by Hanna", CreatedAt: 1}))
	require.NoError(t, r.AddNotification(ctx, &room.AddNotificationParams{RoomCode: "AB12CD", Text: "Gus joined the room", CreatedAt: 2}))

	notifications, err := r.GetNotifications(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, []room.Notification{
		{Kind: "system", Text: "Room 'x' created by Hanna", CreatedAt: 1},
		{Kind: "system", Text: "Gus joined the room", CreatedAt: 2},
	}, notifications)
}

func TestMembersWithoutScriptCache(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.rc.ScriptFlush(ctx).Err())

	require.NoError(t, r.SetRoom(ctx, &room.SetRoomParams{
		RoomCode:  "AB12CD",
		Name:      "friday movies",
		HostId:    "host-1",
		HostName:  "Hanna",
		CreatedAt: 1000,
	}))

	require.NoError(t, r.rc.ScriptFlush(ctx).Err())

	for _, id := range []string{"guest-1", "guest-2"} {
		require.NoError(t, r.SetMember(ctx, &room.SetMemberParams{
			RoomCode:      "AB12CD",
			ParticipantId: id,
			DisplayName:   id,
			Role:          "guest",
			Approved:      true,
			JoinedAt:      2000,
		}))
	}

	ids, err := r.GetMemberIds(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, []string{"host-1", "guest-1", "guest-2"}, ids)
}

func TestRejoinedMemberMovesToEnd(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SetRoom(ctx, &room.SetRoomParams{RoomCode: "AB12CD", HostId: "host-1", CreatedAt: 1000}))
	for _, id := range []string{"guest-1", "guest-2"} {
		require.NoError(t, r.SetMember(ctx, &room.SetMemberParams{RoomCode: "AB12CD", ParticipantId: id, Role: "guest", Approved: true}))
	}

	_, err := r.RemoveMember(ctx, &room.RemoveMemberParams{RoomCode: "AB12CD", ParticipantId: "guest-1"})
	require.NoError(t, err)
	require.NoError(t, r.SetMember(ctx, &room.SetMemberParams{RoomCode: "AB12CD", ParticipantId: "guest-1", Role: "guest", Approved: true}))

	ids, err := r.GetMemberIds(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, []string{"host-1", "guest-2", "guest-1"}, ids)
}
