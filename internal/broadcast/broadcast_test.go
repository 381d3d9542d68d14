package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/sharetube/watchparty/internal/repository/connection/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConn struct {
	id     string
	mu     sync.Mutex
	frames [][]byte
	err    error
	closed bool
}

func (c *recordingConn) Id() string { return c.id }

func (c *recordingConn) TrySend(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *recordingConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func TestPublish(t *testing.T) {
	connRepo := inmemory.NewRepo(slog.Default())
	p := New(connRepo, slog.Default())
	ctx := context.Background()

	host := &recordingConn{id: "host"}
	guest := &recordingConn{id: "guest"}
	slow := &recordingConn{id: "slow", err: connection.ErrBackpressure}
	dead := &recordingConn{id: "dead", err: connection.ErrClosed}
	other := &recordingConn{id: "other"}

	require.NoError(t, connRepo.Add("AB12CD", "h", host))
	require.NoError(t, connRepo.Add("AB12CD", "g", guest))
	require.NoError(t, connRepo.Add("AB12CD", "s", slow))
	require.NoError(t, connRepo.Add("AB12CD", "d", dead))
	require.NoError(t, connRepo.Add("ZZ99ZZ", "o", other))

	res := p.Publish(ctx, "AB12CD", &Event{Type: "PLAYER_UPDATED", Payload: map[string]any{"is_playing": true}}, host.Id())
	assert.Equal(t, Result{SentTo: 1, Dropped: 1, Closed: 1}, res)

	assert.Empty(t, host.frames, "originator must not receive its own echo")
	require.Len(t, guest.frames, 1)
	assert.JSONEq(t, `{"type":"PLAYER_UPDATED","payload":{"is_playing":true}}`, string(guest.frames[0]))
	assert.Empty(t, other.frames)

	// the dead connection got unsubscribed, the slow one stays
	assert.Len(t, connRepo.GetConns("AB12CD"), 3)

	res = p.Publish(ctx, "AB12CD", &Event{Type: "MEMBER_JOINED"}, "")
	assert.Equal(t, Result{SentTo: 2, Dropped: 1}, res)
	assert.Len(t, host.frames, 1)
}

func TestCloseRoom(t *testing.T) {
	connRepo := inmemory.NewRepo(slog.Default())
	p := New(connRepo, slog.Default())

	a := &recordingConn{id: "a"}
	b := &recordingConn{id: "b"}
	require.NoError(t, connRepo.Add("AB12CD", "h", a))
	require.NoError(t, connRepo.Add("AB12CD", "g", b))

	assert.Equal(t, 2, p.CloseRoom(context.Background(), "AB12CD"))
	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Empty(t, connRepo.GetConns("AB12CD"))
}

func TestSend(t *testing.T) {
	p := New(inmemory.NewRepo(slog.Default()), slog.Default())

	c := &recordingConn{id: "c"}
	require.NoError(t, p.Send(context.Background(), c, &Event{Type: "PLAYER_STATE", Payload: 1}))
	assert.JSONEq(t, `{"type":"PLAYER_STATE","payload":1}`, string(c.frames[0]))

	c.err = connection.ErrBackpressure
	assert.ErrorIs(t, p.Send(context.Background(), c, &Event{Type: "PLAYER_STATE"}), connection.ErrBackpressure)
}
