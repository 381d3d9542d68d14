package inmemory

import (
	"log/slog"
	"testing"

	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConn struct {
	id string
}

func (c stubConn) Id() string             { return c.id }
func (c stubConn) TrySend(_ []byte) error { return nil }
func (c stubConn) Close()                 {}

func TestRepo(t *testing.T) {
	r := NewRepo(slog.Default())

	require.NoError(t, r.Add("AB12CD", "host", stubConn{id: "c1"}))
	require.NoError(t, r.Add("AB12CD", "guest", stubConn{id: "c2"}))
	require.NoError(t, r.Add("AB12CD", "guest", stubConn{id: "c3"}))
	require.NoError(t, r.Add("ZZ99ZZ", "other", stubConn{id: "c4"}))
	assert.ErrorIs(t, r.Add("AB12CD", "host", stubConn{id: "c1"}), connection.ErrAlreadyExists)

	assert.Len(t, r.GetConns("AB12CD"), 3)
	assert.Len(t, r.GetParticipantConns("AB12CD", "guest"), 2)
	assert.Empty(t, r.GetConns("NOPE00"))

	participantId, err := r.Remove("AB12CD", "c2")
	require.NoError(t, err)
	assert.Equal(t, "guest", participantId)

	_, err = r.Remove("AB12CD", "c2")
	assert.ErrorIs(t, err, connection.ErrNotFound)

	conns := r.RemoveRoom("AB12CD")
	assert.Len(t, conns, 2)
	assert.Empty(t, r.GetConns("AB12CD"))
	assert.Len(t, r.GetConns("ZZ99ZZ"), 1)
}
