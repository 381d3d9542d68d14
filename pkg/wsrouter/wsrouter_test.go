package wsrouter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id string
}

type seekInput struct {
	Position float64 `json:"position"`
}

func TestServe(t *testing.T) {
	mux := New[*fakeConn]()

	var got seekInput
	var gotConn *fakeConn
	Handle(mux, "SEEK", func(_ context.Context, conn *fakeConn, input seekInput) error {
		got = input
		gotConn = conn
		return nil
	})

	conn := &fakeConn{id: "c1"}
	err := mux.Serve(context.Background(), conn, []byte(`{"type":"SEEK","payload":{"position":12.5}}`))
	require.NoError(t, err)
	assert.Equal(t, 12.5, got.Position)
	assert.Same(t, conn, gotConn)
}

func TestServeEmptyPayload(t *testing.T) {
	mux := New[*fakeConn]()

	called := false
	Handle(mux, "ALIVE", func(_ context.Context, _ *fakeConn, _ struct{}) error {
		called = true
		return nil
	})

	require.NoError(t, mux.Serve(context.Background(), &fakeConn{}, []byte(`{"type":"ALIVE"}`)))
	assert.True(t, called)
}

func TestServeErrors(t *testing.T) {
	mux := New[*fakeConn]()
	Handle(mux, "SEEK", func(_ context.Context, _ *fakeConn, _ seekInput) error { return nil })

	err := mux.Serve(context.Background(), &fakeConn{}, []byte(`{"type":"NOPE"}`))
	assert.ErrorIs(t, err, ErrUnknownMessageType)

	err = mux.Serve(context.Background(), &fakeConn{}, []byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidMessage)

	err = mux.Serve(context.Background(), &fakeConn{}, []byte(`{"type":"SEEK","payload":{"position":"x"}}`))
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestMiddlewareOrder(t *testing.T) {
	mux := New[*fakeConn]()

	var order []string
	mw := func(name string) Middleware[*fakeConn] {
		return func(next HandlerFunc[*fakeConn, any]) HandlerFunc[*fakeConn, any] {
			return func(ctx context.Context, conn *fakeConn, payload any) error {
				order = append(order, name)
				assert.Equal(t, "ALIVE", GetMessageTypeFromCtx(ctx))
				return next(ctx, conn, payload)
			}
		}
	}
	mux.Use(mw("first"), mw("second"))
	Handle(mux, "ALIVE", func(_ context.Context, _ *fakeConn, _ struct{}) error {
		order = append(order, "handler")
		return nil
	})

	require.NoError(t, mux.Serve(context.Background(), &fakeConn{}, []byte(`{"type":"ALIVE","payload":null}`)))
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}
