package connection

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrySendBackpressure(t *testing.T) {
	c := &WSConn{
		send: make(chan []byte, 1),
		done: make(chan struct{}),
	}

	require.NoError(t, c.TrySend([]byte("a")))
	assert.ErrorIs(t, c.TrySend([]byte("b")), ErrBackpressure)

	c.Close()
	c.Close()
	assert.ErrorIs(t, c.TrySend([]byte("c")), ErrClosed)
}

func TestWSConn(t *testing.T) {
	serverConns := make(chan *WSConn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}
		serverConns <- NewWSConn(ws, &Config{SendBuffer: 4, WriteTimeout: time.Second}, slog.Default())
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()

	conn := <-serverConns
	assert.NotEmpty(t, conn.Id())

	require.NoError(t, conn.TrySend([]byte(`{"type":"PLAYER_STATE"}`)))

	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"PLAYER_STATE"}`, string(data))

	conn.Close()
	conn.Wait()

	_, _, err = client.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
	assert.ErrorIs(t, conn.TrySend([]byte("late")), ErrClosed)
}

func TestWSConnFlushesOnClose(t *testing.T) {
	serverConns := make(chan *WSConn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}
		serverConns <- NewWSConn(ws, &Config{SendBuffer: 4, WriteTimeout: time.Second}, slog.Default())
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()

	conn := <-serverConns
	require.NoError(t, conn.TrySend([]byte(`{"type":"ROOM_DELETED"}`)))
	conn.Close()
	conn.Wait()

	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ROOM_DELETED"}`, string(data))

	_, _, err = client.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
}

func newKeepAlivePair(t *testing.T, pongWait time.Duration) (*WSConn, *websocket.Conn) {
	t.Helper()

	serverConns := make(chan *WSConn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}
		serverConns <- NewWSConn(ws, &Config{SendBuffer: 4, WriteTimeout: time.Second, PongWait: pongWait}, slog.Default())
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	conn := <-serverConns
	t.Cleanup(func() {
		conn.Close()
		conn.Wait()
	})

	return conn, client
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func TestWSConnDropsSilentPeer(t *testing.T) {
	conn, _ := newKeepAlivePair(t, 100*time.Millisecond)

	// the client never reads, so pings are never answered
	readErr := make(chan error, 1)
	go func() {
		_, err := conn.ReadMessage()
		readErr <- err
	}()

	select {
	case err := <-readErr:
		assert.True(t, isTimeout(err), "unexpected error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("silent peer was not dropped")
	}
}

func TestWSConnKeepsRespondingPeer(t *testing.T) {
	conn, client := newKeepAlivePair(t, 100*time.Millisecond)

	pings := make(chan struct{}, 16)
	client.SetPingHandler(func(data string) error {
		select {
		case pings <- struct{}{}:
		default:
		}
		return client.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	go func() {
		for {
			if _, _, err := client.ReadMessage(); err != nil {
				return
			}
		}
	}()

	readErr := make(chan error, 1)
	go func() {
		_, err := conn.ReadMessage()
		readErr <- err
	}()

	select {
	case err := <-readErr:
		t.Fatalf("responding peer was dropped: %v", err)
	case <-time.After(400 * time.Millisecond):
	}
	assert.NotEmpty(t, pings)

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(`{"type":"ALIVE"}`)))
	select {
	case err := <-readErr:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("message was not read")
	}
}

func TestWSConnKeepAliveExtendsDeadline(t *testing.T) {
	conn, client := newKeepAlivePair(t, 150*time.Millisecond)

	// the client never answers pings and relies on application messages instead
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := client.WriteMessage(websocket.TextMessage, []byte(`{"type":"ALIVE"}`)); err != nil {
					return
				}
			}
		}
	}()

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		_, err := conn.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, conn.KeepAlive())
	}
}
