package inmemory

import (
	"log/slog"
	"sync"

	"github.com/sharetube/watchparty/internal/repository/connection"
)

type subscription struct {
	conn          connection.Conn
	participantId string
}

// repo tracks which connections are subscribed to which room.
type repo struct {
	rooms  map[string]map[string]subscription
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		rooms:  make(map[string]map[string]subscription),
		logger: logger,
	}
}

func (r *repo) Add(roomCode, participantId string, conn connection.Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug("called", "room_code", roomCode, "participant_id", participantId, "conn_id", conn.Id())
	subs, ok := r.rooms[roomCode]
	if !ok {
		subs = make(map[string]subscription)
		r.rooms[roomCode] = subs
	}

	if _, exists := subs[conn.Id()]; exists {
		r.logger.Debug("returned", "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	subs[conn.Id()] = subscription{conn: conn, participantId: participantId}
	return nil
}

// Remove unsubscribes a connection and returns the participant it belonged to.
func (r *repo) Remove(roomCode, connId string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug("called", "room_code", roomCode, "conn_id", connId)
	subs := r.rooms[roomCode]
	sub, ok := subs[connId]
	if !ok {
		r.logger.Debug("returned", "error", connection.ErrNotFound)
		return "", connection.ErrNotFound
	}

	delete(subs, connId)
	if len(subs) == 0 {
		delete(r.rooms, roomCode)
	}

	return sub.participantId, nil
}

// RemoveRoom drops every subscription of the room and returns the connections that held them.
func (r *repo) RemoveRoom(roomCode string) []connection.Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug("called", "room_code", roomCode)
	subs := r.rooms[roomCode]
	delete(r.rooms, roomCode)

	conns := make([]connection.Conn, 0, len(subs))
	for _, sub := range subs {
		conns = append(conns, sub.conn)
	}

	return conns
}

func (r *repo) GetConns(roomCode string) []connection.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := r.rooms[roomCode]
	conns := make([]connection.Conn, 0, len(subs))
	for _, sub := range subs {
		conns = append(conns, sub.conn)
	}

	return conns
}

func (r *repo) GetParticipantConns(roomCode, participantId string) []connection.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var conns []connection.Conn
	for _, sub := range r.rooms[roomCode] {
		if sub.participantId == participantId {
			conns = append(conns, sub.conn)
		}
	}

	return conns
}
