package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/sharetube/watchparty/internal/repository/connection"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type Result struct {
	SentTo  int
	Dropped int
	Closed  int
}

type iConnRepo interface {
	GetConns(roomCode string) []connection.Conn
	Remove(roomCode, connId string) (string, error)
	RemoveRoom(roomCode string) []connection.Conn
}

type Publisher struct {
	connRepo iConnRepo
	logger   *slog.Logger
}

func New(connRepo iConnRepo, logger *slog.Logger) *Publisher {
	return &Publisher{
		connRepo: connRepo,
		logger:   logger,
	}
}

// Publish queues event on every connection subscribed to the room except exceptConnId.
// It never blocks on a subscriber: a full queue drops the event for that subscriber only,
// a closed connection is unsubscribed. Failures are logged, not returned.
func (p *Publisher) Publish(ctx context.Context, roomCode string, event *Event, exceptConnId string) Result {
	var res Result

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", "type", event.Type, "error", err)
		return res
	}

	for _, conn := range p.connRepo.GetConns(roomCode) {
		if conn.Id() == exceptConnId {
			continue
		}

		err := conn.TrySend(data)
		switch {
		case err == nil:
			res.SentTo++
		case errors.Is(err, connection.ErrBackpressure):
			res.Dropped++
			p.logger.WarnContext(ctx, "subscriber is too slow, event dropped",
				"room_code", roomCode,
				"conn_id", conn.Id(),
				"type", event.Type,
			)
		default:
			res.Closed++
			if _, err := p.connRepo.Remove(roomCode, conn.Id()); err != nil && !errors.Is(err, connection.ErrNotFound) {
				p.logger.WarnContext(ctx, "failed to unsubscribe connection", "conn_id", conn.Id(), "error", err)
			}
		}
	}

	p.logger.DebugContext(ctx, "event published",
		"room_code", roomCode,
		"type", event.Type,
		"sent_to", res.SentTo,
		"dropped", res.Dropped,
		"closed", res.Closed,
	)

	return res
}

// CloseRoom unsubscribes and closes every connection of the room.
func (p *Publisher) CloseRoom(ctx context.Context, roomCode string) int {
	conns := p.connRepo.RemoveRoom(roomCode)
	for _, conn := range conns {
		conn.Close()
	}

	p.logger.DebugContext(ctx, "room connections closed", "room_code", roomCode, "count", len(conns))
	return len(conns)
}

// Send queues event on a single connection.
func (p *Publisher) Send(ctx context.Context, conn connection.Conn, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := conn.TrySend(data); err != nil {
		p.logger.DebugContext(ctx, "failed to send event", "conn_id", conn.Id(), "type", event.Type, "error", err)
		return err
	}

	return nil
}
