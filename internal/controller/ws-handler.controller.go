package controller

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/internal/broadcast"
	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/sharetube/watchparty/internal/service"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

const eventError = "ERROR"

// errLeft ends the read loop after the participant left the room.
var errLeft = errors.New("participant left")

// connect upgrades the request and serves the room's event stream until the peer goes away.
func (c controller) connect(w http.ResponseWriter, r *http.Request) {
	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	conn := connection.NewWSConn(ws, c.connCfg, c.logger)
	defer conn.Wait()
	defer conn.Close()

	ctx := context.WithValue(r.Context(), connIdCtxKey, conn.Id())
	ctx = ctxlogger.AppendCtx(ctx, slog.String("conn_id", conn.Id()))

	roomCode := c.getRoomCodeFromCtx(ctx)
	identity := c.getIdentityFromCtx(ctx)

	connectResp, err := c.service.ConnectMember(ctx, &service.ConnectMemberParams{
		RoomCode:      roomCode,
		ParticipantId: identity.ParticipantId,
		Conn:          conn,
	})
	if err != nil {
		c.sendError(ctx, conn, err)
		return
	}
	defer func() {
		if err := c.service.DisconnectMember(context.WithoutCancel(ctx), &service.DisconnectMemberParams{
			RoomCode: connectResp.RoomCode,
			ConnId:   conn.Id(),
		}); err != nil {
			c.logger.WarnContext(ctx, "failed to disconnect member", "error", err)
		}
	}()

	c.logger.InfoContext(ctx, "connected", "capability", connectResp.Capability.String())

	if connectResp.Player != nil {
		if err := c.sender.Send(ctx, conn, &broadcast.Event{
			Type:    service.EventPlayerState,
			Payload: connectResp.Player,
		}); err != nil {
			c.logger.WarnContext(ctx, "failed to send player state", "error", err)
			return
		}
	}

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			var netErr net.Error
			switch {
			case errors.As(err, &netErr) && netErr.Timeout():
				c.logger.InfoContext(ctx, "peer stopped responding")
			case websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				c.logger.InfoContext(ctx, "connection closed", "error", err)
			}
			return
		}

		if err := c.wsRouter.Serve(ctx, conn, data); err != nil {
			if errors.Is(err, errLeft) {
				return
			}
			c.sendError(ctx, conn, err)
		}
	}
}

func (c controller) sendError(ctx context.Context, conn connection.Conn, err error) {
	var output errorOutput
	switch {
	case errors.Is(err, wsrouter.ErrUnknownMessageType), errors.Is(err, wsrouter.ErrInvalidMessage):
		output = errorOutput{Code: "INVALID_MESSAGE", Message: err.Error()}
	default:
		_, output = c.mapError(err)
		if output.Code == "INTERNAL" {
			c.logger.ErrorContext(ctx, "websocket message failed", "error", err)
		}
	}

	if err := c.sender.Send(ctx, conn, &broadcast.Event{Type: eventError, Payload: output}); err != nil {
		c.logger.DebugContext(ctx, "failed to send error", "error", err)
	}
}

type EmptyInput struct{}

// handleAlive counts as a pong for clients that cannot answer control frames.
func (c controller) handleAlive(_ context.Context, conn *connection.WSConn, _ EmptyInput) error {
	return conn.KeepAlive()
}

func (c controller) handleGetState(ctx context.Context, conn *connection.WSConn, _ EmptyInput) error {
	snapshot, err := c.service.GetSnapshot(ctx, &service.GetSnapshotParams{
		RoomCode:      c.getRoomCodeFromCtx(ctx),
		ParticipantId: c.getIdentityFromCtx(ctx).ParticipantId,
	})
	if err != nil {
		return err
	}

	return c.sender.Send(ctx, conn, &broadcast.Event{
		Type:    service.EventPlayerState,
		Payload: snapshot,
	})
}

type ControlInput struct {
	Action    string  `json:"action"`
	Position  float64 `json:"position"`
	MediaURL  string  `json:"url"`
	MediaKind string  `json:"kind"`
}

// handleControl applies the action. The origin is excluded from the broadcast and receives the committed state directly.
func (c controller) handleControl(ctx context.Context, conn *connection.WSConn, input ControlInput) error {
	controlResp, err := c.service.Control(ctx, &service.ControlParams{
		RoomCode:      c.getRoomCodeFromCtx(ctx),
		ParticipantId: c.getIdentityFromCtx(ctx).ParticipantId,
		Action:        input.Action,
		Position:      input.Position,
		MediaURL:      input.MediaURL,
		MediaKind:     input.MediaKind,
		ConnId:        c.getConnIdFromCtx(ctx),
	})
	if err != nil {
		return err
	}

	return c.sender.Send(ctx, conn, &broadcast.Event{
		Type:    service.EventPlayerState,
		Payload: controlResp.Player,
	})
}

func (c controller) handleLeave(ctx context.Context, _ *connection.WSConn, _ EmptyInput) error {
	if _, err := c.service.LeaveRoom(ctx, &service.LeaveRoomParams{
		RoomCode:      c.getRoomCodeFromCtx(ctx),
		ParticipantId: c.getIdentityFromCtx(ctx).ParticipantId,
	}); err != nil {
		return err
	}

	return errLeft
}
