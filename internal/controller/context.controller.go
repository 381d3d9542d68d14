package controller

import (
	"context"

	"github.com/sharetube/watchparty/internal/service"
)

type contextKey int

const (
	roomCodeCtxKey contextKey = iota
	identityCtxKey
	connIdCtxKey
)

func (c controller) getRoomCodeFromCtx(ctx context.Context) string {
	roomCode, ok := ctx.Value(roomCodeCtxKey).(string)
	if !ok {
		return ""
	}

	return roomCode
}

func (c controller) getIdentityFromCtx(ctx context.Context) service.Identity {
	identity, ok := ctx.Value(identityCtxKey).(service.Identity)
	if !ok {
		return service.Identity{}
	}

	return identity
}

func (c controller) getConnIdFromCtx(ctx context.Context) string {
	connId, ok := ctx.Value(connIdCtxKey).(string)
	if !ok {
		return ""
	}

	return connId
}
