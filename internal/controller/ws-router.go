package controller

import (
	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter[*connection.WSConn] {
	mux := wsrouter.New[*connection.WSConn]()
	mux.Use(c.wsRequestIdWSMw(), c.loggerWSMw())

	wsrouter.Handle(mux, "ALIVE", c.handleAlive)
	wsrouter.Handle(mux, "LEAVE", c.handleLeave)

	// player
	wsrouter.Handle(mux, "GET_STATE", c.handleGetState)
	wsrouter.Handle(mux, "CONTROL", c.handleControl)

	return mux
}
