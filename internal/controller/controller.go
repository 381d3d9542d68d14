package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/internal/broadcast"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/sharetube/watchparty/internal/service"
	"github.com/sharetube/watchparty/pkg/validator"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

type iService interface {
	IssueToken(service.Identity) (string, error)
	ParseToken(string) (service.Identity, error)
	CreateRoom(context.Context, *service.CreateRoomParams) (service.CreateRoomResponse, error)
	GetRoom(context.Context, *service.GetRoomParams) (service.Room, error)
	DeleteRoom(context.Context, *service.DeleteRoomParams) error
	GetNotifications(context.Context, *service.GetNotificationsParams) ([]service.Notification, error)
	JoinRoom(context.Context, *service.JoinRoomParams) (service.JoinRoomResponse, error)
	LeaveRoom(context.Context, *service.LeaveRoomParams) (service.LeaveRoomResponse, error)
	GetMembers(context.Context, *service.GetMembersParams) ([]service.Member, error)
	Control(context.Context, *service.ControlParams) (service.ControlResponse, error)
	GetSnapshot(context.Context, *service.GetSnapshotParams) (domain.Snapshot, error)
	ConnectMember(context.Context, *service.ConnectMemberParams) (service.ConnectMemberResponse, error)
	DisconnectMember(context.Context, *service.DisconnectMemberParams) error
}

type iSender interface {
	Send(context.Context, connection.Conn, *broadcast.Event) error
}

type controller struct {
	service  iService
	sender   iSender
	upgrader websocket.Upgrader
	validate *validator.Validator
	wsRouter *wsrouter.WSRouter[*connection.WSConn]
	connCfg  *connection.Config
	logger   *slog.Logger
}

func New(service iService, sender iSender, connCfg *connection.Config, logger *slog.Logger) *controller {
	c := &controller{
		service: service,
		sender:  sender,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		connCfg:  connCfg,
		logger:   logger,
	}
	c.wsRouter = c.getWSRouter()

	return c
}
