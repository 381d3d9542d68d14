package service

//go:generate mockgen -source=service.go -destination=mock_publisher_test.go -package=service -exclude_interfaces=iRegistry,iRoomRepo,iConnRepo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sharetube/watchparty/internal/broadcast"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/registry"
	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/sharetube/watchparty/internal/repository/room"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrWrongSecret      = errors.New("wrong room secret")
	ErrInvalidAction    = errors.New("invalid action")
	ErrInvalidParams    = errors.New("invalid params")
)

type iRegistry interface {
	Now() time.Time
	Read(context.Context, string, func(context.Context, domain.Room) error) error
	Exclusive(context.Context, string, func(context.Context, domain.Room) error) error
	Create(context.Context, *registry.CreateParams) (domain.Room, error)
	Apply(context.Context, string, registry.Guard, domain.Mutation, ...registry.Hook) (domain.Room, error)
	Delete(context.Context, string, registry.Guard) error
}

type iRoomRepo interface {
	SetMember(context.Context, *room.SetMemberParams) error
	GetMember(context.Context, *room.GetMemberParams) (room.Member, error)
	RemoveMember(context.Context, *room.RemoveMemberParams) (bool, error)
	GetMemberIds(context.Context, string) ([]string, error)
	AddNotification(context.Context, *room.AddNotificationParams) error
	GetNotifications(context.Context, string) ([]room.Notification, error)
}

type iConnRepo interface {
	Add(roomCode, participantId string, conn connection.Conn) error
	Remove(roomCode, connId string) (string, error)
	GetParticipantConns(roomCode, participantId string) []connection.Conn
}

type iPublisher interface {
	Publish(ctx context.Context, roomCode string, event *broadcast.Event, exceptConnId string) broadcast.Result
	CloseRoom(ctx context.Context, roomCode string) int
}

type service struct {
	registry   iRegistry
	roomRepo   iRoomRepo
	connRepo   iConnRepo
	publisher  iPublisher
	secret     []byte
	bcryptCost int
	logger     *slog.Logger
}

type Config struct {
	Secret     string
	BcryptCost int
}

func New(registry iRegistry, roomRepo iRoomRepo, connRepo iConnRepo, publisher iPublisher, cfg *Config, logger *slog.Logger) *service {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return &service{
		registry:   registry,
		roomRepo:   roomRepo,
		connRepo:   connRepo,
		publisher:  publisher,
		secret:     []byte(cfg.Secret),
		bcryptCost: cost,
		logger:     logger,
	}
}
