package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/room"
	omitnilpointers "github.com/sharetube/watchparty/pkg/omit-nil-pointers"
	"github.com/sharetube/watchparty/pkg/randstr"
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrCodeSpaceExhausted = errors.New("no free room code found")
)

type iRoomRepo interface {
	ReserveRoomCode(context.Context, string) error
	SetRoom(context.Context, *room.SetRoomParams) error
	GetRoom(context.Context, string) (room.Room, error)
	RemoveRoom(context.Context, string) error
	SetPlayer(context.Context, *room.SetPlayerParams) error
	GetPlayer(context.Context, string) (room.Player, error)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

// Guard inspects the locked room before a change. A non-nil error aborts the change and is returned as is.
type Guard func(ctx context.Context, rm domain.Room) error

// Hook runs after a change is stored, while the room's lock is still held.
type Hook func(ctx context.Context, rm domain.Room)

type Config struct {
	CodeAttempts int
	Now          func() time.Time
	Generator    iGenerator
}

// Registry owns the authoritative state of every live room. All access to a room goes through
// its lock: reads share it, mutations hold it exclusively. Rooms never block each other.
type Registry struct {
	repo         iRoomRepo
	generator    iGenerator
	locks        *lockTable
	codeAttempts int
	now          func() time.Time
	logger       *slog.Logger
}

func New(repo iRoomRepo, cfg *Config, logger *slog.Logger) *Registry {
	r := Registry{
		repo:         repo,
		generator:    cfg.Generator,
		locks:        newLockTable(),
		codeAttempts: cfg.CodeAttempts,
		now:          cfg.Now,
		logger:       logger,
	}

	if r.generator == nil {
		r.generator = randstr.New([]byte(domain.RoomCodeAlphabet))
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.codeAttempts < 1 {
		r.codeAttempts = 1
	}

	return &r
}

// Now returns the registry clock truncated to the precision timestamps are stored with.
func (r *Registry) Now() time.Time {
	return time.UnixMicro(r.now().UnixMicro()).UTC()
}

func (r *Registry) load(ctx context.Context, code string) (domain.Room, error) {
	rm, err := r.repo.GetRoom(ctx, code)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return domain.Room{}, ErrRoomNotFound
		}
		return domain.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	player, err := r.repo.GetPlayer(ctx, code)
	if err != nil {
		if errors.Is(err, room.ErrPlayerNotFound) {
			return domain.Room{}, ErrRoomNotFound
		}
		return domain.Room{}, fmt.Errorf("failed to get player: %w", err)
	}

	return domain.Room{
		Code:       code,
		Name:       rm.Name,
		SecretHash: rm.SecretHash,
		HostId:     rm.HostId,
		CreatedAt:  time.UnixMicro(rm.CreatedAt).UTC(),
		Player: domain.Player{
			MediaURL:  player.MediaURL,
			MediaKind: domain.MediaKind(player.MediaKind),
			Position:  player.Position,
			Playing:   player.Playing,
			LastSync:  time.UnixMicro(player.LastSync).UTC(),
			Version:   player.Version,
		},
	}, nil
}

func (r *Registry) Get(ctx context.Context, code string) (domain.Room, error) {
	code = domain.CanonicalCode(code)
	unlock := r.locks.rlock(code)
	defer unlock()

	return r.load(ctx, code)
}

// Read runs fn against a consistent view of the room. Reads of one room run concurrently
// with each other but never with a mutation of it.
func (r *Registry) Read(ctx context.Context, code string, fn func(context.Context, domain.Room) error) error {
	code = domain.CanonicalCode(code)
	unlock := r.locks.rlock(code)
	defer unlock()

	rm, err := r.load(ctx, code)
	if err != nil {
		return err
	}

	return fn(ctx, rm)
}

// Exclusive runs fn while holding the room's write lock. Used for membership changes that
// must not race with deletion.
func (r *Registry) Exclusive(ctx context.Context, code string, fn func(context.Context, domain.Room) error) error {
	code = domain.CanonicalCode(code)
	unlock := r.locks.lock(code)
	defer unlock()

	rm, err := r.load(ctx, code)
	if err != nil {
		return err
	}

	return fn(ctx, rm)
}

type CreateParams struct {
	Name       string
	SecretHash string
	HostId     string
	HostName   string
}

// Create stores a new room under a freshly drawn code with its creator as host.
// Codes are checked against live rooms, so codes of deleted rooms get reused.
func (r *Registry) Create(ctx context.Context, params *CreateParams) (domain.Room, error) {
	for range r.codeAttempts {
		code := r.generator.GenerateRandomString(domain.RoomCodeLength)

		err := r.repo.ReserveRoomCode(ctx, code)
		if errors.Is(err, room.ErrCodeAlreadyTaken) {
			r.logger.DebugContext(ctx, "room code collision", "room_code", code)
			continue
		}
		if err != nil {
			return domain.Room{}, fmt.Errorf("failed to reserve room code: %w", err)
		}

		return r.create(ctx, code, params)
	}

	return domain.Room{}, ErrCodeSpaceExhausted
}

func (r *Registry) create(ctx context.Context, code string, params *CreateParams) (domain.Room, error) {
	unlock := r.locks.lock(code)
	defer unlock()

	now := r.Now()
	if err := r.repo.SetRoom(ctx, &room.SetRoomParams{
		RoomCode:   code,
		Name:       params.Name,
		SecretHash: params.SecretHash,
		HostId:     params.HostId,
		HostName:   params.HostName,
		CreatedAt:  now.UnixMicro(),
	}); err != nil {
		// RemoveRoom also drops whatever part of the room was written and frees the code.
		if cleanupErr := r.repo.RemoveRoom(ctx, code); cleanupErr != nil && !errors.Is(cleanupErr, room.ErrRoomNotFound) {
			r.logger.WarnContext(ctx, "failed to clean up room", "room_code", code, "error", cleanupErr)
		}
		return domain.Room{}, fmt.Errorf("failed to set room: %w", err)
	}

	return domain.Room{
		Code:       code,
		Name:       params.Name,
		SecretHash: params.SecretHash,
		HostId:     params.HostId,
		CreatedAt:  now,
		Player:     domain.Player{LastSync: now},
	}, nil
}

// Apply commits mutation to the room's player and returns the committed room. The last sync
// timestamp is refreshed on every call and never moves backwards. Hooks see the committed room
// before the lock is released, so they cannot race with a deletion.
func (r *Registry) Apply(ctx context.Context, code string, guard Guard, mutation domain.Mutation, committed ...Hook) (domain.Room, error) {
	code = domain.CanonicalCode(code)
	unlock := r.locks.lock(code)
	defer unlock()

	rm, err := r.load(ctx, code)
	if err != nil {
		return domain.Room{}, err
	}

	if guard != nil {
		if err := guard(ctx, rm); err != nil {
			return domain.Room{}, err
		}
	}

	player := mutation.Apply(rm.Player)
	player.LastSync = r.Now()
	if player.LastSync.Before(rm.Player.LastSync) {
		player.LastSync = rm.Player.LastSync
	}
	player.Version = rm.Player.Version + 1

	if err := r.repo.SetPlayer(ctx, &room.SetPlayerParams{
		RoomCode:  code,
		MediaURL:  player.MediaURL,
		MediaKind: string(player.MediaKind),
		Position:  player.Position,
		Playing:   player.Playing,
		LastSync:  player.LastSync.UnixMicro(),
		Version:   player.Version,
	}); err != nil {
		return domain.Room{}, fmt.Errorf("failed to set player: %w", err)
	}

	r.logger.DebugContext(ctx, "mutation applied",
		"room_code", code,
		"fields", omitnilpointers.OmitNilPointers(mutation.Fields()),
		"version", player.Version,
	)

	rm.Player = player
	for _, hook := range committed {
		hook(ctx, rm)
	}

	return rm, nil
}

// Delete removes the room with everything that depends on it.
func (r *Registry) Delete(ctx context.Context, code string, guard Guard) error {
	code = domain.CanonicalCode(code)
	unlock := r.locks.lock(code)
	defer unlock()

	rm, err := r.load(ctx, code)
	if err != nil {
		return err
	}

	if guard != nil {
		if err := guard(ctx, rm); err != nil {
			return err
		}
	}

	if err := r.repo.RemoveRoom(ctx, code); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("failed to remove room: %w", err)
	}

	return nil
}
