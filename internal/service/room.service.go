package service

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/registry"
	"golang.org/x/crypto/bcrypt"
)

type CreateRoomParams struct {
	Name          string `json:"name"`
	Secret        string `json:"-"`
	ParticipantId string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
}

type CreateRoomResponse struct {
	Room Room
}

// CreateRoom creates a room with the caller as its host.
func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	if err := validation.ValidateStructWithContext(ctx, params,
		validation.Field(&params.Name, RoomNameRule...),
		validation.Field(&params.Secret, SecretRule...),
		validation.Field(&params.ParticipantId, ParticipantIdRule...),
		validation.Field(&params.DisplayName, DisplayNameRule...),
	); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	var secretHash string
	if params.Secret != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(params.Secret), s.bcryptCost)
		if err != nil {
			return CreateRoomResponse{}, fmt.Errorf("failed to hash secret: %w", err)
		}
		secretHash = string(hash)
	}

	rm, err := s.registry.Create(ctx, &registry.CreateParams{
		Name:       params.Name,
		SecretHash: secretHash,
		HostId:     params.ParticipantId,
		HostName:   params.DisplayName,
	})
	if err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to create room: %w", err)
	}

	s.notify(ctx, rm.Code, fmt.Sprintf("Room '%s' created by %s", rm.Name, params.DisplayName))

	return CreateRoomResponse{
		Room: s.mapRoom(rm, domain.CapabilityController),
	}, nil
}

type DeleteRoomParams struct {
	RoomCode      string `json:"room_code"`
	ParticipantId string `json:"participant_id"`
}

// DeleteRoom removes the room with its memberships and notifications, tells subscribers and
// closes their connections. Only the controller may delete.
func (s service) DeleteRoom(ctx context.Context, params *DeleteRoomParams) error {
	code, err := s.canonicalCode(params.RoomCode)
	if err != nil {
		return err
	}

	if err := s.registry.Delete(ctx, code, s.controllerGuard(params.ParticipantId, nil)); err != nil {
		return s.mapRegistryError(err)
	}

	s.publish(ctx, code, EventRoomDeleted, RoomDeletedPayload{RoomCode: code}, "")
	s.publisher.CloseRoom(ctx, code)

	return nil
}

type GetRoomParams struct {
	RoomCode      string `json:"room_code"`
	ParticipantId string `json:"participant_id"`
}

func (s service) GetRoom(ctx context.Context, params *GetRoomParams) (Room, error) {
	code, err := s.canonicalCode(params.RoomCode)
	if err != nil {
		return Room{}, err
	}

	var resp Room
	if err := s.registry.Read(ctx, code, func(ctx context.Context, rm domain.Room) error {
		capability, err := s.observe(ctx, code, params.ParticipantId)
		if err != nil {
			return err
		}

		resp = s.mapRoom(rm, capability)
		return nil
	}); err != nil {
		return Room{}, s.mapRegistryError(err)
	}

	return resp, nil
}

type GetNotificationsParams struct {
	RoomCode      string `json:"room_code"`
	ParticipantId string `json:"participant_id"`
}

func (s service) GetNotifications(ctx context.Context, params *GetNotificationsParams) ([]Notification, error) {
	code, err := s.canonicalCode(params.RoomCode)
	if err != nil {
		return nil, err
	}

	var notifications []Notification
	if err := s.registry.Read(ctx, code, func(ctx context.Context, _ domain.Room) error {
		if _, err := s.observe(ctx, code, params.ParticipantId); err != nil {
			return err
		}

		stored, err := s.roomRepo.GetNotifications(ctx, code)
		if err != nil {
			return fmt.Errorf("failed to get notifications: %w", err)
		}

		notifications = make([]Notification, 0, len(stored))
		for _, n := range stored {
			notifications = append(notifications, Notification{
				Kind:      n.Kind,
				Text:      n.Text,
				CreatedAt: time.UnixMicro(n.CreatedAt).UTC(),
			})
		}

		return nil
	}); err != nil {
		return nil, s.mapRegistryError(err)
	}

	return notifications, nil
}

func (s service) mapRoom(rm domain.Room, capability domain.Capability) Room {
	return Room{
		Code:       rm.Code,
		Name:       rm.Name,
		HasSecret:  rm.HasSecret(),
		HostId:     rm.HostId,
		CreatedAt:  rm.CreatedAt,
		Capability: capability.String(),
		Player:     rm.Snapshot(s.registry.Now()),
	}
}
