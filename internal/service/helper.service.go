package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/watchparty/internal/broadcast"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/registry"
	"github.com/sharetube/watchparty/internal/repository/room"
)

// canonicalCode returns the stored form of code. Codes that cannot exist are reported as not found.
func (s service) canonicalCode(code string) (string, error) {
	code = domain.CanonicalCode(code)
	if !domain.IsValidCode(code) {
		return "", ErrRoomNotFound
	}

	return code, nil
}

func (s service) mapRegistryError(err error) error {
	if errors.Is(err, registry.ErrRoomNotFound) {
		return ErrRoomNotFound
	}

	return err
}

// getMembership returns nil when the participant has no membership in the room.
func (s service) getMembership(ctx context.Context, roomCode, participantId string) (*domain.Membership, error) {
	member, err := s.roomRepo.GetMember(ctx, &room.GetMemberParams{
		RoomCode:      roomCode,
		ParticipantId: participantId,
	})
	if err != nil {
		if errors.Is(err, room.ErrMemberNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return mapMembership(roomCode, participantId, member), nil
}

func (s service) resolve(ctx context.Context, roomCode, participantId string) (domain.Capability, *domain.Membership, error) {
	membership, err := s.getMembership(ctx, roomCode, participantId)
	if err != nil {
		return domain.CapabilityNone, nil, err
	}

	return domain.Resolve(membership), membership, nil
}

// controllerGuard admits only the room controller. The membership it checked is stored in *actor.
func (s service) controllerGuard(participantId string, actor **domain.Membership) registry.Guard {
	return func(ctx context.Context, rm domain.Room) error {
		capability, membership, err := s.resolve(ctx, rm.Code, participantId)
		if err != nil {
			return err
		}

		if !capability.CanControl() {
			return ErrPermissionDenied
		}

		if actor != nil {
			*actor = membership
		}

		return nil
	}
}

func (s service) observe(ctx context.Context, roomCode, participantId string) (domain.Capability, error) {
	capability, _, err := s.resolve(ctx, roomCode, participantId)
	if err != nil {
		return capability, err
	}

	if !capability.CanObserve() {
		return capability, ErrPermissionDenied
	}

	return capability, nil
}

// notify records a system notification. Failures are logged since the state change it describes is already committed.
func (s service) notify(ctx context.Context, roomCode, text string) {
	if err := s.roomRepo.AddNotification(ctx, &room.AddNotificationParams{
		RoomCode:  roomCode,
		Text:      text,
		CreatedAt: s.registry.Now().UnixMicro(),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to add notification", "room_code", roomCode, "error", err)
	}
}

func (s service) publish(ctx context.Context, roomCode, eventType string, payload any, exceptConnId string) {
	s.publisher.Publish(ctx, roomCode, &broadcast.Event{
		Type:    eventType,
		Payload: payload,
	}, exceptConnId)
}
