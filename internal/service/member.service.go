package service

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/sharetube/watchparty/internal/repository/room"
	"golang.org/x/crypto/bcrypt"
)

type ResolveParams struct {
	RoomCode      string `json:"room_code"`
	ParticipantId string `json:"participant_id"`
}

// Resolve reports what the participant may do in the room.
func (s service) Resolve(ctx context.Context, params *ResolveParams) (domain.Capability, error) {
	code, err := s.canonicalCode(params.RoomCode)
	if err != nil {
		return domain.CapabilityNone, err
	}

	var capability domain.Capability
	if err := s.registry.Read(ctx, code, func(ctx context.Context, rm domain.Room) error {
		c, _, err := s.resolve(ctx, rm.Code, params.ParticipantId)
		capability = c
		return err
	}); err != nil {
		return domain.CapabilityNone, s.mapRegistryError(err)
	}

	return capability, nil
}

type JoinRoomParams struct {
	RoomCode      string `json:"room_code"`
	ParticipantId string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Secret        string `json:"-"`
}

type JoinRoomResponse struct {
	Member Member
	// Joined is false when the participant already was a member.
	Joined bool
}

func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	code, err := s.canonicalCode(params.RoomCode)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	if err := validation.ValidateStructWithContext(ctx, params,
		validation.Field(&params.ParticipantId, ParticipantIdRule...),
		validation.Field(&params.DisplayName, DisplayNameRule...),
		validation.Field(&params.Secret, SecretRule...),
	); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	var resp JoinRoomResponse
	if err := s.registry.Exclusive(ctx, code, func(ctx context.Context, rm domain.Room) error {
		existing, err := s.roomRepo.GetMember(ctx, &room.GetMemberParams{
			RoomCode:      code,
			ParticipantId: params.ParticipantId,
		})
		if err == nil {
			resp.Member = mapMember(params.ParticipantId, existing)
			return nil
		}
		if !errors.Is(err, room.ErrMemberNotFound) {
			return fmt.Errorf("failed to get member: %w", err)
		}

		// the creator coming back after leaving gets the host role again
		role := domain.RoleGuest
		if params.ParticipantId == rm.HostId {
			role = domain.RoleHost
		}

		if role != domain.RoleHost && rm.HasSecret() {
			if err := bcrypt.CompareHashAndPassword([]byte(rm.SecretHash), []byte(params.Secret)); err != nil {
				return ErrWrongSecret
			}
		}

		joinedAt := s.registry.Now()
		member := room.Member{
			DisplayName: params.DisplayName,
			Role:        string(role),
			Approved:    true,
			JoinedAt:    joinedAt.UnixMicro(),
		}
		if err := s.roomRepo.SetMember(ctx, &room.SetMemberParams{
			RoomCode:      code,
			ParticipantId: params.ParticipantId,
			DisplayName:   member.DisplayName,
			Role:          member.Role,
			Approved:      member.Approved,
			JoinedAt:      member.JoinedAt,
		}); err != nil {
			return fmt.Errorf("failed to set member: %w", err)
		}

		s.notify(ctx, code, fmt.Sprintf("%s joined the room", params.DisplayName))

		resp.Member = mapMember(params.ParticipantId, member)
		resp.Joined = true
		return nil
	}); err != nil {
		return JoinRoomResponse{}, s.mapRegistryError(err)
	}

	if resp.Joined {
		s.publish(ctx, code, EventMemberJoined, MemberPayload{Member: resp.Member}, "")
	}

	return resp, nil
}

type LeaveRoomParams struct {
	RoomCode      string `json:"room_code"`
	ParticipantId string `json:"participant_id"`
}

type LeaveRoomResponse struct {
	// Left is false when there was no membership to remove.
	Left bool
}

// LeaveRoom removes the participant's membership and closes its connections to the room.
// Leaving twice is not an error.
func (s service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) (LeaveRoomResponse, error) {
	code, err := s.canonicalCode(params.RoomCode)
	if err != nil {
		return LeaveRoomResponse{}, err
	}

	var (
		left    *Member
		dropped []connection.Conn
	)
	if err := s.registry.Exclusive(ctx, code, func(ctx context.Context, _ domain.Room) error {
		existing, err := s.roomRepo.GetMember(ctx, &room.GetMemberParams{
			RoomCode:      code,
			ParticipantId: params.ParticipantId,
		})
		if errors.Is(err, room.ErrMemberNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get member: %w", err)
		}

		removed, err := s.roomRepo.RemoveMember(ctx, &room.RemoveMemberParams{
			RoomCode:      code,
			ParticipantId: params.ParticipantId,
		})
		if err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		if !removed {
			return nil
		}

		s.notify(ctx, code, fmt.Sprintf("%s left the room", existing.DisplayName))

		// a participant that left stops receiving the room's events
		for _, conn := range s.connRepo.GetParticipantConns(code, params.ParticipantId) {
			if _, err := s.connRepo.Remove(code, conn.Id()); err != nil && !errors.Is(err, connection.ErrNotFound) {
				s.logger.WarnContext(ctx, "failed to remove conn", "conn_id", conn.Id(), "error", err)
				continue
			}
			dropped = append(dropped, conn)
		}

		member := mapMember(params.ParticipantId, existing)
		left = &member
		return nil
	}); err != nil {
		return LeaveRoomResponse{}, s.mapRegistryError(err)
	}

	if left == nil {
		return LeaveRoomResponse{}, nil
	}

	s.publish(ctx, code, EventMemberLeft, MemberPayload{Member: *left}, "")
	for _, conn := range dropped {
		conn.Close()
	}

	return LeaveRoomResponse{Left: true}, nil
}

type GetMembersParams struct {
	RoomCode      string `json:"room_code"`
	ParticipantId string `json:"participant_id"`
}

// GetMembers lists approved members in join order. Only observers may list.
func (s service) GetMembers(ctx context.Context, params *GetMembersParams) ([]Member, error) {
	code, err := s.canonicalCode(params.RoomCode)
	if err != nil {
		return nil, err
	}

	var members []Member
	if err := s.registry.Read(ctx, code, func(ctx context.Context, _ domain.Room) error {
		if _, err := s.observe(ctx, code, params.ParticipantId); err != nil {
			return err
		}

		ids, err := s.roomRepo.GetMemberIds(ctx, code)
		if err != nil {
			return fmt.Errorf("failed to get member ids: %w", err)
		}

		members = make([]Member, 0, len(ids))
		for _, id := range ids {
			m, err := s.roomRepo.GetMember(ctx, &room.GetMemberParams{
				RoomCode:      code,
				ParticipantId: id,
			})
			if errors.Is(err, room.ErrMemberNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to get member: %w", err)
			}
			if !m.Approved {
				continue
			}

			members = append(members, mapMember(id, m))
		}

		return nil
	}); err != nil {
		return nil, s.mapRegistryError(err)
	}

	return members, nil
}

type ConnectMemberParams struct {
	RoomCode      string
	ParticipantId string
	Conn          connection.Conn
}

type ConnectMemberResponse struct {
	RoomCode   string
	Capability domain.Capability
	// Player is set only when the participant may observe the room.
	Player *domain.Snapshot
}

// ConnectMember subscribes conn to the room's events. Subscription does not depend on
// membership; what the connection may do is checked per action.
func (s service) ConnectMember(ctx context.Context, params *ConnectMemberParams) (ConnectMemberResponse, error) {
	code, err := s.canonicalCode(params.RoomCode)
	if err != nil {
		return ConnectMemberResponse{}, err
	}

	resp := ConnectMemberResponse{RoomCode: code}
	if err := s.registry.Read(ctx, code, func(ctx context.Context, rm domain.Room) error {
		capability, _, err := s.resolve(ctx, code, params.ParticipantId)
		if err != nil {
			return err
		}

		if err := s.connRepo.Add(code, params.ParticipantId, params.Conn); err != nil {
			return fmt.Errorf("failed to add conn: %w", err)
		}

		resp.Capability = capability
		if capability.CanObserve() {
			snapshot := rm.Snapshot(s.registry.Now())
			resp.Player = &snapshot
		}

		return nil
	}); err != nil {
		return ConnectMemberResponse{}, s.mapRegistryError(err)
	}

	return resp, nil
}

type DisconnectMemberParams struct {
	RoomCode string
	ConnId   string
}

// DisconnectMember drops the subscription. The membership is kept.
func (s service) DisconnectMember(ctx context.Context, params *DisconnectMemberParams) error {
	if _, err := s.connRepo.Remove(domain.CanonicalCode(params.RoomCode), params.ConnId); err != nil {
		if errors.Is(err, connection.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to remove conn: %w", err)
	}

	return nil
}
