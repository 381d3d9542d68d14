package service

import (
	"time"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/room"
)

const (
	EventPlayerState   = "PLAYER_STATE"
	EventPlayerUpdated = "PLAYER_UPDATED"
	EventMemberJoined  = "MEMBER_JOINED"
	EventMemberLeft    = "MEMBER_LEFT"
	EventRoomDeleted   = "ROOM_DELETED"
)

type Member struct {
	Id          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	Role        domain.Role `json:"role"`
	Approved    bool        `json:"approved"`
	JoinedAt    time.Time   `json:"joined_at"`
}

type Room struct {
	Code       string          `json:"room_code"`
	Name       string          `json:"name"`
	HasSecret  bool            `json:"has_secret"`
	HostId     string          `json:"host_id"`
	CreatedAt  time.Time       `json:"created_at"`
	Capability string          `json:"capability"`
	Player     domain.Snapshot `json:"player"`
}

type Notification struct {
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type PlayerUpdatedPayload struct {
	Action  domain.ActionKind `json:"action"`
	ActorId string            `json:"actor_id"`
	Player  domain.Snapshot   `json:"player"`
}

type MemberPayload struct {
	Member Member `json:"member"`
}

type RoomDeletedPayload struct {
	RoomCode string `json:"room_code"`
}

func mapMember(participantId string, m room.Member) Member {
	return Member{
		Id:          participantId,
		DisplayName: m.DisplayName,
		Role:        domain.Role(m.Role),
		Approved:    m.Approved,
		JoinedAt:    time.UnixMicro(m.JoinedAt).UTC(),
	}
}

func mapMembership(roomCode, participantId string, m room.Member) *domain.Membership {
	return &domain.Membership{
		RoomCode:      roomCode,
		ParticipantId: participantId,
		DisplayName:   m.DisplayName,
		Role:          domain.Role(m.Role),
		Approved:      m.Approved,
		JoinedAt:      time.UnixMicro(m.JoinedAt).UTC(),
	}
}
