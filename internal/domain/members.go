package domain

import "time"

type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

type Membership struct {
	RoomCode      string
	ParticipantId string
	DisplayName   string
	Role          Role
	// Approved is always true for memberships created by join or create.
	Approved bool
	JoinedAt time.Time
}

type Capability int

const (
	CapabilityNone Capability = iota
	CapabilityPending
	CapabilityObserver
	CapabilityController
)

func (c Capability) String() string {
	switch c {
	case CapabilityPending:
		return "pending"
	case CapabilityObserver:
		return "observer"
	case CapabilityController:
		return "controller"
	default:
		return "none"
	}
}

func (c Capability) CanObserve() bool {
	return c == CapabilityObserver || c == CapabilityController
}

func (c Capability) CanControl() bool {
	return c == CapabilityController
}

// Resolve maps a membership, nil when absent, to what its holder may do in the room.
func Resolve(m *Membership) Capability {
	switch {
	case m == nil:
		return CapabilityNone
	case !m.Approved:
		return CapabilityPending
	case m.Role == RoleHost:
		return CapabilityController
	default:
		return CapabilityObserver
	}
}
