package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidAction = errors.New("invalid action")

type ActionKind string

const (
	ActionPlay      ActionKind = "play"
	ActionPause     ActionKind = "pause"
	ActionSeek      ActionKind = "seek"
	ActionHeartbeat ActionKind = "heartbeat"
	ActionLoad      ActionKind = "load"
)

// Action is a control action issued by a room controller. The set of implementations is closed.
type Action interface {
	Kind() ActionKind
	Mutation() Mutation
	action()
}

type Play struct {
	Position float64
}

type Pause struct {
	Position float64
}

type Seek struct {
	Position float64
}

type Heartbeat struct {
	Position float64
}

type Load struct {
	MediaURL  string
	MediaKind MediaKind
}

func (Play) Kind() ActionKind      { return ActionPlay }
func (Pause) Kind() ActionKind     { return ActionPause }
func (Seek) Kind() ActionKind      { return ActionSeek }
func (Heartbeat) Kind() ActionKind { return ActionHeartbeat }
func (Load) Kind() ActionKind      { return ActionLoad }

func (Play) action()      {}
func (Pause) action()     {}
func (Seek) action()      {}
func (Heartbeat) action() {}
func (Load) action()      {}

func (a Play) Mutation() Mutation {
	return Mutation{Position: &a.Position, Playing: ptr(true)}
}

func (a Pause) Mutation() Mutation {
	return Mutation{Position: &a.Position, Playing: ptr(false)}
}

func (a Seek) Mutation() Mutation {
	return Mutation{Position: &a.Position}
}

func (a Heartbeat) Mutation() Mutation {
	return Mutation{Position: &a.Position}
}

func (a Load) Mutation() Mutation {
	return Mutation{
		MediaURL:  &a.MediaURL,
		MediaKind: &a.MediaKind,
		Position:  ptr(0.0),
		Playing:   ptr(false),
	}
}

// ParseAction builds the typed action for kind. Position is ignored for load.
func ParseAction(kind string, position float64, mediaURL, mediaKind string) (Action, error) {
	switch ActionKind(kind) {
	case ActionPlay:
		return Play{Position: position}, nil
	case ActionPause:
		return Pause{Position: position}, nil
	case ActionSeek:
		return Seek{Position: position}, nil
	case ActionHeartbeat:
		return Heartbeat{Position: position}, nil
	case ActionLoad:
		if mediaURL == "" {
			return nil, fmt.Errorf("%w: load requires a media url", ErrInvalidAction)
		}

		mk, err := ParseMediaKind(mediaKind)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidAction, err)
		}

		return Load{MediaURL: mediaURL, MediaKind: mk}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidAction, kind)
	}
}

// Mutation sets any subset of the playback fields. Nil fields are left unchanged.
type Mutation struct {
	MediaURL  *string
	MediaKind *MediaKind
	Position  *float64
	Playing   *bool
}

// Fields lists the fields the mutation sets. Unset fields are nil pointers.
func (m Mutation) Fields() map[string]any {
	return map[string]any{
		"media_url":  m.MediaURL,
		"media_kind": m.MediaKind,
		"position":   m.Position,
		"playing":    m.Playing,
	}
}

func (m Mutation) Apply(p Player) Player {
	if m.MediaURL != nil {
		p.MediaURL = *m.MediaURL
	}
	if m.MediaKind != nil {
		p.MediaKind = *m.MediaKind
	}
	if m.Position != nil {
		p.Position = *m.Position
	}
	if m.Playing != nil {
		p.Playing = *m.Playing
	}

	return p
}

func ptr[T any](v T) *T {
	return &v
}
