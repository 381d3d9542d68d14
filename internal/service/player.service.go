package service

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/registry"
)

type ControlParams struct {
	RoomCode      string  `json:"room_code"`
	ParticipantId string  `json:"actor_id"`
	Action        string  `json:"action_kind"`
	Position      float64 `json:"position"`
	MediaURL      string  `json:"url"`
	MediaKind     string  `json:"kind"`
	// ConnId is the connection the action arrived on, if any. It does not get the echo.
	ConnId string `json:"-"`
}

type ControlResponse struct {
	Action domain.ActionKind
	Player domain.Snapshot
}

func (s service) validateControl(ctx context.Context, params *ControlParams) error {
	if err := validation.ValidateStructWithContext(ctx, params,
		validation.Field(&params.ParticipantId, ParticipantIdRule...),
		validation.Field(&params.Action, ActionKindRule...),
		validation.Field(&params.Position, PositionRule...),
		validation.Field(&params.MediaKind, MediaKindRule...),
	); err != nil {
		return err
	}

	if domain.ActionKind(params.Action) != domain.ActionLoad {
		return nil
	}

	mediaKind, err := domain.ParseMediaKind(params.MediaKind)
	if err != nil {
		return err
	}

	urlRule := YoutubeURLRule
	if mediaKind == domain.MediaKindLocal {
		urlRule = LocalMediaRule
	}

	return validation.ValidateStructWithContext(ctx, params,
		validation.Field(&params.MediaURL, urlRule...),
	)
}

// Control applies a control action from the room controller and broadcasts the resulting
// state to every other subscriber of the room.
func (s service) Control(ctx context.Context, params *ControlParams) (ControlResponse, error) {
	code, err := s.canonicalCode(params.RoomCode)
	if err != nil {
		return ControlResponse{}, err
	}

	if err := s.validateControl(ctx, params); err != nil {
		return ControlResponse{}, fmt.Errorf("%w: %w", ErrInvalidAction, err)
	}

	action, err := domain.ParseAction(params.Action, params.Position, params.MediaURL, params.MediaKind)
	if err != nil {
		return ControlResponse{}, fmt.Errorf("%w: %w", ErrInvalidAction, err)
	}

	var actor *domain.Membership
	var hooks []registry.Hook
	if load, ok := action.(domain.Load); ok {
		hooks = append(hooks, func(ctx context.Context, _ domain.Room) {
			what := "video"
			if load.MediaKind == domain.MediaKindYoutube {
				what = "YouTube video"
			}
			s.notify(ctx, code, fmt.Sprintf("%s loaded a new %s", actor.DisplayName, what))
		})
	}

	rm, err := s.registry.Apply(ctx, code, s.controllerGuard(params.ParticipantId, &actor), action.Mutation(), hooks...)
	if err != nil {
		return ControlResponse{}, s.mapRegistryError(err)
	}

	snapshot := rm.Snapshot(s.registry.Now())
	s.publish(ctx, code, EventPlayerUpdated, PlayerUpdatedPayload{
		Action:  action.Kind(),
		ActorId: params.ParticipantId,
		Player:  snapshot,
	}, params.ConnId)

	return ControlResponse{
		Action: action.Kind(),
		Player: snapshot,
	}, nil
}
