package controller

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/sharetube/watchparty/internal/service"
	"github.com/sharetube/watchparty/pkg/rest"
)

// readInput decodes and validates the request body. It writes the error response itself and reports false on failure.
func (c controller) readInput(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := rest.ReadJSON(r, dst); err != nil {
		c.logger.DebugContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": errorOutput{Code: "UNPROCESSABLE", Message: err.Error()}})
		return false
	}

	if validationErrors, ok := c.validate.Validate(dst); !ok {
		c.logger.DebugContext(r.Context(), "validation failed", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return false
	}

	return true
}

type guestInput struct {
	DisplayName string `json:"display_name" validate:"required,max=32"`
}

type guestOutput struct {
	Token         string `json:"token"`
	ParticipantId string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
}

// issueGuestToken hands out a fresh participant identity.
func (c controller) issueGuestToken(w http.ResponseWriter, r *http.Request) {
	var input guestInput
	if !c.readInput(w, r, &input) {
		return
	}

	identity := service.Identity{
		ParticipantId: uuid.NewString(),
		DisplayName:   input.DisplayName,
	}

	token, err := c.service.IssueToken(identity)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": guestOutput{
		Token:         token,
		ParticipantId: identity.ParticipantId,
		DisplayName:   identity.DisplayName,
	}})
}

type createRoomInput struct {
	Name   string `json:"name" validate:"required,max=64"`
	Secret string `json:"secret" validate:"max=72"`
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var input createRoomInput
	if !c.readInput(w, r, &input) {
		return
	}

	identity := c.getIdentityFromCtx(r.Context())
	createRoomResp, err := c.service.CreateRoom(r.Context(), &service.CreateRoomParams{
		Name:          input.Name,
		Secret:        input.Secret,
		ParticipantId: identity.ParticipantId,
		DisplayName:   identity.DisplayName,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": createRoomResp.Room})
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	room, err := c.service.GetRoom(r.Context(), &service.GetRoomParams{
		RoomCode:      c.getRoomCodeFromCtx(r.Context()),
		ParticipantId: c.getIdentityFromCtx(r.Context()).ParticipantId,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": room})
}

func (c controller) deleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := c.service.DeleteRoom(r.Context(), &service.DeleteRoomParams{
		RoomCode:      c.getRoomCodeFromCtx(r.Context()),
		ParticipantId: c.getIdentityFromCtx(r.Context()).ParticipantId,
	}); err != nil {
		c.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type joinRoomInput struct {
	Secret string `json:"secret" validate:"max=72"`
}

type joinRoomOutput struct {
	Member service.Member `json:"member"`
	Joined bool           `json:"joined"`
}

func (c controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	var input joinRoomInput
	if !c.readInput(w, r, &input) {
		return
	}

	identity := c.getIdentityFromCtx(r.Context())
	joinRoomResp, err := c.service.JoinRoom(r.Context(), &service.JoinRoomParams{
		RoomCode:      c.getRoomCodeFromCtx(r.Context()),
		ParticipantId: identity.ParticipantId,
		DisplayName:   identity.DisplayName,
		Secret:        input.Secret,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if joinRoomResp.Joined {
		status = http.StatusCreated
	}

	rest.WriteJSON(w, status, rest.Envelope{"data": joinRoomOutput{
		Member: joinRoomResp.Member,
		Joined: joinRoomResp.Joined,
	}})
}

func (c controller) leaveRoom(w http.ResponseWriter, r *http.Request) {
	leaveRoomResp, err := c.service.LeaveRoom(r.Context(), &service.LeaveRoomParams{
		RoomCode:      c.getRoomCodeFromCtx(r.Context()),
		ParticipantId: c.getIdentityFromCtx(r.Context()).ParticipantId,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": rest.Envelope{"left": leaveRoomResp.Left}})
}

func (c controller) getMembers(w http.ResponseWriter, r *http.Request) {
	members, err := c.service.GetMembers(r.Context(), &service.GetMembersParams{
		RoomCode:      c.getRoomCodeFromCtx(r.Context()),
		ParticipantId: c.getIdentityFromCtx(r.Context()).ParticipantId,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": members})
}

func (c controller) getNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := c.service.GetNotifications(r.Context(), &service.GetNotificationsParams{
		RoomCode:      c.getRoomCodeFromCtx(r.Context()),
		ParticipantId: c.getIdentityFromCtx(r.Context()).ParticipantId,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": notifications})
}

type controlInput struct {
	Action    string  `json:"action" validate:"required"`
	Position  float64 `json:"position"`
	MediaURL  string  `json:"url"`
	MediaKind string  `json:"kind"`
}

func (c controller) control(w http.ResponseWriter, r *http.Request) {
	var input controlInput
	if !c.readInput(w, r, &input) {
		return
	}

	controlResp, err := c.service.Control(r.Context(), &service.ControlParams{
		RoomCode:      c.getRoomCodeFromCtx(r.Context()),
		ParticipantId: c.getIdentityFromCtx(r.Context()).ParticipantId,
		Action:        input.Action,
		Position:      input.Position,
		MediaURL:      input.MediaURL,
		MediaKind:     input.MediaKind,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": controlResp.Player})
}

func (c controller) sync(w http.ResponseWriter, r *http.Request) {
	snapshot, err := c.service.GetSnapshot(r.Context(), &service.GetSnapshotParams{
		RoomCode:      c.getRoomCodeFromCtx(r.Context()),
		ParticipantId: c.getIdentityFromCtx(r.Context()).ParticipantId,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": snapshot})
}
