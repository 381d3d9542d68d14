package room

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrCodeAlreadyTaken = errors.New("room code already taken")
)
