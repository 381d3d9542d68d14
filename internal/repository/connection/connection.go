package connection

import "errors"

var (
	ErrAlreadyExists = errors.New("connection already exists")
	ErrNotFound      = errors.New("connection not found")
	ErrBackpressure  = errors.New("send buffer full")
	ErrClosed        = errors.New("connection closed")
)

// Conn is a subscriber's outbound side. TrySend never blocks.
type Conn interface {
	Id() string
	TrySend(data []byte) error
	Close()
}
