package websocket

import "errors"

var (
	ErrClientQueueFull = errors.New("client message queue is full")
	ErrInvalidEvent    = errors.New("invalid event payload")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotInRoom       = errors.New("user not in room")
)
