package domain

import (
	"errors"

	"github.com/google/uuid"
)

const (
	DefaultRoomCapacity = 10
	MaxRoomIDLen        = 128
)

var ErrRoomIDTooLong = errors.New("room id too long")

type RoomID string

// NewRoomID is used when a creator does not supply its own room key.
func NewRoomID() RoomID {
	return RoomID(uuid.NewString())
}

// ParseRoomID accepts an empty id; callers decide whether that means "generate".
func ParseRoomID(raw string) (RoomID, error) {
	if len(raw) > MaxRoomIDLen {
		return "", ErrRoomIDTooLong
	}
	return RoomID(raw), nil
}
