package domain

import "errors"

var (
	ErrRoomNotFound     = errors.New("room does not exist")
	ErrRoomFull         = errors.New("room is full")
	ErrRateLimited      = errors.New("too many room requests")
	ErrBackpressure     = errors.New("backpressure")
	ErrConnectionClosed = errors.New("connection closed")
)

// ErrorMessage maps an error to the message carried by the "error" event.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "Room does not exist"
	case errors.Is(err, ErrRoomFull):
		return "Room is full"
	case errors.Is(err, ErrRateLimited):
		return "Too many room requests"
	case errors.Is(err, ErrRoomIDTooLong):
		return "Invalid room id"
	case errors.Is(err, ErrAccountIDEmpty), errors.Is(err, ErrAccountIDTooLong):
		return "Invalid account id"
	default:
		return "Bad request"
	}
}
