package core

import "github.com/dkeye/Nexus/internal/domain"

// RoomService is the membership set of one active call.
// Callbacks passed to it run under the room lock, which is what orders
// join/leave notifications per room. They must not block.
type RoomService interface {
	ID() domain.RoomID
	Capacity() int
	MemberCount() int
	// Members returns connection ids in join order.
	Members() []domain.ConnectionID
	Has(sid domain.ConnectionID) bool
	// Closed reports whether the room emptied out and must be treated as gone.
	Closed() bool

	// Add admits sid unless the room is closed (domain.ErrRoomNotFound) or at
	// capacity (domain.ErrRoomFull). added is false when sid already was a member.
	// onAdded receives the members present before sid joined.
	Add(sid domain.ConnectionID, onAdded func(others []domain.ConnectionID)) (added bool, err error)
	// Remove drops sid. onRemoved receives the remaining members. The room
	// closes when the last member leaves.
	Remove(sid domain.ConnectionID, onRemoved func(remaining []domain.ConnectionID)) (removed, closed bool)
	// Each calls fn for every member except exclude and returns how many were visited.
	Each(exclude domain.ConnectionID, fn func(sid domain.ConnectionID)) int
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
	Capacity    int           `json:"capacity"`
}
