package app

import (
	"fmt"

	"github.com/dkeye/Nexus/internal/domain"
)

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	KickConnection
)

// Policy decides what happens when a connection's outbound buffer is full.
type Policy interface {
	OnBackPressure(sid domain.ConnectionID) BackpressureAction
}

// DropPolicy loses the frame and keeps the connection. Delivery is best effort anyway.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.ConnectionID) BackpressureAction { return DropFrame }

// KickPolicy closes slow consumers; their read loop then runs the disconnect cascade.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(domain.ConnectionID) BackpressureAction { return KickConnection }

func PolicyFromName(name string) (Policy, error) {
	switch name {
	case "", "drop":
		return DropPolicy{}, nil
	case "kick":
		return KickPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown backpressure policy %q", name)
	}
}
