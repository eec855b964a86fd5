// Package orch wires transport lifecycle events to the registry, rooms and
// notification channel.
package orch

import (
	"github.com/dkeye/Nexus/internal/app"
	"github.com/dkeye/Nexus/internal/core"
	"github.com/dkeye/Nexus/internal/domain"
)

type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.RoomManager
	Relay    *app.Relay
	Notifier *app.Notifier
}

// New builds the per-process signaling state around one codec and policy.
func New(codec core.Codec, policy app.Policy, capacity int) *Orchestrator {
	reg := app.NewRegistry(codec, policy)
	rooms := app.NewRoomManager(reg, capacity)
	return &Orchestrator{
		Registry: reg,
		Rooms:    rooms,
		Relay:    app.NewRelay(reg, rooms),
		Notifier: app.NewNotifier(reg),
	}
}

// Notifications exposes the typed per-account push helpers.
func (o *Orchestrator) Notifications() app.Notifications {
	return app.Notifications{Pusher: o.Notifier}
}

// Connect registers a fresh transport session under a new connection id.
func (o *Orchestrator) Connect(signal core.SignalConnection, clientToken string) domain.ConnectionID {
	sid := domain.NewConnectionID()
	o.Registry.Register(sid, signal, clientToken)
	return sid
}

// Identify binds sid to account and subscribes it to the account channel.
// Re-identifying as another account moves the subscription.
func (o *Orchestrator) Identify(sid domain.ConnectionID, account domain.AccountID) bool {
	prev, ok := o.Registry.Identify(sid, account)
	if !ok {
		return false
	}
	if prev != "" && prev != account {
		o.Notifier.Unsubscribe(prev, sid)
	}
	o.Notifier.Subscribe(account, sid)
	return true
}
