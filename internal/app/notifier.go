package app

import (
	"maps"
	"slices"
	"sync"

	"github.com/dkeye/Nexus/internal/core"
	"github.com/dkeye/Nexus/internal/domain"
	"github.com/rs/zerolog/log"
)

// Pusher is what the rest of the application needs to reach a user.
type Pusher interface {
	Notify(account domain.AccountID, event string, payload any) int
}

// Notifier is the per-account channel, independent of rooms. A user with
// several tabs gets every notification on each of them.
type Notifier struct {
	mu   sync.RWMutex
	subs map[domain.AccountID]map[domain.ConnectionID]struct{}
	reg  *Registry
}

func NewNotifier(reg *Registry) *Notifier {
	return &Notifier{
		subs: make(map[domain.AccountID]map[domain.ConnectionID]struct{}),
		reg:  reg,
	}
}

func (n *Notifier) Subscribe(account domain.AccountID, sid domain.ConnectionID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	set, ok := n.subs[account]
	if !ok {
		set = make(map[domain.ConnectionID]struct{})
		n.subs[account] = set
	}
	set[sid] = struct{}{}
	log.Info().Str("module", "app.notify").Str("account", string(account)).Str("conn", string(sid)).Msg("subscribed")
}

func (n *Notifier) Unsubscribe(account domain.AccountID, sid domain.ConnectionID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	set, ok := n.subs[account]
	if !ok {
		return
	}
	delete(set, sid)
	if len(set) == 0 {
		delete(n.subs, account)
	}
	log.Info().Str("module", "app.notify").Str("account", string(account)).Str("conn", string(sid)).Msg("unsubscribed")
}

func (n *Notifier) Subscribers(account domain.AccountID) []domain.ConnectionID {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Sorted(maps.Keys(n.subs[account]))
}

// Notify pushes event to every live connection of account. Nothing is stored
// when the account has none; the returned count is informational.
func (n *Notifier) Notify(account domain.AccountID, event string, payload any) int {
	targets := n.Subscribers(account)
	if len(targets) == 0 {
		log.Debug().Str("module", "app.notify").Str("account", string(account)).Str("event", event).Msg("no subscribers, dropped")
		return 0
	}
	frame, err := core.Encode(n.reg.Codec(), event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.notify").Str("event", event).Msg("encode notification")
		return 0
	}
	sent := 0
	for _, sid := range targets {
		if n.reg.Deliver(sid, frame) {
			sent++
		}
	}
	log.Debug().Str("module", "app.notify").Str("account", string(account)).Str("event", event).Int("sent_to", sent).Msg("notify")
	return sent
}
