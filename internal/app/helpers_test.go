package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Nexus/internal/core"
	"github.com/dkeye/Nexus/internal/core/coretest"
	"github.com/dkeye/Nexus/internal/domain"
)

type harness struct {
	reg      *Registry
	rooms    *RoomManager
	relay    *Relay
	notifier *Notifier
	conns    map[domain.ConnectionID]*coretest.Conn
}

func newHarness(t *testing.T, policy Policy, capacity int) *harness {
	t.Helper()
	reg := NewRegistry(core.JSONCodec{}, policy)
	rooms := NewRoomManager(reg, capacity)
	return &harness{
		reg:      reg,
		rooms:    rooms,
		relay:    NewRelay(reg, rooms),
		notifier: NewNotifier(reg),
		conns:    make(map[domain.ConnectionID]*coretest.Conn),
	}
}

func (h *harness) connect(sid domain.ConnectionID) *coretest.Conn {
	c := coretest.NewConn()
	h.reg.Register(sid, c, "token-"+string(sid))
	h.conns[sid] = c
	return c
}

func (h *harness) events(t *testing.T, sid domain.ConnectionID) []string {
	t.Helper()
	return h.conns[sid].Events(t, h.reg.Codec())
}

// payload decodes the data of the only envelope named event received by sid.
func (h *harness) payload(t *testing.T, sid domain.ConnectionID, event string, v any) {
	t.Helper()
	envs := h.conns[sid].Named(t, h.reg.Codec(), event)
	require.Len(t, envs, 1, "expected exactly one %q for %s", event, sid)
	require.NoError(t, h.reg.Codec().Unmarshal(envs[0].Data, v))
}

func (h *harness) reset() {
	for _, c := range h.conns {
		c.Reset()
	}
}
