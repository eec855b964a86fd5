package signal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Nexus/internal/app"
	"github.com/dkeye/Nexus/internal/app/orch"
	"github.com/dkeye/Nexus/internal/core"
	"github.com/dkeye/Nexus/internal/domain"
)

// upgradedPair returns the server side of a real websocket and its client.
func upgradedPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()
	serverSide := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverSide <- ws
	}))
	t.Cleanup(srv.Close)

	client, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { client.Close() })

	select {
	case ws := <-serverSide:
		return ws, client
	case <-time.After(2 * time.Second):
		t.Fatal("upgrade timed out")
		return nil, nil
	}
}

func TestKickPolicyClosesSlowWebsocket(t *testing.T) {
	ws, client := upgradedPair(t)
	conn := newWsSignalConn(ws, 1)

	o := orch.New(core.JSONCodec{}, app.KickPolicy{}, 0)
	sid := o.Connect(conn, "")

	// No writePump drains the buffer: the first frame fills it, the second kicks.
	assert.True(t, o.Registry.TrySend(sid, domain.EventPong, nil))
	assert.False(t, o.Registry.TrySend(sid, domain.EventPong, nil))
	assert.ErrorIs(t, conn.TrySend(core.Frame("x")), domain.ErrConnectionClosed)

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := client.ReadMessage()
	assert.Error(t, err)
}

func TestDropPolicyKeepsSlowWebsocket(t *testing.T) {
	ws, _ := upgradedPair(t)
	conn := newWsSignalConn(ws, 1)

	o := orch.New(core.JSONCodec{}, app.DropPolicy{}, 0)
	sid := o.Connect(conn, "")

	assert.True(t, o.Registry.TrySend(sid, domain.EventPong, nil))
	assert.False(t, o.Registry.TrySend(sid, domain.EventPong, nil))
	assert.ErrorIs(t, conn.TrySend(core.Frame("x")), domain.ErrBackpressure)
	conn.Close()
}
