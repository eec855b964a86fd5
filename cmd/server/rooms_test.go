package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Nexus/internal/core"
)

func TestRenderRooms(t *testing.T) {
	var buf bytes.Buffer
	renderRooms(&buf, []core.RoomInfo{
		{ID: "abc123", MemberCount: 2, Capacity: 10},
		{ID: "standup", MemberCount: 5, Capacity: 10},
	})
	out := buf.String()
	assert.Contains(t, out, "ROOM")
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "standup")
	assert.Contains(t, out, "2 ROOMS")
	assert.Contains(t, out, "7")
}

func TestFetchRooms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/rooms" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rooms":[{"id":"abc123","member_count":3,"capacity":10}]}`))
	}))
	defer srv.Close()

	rooms, err := fetchRooms(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, []core.RoomInfo{{ID: "abc123", MemberCount: 3, Capacity: 10}}, rooms)

	_, err = fetchRooms(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}
