package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dkeye/Nexus/internal/core"
)

func newRoomsCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List active call rooms of a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rooms, err := fetchRooms(cmd.Context(), addr)
			if err != nil {
				return err
			}
			renderRooms(cmd.OutOrStdout(), rooms)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "http://localhost:8080", "server base URL")
	return cmd
}

func fetchRooms(ctx context.Context, addr string) ([]core.RoomInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(addr, "/")+"/api/rooms", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rooms: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch rooms: unexpected status %s", resp.Status)
	}
	var body struct {
		Rooms []core.RoomInfo `json:"rooms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode rooms: %w", err)
	}
	return body.Rooms, nil
}

func renderRooms(out io.Writer, rooms []core.RoomInfo) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Room", "Members", "Capacity"})
	total := 0
	for _, r := range rooms {
		t.AppendRow(table.Row{r.ID, r.MemberCount, r.Capacity})
		total += r.MemberCount
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d rooms", len(rooms)), total, ""})
	t.Render()
}
