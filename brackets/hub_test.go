package brackets

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubJoinAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	exited := make(chan struct{})
	go func() {
		hub.Run()
		close(exited)
	}()

	first := &Client{ID: "first", Hub: hub, Send: make(chan []byte, 1), Room: TournamentRoom}
	require.True(t, hub.Join(first))
	require.Eventually(t, func() bool { return hub.ClientCount(TournamentRoom) == 1 }, time.Second, 5*time.Millisecond)

	hub.Stop()
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	_, open := <-first.Send
	assert.False(t, open, "stopping the hub closes client channels")

	late := &Client{ID: "late", Hub: hub, Send: make(chan []byte, 1), Room: TournamentRoom}
	joined := make(chan bool, 1)
	go func() { joined <- hub.Join(late) }()
	select {
	case ok := <-joined:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Join blocked on a stopped hub")
	}
	assert.Zero(t, hub.ClientCount(TournamentRoom))
}
