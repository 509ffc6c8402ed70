package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

// testClient registers a bare client without a websocket connection.
func testClient(h *Hub) *Client {
	c := &Client{hub: h, send: make(chan Message, 8)}
	h.register <- c
	return c
}

func recv(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
	return Message{}
}

func TestHub_BroadcastFanOut(t *testing.T) {
	h := New("test")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	a := testClient(h)
	b := testClient(h)

	h.BroadcastBinary([]byte{0xff, 0xd8})

	for _, c := range []*Client{a, b} {
		msg := recv(t, c)
		if msg.Type != BinaryMessage || len(msg.Data) != 2 {
			t.Errorf("unexpected message %+v", msg)
		}
	}
}

func TestHub_BroadcastJSON(t *testing.T) {
	h := New("test")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := testClient(h)
	if err := h.BroadcastJSON(map[string]int{"fps": 30}); err != nil {
		t.Fatalf("BroadcastJSON: %v", err)
	}

	msg := recv(t, c)
	if msg.Type != JSONMessage {
		t.Fatalf("unexpected type %v", msg.Type)
	}
	var payload map[string]int
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload["fps"] != 30 {
		t.Errorf("unexpected payload %v", payload)
	}
}

func TestHub_SlowClientDropped(t *testing.T) {
	h := New("test")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	slow := &Client{hub: h, send: make(chan Message)} // no buffer
	h.register <- slow

	// An unbuffered client cannot absorb a broadcast; the hub drops it.
	h.BroadcastBinary([]byte{1})

	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if h.ClientCount() != 0 {
		t.Fatal("slow client was not dropped")
	}
}

func TestHub_RegisterAfterShutdownDoesNotBlock(t *testing.T) {
	h := New("test")
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	cancel()

	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	// A connection racing against shutdown must not hang its handler
	// goroutine on the register and unregister sends.
	finished := make(chan struct{})
	go func() {
		c := NewClient(h, nil)
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("registration blocked against a stopped hub")
	}
	if h.ClientCount() != 0 {
		t.Errorf("expected no clients, got %d", h.ClientCount())
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	h := New("test")
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	c := testClient(h)
	cancel()

	select {
	case _, ok := <-c.send:
		if ok {
			t.Fatal("expected closed channel, got message")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client channel not closed on shutdown")
	}
}
