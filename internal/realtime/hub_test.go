package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func testClient(householdID int64) *Client {
	return &Client{
		householdID: householdID,
		send:        make(chan []byte, sendBufferSize),
	}
}

func TestHubPublishScopedToHousehold(t *testing.T) {
	h := NewHub(slog.Default())

	inRoom := testClient(1)
	alsoInRoom := testClient(1)
	otherRoom := testClient(2)
	h.Register(inRoom)
	h.Register(alsoInRoom)
	h.Register(otherRoom)

	ev := NewEvent(1, EventTaskCompleted, map[string]any{"task_id": int64(7)})
	if err := h.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	for _, c := range []*Client{inRoom, alsoInRoom} {
		select {
		case msg := <-c.send:
			var got Event
			if err := json.Unmarshal(msg, &got); err != nil {
				t.Fatalf("failed to decode message: %v", err)
			}
			if got.Name != EventTaskCompleted {
				t.Errorf("Name = %q, want %q", got.Name, EventTaskCompleted)
			}
			if got.ID != ev.ID {
				t.Errorf("ID = %q, want %q", got.ID, ev.ID)
			}
		default:
			t.Error("room member received no message")
		}
	}

	select {
	case <-otherRoom.send:
		t.Error("client in another household received the event")
	default:
	}
}

func TestHubPublishDropsWhenBufferFull(t *testing.T) {
	h := NewHub(slog.Default())

	c := &Client{householdID: 1, send: make(chan []byte, 1)}
	h.Register(c)

	ev := NewEvent(1, EventTaskCreated, nil)
	for i := 0; i < 3; i++ {
		if err := h.Publish(context.Background(), ev); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	// The buffered message is there; the overflow was dropped, not blocked on.
	if len(c.send) != 1 {
		t.Errorf("buffered messages = %d, want 1", len(c.send))
	}
}

func TestHubUnregister(t *testing.T) {
	h := NewHub(slog.Default())

	c := testClient(1)
	h.Register(c)
	if n := h.ClientCount(1); n != 1 {
		t.Fatalf("ClientCount = %d, want 1", n)
	}

	h.Unregister(c)
	if n := h.ClientCount(1); n != 0 {
		t.Errorf("ClientCount = %d after unregister, want 0", n)
	}

	if _, open := <-c.send; open {
		t.Error("send channel still open after unregister")
	}

	// A second unregister of the same client is a no-op.
	h.Unregister(c)
}

func TestHubClientCountPerHousehold(t *testing.T) {
	h := NewHub(slog.Default())

	h.Register(testClient(1))
	h.Register(testClient(1))
	h.Register(testClient(2))

	if n := h.ClientCount(1); n != 2 {
		t.Errorf("ClientCount(1) = %d, want 2", n)
	}
	if n := h.ClientCount(2); n != 1 {
		t.Errorf("ClientCount(2) = %d, want 1", n)
	}
	if n := h.ClientCount(3); n != 0 {
		t.Errorf("ClientCount(3) = %d, want 0", n)
	}
}
