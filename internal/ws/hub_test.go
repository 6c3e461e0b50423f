package ws

import (
	"encoding/json"
	"testing"
)

func drain(t *testing.T, ch <-chan []byte) []envelope {
	t.Helper()
	var out []envelope
	for {
		select {
		case data := <-ch:
			var env envelope
			if err := json.Unmarshal(data, &env); err != nil {
				t.Fatalf("Failed to decode frame: %v", err)
			}
			out = append(out, env)
		default:
			return out
		}
	}
}

func TestHub_SendToConnection(t *testing.T) {
	hub := NewHub()
	ch := hub.Register("conn-1")

	hub.SendToConnection("conn-1", "room-state", map[string]string{"code": "x"})
	hub.SendToConnection("conn-missing", "room-state", nil)

	got := drain(t, ch)
	if len(got) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(got))
	}
	if got[0].Type != "room-state" {
		t.Errorf("Expected room-state frame, got %s", got[0].Type)
	}
}

func TestHub_SendToRoom(t *testing.T) {
	hub := NewHub()
	alice := hub.Register("conn-alice")
	bob := hub.Register("conn-bob")
	outsider := hub.Register("conn-outsider")

	hub.Join("r1", "conn-alice")
	hub.Join("r1", "conn-bob")

	hub.SendToRoom("r1", "users", []string{"alice", "bob"})

	if got := drain(t, alice); len(got) != 1 {
		t.Errorf("Expected alice to receive 1 frame, got %d", len(got))
	}
	if got := drain(t, bob); len(got) != 1 {
		t.Errorf("Expected bob to receive 1 frame, got %d", len(got))
	}
	if got := drain(t, outsider); len(got) != 0 {
		t.Errorf("Expected outsider to receive nothing, got %d", len(got))
	}
}

func TestHub_SendToRoomExcept(t *testing.T) {
	hub := NewHub()
	alice := hub.Register("conn-alice")
	bob := hub.Register("conn-bob")

	hub.Join("r1", "conn-alice")
	hub.Join("r1", "conn-bob")

	hub.SendToRoomExcept("r1", "code-change", "new code", "conn-alice")

	if got := drain(t, alice); len(got) != 0 {
		t.Errorf("Expected sender to be excluded, got %d frames", len(got))
	}
	got := drain(t, bob)
	if len(got) != 1 {
		t.Fatalf("Expected bob to receive 1 frame, got %d", len(got))
	}
	if code, ok := got[0].Payload.(string); !ok || code != "new code" {
		t.Errorf("Expected payload %q, got %v", "new code", got[0].Payload)
	}
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	hub := NewHub()
	alice := hub.Register("conn-alice")

	hub.Join("r1", "conn-alice")
	hub.Leave("r1", "conn-alice")

	hub.SendToRoom("r1", "users", nil)

	if got := drain(t, alice); len(got) != 0 {
		t.Errorf("Expected no delivery after leave, got %d", len(got))
	}
}

func TestHub_UnregisterClosesQueueAndDropsMembership(t *testing.T) {
	hub := NewHub()
	ch := hub.Register("conn-1")
	hub.Join("r1", "conn-1")

	hub.Unregister("conn-1")

	if _, open := <-ch; open {
		t.Error("Expected outbound queue to be closed")
	}

	// No panic and no delivery for a gone connection.
	hub.SendToRoom("r1", "users", nil)
	hub.SendToConnection("conn-1", "users", nil)
}

func TestHub_SlowConnectionDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	ch := hub.Register("conn-1")
	hub.Join("r1", "conn-1")

	for i := 0; i < sendBuffer+10; i++ {
		hub.SendToRoom("r1", "chat-message", i)
	}

	got := drain(t, ch)
	if len(got) != sendBuffer {
		t.Errorf("Expected exactly %d buffered frames, got %d", sendBuffer, len(got))
	}
}
