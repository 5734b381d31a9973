package services

import (
	"encoding/json"
	"testing"
	"time"

	"cookNestAPI/internal/types/cookalong"
)

func recvWithTimeout(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for hub message")
		return nil
	}
}

func TestCookAlongBroadcast(t *testing.T) {
	manager := NewCookAlongManager()
	session := manager.CreateSession("sess-1", "recipe-1", "host-1")

	host := &CookAlongClient{Session: session, Send: make(chan []byte, 8), UserID: "host-1", Username: "chef"}
	guest := &CookAlongClient{Session: session, Send: make(chan []byte, 8), UserID: "guest-1", Username: "sous"}

	session.Register <- host
	session.Register <- guest

	session.Broadcast <- []byte(`{"type":"chat","sender":"chef","payload":"hello"}`)

	for _, c := range []*CookAlongClient{host, guest} {
		var env cookalong.Envelope
		if err := json.Unmarshal(recvWithTimeout(t, c.Send), &env); err != nil {
			t.Fatalf("invalid envelope: %v", err)
		}
		if env.Type != cookalong.EventChat {
			t.Errorf("expected %q event, got %q", cookalong.EventChat, env.Type)
		}
	}
}

func TestCookAlongRosterOnLeave(t *testing.T) {
	manager := NewCookAlongManager()
	session := manager.CreateSession("sess-2", "recipe-1", "host-1")

	host := &CookAlongClient{Session: session, Send: make(chan []byte, 8), UserID: "host-1", Username: "chef"}
	guest := &CookAlongClient{Session: session, Send: make(chan []byte, 8), UserID: "guest-1", Username: "sous"}

	session.Register <- host
	session.Register <- guest

	session.Unregister <- guest

	var env cookalong.Envelope
	if err := json.Unmarshal(recvWithTimeout(t, host.Send), &env); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if env.Type != cookalong.EventCooks {
		t.Errorf("expected %q event after a cook left, got %q", cookalong.EventCooks, env.Type)
	}
}

func TestCookAlongSessionTeardownWhenEmpty(t *testing.T) {
	manager := NewCookAlongManager()
	session := manager.CreateSession("sess-3", "recipe-1", "host-1")

	host := &CookAlongClient{Session: session, Send: make(chan []byte, 8), UserID: "host-1", Username: "chef"}
	session.Register <- host
	session.Unregister <- host

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, ok := manager.GetSession("sess-3"); !ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("empty session should have been removed from the manager")
}

func TestCookAlongHostLeaveAnnouncesEnd(t *testing.T) {
	manager := NewCookAlongManager()
	session := manager.CreateSession("sess-6", "recipe-1", "host-1")

	host := &CookAlongClient{Session: session, Send: make(chan []byte, 8), UserID: "host-1", Username: "chef"}
	guest := &CookAlongClient{Session: session, Send: make(chan []byte, 8), UserID: "guest-1", Username: "sous"}

	session.Register <- host
	session.Register <- guest

	session.Unregister <- host

	var env cookalong.Envelope
	if err := json.Unmarshal(recvWithTimeout(t, guest.Send), &env); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if env.Type != cookalong.EventSessionEnd {
		t.Errorf("expected %q event when the host leaves, got %q", cookalong.EventSessionEnd, env.Type)
	}

	// The roster update follows so remaining cooks see the host gone.
	if err := json.Unmarshal(recvWithTimeout(t, guest.Send), &env); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if env.Type != cookalong.EventCooks {
		t.Errorf("expected %q event after host departure, got %q", cookalong.EventCooks, env.Type)
	}
}

func TestCookAlongGuestLeaveIsQuiet(t *testing.T) {
	manager := NewCookAlongManager()
	session := manager.CreateSession("sess-7", "recipe-1", "host-1")

	host := &CookAlongClient{Session: session, Send: make(chan []byte, 8), UserID: "host-1", Username: "chef"}
	guest := &CookAlongClient{Session: session, Send: make(chan []byte, 8), UserID: "guest-1", Username: "sous"}

	session.Register <- host
	session.Register <- guest

	session.Unregister <- guest

	var env cookalong.Envelope
	if err := json.Unmarshal(recvWithTimeout(t, host.Send), &env); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if env.Type == cookalong.EventSessionEnd {
		t.Error("a guest leaving should not end the session")
	}
}

func TestCookAlongListSessions(t *testing.T) {
	manager := NewCookAlongManager()
	manager.CreateSession("sess-4", "recipe-9", "host-9")

	sessions := manager.ListSessions()
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].RecipeID != "recipe-9" || sessions[0].HostID != "host-9" {
		t.Errorf("unexpected session listing: %+v", sessions[0])
	}
}

func TestCookAlongListSessionsCookCount(t *testing.T) {
	manager := NewCookAlongManager()
	session := manager.CreateSession("sess-8", "recipe-1", "host-1")

	// Buffers sized so the roster updates from the churn below never fill
	// them; a full Send buffer gets a cook dropped from the hub.
	host := &CookAlongClient{Session: session, Send: make(chan []byte, 128), UserID: "host-1", Username: "chef"}
	guest := &CookAlongClient{Session: session, Send: make(chan []byte, 128), UserID: "guest-1", Username: "sous"}

	session.Register <- host
	session.Register <- guest
	// RosterPing is unbuffered, so once this send returns the hub has
	// finished processing both registrations.
	session.RosterPing <- true

	sessions := manager.ListSessions()
	if len(sessions) != 1 || sessions[0].Cooks != 2 {
		t.Fatalf("expected 1 session with 2 cooks, got %+v", sessions)
	}

	// Listing while cooks churn must be safe to call from any goroutine.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			c := &CookAlongClient{Session: session, Send: make(chan []byte, 8), UserID: "churn", Username: "churn"}
			session.Register <- c
			session.Unregister <- c
		}
	}()
	for {
		select {
		case <-done:
			return
		default:
			manager.ListSessions()
		}
	}
}

func TestCookAlongCreateSessionIdempotent(t *testing.T) {
	manager := NewCookAlongManager()
	a := manager.CreateSession("sess-5", "recipe-1", "host-1")
	b := manager.CreateSession("sess-5", "recipe-1", "host-1")
	if a != b {
		t.Error("creating the same session twice should return the existing hub")
	}
}
