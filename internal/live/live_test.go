package live_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hms/console/internal/fixture"
	"github.com/hms/console/internal/live"
)

func startFixture(t *testing.T) (*fixture.Server, string) {
	t.Helper()
	store := fixture.NewStore()
	srv := fixture.NewServer(store, fixture.DefaultSpecs(), zerolog.Nop())
	ts := httptest.NewServer(srv.Echo)
	t.Cleanup(ts.Close)
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func waitForRoom(t *testing.T, srv *fixture.Server, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if srv.Hub.RoomCount(room) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %q never reached %d members", room, want)
}

func TestJoinRoomAndReceiveEvent(t *testing.T) {
	srv, wsURL := startFixture(t)

	client, err := live.Dial(context.Background(), wsURL, []string{"emergency"})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()
	waitForRoom(t, srv, "emergency", 1)

	srv.Hub.Broadcast(live.Event{
		Type:       "new-emergency",
		Topic:      "emergency",
		ResourceID: "e9",
		Timestamp:  time.Now().UTC(),
	})

	select {
	case ev := <-client.Events():
		if ev.Type != "new-emergency" {
			t.Errorf("event type = %q, want new-emergency", ev.Type)
		}
		if ev.ResourceID != "e9" {
			t.Errorf("resource id = %q, want e9", ev.ResourceID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestEventsAreScopedToJoinedRooms(t *testing.T) {
	srv, wsURL := startFixture(t)

	client, err := live.Dial(context.Background(), wsURL, []string{"dashboard"})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()
	waitForRoom(t, srv, "dashboard", 1)

	srv.Hub.Broadcast(live.Event{Type: "new-emergency", Topic: "emergency"})
	srv.Hub.Broadcast(live.Event{Type: "dashboard-update", Topic: "dashboard"})

	select {
	case ev := <-client.Events():
		if ev.Type != "dashboard-update" {
			t.Errorf("got event %q from a room the client never joined", ev.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dashboard event")
	}
}

func TestLeaveRoomStopsEvents(t *testing.T) {
	srv, wsURL := startFixture(t)

	client, err := live.Dial(context.Background(), wsURL, []string{"inventory"})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()
	waitForRoom(t, srv, "inventory", 1)

	if err := client.Leave("inventory"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	waitForRoom(t, srv, "inventory", 0)
}

func TestMutationBroadcastsHint(t *testing.T) {
	srv, wsURL := startFixture(t)

	client, err := live.Dial(context.Background(), wsURL, []string{"emergency"})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()
	waitForRoom(t, srv, "emergency", 1)

	ts := httptest.NewServer(srv.Echo)
	defer ts.Close()
	resp, err := http.Post(ts.URL+"/api/emergency", "application/json",
		strings.NewReader(`{"severity":"critical"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()

	select {
	case ev := <-client.Events():
		if ev.Type != "new-emergency" {
			t.Errorf("event type = %q, want new-emergency", ev.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mutation hint")
	}
}

func TestEventsChannelClosesOnDisconnect(t *testing.T) {
	_, wsURL := startFixture(t)

	client, err := live.Dial(context.Background(), wsURL, []string{"dashboard"})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	client.Close()

	select {
	case _, ok := <-client.Events():
		if ok {
			t.Error("expected closed events channel after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel did not close after Close")
	}
}
