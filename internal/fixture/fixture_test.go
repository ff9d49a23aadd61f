package fixture

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestStoreCRUD(t *testing.T) {
	s := NewStore()
	s.Seed("bills", []Record{
		{"id": "b1", "status": "paid"},
		{"id": "b2", "status": "pending"},
	})

	if got := len(s.List("bills")); got != 2 {
		t.Fatalf("len(List) = %d, want 2", got)
	}

	inserted := s.Insert("bills", Record{"status": "overdue"})
	if inserted["id"] == "" || inserted["id"] == nil {
		t.Error("Insert did not assign an id")
	}
	if inserted["createdAt"] == nil {
		t.Error("Insert did not assign createdAt")
	}

	updated, err := s.Update("bills", "b1", Record{"status": "overdue", "id": "hijack"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated["status"] != "overdue" {
		t.Errorf("status = %v, want overdue", updated["status"])
	}
	if updated["id"] != "b1" {
		t.Errorf("id = %v, patch must not change the id", updated["id"])
	}

	if _, err := s.Update("bills", "missing", Record{}); err == nil {
		t.Error("expected error updating missing record")
	}

	if err := s.Delete("bills", "b2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete("bills", "b2"); err == nil {
		t.Error("expected error deleting missing record")
	}
}

func TestStoreListReturnsCopies(t *testing.T) {
	s := NewStore()
	s.Seed("bills", []Record{{"id": "b1", "status": "paid"}})

	list := s.List("bills")
	list[0]["status"] = "mutated"

	if got := s.List("bills")[0]["status"]; got != "paid" {
		t.Errorf("store record changed through a returned copy: %v", got)
	}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	store := NewStore()
	store.Seed("bills", []Record{{"id": "b1", "status": "paid", "amount": 120.5}})
	store.Seed("emergencies", []Record{{"id": "e1", "severity": "critical"}})
	srv := NewServer(store, DefaultSpecs(), zerolog.Nop())
	ts := httptest.NewServer(srv.Echo)
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestListShapes(t *testing.T) {
	_, ts := newTestServer(t)

	// billing wraps its list under "bills".
	resp, err := http.Get(ts.URL + "/api/billing")
	if err != nil {
		t.Fatalf("GET /api/billing: %v", err)
	}
	defer resp.Body.Close()
	var wrapped map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&wrapped); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := wrapped["bills"]; !ok {
		t.Error("billing list should be wrapped under \"bills\"")
	}

	// emergency returns a bare array.
	resp2, err := http.Get(ts.URL + "/api/emergency")
	if err != nil {
		t.Fatalf("GET /api/emergency: %v", err)
	}
	defer resp2.Body.Close()
	var bare []Record
	if err := json.NewDecoder(resp2.Body).Decode(&bare); err != nil {
		t.Fatalf("emergency list should be a bare array: %v", err)
	}
	if len(bare) != 1 {
		t.Errorf("len(emergencies) = %d, want 1", len(bare))
	}
}

func TestMutationsAndErrors(t *testing.T) {
	srv, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/emergency", "application/json",
		strings.NewReader(`{"severity":"moderate","patientName":"Doe"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("POST status = %d, want 201", resp.StatusCode)
	}
	if got := len(srv.Store.List("emergencies")); got != 2 {
		t.Errorf("store has %d emergencies after create, want 2", got)
	}

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/emergency/nope", strings.NewReader(`{"severity":"low"}`))
	req.Header.Set("Content-Type", "application/json")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("PUT missing id status = %d, want 404", resp2.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp2.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["error"] == "" {
		t.Error("404 body should carry an error field")
	}
}
