// Package fixture provides an in-memory hospital API double: seeded record
// collections, echo handlers honoring the console's HTTP contract (both list
// shapes, {"error"} failure bodies), and live event broadcast on every
// mutation. It backs the hms-mockapi binary and the package tests.
package fixture

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is an opaque JSON-shaped row, mirroring how the console treats
// server records.
type Record = map[string]any

// Store is a thread-safe in-memory set of named record collections. Insertion
// order is preserved so list responses are deterministic.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]Record
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{collections: make(map[string][]Record)}
}

// Seed replaces a collection wholesale with the given records. Records
// without an id get one assigned.
func (s *Store) Seed(resource string, records []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		out = append(out, withDefaults(rec))
	}
	s.collections[resource] = out
}

// List returns a copy of the collection in insertion order.
func (s *Store) List(resource string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.collections[resource]
	out := make([]Record, len(src))
	for i, rec := range src {
		out[i] = cloneRecord(rec)
	}
	return out
}

// Insert appends a record, assigning an id and createdAt when missing, and
// returns the stored copy.
func (s *Store) Insert(resource string, rec Record) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := withDefaults(rec)
	s.collections[resource] = append(s.collections[resource], stored)
	return cloneRecord(stored)
}

// Update merges patch fields into the record with the given id.
func (s *Store) Update(resource, id string, patch Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.collections[resource] {
		if rec["id"] == id {
			for k, v := range patch {
				if k == "id" {
					continue
				}
				rec[k] = v
			}
			return cloneRecord(rec), nil
		}
	}
	return nil, fmt.Errorf("%s %s not found", resource, id)
}

// Delete removes the record with the given id.
func (s *Store) Delete(resource, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.collections[resource]
	for i, rec := range records {
		if rec["id"] == id {
			s.collections[resource] = append(records[:i], records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s %s not found", resource, id)
}

func withDefaults(rec Record) Record {
	out := cloneRecord(rec)
	if _, ok := out["id"]; !ok {
		out["id"] = uuid.New().String()
	}
	if _, ok := out["createdAt"]; !ok {
		out["createdAt"] = time.Now().UTC().Format(time.RFC3339)
	}
	return out
}

func cloneRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
