// Package credential is the CredentialLookup collaborator spec.md §1
// and §4.6 declare as external to the core: the core consumes it to
// resolve a username to a password for Digest verification, but does
// not implement the storage backend (in-memory, JSON-file-cached, or
// a SQL-backed table are all out of scope per spec.md).
package credential

import (
	"context"
	"sync"
)

// Lookup resolves a username to a password within a named table,
// optionally scoped to a projection (e.g. a tenant or realm
// subdivision of the table). table and projection are opaque strings
// whose meaning is defined by the concrete backend.
type Lookup interface {
	Password(ctx context.Context, table, projection, username string) (password string, ok bool, err error)
}

// StaticLookup is an in-memory Lookup keyed by table -> projection ->
// username -> password, intended for tests and for the example binary.
// Production deployments plug in their own SQL- or file-backed Lookup.
type StaticLookup struct {
	mu   sync.RWMutex
	data map[string]map[string]map[string]string
}

// NewStaticLookup builds an empty StaticLookup.
func NewStaticLookup() *StaticLookup {
	return &StaticLookup{data: make(map[string]map[string]map[string]string)}
}

// Set registers a password for username within table/projection.
func (s *StaticLookup) Set(table, projection, username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byProjection, ok := s.data[table]
	if !ok {
		byProjection = make(map[string]map[string]string)
		s.data[table] = byProjection
	}
	byUser, ok := byProjection[projection]
	if !ok {
		byUser = make(map[string]string)
		byProjection[projection] = byUser
	}
	byUser[username] = password
}

// Password implements Lookup.
func (s *StaticLookup) Password(_ context.Context, table, projection, username string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byProjection, ok := s.data[table]
	if !ok {
		return "", false, nil
	}
	byUser, ok := byProjection[projection]
	if !ok {
		return "", false, nil
	}
	pw, ok := byUser[username]
	return pw, ok, nil
}
