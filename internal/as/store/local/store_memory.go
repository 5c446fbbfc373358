// Package local holds the node's private durable state: service callback
// URLs, deferred request to RP mappings, node callback URLs and the last
// observed ledger height.
package local

import (
	"context"
	"sync"

	"asnode/pkg/platform/sentinel"
)

// InMemoryStore implements ports.LocalStore without persistence.
type InMemoryStore struct {
	mu           sync.RWMutex
	serviceURLs  map[string]string
	rpMappings   map[string]string
	nodeURLs     map[string]string
	latestHeight int64
	hasHeight    bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		serviceURLs: make(map[string]string),
		rpMappings:  make(map[string]string),
		nodeURLs:    make(map[string]string),
	}
}

func (s *InMemoryStore) ServiceCallbackURL(_ context.Context, serviceID string) (string, error) {
	return s.lookup(s.serviceURLs, serviceID)
}

func (s *InMemoryStore) SetServiceCallbackURL(_ context.Context, serviceID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serviceURLs[serviceID] = url
	return nil
}

func (s *InMemoryStore) RPIDForRequest(_ context.Context, requestID string) (string, error) {
	return s.lookup(s.rpMappings, requestID)
}

func (s *InMemoryStore) SetRPIDForRequest(_ context.Context, requestID, rpID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rpMappings[requestID] = rpID
	return nil
}

func (s *InMemoryStore) DeleteRPMappings(_ context.Context, requestIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range requestIDs {
		delete(s.rpMappings, id)
	}
	return nil
}

func (s *InMemoryStore) NodeCallbackURL(_ context.Context, key string) (string, error) {
	return s.lookup(s.nodeURLs, key)
}

func (s *InMemoryStore) SetNodeCallbackURL(_ context.Context, key, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodeURLs[key] = url
	return nil
}

func (s *InMemoryStore) LatestHeight(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasHeight {
		return 0, sentinel.ErrNotFound
	}
	return s.latestHeight, nil
}

func (s *InMemoryStore) SetLatestHeight(_ context.Context, height int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latestHeight = height
	s.hasHeight = true
	return nil
}

func (s *InMemoryStore) lookup(m map[string]string, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := m[key]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return v, nil
}
