package pending

import (
	"context"
	"sort"
	"sync"
	"time"

	"asnode/internal/as/models"
	"asnode/pkg/platform/sentinel"
)

// InMemoryStore is a process-local Store for tests and single-node development.
// It is not durable across restarts.
type InMemoryStore struct {
	mu        sync.Mutex
	messages  map[string]models.TransportMessage
	heights   map[string]int64
	buckets   map[int64]map[string]struct{}
	claims    map[string]time.Time
	retention time.Duration
	now       func() time.Time
}

// InMemoryOption configures an InMemoryStore.
type InMemoryOption func(*InMemoryStore)

// WithClock overrides the clock used for claim retention.
func WithClock(now func() time.Time) InMemoryOption {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRetention sets how long processed markers live.
func WithRetention(d time.Duration) InMemoryOption {
	return func(s *InMemoryStore) {
		if d > 0 {
			s.retention = d
		}
	}
}

func NewInMemoryStore(opts ...InMemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		messages:  make(map[string]models.TransportMessage),
		heights:   make(map[string]int64),
		buckets:   make(map[int64]map[string]struct{}),
		claims:    make(map[string]time.Time),
		retention: DefaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Put(_ context.Context, msg *models.TransportMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unfileLocked(msg.RequestID)
	s.messages[msg.RequestID] = *msg
	s.heights[msg.RequestID] = msg.Height
	bucket, ok := s.buckets[msg.Height]
	if !ok {
		bucket = make(map[string]struct{})
		s.buckets[msg.Height] = bucket
	}
	bucket[msg.RequestID] = struct{}{}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, requestID string) (*models.TransportMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &msg, nil
}

func (s *InMemoryStore) Drain(_ context.Context, from, to int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	type entry struct {
		id     string
		height int64
	}
	var entries []entry
	for height, bucket := range s.buckets {
		if height < from || height > to {
			continue
		}
		for id := range bucket {
			entries = append(entries, entry{id: id, height: height})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].height != entries[j].height {
			return entries[i].height < entries[j].height
		}
		return entries[i].id < entries[j].id
	})
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids, nil
}

func (s *InMemoryStore) Remove(_ context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unfileLocked(requestID)
	delete(s.messages, requestID)
	return nil
}

func (s *InMemoryStore) Claim(_ context.Context, requestID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if claimedAt, ok := s.claims[requestID]; ok && now.Sub(claimedAt) < s.retention {
		return false, nil
	}
	s.claims[requestID] = now
	return true, nil
}

func (s *InMemoryStore) Claimed(_ context.Context, requestID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	claimedAt, ok := s.claims[requestID]
	return ok && s.now().Sub(claimedAt) < s.retention, nil
}

func (s *InMemoryStore) unfileLocked(requestID string) {
	height, ok := s.heights[requestID]
	if !ok {
		return
	}
	delete(s.heights, requestID)
	if bucket, ok := s.buckets[height]; ok {
		delete(bucket, requestID)
		if len(bucket) == 0 {
			delete(s.buckets, height)
		}
	}
}
