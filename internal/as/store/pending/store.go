// Package pending buffers transport messages that reference a ledger height
// this node has not reached yet, indexed by the height at which they become
// processable.
package pending

import (
	"context"
	"fmt"
	"time"

	"asnode/internal/as/models"
)

// DefaultRetention bounds how long a processed marker is kept.
const DefaultRetention = 24 * time.Hour

// Store is durable storage for buffered messages and the height index.
// Every mutation is durable before it returns, and a request id belongs to at
// most one height bucket at a time.
type Store interface {
	// Put stores msg under msg.RequestID and files it under msg.Height,
	// replacing any earlier bucket membership.
	Put(ctx context.Context, msg *models.TransportMessage) error
	// Get returns the buffered message or sentinel.ErrNotFound.
	Get(ctx context.Context, requestID string) (*models.TransportMessage, error)
	// Drain returns the ids buffered under heights in [from, to]. It does not
	// mutate state, so overlapping calls return each id once per call.
	Drain(ctx context.Context, from, to int64) ([]string, error)
	// Remove deletes the message and its bucket membership. Absent ids are a no-op.
	Remove(ctx context.Context, requestID string) error
	// Claim records that requestID is being processed. It returns false when
	// the id was already claimed within the retention window.
	Claim(ctx context.Context, requestID string) (bool, error)
	// Claimed reports whether requestID holds a processed marker.
	Claimed(ctx context.Context, requestID string) (bool, error)
}

// HeightFunc returns the latest ledger height known to this node.
type HeightFunc func() int64

// Queue gates inbound messages on ledger height.
type Queue struct {
	store  Store
	height HeightFunc
}

// NewQueue creates a readiness gate over store.
func NewQueue(store Store, height HeightFunc) *Queue {
	return &Queue{store: store, height: height}
}

// BufferIfNotReady persists msg when the latest known height is strictly
// below msg.Height and reports true. Otherwise it reports false and leaves
// the store untouched.
//
// A header may advance the height between the check and the write. In that
// case the message is still stored, but BufferIfNotReady reports false so
// the caller processes it immediately and removes it afterwards.
func (q *Queue) BufferIfNotReady(ctx context.Context, msg *models.TransportMessage) (bool, error) {
	if q.height() >= msg.Height {
		return false, nil
	}
	if err := q.store.Put(ctx, msg); err != nil {
		return false, fmt.Errorf("buffer message: %w", err)
	}
	if q.height() >= msg.Height {
		return false, nil
	}
	return true, nil
}

// Store exposes the underlying store.
func (q *Queue) Store() Store {
	return q.store
}
