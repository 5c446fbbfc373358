package ledger

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asnode/internal/as/store/local"
)

type stubHeights struct{ h atomic.Int64 }

func (s *stubHeights) LatestHeight(context.Context) (int64, error) { return s.h.Load(), nil }

type headerEvent struct {
	height  int64
	missing *int64
}

func record(events *[]headerEvent) HeaderHandler {
	return func(_ context.Context, height int64, missing *int64) error {
		*events = append(*events, headerEvent{height: height, missing: missing})
		return nil
	}
}

func TestWatcherPoll(t *testing.T) {
	ctx := context.Background()

	t.Run("first header carries no missing count", func(t *testing.T) {
		src := &stubHeights{}
		src.h.Store(40)
		store := local.NewInMemoryStore()
		w := NewWatcher(src, store)
		_, known, err := w.Restore(ctx)
		require.NoError(t, err)
		assert.False(t, known)

		var events []headerEvent
		require.NoError(t, w.Poll(ctx, record(&events)))
		require.Len(t, events, 1)
		assert.Equal(t, int64(40), events[0].height)
		assert.Nil(t, events[0].missing)

		persisted, err := store.LatestHeight(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(40), persisted)
	})

	t.Run("short gaps are replayed block by block", func(t *testing.T) {
		src := &stubHeights{}
		store := local.NewInMemoryStore()
		require.NoError(t, store.SetLatestHeight(ctx, 10))
		w := NewWatcher(src, store)
		_, _, err := w.Restore(ctx)
		require.NoError(t, err)

		src.h.Store(13)
		var events []headerEvent
		require.NoError(t, w.Poll(ctx, record(&events)))
		require.Len(t, events, 3)
		for i, e := range events {
			assert.Equal(t, int64(11+i), e.height)
			require.NotNil(t, e.missing)
			assert.Zero(t, *e.missing)
		}

		events = nil
		require.NoError(t, w.Poll(ctx, record(&events)))
		assert.Empty(t, events, "no event without a new height")
	})

	t.Run("long gaps finalise the last height then report the missing count", func(t *testing.T) {
		src := &stubHeights{}
		store := local.NewInMemoryStore()
		require.NoError(t, store.SetLatestHeight(ctx, 10))
		w := NewWatcher(src, store, WithMaxReplay(2))
		_, _, err := w.Restore(ctx)
		require.NoError(t, err)

		src.h.Store(20)
		var events []headerEvent
		require.NoError(t, w.Poll(ctx, record(&events)))
		require.Len(t, events, 2)

		assert.Equal(t, int64(11), events[0].height)
		require.NotNil(t, events[0].missing)
		assert.Zero(t, *events[0].missing)

		assert.Equal(t, int64(20), events[1].height)
		require.NotNil(t, events[1].missing)
		assert.Equal(t, int64(9), *events[1].missing)

		persisted, err := store.LatestHeight(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(20), persisted)
	})

	t.Run("failed handler is retried on the next poll", func(t *testing.T) {
		src := &stubHeights{}
		store := local.NewInMemoryStore()
		require.NoError(t, store.SetLatestHeight(ctx, 10))
		w := NewWatcher(src, store)
		_, _, err := w.Restore(ctx)
		require.NoError(t, err)
		src.h.Store(11)

		fail := func(context.Context, int64, *int64) error { return errors.New("store down") }
		require.Error(t, w.Poll(ctx, fail))

		var events []headerEvent
		require.NoError(t, w.Poll(ctx, record(&events)))
		require.Len(t, events, 1)
		assert.Equal(t, int64(11), events[0].height)
	})
}

func TestWatcherAgainstLedgerStatus(t *testing.T) {
	_, srv := newFakeLedger(t)
	w := NewWatcher(New(srv.URL), local.NewInMemoryStore())

	var events []headerEvent
	require.NoError(t, w.Poll(context.Background(), record(&events)))
	require.Len(t, events, 1)
	assert.Equal(t, int64(5), events[0].height)
}
