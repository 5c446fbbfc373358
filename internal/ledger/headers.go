package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"asnode/internal/as/ports"
	"asnode/pkg/platform/sentinel"
)

const (
	defaultPollInterval = time.Second
	defaultMaxReplay    = 100
)

// HeaderHandler receives one event per observed header. missing is nil when
// no header was observed before, otherwise the number of skipped headers.
type HeaderHandler func(ctx context.Context, height int64, missing *int64) error

// HeightSource reports the ledger's latest committed height.
type HeightSource interface {
	LatestHeight(ctx context.Context) (int64, error)
}

// Watcher polls the ledger and turns height increases into header events.
// Short gaps are replayed height by height so every block is delivered with
// a zero missing count; longer gaps produce a single event carrying the count.
type Watcher struct {
	source    HeightSource
	heights   ports.HeightStore
	interval  time.Duration
	maxReplay int64
	logger    *slog.Logger

	last  int64
	known bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithMaxReplay bounds how many skipped heights are replayed one by one.
func WithMaxReplay(n int64) WatcherOption {
	return func(w *Watcher) {
		if n >= 0 {
			w.maxReplay = n
		}
	}
}

func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func NewWatcher(source HeightSource, heights ports.HeightStore, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		source:    source,
		heights:   heights,
		interval:  defaultPollInterval,
		maxReplay: defaultMaxReplay,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Restore loads the last observed height. It returns false when none was
// ever persisted.
func (w *Watcher) Restore(ctx context.Context) (int64, bool, error) {
	h, err := w.heights.LatestHeight(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		w.last, w.known = 0, false
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("restore latest height: %w", err)
	}
	w.last, w.known = h, true
	return h, true, nil
}

// Run polls until ctx is done. Restore must have been called first.
func (w *Watcher) Run(ctx context.Context, handle HeaderHandler) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		if err := w.Poll(ctx, handle); err != nil {
			w.logger.WarnContext(ctx, "ledger poll failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll checks the ledger once and emits header events for any new heights.
// A failed handler stops the advance so the same heights are retried on the
// next poll.
func (w *Watcher) Poll(ctx context.Context, handle HeaderHandler) error {
	height, err := w.source.LatestHeight(ctx)
	if err != nil {
		return err
	}
	if w.known && height <= w.last {
		return nil
	}

	if !w.known {
		return w.emit(ctx, handle, height, nil)
	}
	gap := height - w.last - 1
	if gap > w.maxReplay {
		w.logger.WarnContext(ctx, "ledger headers missed",
			"height", height,
			"last_height", w.last,
			"missing", gap,
		)
		// The gap event starts at last+1, so finalise last first.
		zero, next := int64(0), w.last+1
		if err := w.emit(ctx, handle, next, &zero); err != nil {
			return err
		}
		return w.emit(ctx, handle, height, &gap)
	}
	for h := w.last + 1; h <= height; h++ {
		zero := int64(0)
		if err := w.emit(ctx, handle, h, &zero); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) emit(ctx context.Context, handle HeaderHandler, height int64, missing *int64) error {
	if err := handle(ctx, height, missing); err != nil {
		return fmt.Errorf("handle header %d: %w", height, err)
	}
	if err := w.heights.SetLatestHeight(ctx, height); err != nil {
		return fmt.Errorf("persist latest height: %w", err)
	}
	w.last, w.known = height, true
	return nil
}
