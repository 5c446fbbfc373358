package service

import (
	"context"
	"log/slog"

	"asnode/internal/as/metrics"
	"asnode/internal/as/models"
)

// errorSink consumes fatal request errors off the pipeline's hot path.
type errorSink struct {
	inbox   <-chan *StageError
	notify  func(ctx context.Context, se *StageError)
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func (w *errorSink) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case se := <-w.inbox:
			w.handle(ctx, se)
		}
	}
}

func (w *errorSink) handle(ctx context.Context, se *StageError) {
	w.metrics.IncrementStageError(string(se.Stage))
	w.logger.ErrorContext(ctx, "request pipeline failed",
		"request_id", se.RequestID,
		"stage", string(se.Stage),
		"error", se.Err,
	)
	w.notify(ctx, se)
}

// report hands se to the sink. When the sink is saturated the error is
// handled inline so nothing is dropped.
func (s *Service) report(ctx context.Context, se *StageError) {
	select {
	case s.errs <- se:
	default:
		(&errorSink{notify: s.notifyError, logger: s.logger, metrics: s.metrics}).handle(ctx, se)
	}
}

// notifyError POSTs se to the configured error URL, once, best effort.
func (s *Service) notifyError(ctx context.Context, se *StageError) {
	if s.urls == nil || s.callbacks == nil {
		return
	}
	url := s.urls.Get().ErrorURL
	if url == "" {
		return
	}
	body := models.ErrorNotification{
		Type:      "error",
		RequestID: se.RequestID,
		Stage:     string(se.Stage),
		Error:     se.Err.Error(),
	}
	if err := s.callbacks.Notify(ctx, url, body); err != nil {
		s.logger.WarnContext(ctx, "failed to notify error callback",
			"request_id", se.RequestID,
			"error", err,
		)
	}
}
