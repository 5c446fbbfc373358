package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"asnode/internal/as/models"
	"asnode/internal/as/verifier"
	dErrors "asnode/pkg/domain-errors"
	"asnode/pkg/platform/sentinel"
)

// BlockRange returns the inclusive range of buffered heights that become
// authoritative when a header at height arrives. A block is only final once
// the next block has been committed, so the range ends at height-1.
// missing is nil when no earlier header was ever observed.
func BlockRange(height int64, missing *int64) (from, to int64) {
	switch {
	case missing == nil:
		from = 1
	case *missing == 0:
		from = height - 1
	default:
		from = height - *missing
	}
	if from < 1 {
		from = 1
	}
	return from, height - 1
}

// HandleMessage accepts one inbound transport payload. Messages ahead of the
// ledger are buffered until HandleNewBlock reaches their height. Ready
// messages are processed in the background and the call returns
// OutcomeDispatched without waiting for the callback.
func (s *Service) HandleMessage(ctx context.Context, raw []byte) (Outcome, error) {
	var msg models.TransportMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return OutcomeFailed, dErrors.Wrap(err, dErrors.CodeParse, "decode transport message")
	}
	if msg.RequestID == "" {
		return OutcomeFailed, dErrors.New(dErrors.CodeInvalidInput, "transport message has no request_id")
	}

	claimed, err := s.pending.Claimed(ctx, msg.RequestID)
	if err != nil {
		return OutcomeFailed, stageErr(StagePending, msg.RequestID, err)
	}
	if claimed {
		s.finish(ctx, msg.RequestID, OutcomeDuplicate, nil)
		return OutcomeDuplicate, nil
	}

	buffered, err := s.queue.BufferIfNotReady(ctx, &msg)
	if err != nil {
		return OutcomeFailed, stageErr(StagePending, msg.RequestID, err)
	}
	if buffered {
		s.metrics.IncBuffered()
		s.logger.DebugContext(ctx, "buffered message until ledger catches up",
			"request_id", msg.RequestID,
			"height", msg.Height,
			"latest_height", s.LatestHeight(),
		)
		return OutcomeBuffered, nil
	}

	s.dispatch(ctx, func(ctx context.Context) {
		outcome, err := s.process(ctx, &msg)
		// The message may have been stored while the height advanced.
		if rerr := s.pending.Remove(ctx, msg.RequestID); rerr != nil {
			s.logger.WarnContext(ctx, "failed to remove pending message", "request_id", msg.RequestID, "error", rerr)
		}
		s.finish(ctx, msg.RequestID, outcome, err)
	})
	return OutcomeDispatched, nil
}

// HandleNewBlock drains every request buffered for the heights finalised by
// a new header and hands each one to a background worker. It returns once
// the drain is done. Each drained request is removed from the pending store
// whatever its outcome.
func (s *Service) HandleNewBlock(ctx context.Context, height int64, missing *int64) error {
	s.ObserveHeight(height)
	from, to := BlockRange(height, missing)
	if to < from {
		return nil
	}

	ids, err := s.pending.Drain(ctx, from, to)
	if err != nil {
		return stageErr(StagePending, "", err)
	}
	s.metrics.ObserveDrained(len(ids))
	s.logger.DebugContext(ctx, "draining pending requests",
		"height", height,
		"from_height", from,
		"to_height", to,
		"count", len(ids),
	)

	for _, id := range ids {
		s.dispatch(ctx, func(ctx context.Context) {
			s.processBuffered(ctx, id)
		})
	}
	return nil
}

// dispatch runs fn on the tracked worker group, detached from ctx
// cancellation. Wait joins it.
func (s *Service) dispatch(ctx context.Context, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	s.work.Go(func() error {
		fn(ctx)
		return nil
	})
}

func (s *Service) processBuffered(ctx context.Context, requestID string) Outcome {
	var (
		outcome Outcome
		err     error
	)
	msg, gerr := s.pending.Get(ctx, requestID)
	switch {
	case errors.Is(gerr, sentinel.ErrNotFound):
		outcome = OutcomeDuplicate
	case gerr != nil:
		outcome, err = OutcomeFailed, stageErr(StagePending, requestID, gerr)
	default:
		outcome, err = s.process(ctx, msg)
	}
	if rerr := s.pending.Remove(ctx, requestID); rerr != nil {
		s.logger.WarnContext(ctx, "failed to remove pending message", "request_id", requestID, "error", rerr)
	}
	s.finish(ctx, requestID, outcome, err)
	return outcome
}

// process runs integrity, verification and delivery for a ready message.
// The ledger record is read once and shared by every step.
func (s *Service) process(ctx context.Context, msg *models.TransportMessage) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "as.process", trace.WithAttributes(
		attribute.String("request_id", msg.RequestID),
		attribute.Int64("height", msg.Height),
	))
	defer span.End()

	first, err := s.pending.Claim(ctx, msg.RequestID)
	if err != nil {
		return OutcomeFailed, stageErr(StagePending, msg.RequestID, err)
	}
	if !first {
		return OutcomeDuplicate, nil
	}

	detail, err := s.ledger.GetRequestDetail(ctx, msg.RequestID)
	if errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "request not recorded on ledger, dropping", "request_id", msg.RequestID)
		return OutcomeIntegrityFailed, nil
	}
	if err != nil {
		return OutcomeFailed, stageErr(StageLedger, msg.RequestID, err)
	}

	if err := verifier.CheckIntegrity(msg, detail); err != nil {
		s.logger.WarnContext(ctx, "request integrity check failed, dropping",
			"request_id", msg.RequestID,
			"error", err,
		)
		return OutcomeIntegrityFailed, nil
	}

	start := time.Now()
	result, err := s.verifier.Verify(ctx, msg, detail)
	s.metrics.ObserveStage(string(StageVerify), time.Since(start))
	if err != nil {
		return OutcomeFailed, stageErr(StageVerify, msg.RequestID, err)
	}
	span.SetAttributes(attribute.Bool("bypassed", result.Bypassed))
	if !result.Valid {
		s.logger.WarnContext(ctx, "identity proof verification failed, dropping",
			"request_id", msg.RequestID,
			"group_mismatch", result.GroupMismatch,
			"entries", len(result.Entries),
		)
		return OutcomeVerificationFailed, nil
	}

	details := AggregateResponses(detail.ResponseList)
	return s.deliver(ctx, models.NewRequest(msg, detail), details)
}

// finish records the outcome and routes fatal errors to the error sink.
func (s *Service) finish(ctx context.Context, requestID string, outcome Outcome, err error) {
	s.metrics.IncrementOutcome(string(outcome))
	if s.onOutcome != nil {
		s.onOutcome(requestID, outcome, err)
	}
	span := trace.SpanFromContext(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		var se *StageError
		if !errors.As(err, &se) {
			se = stageErr(StagePending, requestID, err)
		}
		s.report(ctx, se)
		return
	}
	s.logger.DebugContext(ctx, "request pass finished",
		"request_id", requestID,
		"outcome", string(outcome),
	)
}
