package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"asnode/internal/as/models"
	dErrors "asnode/pkg/domain-errors"
	"asnode/pkg/platform/sentinel"
)

// dispatchRelay runs ProcessDataForRP without blocking the caller. Failures
// go to the error sink.
func (s *Service) dispatchRelay(ctx context.Context, data json.RawMessage, target models.RelayTarget) {
	ctx = context.WithoutCancel(ctx)
	s.relays.Add(1)
	go func() {
		defer s.relays.Done()
		if err := s.ProcessDataForRP(ctx, data, target); err != nil {
			var se *StageError
			if !errors.As(err, &se) {
				se = stageErr(StageSend, target.RequestID, err)
			}
			s.report(ctx, se)
		}
	}()
}

// ProcessDataForRP signs data, records the signature on the ledger and sends
// the signed data to the requesting party. Any failure is fatal for the
// request and is not retried here.
func (s *Service) ProcessDataForRP(ctx context.Context, data json.RawMessage, target models.RelayTarget) error {
	ctx, span := s.tracer.Start(ctx, "as.relay")
	defer span.End()
	span.SetAttributes(
		attribute.String("request_id", target.RequestID),
		attribute.String("service_id", target.ServiceID),
	)
	start := time.Now()
	defer func() { s.metrics.ObserveStage("relay", time.Since(start)) }()

	err := s.relay(ctx, data, target)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s *Service) relay(ctx context.Context, data json.RawMessage, target models.RelayTarget) error {
	signature, err := s.signer.Sign(data)
	if err != nil {
		return stageErr(StageSign, target.RequestID, err)
	}

	height, err := s.ledger.SignASData(ctx, models.ASDataSignature{
		ASID:      s.nodeID,
		RequestID: target.RequestID,
		Signature: signature,
		ServiceID: target.ServiceID,
	})
	if err != nil {
		return stageErr(StageWriteBack, target.RequestID, err)
	}

	rpID := target.RPID
	if rpID == "" {
		rpID, err = s.local.RPIDForRequest(ctx, target.RequestID)
		if errors.Is(err, sentinel.ErrNotFound) {
			err = dErrors.Wrap(err, dErrors.CodeNotFound, "no requesting party recorded for request")
		}
		if err != nil {
			return stageErr(StageResolve, target.RequestID, err)
		}
	}

	addr, err := s.ledger.GetMsqAddress(ctx, rpID)
	if err != nil {
		return stageErr(StageResolve, target.RequestID, err)
	}
	publicKey, err := s.ledger.GetNodePubKey(ctx, rpID)
	if err != nil {
		return stageErr(StageResolve, target.RequestID, err)
	}

	msg := models.RelayMessage{
		RequestID: target.RequestID,
		ASID:      s.nodeID,
		ServiceID: target.ServiceID,
		Signature: signature,
		Data:      data,
		Height:    height,
	}
	receivers := []models.Receiver{{IP: addr.IP, Port: addr.Port, PublicKey: publicKey}}
	if err := s.transport.Send(ctx, receivers, msg); err != nil {
		return stageErr(StageSend, target.RequestID, err)
	}

	if err := s.local.DeleteRPMappings(ctx, target.RequestID); err != nil {
		s.logger.WarnContext(ctx, "failed to clear rp mapping", "request_id", target.RequestID, "error", err)
	}
	s.logger.InfoContext(ctx, "relayed data to requesting party",
		"request_id", target.RequestID,
		"rp_id", rpID,
		"height", height,
	)
	return nil
}
