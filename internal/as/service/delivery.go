package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"asnode/internal/as/callback"
	"asnode/internal/as/models"
	dErrors "asnode/pkg/domain-errors"
	"asnode/pkg/platform/sentinel"
)

// deliver POSTs the request to the business service registered for its
// service and continues with the response.
func (s *Service) deliver(ctx context.Context, req models.Request, details models.ResponseDetails) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "as.deliver")
	defer span.End()
	span.SetAttributes(attribute.String("service_id", req.ServiceID))

	url, err := s.local.ServiceCallbackURL(ctx, req.ServiceID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return OutcomeFailed, stageErr(StageDeliver, req.RequestID, err)
	}
	if url == "" {
		s.logger.ErrorContext(ctx, "callback url for service has not been set",
			"request_id", req.RequestID,
			"service_id", req.ServiceID,
		)
		return OutcomeCallbackUnset, nil
	}

	payload := models.CallbackPayload{
		RequestID:       req.RequestID,
		Namespace:       req.Namespace,
		Identifier:      req.Identifier,
		RequestParams:   req.RequestParams,
		ResponseDetails: details,
		Mode:            req.Mode,
	}
	s.logger.InfoContext(ctx, "sending callback to attribute source",
		"request_id", req.RequestID,
		"service_id", req.ServiceID,
	)

	start := time.Now()
	resp, err := s.callbacks.Post(ctx, req.RequestID, url, payload)
	s.metrics.ObserveStage(string(StageDeliver), time.Since(start))
	if errors.Is(err, callback.ErrInFlight) {
		return OutcomeDuplicate, nil
	}
	if err != nil {
		return OutcomeFailed, stageErr(StageDeliver, req.RequestID, err)
	}
	span.SetAttributes(attribute.Int("status_code", resp.StatusCode))

	return s.afterCallback(ctx, resp, models.RelayTarget{
		RPID:      req.RPID,
		RequestID: req.RequestID,
		ServiceID: req.ServiceID,
	})
}

// afterCallback handles the final callback response. 204 defers the data to
// the asynchronous data endpoint; any other status must carry {"data": ...}.
func (s *Service) afterCallback(ctx context.Context, resp *callback.Response, target models.RelayTarget) (Outcome, error) {
	if resp.StatusCode == http.StatusNoContent {
		if target.RPID == "" {
			return OutcomeFailed, stageErr(StageDeliver, target.RequestID,
				dErrors.New(dErrors.CodeMissingArguments, "no requesting party known for deferred request"))
		}
		if err := s.local.SetRPIDForRequest(ctx, target.RequestID, target.RPID); err != nil {
			return OutcomeFailed, stageErr(StageDeliver, target.RequestID, err)
		}
		s.logger.InfoContext(ctx, "attribute source will send data later", "request_id", target.RequestID)
		return OutcomeDeferred, nil
	}

	var result models.CallbackResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return OutcomeFailed, stageErr(StageParse, target.RequestID,
			dErrors.Wrap(err, dErrors.CodeParse, "cannot parse data from AS"))
	}
	if len(result.Data) == 0 || string(result.Data) == "null" {
		return OutcomeFailed, stageErr(StageParse, target.RequestID,
			dErrors.New(dErrors.CodeParse, "AS response has no data"))
	}

	s.dispatchRelay(ctx, result.Data, target)
	return OutcomeRelayed, nil
}
