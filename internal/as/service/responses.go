package service

import (
	"context"

	"asnode/internal/as/models"
)

// ResponseDetails reduces the ledger's response list for requestID.
func (s *Service) ResponseDetails(ctx context.Context, requestID string) (models.ResponseDetails, error) {
	detail, err := s.ledger.GetRequestDetail(ctx, requestID)
	if err != nil {
		return models.ResponseDetails{}, err
	}
	return AggregateResponses(detail.ResponseList), nil
}

// AggregateResponses collects every signature and the maximum AAL and IAL.
// The result does not depend on the order of responses.
func AggregateResponses(responses []models.ResponseRecord) models.ResponseDetails {
	details := models.ResponseDetails{Signatures: make([]string, 0, len(responses))}
	for _, r := range responses {
		details.Signatures = append(details.Signatures, r.Signature)
		if r.AAL > details.MaxAAL {
			details.MaxAAL = r.AAL
		}
		if r.IAL > details.MaxIAL {
			details.MaxIAL = r.IAL
		}
	}
	return details
}
