package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"asnode/internal/as/models"
	dErrors "asnode/pkg/domain-errors"
	"asnode/pkg/platform/sentinel"
)

// UpsertService registers this node as a provider of reg.ServiceID, or
// updates the existing registration. A supplied URL is stored locally in
// either case.
func (s *Service) UpsertService(ctx context.Context, reg models.ServiceRegistration) error {
	if reg.ServiceID == "" {
		return dErrors.New(dErrors.CodeMissingArguments, "service_id is required")
	}
	nodes, err := s.ledger.GetAsNodesByServiceID(ctx, reg.ServiceID)
	if err != nil {
		return fmt.Errorf("get service providers: %w", err)
	}
	registered := false
	for _, n := range nodes {
		if n.NodeID == s.nodeID {
			registered = true
			break
		}
	}

	dest := models.ServiceDestination{
		ServiceID: reg.ServiceID,
		MinIAL:    reg.MinIAL,
		MinAAL:    reg.MinAAL,
		NodeID:    s.nodeID,
	}
	if !registered && (missing(reg.MinAAL) || missing(reg.MinIAL) || reg.URL == "") {
		return dErrors.New(dErrors.CodeMissingArguments, "service_id, min_aal, min_ial and url are required")
	}

	var g errgroup.Group
	g.Go(func() error {
		if registered {
			if err := s.ledger.UpdateServiceDestination(ctx, dest); err != nil {
				return fmt.Errorf("update service destination: %w", err)
			}
			return nil
		}
		if err := s.ledger.RegisterServiceDestination(ctx, dest); err != nil {
			return fmt.Errorf("register service destination: %w", err)
		}
		return nil
	})
	if reg.URL != "" {
		g.Go(func() error {
			if err := s.local.SetServiceCallbackURL(ctx, reg.ServiceID, reg.URL); err != nil {
				return fmt.Errorf("store service callback url: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "service upserted",
		"service_id", reg.ServiceID,
		"registered_before", registered,
	)
	return nil
}

// GetServiceDetail merges the ledger record with the local callback URL.
// It returns nil when the ledger has no record.
func (s *Service) GetServiceDetail(ctx context.Context, serviceID string) (*models.ServiceDetail, error) {
	detail, err := s.ledger.GetServiceDetail(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("get service detail: %w", err)
	}
	if detail == nil {
		return nil, nil
	}
	url, err := s.local.ServiceCallbackURL(ctx, serviceID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("get service callback url: %w", err)
	}
	merged := *detail
	merged.URL = url
	return &merged, nil
}

// missing treats an absent or zero assurance level as not supplied.
func missing(v *float64) bool {
	return v == nil || *v == 0
}
