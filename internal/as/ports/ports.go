// Package ports declares the collaborators the attribute-source pipeline
// consumes. Implementations live in internal/ledger, internal/transport and
// internal/as/store.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Ledger,Transport

import (
	"context"

	"asnode/internal/as/models"
)

// Ledger is read/write access to the replicated, height-ordered ledger.
// Lookups for absent records return sentinel.ErrNotFound, except
// GetServiceDetail which returns (nil, nil).
type Ledger interface {
	GetRequestDetail(ctx context.Context, requestID string) (*models.RequestDetail, error)
	GetAccessorGroupID(ctx context.Context, accessorID string) (string, error)
	GetAccessorKey(ctx context.Context, accessorID string) (string, error)
	GetNodePubKey(ctx context.Context, nodeID string) (string, error)
	GetMsqAddress(ctx context.Context, nodeID string) (*models.MsqAddress, error)
	GetAsNodesByServiceID(ctx context.Context, serviceID string) ([]models.ServiceNode, error)
	RegisterServiceDestination(ctx context.Context, dest models.ServiceDestination) error
	UpdateServiceDestination(ctx context.Context, dest models.ServiceDestination) error
	SignASData(ctx context.Context, sig models.ASDataSignature) (int64, error)
	GetServiceDetail(ctx context.Context, serviceID string) (*models.ServiceDetail, error)
}

// Transport delivers payloads to other nodes.
type Transport interface {
	Send(ctx context.Context, receivers []models.Receiver, payload any) error
}

// ServiceURLStore keeps the private callback URL per registered service.
type ServiceURLStore interface {
	ServiceCallbackURL(ctx context.Context, serviceID string) (string, error)
	SetServiceCallbackURL(ctx context.Context, serviceID, url string) error
}

// RPMappingStore remembers which RP asked for a request whose data is deferred.
type RPMappingStore interface {
	RPIDForRequest(ctx context.Context, requestID string) (string, error)
	SetRPIDForRequest(ctx context.Context, requestID, rpID string) error
	DeleteRPMappings(ctx context.Context, requestIDs ...string) error
}

// NodeCallbackStore persists the node's own callback URLs by key.
type NodeCallbackStore interface {
	NodeCallbackURL(ctx context.Context, key string) (string, error)
	SetNodeCallbackURL(ctx context.Context, key, url string) error
}

// HeightStore persists the last ledger height observed by the header watcher.
type HeightStore interface {
	LatestHeight(ctx context.Context) (int64, error)
	SetLatestHeight(ctx context.Context, height int64) error
}

// LocalStore is the node's durable local state.
type LocalStore interface {
	ServiceURLStore
	RPMappingStore
	NodeCallbackStore
	HeightStore
}
