package ledger

import (
	"context"
	"errors"

	"asnode/internal/as/models"
	"asnode/pkg/platform/sentinel"
)

// Ledger function names understood by the ledger application.
const (
	fnGetRequestDetail           = "GetRequestDetail"
	fnGetAccessorGroupID         = "GetAccessorGroupID"
	fnGetAccessorKey             = "GetAccessorKey"
	fnGetNodePublicKey           = "GetNodePublicKey"
	fnGetMsqAddress              = "GetMsqAddress"
	fnGetAsNodesByServiceID      = "GetAsNodesByServiceId"
	fnGetServiceDetail           = "GetServiceDetail"
	fnRegisterServiceDestination = "RegisterServiceDestination"
	fnUpdateServiceDestination   = "UpdateServiceDestination"
	fnSignData                   = "SignData"
)

// ASLedger implements the attribute-source ledger operations over a Client.
type ASLedger struct {
	client *Client
}

func NewASLedger(client *Client) *ASLedger {
	return &ASLedger{client: client}
}

func (l *ASLedger) GetRequestDetail(ctx context.Context, requestID string) (*models.RequestDetail, error) {
	var detail models.RequestDetail
	if err := l.client.Query(ctx, fnGetRequestDetail, map[string]string{"request_id": requestID}, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (l *ASLedger) GetAccessorGroupID(ctx context.Context, accessorID string) (string, error) {
	var out struct {
		AccessorGroupID string `json:"accessor_group_id"`
	}
	if err := l.client.Query(ctx, fnGetAccessorGroupID, map[string]string{"accessor_id": accessorID}, &out); err != nil {
		return "", err
	}
	if out.AccessorGroupID == "" {
		return "", sentinel.ErrNotFound
	}
	return out.AccessorGroupID, nil
}

func (l *ASLedger) GetAccessorKey(ctx context.Context, accessorID string) (string, error) {
	var out struct {
		AccessorPublicKey string `json:"accessor_public_key"`
	}
	if err := l.client.Query(ctx, fnGetAccessorKey, map[string]string{"accessor_id": accessorID}, &out); err != nil {
		return "", err
	}
	if out.AccessorPublicKey == "" {
		return "", sentinel.ErrNotFound
	}
	return out.AccessorPublicKey, nil
}

func (l *ASLedger) GetNodePubKey(ctx context.Context, nodeID string) (string, error) {
	var out struct {
		PublicKey string `json:"public_key"`
	}
	if err := l.client.Query(ctx, fnGetNodePublicKey, map[string]string{"node_id": nodeID}, &out); err != nil {
		return "", err
	}
	if out.PublicKey == "" {
		return "", sentinel.ErrNotFound
	}
	return out.PublicKey, nil
}

func (l *ASLedger) GetMsqAddress(ctx context.Context, nodeID string) (*models.MsqAddress, error) {
	var addr models.MsqAddress
	if err := l.client.Query(ctx, fnGetMsqAddress, map[string]string{"node_id": nodeID}, &addr); err != nil {
		return nil, err
	}
	if addr.IP == "" {
		return nil, sentinel.ErrNotFound
	}
	return &addr, nil
}

// GetAsNodesByServiceID returns the providers of serviceID. No providers is
// an empty list, not an error.
func (l *ASLedger) GetAsNodesByServiceID(ctx context.Context, serviceID string) ([]models.ServiceNode, error) {
	var out struct {
		Node []models.ServiceNode `json:"node"`
	}
	err := l.client.Query(ctx, fnGetAsNodesByServiceID, map[string]string{"service_id": serviceID}, &out)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out.Node, nil
}

func (l *ASLedger) RegisterServiceDestination(ctx context.Context, dest models.ServiceDestination) error {
	_, err := l.client.Transact(ctx, fnRegisterServiceDestination, dest)
	return err
}

func (l *ASLedger) UpdateServiceDestination(ctx context.Context, dest models.ServiceDestination) error {
	_, err := l.client.Transact(ctx, fnUpdateServiceDestination, dest)
	return err
}

// SignASData records the AS data signature and returns the commit height.
func (l *ASLedger) SignASData(ctx context.Context, sig models.ASDataSignature) (int64, error) {
	return l.client.Transact(ctx, fnSignData, sig)
}

func (l *ASLedger) GetServiceDetail(ctx context.Context, serviceID string) (*models.ServiceDetail, error) {
	var detail models.ServiceDetail
	err := l.client.Query(ctx, fnGetServiceDetail, map[string]string{"service_id": serviceID}, &detail)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &detail, nil
}
