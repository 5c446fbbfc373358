// Package models holds the attribute-source pipeline data types. JSON tags
// match the wire format shared with the other node roles.
package models

import "encoding/json"

// Mode selects how identity proofs attached to a request are checked.
type Mode int

// ModeSignatureOnly bypasses zero-knowledge verification.
const ModeSignatureOnly Mode = 1

// RequiresProof reports whether requests in this mode need full ZK verification.
func (m Mode) RequiresProof() bool {
	return m != ModeSignatureOnly
}

// PrivateProofObject is the private half of an IdP's identity proof.
type PrivateProofObject struct {
	AccessorID        string `json:"accessor_id"`
	PrivateProofValue string `json:"private_proof_value"`
	Padding           string `json:"padding"`
}

// PrivateProofEntry binds a private proof to the IdP that produced it.
type PrivateProofEntry struct {
	IdPID              string             `json:"idp_id"`
	PrivateProofObject PrivateProofObject `json:"private_proof_object"`
}

// TransportMessage is the data request notification received from the RP.
// It is never mutated after receipt.
type TransportMessage struct {
	RequestID              string              `json:"request_id"`
	Height                 int64               `json:"height"`
	RPID                   string              `json:"rp_id,omitempty"`
	ServiceID              string              `json:"service_id,omitempty"`
	Namespace              string              `json:"namespace"`
	Identifier             string              `json:"identifier"`
	RequestMessage         string              `json:"request_message"`
	Challenge              string              `json:"challenge"`
	RequestParams          json.RawMessage     `json:"request_params,omitempty"`
	Mode                   Mode                `json:"mode,omitempty"`
	PrivateProofObjectList []PrivateProofEntry `json:"private_proof_object_list"`
}

// ResponseRecord is one IdP reply to a request as recorded on the ledger.
type ResponseRecord struct {
	IdPID            string  `json:"idp_id"`
	Signature        string  `json:"signature"`
	AAL              float64 `json:"aal"`
	IAL              float64 `json:"ial"`
	IdentityProof    string  `json:"identity_proof"`
	PrivateProofHash string  `json:"private_proof_hash"`
}

// RequestDetail is the ledger's view of a request.
type RequestDetail struct {
	RequestID          string           `json:"request_id"`
	Mode               Mode             `json:"mode"`
	MinIdP             int              `json:"min_idp"`
	RequestMessageHash string           `json:"request_message_hash"`
	RequesterNodeID    string           `json:"requester_node_id,omitempty"`
	ResponseList       []ResponseRecord `json:"response_list"`
}

// ResponseFor returns the response recorded by idpID.
func (d *RequestDetail) ResponseFor(idpID string) (ResponseRecord, bool) {
	for _, r := range d.ResponseList {
		if r.IdPID == idpID {
			return r, true
		}
	}
	return ResponseRecord{}, false
}

// ResponseDetails is the reduction of a response list used by the AS callback.
type ResponseDetails struct {
	Signatures []string `json:"signatures"`
	MaxAAL     float64  `json:"max_aal"`
	MaxIAL     float64  `json:"max_ial"`
}

// Request is the logical request assembled from the transport message and
// the ledger record. The mode always comes from the ledger.
type Request struct {
	RequestID     string
	RPID          string
	ServiceID     string
	Namespace     string
	Identifier    string
	RequestParams json.RawMessage
	Mode          Mode
	MinIdP        int
}

// NewRequest merges a transport message with its ledger detail.
func NewRequest(msg *TransportMessage, detail *RequestDetail) Request {
	req := Request{
		RequestID:     msg.RequestID,
		RPID:          msg.RPID,
		ServiceID:     msg.ServiceID,
		Namespace:     msg.Namespace,
		Identifier:    msg.Identifier,
		RequestParams: msg.RequestParams,
		Mode:          msg.Mode,
	}
	if detail != nil {
		req.Mode = detail.Mode
		req.MinIdP = detail.MinIdP
		if req.RPID == "" {
			req.RPID = detail.RequesterNodeID
		}
	}
	return req
}

// CallbackPayload is the body POSTed to the attribute source's business logic.
type CallbackPayload struct {
	RequestID     string          `json:"request_id"`
	Namespace     string          `json:"namespace"`
	Identifier    string          `json:"identifier"`
	RequestParams json.RawMessage `json:"request_params,omitempty"`
	ResponseDetails
	Mode Mode `json:"mode"`
}

// CallbackResult is the JSON body returned by the business logic.
type CallbackResult struct {
	Data json.RawMessage `json:"data"`
}

// RelayTarget identifies where signed data is written back and relayed to.
type RelayTarget struct {
	RPID      string
	RequestID string
	ServiceID string
}

// RelayMessage is sent to the requesting party over the transport.
type RelayMessage struct {
	RequestID string          `json:"request_id"`
	ASID      string          `json:"as_id"`
	ServiceID string          `json:"service_id"`
	Signature string          `json:"signature"`
	Data      json.RawMessage `json:"data"`
	Height    int64           `json:"height"`
}

// ASDataSignature is the proof-of-provenance transaction committed to the ledger.
type ASDataSignature struct {
	ASID      string `json:"as_id"`
	RequestID string `json:"request_id"`
	Signature string `json:"signature"`
	ServiceID string `json:"service_id"`
}

// MsqAddress is a node's message transport address.
type MsqAddress struct {
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

// Receiver is a transport destination.
type Receiver struct {
	IP        string
	Port      int
	PublicKey string
}

// ServiceNode is an AS registered as a provider of a service.
type ServiceNode struct {
	NodeID string `json:"node_id"`
}

// ServiceDestination registers or updates this node as a service provider.
type ServiceDestination struct {
	ServiceID string   `json:"service_id"`
	MinIAL    *float64 `json:"min_ial,omitempty"`
	MinAAL    *float64 `json:"min_aal,omitempty"`
	NodeID    string   `json:"node_id,omitempty"`
}

// ServiceRegistration is the management-layer input for upserting a service.
type ServiceRegistration struct {
	ServiceID string   `json:"service_id"`
	MinIAL    *float64 `json:"min_ial,omitempty"`
	MinAAL    *float64 `json:"min_aal,omitempty"`
	URL       string   `json:"url,omitempty"`
}

// ServiceDetail merges ledger-recorded service fields with the local callback URL.
type ServiceDetail struct {
	ServiceID string  `json:"service_id"`
	MinIAL    float64 `json:"min_ial"`
	MinAAL    float64 `json:"min_aal"`
	Active    bool    `json:"active"`
	URL       string  `json:"url,omitempty"`
}

// CallbackURLs is the node's process-wide callback configuration.
type CallbackURLs struct {
	ErrorURL string `json:"error_url,omitempty"`
}

// ErrorNotification is POSTed to the error callback URL on fatal pipeline errors.
type ErrorNotification struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Stage     string `json:"stage"`
	Error     string `json:"error"`
}
