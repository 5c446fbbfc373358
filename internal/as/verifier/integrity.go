package verifier

import (
	"errors"
	"fmt"

	"asnode/internal/as/models"
	"asnode/internal/crypto"
)

// ErrIntegrity marks a transport message that does not match its ledger record.
var ErrIntegrity = errors.New("request integrity check failed")

// CheckIntegrity validates that msg is the request the ledger recorded for
// msg.RequestID. It returns nil when the message is consistent and an error
// wrapping ErrIntegrity otherwise.
func CheckIntegrity(msg *models.TransportMessage, detail *models.RequestDetail) error {
	if msg == nil || detail == nil {
		return fmt.Errorf("%w: missing message or ledger record", ErrIntegrity)
	}
	switch {
	case msg.RequestID == "":
		return fmt.Errorf("%w: request_id is empty", ErrIntegrity)
	case msg.RequestMessage == "":
		return fmt.Errorf("%w: request_message is empty", ErrIntegrity)
	case msg.Namespace == "" || msg.Identifier == "":
		return fmt.Errorf("%w: namespace and identifier are required", ErrIntegrity)
	}
	if detail.RequestID != "" && detail.RequestID != msg.RequestID {
		return fmt.Errorf("%w: ledger record is for %q", ErrIntegrity, detail.RequestID)
	}
	if crypto.Hash(msg.Challenge+msg.RequestMessage) != detail.RequestMessageHash {
		return fmt.Errorf("%w: request message hash mismatch", ErrIntegrity)
	}
	if detail.RequesterNodeID != "" && msg.RPID != "" && detail.RequesterNodeID != msg.RPID {
		return fmt.Errorf("%w: rp_id does not match requester", ErrIntegrity)
	}
	return nil
}
