// Package verifier checks a buffered request against the ledger: integrity of
// the transport message and the identity proofs produced by the IdPs.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"asnode/internal/as/models"
	"asnode/internal/crypto"
	"asnode/pkg/platform/sentinel"
)

// AccessorLedger is the subset of the ledger the verifier reads.
type AccessorLedger interface {
	GetAccessorGroupID(ctx context.Context, accessorID string) (string, error)
	GetAccessorKey(ctx context.Context, accessorID string) (string, error)
}

// EntryResult is the outcome for one private proof entry.
type EntryResult struct {
	IdPID          string
	AccessorID     string
	SignatureValid bool
	ProofValid     bool
	Reason         string
}

// Valid reports whether both checks held for the entry.
func (e EntryResult) Valid() bool {
	return e.SignatureValid && e.ProofValid
}

// Result is the aggregate verdict. Entries is for diagnostics only; callers
// must act on Valid.
type Result struct {
	Valid         bool
	Bypassed      bool
	GroupMismatch bool
	Entries       []EntryResult
}

// Verifier checks identity proofs attached to a request.
type Verifier struct {
	ledger AccessorLedger
	logger *slog.Logger
}

func New(ledger AccessorLedger, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{ledger: ledger, logger: logger}
}

// Verify evaluates msg against the ledger detail of the same request.
// Ledger read failures other than not-found are returned as errors; an absent
// accessor only invalidates its entry.
func (v *Verifier) Verify(ctx context.Context, msg *models.TransportMessage, detail *models.RequestDetail) (Result, error) {
	if detail == nil {
		return Result{}, fmt.Errorf("verify %s: missing request detail", msg.RequestID)
	}
	if !detail.Mode.RequiresProof() {
		// Signature-only mode. Response signatures are not checked here.
		return Result{Valid: true, Bypassed: true}, nil
	}
	entries := msg.PrivateProofObjectList
	if len(entries) == 0 {
		return Result{}, nil
	}

	mismatch, err := v.groupMismatch(ctx, entries)
	if err != nil {
		return Result{}, err
	}
	if mismatch {
		return Result{GroupMismatch: true}, nil
	}

	result := Result{Valid: true, Entries: make([]EntryResult, 0, len(entries))}
	for _, entry := range entries {
		er, err := v.verifyEntry(ctx, msg, detail, entry)
		if err != nil {
			return Result{}, err
		}
		if !er.Valid() {
			result.Valid = false
			v.logger.DebugContext(ctx, "proof entry invalid",
				"request_id", msg.RequestID,
				"idp_id", er.IdPID,
				"accessor_id", er.AccessorID,
				"reason", er.Reason,
			)
		}
		result.Entries = append(result.Entries, er)
	}
	return result, nil
}

// groupMismatch resolves accessor group ids in order and stops at the first
// entry that differs from the first one.
func (v *Verifier) groupMismatch(ctx context.Context, entries []models.PrivateProofEntry) (bool, error) {
	var first string
	for i, entry := range entries {
		groupID, err := v.ledger.GetAccessorGroupID(ctx, entry.PrivateProofObject.AccessorID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("get accessor group id: %w", err)
		}
		if i == 0 {
			first = groupID
			continue
		}
		if groupID != first {
			return true, nil
		}
	}
	return false, nil
}

func (v *Verifier) verifyEntry(ctx context.Context, msg *models.TransportMessage, detail *models.RequestDetail, entry models.PrivateProofEntry) (EntryResult, error) {
	proof := entry.PrivateProofObject
	er := EntryResult{IdPID: entry.IdPID, AccessorID: proof.AccessorID}

	pemKey, err := v.ledger.GetAccessorKey(ctx, proof.AccessorID)
	if errors.Is(err, sentinel.ErrNotFound) {
		er.Reason = "accessor key not found"
		return er, nil
	}
	if err != nil {
		return er, fmt.Errorf("get accessor key: %w", err)
	}
	pub, err := crypto.ParsePublicKey(pemKey)
	if err != nil {
		er.Reason = "accessor key unparsable"
		return er, nil
	}

	response, ok := detail.ResponseFor(entry.IdPID)
	if !ok {
		er.Reason = "no response recorded for idp"
		return er, nil
	}

	if err := crypto.VerifySignature(pub, []byte(msg.RequestMessage), response.Signature); err != nil {
		er.Reason = "signature invalid"
	} else {
		er.SignatureValid = true
	}

	er.ProofValid = crypto.VerifyIdentityProof(crypto.IdentityStatement{
		PublicKey:        pub,
		Challenge:        msg.Challenge,
		PrivateProof:     proof.PrivateProofValue,
		PublicProof:      response.IdentityProof,
		Namespace:        msg.Namespace,
		Identifier:       msg.Identifier,
		PrivateProofHash: response.PrivateProofHash,
		Padding:          proof.Padding,
	})
	if !er.ProofValid && er.Reason == "" {
		er.Reason = "identity proof invalid"
	}
	return er, nil
}
