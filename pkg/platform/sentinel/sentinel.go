package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, the ledger client and the
// transport return these (optionally wrapped) so the pipeline can decide whether
// a failure is a missing record, a conflict or an outage.
//
// For caller input failures use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
