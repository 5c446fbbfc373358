package service

import "fmt"

// Outcome is the terminal state of one pass of a request through the pipeline.
type Outcome string

const (
	OutcomeBuffered           Outcome = "buffered"
	OutcomeDispatched         Outcome = "dispatched"
	OutcomeDuplicate          Outcome = "duplicate"
	OutcomeIntegrityFailed    Outcome = "dropped_integrity_failed"
	OutcomeVerificationFailed Outcome = "dropped_verification_failed"
	OutcomeCallbackUnset      Outcome = "dropped_callback_unset"
	OutcomeDeferred           Outcome = "deferred"
	OutcomeRelayed            Outcome = "relayed"
	OutcomeFailed             Outcome = "failed"
)

// Dropped reports whether the request was discarded without delivery.
func (o Outcome) Dropped() bool {
	switch o {
	case OutcomeIntegrityFailed, OutcomeVerificationFailed, OutcomeCallbackUnset:
		return true
	}
	return false
}

// Stage names where a fatal pipeline error occurred.
type Stage string

const (
	StageDecode    Stage = "decode"
	StagePending   Stage = "pending"
	StageLedger    Stage = "ledger"
	StageVerify    Stage = "verify"
	StageDeliver   Stage = "deliver"
	StageParse     Stage = "parse"
	StageSign      Stage = "sign"
	StageWriteBack Stage = "write_back"
	StageResolve   Stage = "resolve"
	StageSend      Stage = "send"
)

// StageError is a fatal error for one request.
type StageError struct {
	Stage     Stage
	RequestID string
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("request %s failed at %s: %v", e.RequestID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, requestID string, err error) *StageError {
	return &StageError{Stage: stage, RequestID: requestID, Err: err}
}
