package bizerror

import (
	"errors"
	"net/http"
)

// ErrorKind classifies workflow failures independently of the transport.
type ErrorKind string

const (
	KindNotFound     = ErrorKind("not_found")
	KindPrecondition = ErrorKind("precondition")
	KindInvalidState = ErrorKind("invalid_state")
	KindValidation   = ErrorKind("validation")
	KindConflict     = ErrorKind("conflict")
)

type ErrWorkflow struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *ErrWorkflow) Error() string {
	return e.Message
}

func (e *ErrWorkflow) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: kindStatus(e.Kind), Code: e.Code, Message: e.Message}
}

func kindStatus(kind ErrorKind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindPrecondition:
		return http.StatusPreconditionFailed
	case KindInvalidState, KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrPhaseLocked = &ErrWorkflow{Kind: KindPrecondition, Code: "phase.locked",
		Message: "phase locked, approve the previous phase first"}
	ErrPhaseInvalidState = &ErrWorkflow{Kind: KindInvalidState, Code: "phase.invalid_state",
		Message: "phase is not in a valid state for this operation"}
	ErrApprovalAlreadyPending = &ErrWorkflow{Kind: KindInvalidState, Code: "approval.already_pending",
		Message: "an approval is already pending for this phase"}
	ErrPendingApprovalNotFound = &ErrWorkflow{Kind: KindNotFound, Code: "approval.pending_not_found",
		Message: "no pending approval for this phase"}
	ErrFeedbackRequired = &ErrWorkflow{Kind: KindValidation, Code: "approval.feedback_required",
		Message: "feedback is required when requesting changes"}
	ErrConcurrentModification = &ErrWorkflow{Kind: KindConflict, Code: "common.concurrent_modification",
		Message: "record was modified concurrently, reload and retry"}
	ErrPhaseOrderConflict = &ErrWorkflow{Kind: KindConflict, Code: "phase.order_conflict",
		Message: "phase order already used in this project"}
	ErrPhaseOrderBeforeApproved = &ErrWorkflow{Kind: KindConflict, Code: "phase.order_before_approved",
		Message: "a new phase can not be placed before an approved phase"}
	ErrDeliverableInvalidTransition = &ErrWorkflow{Kind: KindInvalidState, Code: "deliverable.invalid_transition",
		Message: "deliverable status transition is not allowed"}
)

// KindOf returns the workflow kind of err, or "" when err is not a workflow error.
func KindOf(err error) ErrorKind {
	var wfErr *ErrWorkflow
	if errors.As(err, &wfErr) {
		return wfErr.Kind
	}
	return ""
}
