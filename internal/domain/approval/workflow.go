package approval

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Decision is an approver's verdict on a pending request
type Decision struct {
	Action     Action
	ApproverID string
	DecidedAt  time.Time
	Notes      *string
	Reason     *string
}

// Decide moves a pending review to approved or rejected and stamps the approver.
// A review that already left pending returns ErrRequestAlreadyProcessed and is
// left untouched; a rejection without a reason is a validation error.
func (r *Review) Decide(d Decision) error {
	if r.IsFinal() {
		return ErrRequestAlreadyProcessed
	}

	var next Status
	var reason *string
	switch d.Action {
	case ActionApprove:
		next = StatusApproved
	case ActionReject:
		if validator.IsEmptyPtr(d.Reason) {
			return validator.Field("reason", "reason is required when rejecting a request")
		}
		trimmed := strings.TrimSpace(*d.Reason)
		reason = &trimmed
		next = StatusRejected
	default:
		return ErrUnknownAction
	}

	approverID := d.ApproverID
	decidedAt := d.DecidedAt
	r.Status = next
	r.ApproverID = &approverID
	r.DecidedAt = &decidedAt
	r.RejectionReason = reason
	if !validator.IsEmptyPtr(d.Notes) {
		notes := strings.TrimSpace(*d.Notes)
		r.ApproverNotes = &notes
	}
	return nil
}

// IsFinal reports whether the review already left pending and can no longer change
func (r Review) IsFinal() bool {
	return r.Status != StatusPending
}
