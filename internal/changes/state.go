package changes

import (
	"github.com/aarav-aiphi/Backend/pkg/enums"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
)

// DefaultRejectionReason is stored when a reviewer rejects without a reason.
const DefaultRejectionReason = "No reason provided"

const notPendingMessage = "Pending change not found or already processed"

// Verdict is a reviewer's decision on a pending change.
type Verdict string

const (
	VerdictApprove Verdict = "approve"
	VerdictReject  Verdict = "reject"
)

// Decision is the input to Resolve.
type Decision struct {
	Verdict Verdict
	Reason  string
}

// Approve returns an approving decision.
func Approve() Decision { return Decision{Verdict: VerdictApprove} }

// Reject returns a rejecting decision with an optional reason.
func Reject(reason string) Decision { return Decision{Verdict: VerdictReject, Reason: reason} }

var transitions = map[enums.ChangeStatus]map[Verdict]enums.ChangeStatus{
	enums.ChangeStatusPending: {
		VerdictApprove: enums.ChangeStatusApproved,
		VerdictReject:  enums.ChangeStatusRejected,
	},
}

// Transition returns the status reached from `from` by verdict. Approved and
// rejected are terminal; resolving them reports the change as not found.
func Transition(from enums.ChangeStatus, verdict Verdict) (enums.ChangeStatus, error) {
	edges, ok := transitions[from]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, notPendingMessage)
	}
	to, ok := edges[verdict]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve or reject")
	}
	return to, nil
}

func (d Decision) rejectionReason() *string {
	if d.Verdict != VerdictReject {
		return nil
	}
	reason := d.Reason
	if reason == "" {
		reason = DefaultRejectionReason
	}
	return &reason
}
