package document

import "strconv"

// PendingApproval is the bounded-counter alternative to the fixed
// review/second-review chain: one variant carries how many approvals are
// still required instead of encoding each approval step as its own type.
// The price is a runtime branch on the counter, which is why it is only
// used where the approval count is not a small fixed number.
type PendingApproval struct {
	p        *Payload
	required int
	got      int
}

// RestoreApproval rebuilds a counter-gated review stage from persisted
// state. required is supplied by the deployment's policy, got by storage.
func RestoreApproval(body string, metadata map[string]string, required, got int) (*PendingApproval, error) {
	if body == "" {
		return nil, ErrEmptyBody
	}
	if required < 1 {
		required = 1
	}
	if got < 0 {
		got = 0
	}
	if got >= required {
		got = required - 1
	}
	return &PendingApproval{p: newPayload(body, metadata), required: required, got: got}, nil
}

// Approve records one approval. It returns the next stage: another
// *PendingApproval while approvals remain outstanding, *Published once the
// required count is reached. Callers type-switch on the result.
func (a *PendingApproval) Approve(reviewer string) Stage {
	p := a.take()
	a.got++
	p.set(MetaReviewedBy, reviewer)
	p.set(MetaApprovalsGot, strconv.Itoa(a.got))
	p.stamp(MetaReviewedAt)

	if a.got >= a.required {
		p.stamp(MetaPublishedAt)
		return &Published{p: p}
	}
	return &PendingApproval{p: p, required: a.required, got: a.got}
}

// Reject returns the document to Draft. The approval count does not
// survive a rejection; a resubmitted draft starts over.
func (a *PendingApproval) Reject(reviewer, note string) *Draft {
	p := a.take()
	p.set(MetaApprovalsGot, "0")
	return rejectToDraft(p, reviewer, note)
}

// Remaining returns how many approvals are still required before
// publication.
func (a *PendingApproval) Remaining() int {
	a.own()
	return a.required - a.got
}

// StageName implements Stage.
func (a *PendingApproval) StageName() string { return StageInReview }

// Meta implements Stage.
func (a *PendingApproval) Meta() map[string]string { return a.own().metaCopy() }

func (a *PendingApproval) own() *Payload {
	if a.p == nil {
		panic("document: PendingApproval used after it was transitioned away")
	}
	return a.p
}

func (a *PendingApproval) take() *Payload {
	p := a.own()
	a.p = nil
	return p
}
