package document

// PendingReview is a document awaiting its first editorial approval.
// The body is frozen: there is no AddText here, so mutating a document
// mid-review is impossible rather than merely forbidden.
type PendingReview struct {
	p *Payload
}

// Approve records the first approval and moves the document to the second
// review stage. A single approval can never publish: Published is only
// reachable through PendingSecondReview.Approve.
func (r *PendingReview) Approve(reviewer string) *PendingSecondReview {
	p := r.take()
	p.set(MetaReviewedBy, reviewer)
	p.stamp(MetaReviewedAt)
	return &PendingSecondReview{p: p}
}

// Reject returns the document to Draft so the author can revise it.
// Review metadata already recorded is preserved; the rejection is recorded
// additively.
func (r *PendingReview) Reject(reviewer, note string) *Draft {
	p := r.take()
	return rejectToDraft(p, reviewer, note)
}

// StageName implements Stage.
func (r *PendingReview) StageName() string { return StageInReview }

// Meta implements Stage.
func (r *PendingReview) Meta() map[string]string { return r.own().metaCopy() }

func (r *PendingReview) own() *Payload {
	if r.p == nil {
		panic("document: PendingReview used after it was transitioned away")
	}
	return r.p
}

func (r *PendingReview) take() *Payload {
	p := r.own()
	r.p = nil
	return p
}

// PendingSecondReview is a document that has been approved exactly once.
// It exists so the two-approval requirement is a fact about the type graph:
// no call sequence with fewer than two approvals produces a Published value.
type PendingSecondReview struct {
	p *Payload
}

// Approve records the second approval and publishes the document.
func (r *PendingSecondReview) Approve(reviewer string) *Published {
	p := r.take()
	p.set(MetaSecondReviewedBy, reviewer)
	p.stamp(MetaSecondReviewedAt)
	p.stamp(MetaPublishedAt)
	return &Published{p: p}
}

// Reject returns the document to Draft, discarding neither the first
// approval's metadata nor the rejection note.
func (r *PendingSecondReview) Reject(reviewer, note string) *Draft {
	p := r.take()
	return rejectToDraft(p, reviewer, note)
}

// StageName implements Stage.
func (r *PendingSecondReview) StageName() string { return StageSecondReview }

// Meta implements Stage.
func (r *PendingSecondReview) Meta() map[string]string { return r.own().metaCopy() }

func (r *PendingSecondReview) own() *Payload {
	if r.p == nil {
		panic("document: PendingSecondReview used after it was transitioned away")
	}
	return r.p
}

func (r *PendingSecondReview) take() *Payload {
	p := r.own()
	r.p = nil
	return p
}

func rejectToDraft(p *Payload, reviewer, note string) *Draft {
	p.set(MetaRejectedBy, reviewer)
	if note != "" {
		p.set(MetaRejectionNote, note)
	}
	p.stamp(MetaStatusChangedAt)
	return &Draft{p: p}
}
