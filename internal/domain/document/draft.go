package document

// Draft is a document being written. It is the only stage in which the
// body may be mutated, and it exposes no content read accessor: unpublished
// content cannot be read back through the engine at all.
type Draft struct {
	p *Payload
}

// AddText appends text to the draft body and returns the draft for
// chaining. The document stays in Draft.
func (d *Draft) AddText(text string) *Draft {
	d.own().append(text)
	return d
}

// RequestReview submits the draft for editorial review. The draft is
// consumed; only the returned PendingReview may be used afterwards.
func (d *Draft) RequestReview() *PendingReview {
	p := d.take()
	p.stamp(MetaSubmittedAt)
	return &PendingReview{p: p}
}

// RequestApproval submits the draft into the counter-gated review stage,
// requiring the given number of approvals before publication. This is the
// bounded-counter escape hatch for policies whose approval count is too
// large to encode as one type per stage.
func (d *Draft) RequestApproval(required int) *PendingApproval {
	if required < 1 {
		required = 1
	}
	p := d.take()
	p.stamp(MetaSubmittedAt)
	return &PendingApproval{p: p, required: required}
}

// StageName implements Stage.
func (d *Draft) StageName() string { return StageDraft }

// Meta implements Stage.
func (d *Draft) Meta() map[string]string { return d.own().metaCopy() }

func (d *Draft) own() *Payload {
	if d.p == nil {
		panic("document: Draft used after it was transitioned away")
	}
	return d.p
}

func (d *Draft) take() *Payload {
	p := d.own()
	d.p = nil
	return p
}
