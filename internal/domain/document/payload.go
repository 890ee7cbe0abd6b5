package document

import "time"

// Metadata keys written by the lifecycle itself. Callers may add their own
// keys at creation time; the engine only ever appends, except for
// MetaStatusChangedAt which is refreshed on every transition.
const (
	MetaCreatedAt        = "created_at"
	MetaSubmittedAt      = "submitted_at"
	MetaReviewedBy       = "reviewed_by"
	MetaReviewedAt       = "reviewed_at"
	MetaSecondReviewedBy = "second_reviewed_by"
	MetaSecondReviewedAt = "second_reviewed_at"
	MetaRejectedBy       = "rejected_by"
	MetaRejectionNote    = "rejection_note"
	MetaPublishedAt      = "published_at"
	MetaStatusChangedAt  = "status_changed_at"
	MetaApprovalsGot     = "approvals_got"
)

// Payload is the content carried through every lifecycle stage. Exactly one
// state variant holds a given payload at any time; transitions hand it off
// and invalidate the source variant.
type Payload struct {
	body     string
	metadata map[string]string
}

func newPayload(body string, metadata map[string]string) *Payload {
	md := make(map[string]string, len(metadata)+2)
	for k, v := range metadata {
		md[k] = v
	}
	if _, ok := md[MetaCreatedAt]; !ok {
		md[MetaCreatedAt] = now()
	}
	return &Payload{body: body, metadata: md}
}

func (p *Payload) append(text string) {
	p.body += text
}

// set records a metadata value. Only keys a transition is documented to
// update are ever passed here; nothing else is overwritten.
func (p *Payload) set(key, value string) {
	p.metadata[key] = value
}

func (p *Payload) stamp(key string) {
	ts := now()
	p.metadata[key] = ts
	p.metadata[MetaStatusChangedAt] = ts
}

// metaCopy returns a copy so introspection cannot mutate the
// payload behind the current variant's back.
func (p *Payload) metaCopy() map[string]string {
	md := make(map[string]string, len(p.metadata))
	for k, v := range p.metadata {
		md[k] = v
	}
	return md
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
