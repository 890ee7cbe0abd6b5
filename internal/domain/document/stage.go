// Package document implements the editorial lifecycle as a typestate:
// each stage of a document's life is a distinct type exposing only the
// operations legal in that stage. An operation that would be illegal for
// the current stage is not a runtime error, it simply does not exist as a
// method, so the compiler rejects it.
//
// Every transition method hands the payload to the returned variant and
// invalidates its receiver; using a variant after transitioning out of it
// panics. Go cannot reject the stale use at compile time the way a
// move-checked language would, so the hand-off is the closest enforcement
// available.
package document

// Stage names recorded in persistence and logs. The persistence
// collaborator stores the name alongside the payload so Restore can
// rebuild the correct variant on load.
const (
	StageDraft        = "DRAFT"
	StageInReview     = "IN_REVIEW"
	StageSecondReview = "SECOND_REVIEW"
	StagePublished    = "PUBLISHED"
)

// Stage is the read-only introspection surface shared by every state
// variant. It exists for logging, metrics and persistence; it deliberately
// exposes no transition and no content access.
type Stage interface {
	// StageName returns the stage identifier for logging and persistence
	StageName() string

	// Meta returns a copy of the document metadata
	Meta() map[string]string
}

// New creates a document in the initial Draft stage. An empty body is the
// one construction error the engine validates at runtime.
func New(body string, metadata map[string]string) (*Draft, error) {
	if body == "" {
		return nil, ErrEmptyBody
	}
	return &Draft{p: newPayload(body, metadata)}, nil
}

// Restore rebuilds the concrete state variant recorded by the persistence
// collaborator. The stage name decides the type; the caller type-switches
// on the returned Stage to reach stage-specific operations.
func Restore(stage, body string, metadata map[string]string) (Stage, error) {
	if body == "" {
		return nil, ErrEmptyBody
	}
	p := newPayload(body, metadata)
	switch stage {
	case StageDraft:
		return &Draft{p: p}, nil
	case StageInReview:
		return &PendingReview{p: p}, nil
	case StageSecondReview:
		return &PendingSecondReview{p: p}, nil
	case StagePublished:
		return &Published{p: p}, nil
	default:
		return nil, ErrUnknownStage
	}
}
