// Package lifecycle is the runtime rendition of the editorial transition
// graph: a tagged stage enumeration plus a guarded transition table. The
// typestate package (internal/domain/document) is the authority for
// transitions; this package serves the places that only ever see a stage
// as data, such as rows loaded from storage and the HTTP layer reporting
// which actions a document currently accepts.
package lifecycle

// Stage represents an editorial lifecycle stage as data
type Stage string

const (
	StageDraft        Stage = "DRAFT"
	StageInReview     Stage = "IN_REVIEW"
	StageSecondReview Stage = "SECOND_REVIEW"
	StagePublished    Stage = "PUBLISHED"
)

var validStages = map[Stage]bool{
	StageDraft:        true,
	StageInReview:     true,
	StageSecondReview: true,
	StagePublished:    true,
}

var terminalStages = map[Stage]bool{
	StagePublished: true,
}

// IsTerminal returns true if no transition leaves the stage
func (s Stage) IsTerminal() bool {
	return terminalStages[s]
}

// String returns the string representation of the stage
func (s Stage) String() string {
	return string(s)
}

// IsValid returns true if the stage is a recognized lifecycle stage
func (s Stage) IsValid() bool {
	return validStages[s]
}
