package port

import (
	"context"

	"github.com/presslane/docflow/internal/domain/entity"
)

// Authorizer decides whether a user may perform review actions. The check
// runs BEFORE any transition is invoked; the lifecycle core performs no
// identity checks of its own.
type Authorizer interface {
	CanReview(ctx context.Context, userID string) bool
}

// Notifier delivers workflow notifications to the people involved in a
// document's lifecycle
type Notifier interface {
	// NotifyReviewRequested tells the reviewer pool a document is waiting
	NotifyReviewRequested(ctx context.Context, doc *entity.Document) error

	// NotifyDecision tells the author about an approval, rejection or publication
	NotifyDecision(ctx context.Context, doc *entity.Document, decision, note string) error
}

// Suggestion is one advisory copy-editing remark
type Suggestion struct {
	Span    string `json:"span"`
	Comment string `json:"comment"`
}

// CopyEditor produces advisory suggestions for a body of text. Suggestions
// never drive transitions; they are surfaced to reviewers as input.
type CopyEditor interface {
	Suggest(ctx context.Context, body string) ([]Suggestion, error)
}

// ManuscriptExtractor pulls plain text out of an uploaded manuscript file
// so it can seed a draft body
type ManuscriptExtractor interface {
	ExtractText(path string) (string, error)
}

// ReportWriter renders a document's transition history to a workbook file
type ReportWriter interface {
	WriteHistoryReport(doc *entity.Document, history []*entity.TransitionHistory, outputPath string) error
}
