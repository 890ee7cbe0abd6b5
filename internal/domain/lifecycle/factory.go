package lifecycle

import "context"

// BuildEditorial creates a machine wired with the editorial transition
// graph, mirroring the typestate graph in internal/domain/document:
//
//	DRAFT --SUBMIT--> IN_REVIEW
//	IN_REVIEW --APPROVE--> SECOND_REVIEW
//	IN_REVIEW --REJECT--> DRAFT
//	SECOND_REVIEW --APPROVE--> PUBLISHED
//	SECOND_REVIEW --REJECT--> DRAFT
//	PUBLISHED is terminal.
//
// APPROVE is guarded against self-approval: the reviewer carried by the
// context must be present and must not be the document's author.
func BuildEditorial(initial Stage, author string) Machine {
	noSelfApproval := func(ctx context.Context) bool {
		reviewer := ReviewerFrom(ctx)
		return reviewer != "" && reviewer != author
	}

	b := NewBuilder()

	b.Configure(StageDraft).
		Permit(TriggerSubmit, StageInReview)

	b.Configure(StageInReview).
		PermitIf(TriggerApprove, StageSecondReview, noSelfApproval).
		Permit(TriggerReject, StageDraft)

	b.Configure(StageSecondReview).
		PermitIf(TriggerApprove, StagePublished, noSelfApproval).
		Permit(TriggerReject, StageDraft)

	// PUBLISHED has no outgoing transitions

	return b.Build(initial)
}
