//go:build illegal_transitions

package document

// This file must NOT compile. Review stages freeze the body and still
// cannot satisfy a content read.

func illegalReviewMutation(r *PendingReview) {
	r.AddText(" more")
}

func illegalReviewRead(r *PendingReview) string {
	return r.Content()
}

func illegalSecondReviewMutation(r *PendingSecondReview) {
	r.AddText(" more")
}
