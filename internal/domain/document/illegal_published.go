//go:build illegal_transitions

package document

// This file must NOT compile. Published is terminal: no mutation, no
// further transitions.

func illegalPublishedMutation(d *Published) {
	d.AddText(" more")
}

func illegalPublishedTransition(d *Published) {
	d.RequestReview()
}
