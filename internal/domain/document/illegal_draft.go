//go:build illegal_transitions

package document

// This file must NOT compile. It exists to pin the operations that are
// absent from Draft: building the package with -tags illegal_transitions
// succeeding would mean the stage gained an operation it must not have.

func illegalDraftRead(d *Draft) string {
	// Draft has no content accessor; unpublished content cannot be read.
	return d.Content()
}

func illegalDraftApprove(d *Draft) {
	// A draft has not been submitted, so it cannot be approved.
	d.Approve("reviewer")
}
