package service

import "errors"

var (
	// ErrDocumentNotFound is returned when no document exists for the given id
	ErrDocumentNotFound = errors.New("document not found")

	// ErrStageConflict is returned when an operation arrives for a document
	// whose current stage does not offer it. In-process users of the
	// typestate core never see this; it only exists at the service boundary
	// where the requested operation is data from the wire.
	ErrStageConflict = errors.New("operation not available in current stage")

	// ErrNotAuthorized is returned when the acting user may not review
	ErrNotAuthorized = errors.New("user is not authorized to review")

	// ErrSelfApproval is returned when an author attempts to approve their own document
	ErrSelfApproval = errors.New("authors cannot approve their own documents")

	// ErrNotPublished is returned when content is requested before publication
	ErrNotPublished = errors.New("content is only readable once published")

	// ErrCopyEditorUnavailable is returned when no copy editor is configured
	ErrCopyEditorUnavailable = errors.New("copy editor is not configured")
)
