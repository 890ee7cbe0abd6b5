package document

import "errors"

var (
	// ErrEmptyBody is returned when a document is created without content
	ErrEmptyBody = errors.New("document body cannot be empty")

	// ErrUnknownStage is returned when restoring from an unrecognized stage name
	ErrUnknownStage = errors.New("unknown lifecycle stage")
)
