package lifecycle

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not permitted in the current stage
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrInvalidStage is returned when a stage is not recognized
	ErrInvalidStage = errors.New("invalid stage")

	// ErrGuardFailed is returned when a guard condition rejects a transition
	ErrGuardFailed = errors.New("guard condition failed")
)
