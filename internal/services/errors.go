package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoMatchingTransition is a runtime navigation dead-end: no outgoing
	// transition matched and no always fallback exists. Fatal for the
	// session; the session is marked stalled and state is left unchanged.
	ErrNoMatchingTransition = errors.New("no matching transition")

	// ErrInvalidForcedTransition rejects an operator override that names a
	// nonexistent transition target. Session state is unchanged.
	ErrInvalidForcedTransition = errors.New("invalid forced transition")

	// ErrAlreadyUsed rejects double consumption of a contextual question.
	ErrAlreadyUsed = errors.New("contextual question already used")

	// ErrSessionNotActive rejects navigation on completed/stalled/expired
	// sessions.
	ErrSessionNotActive = errors.New("session is not active")
)

// StructuralError carries every invariant a scenario graph violates so
// authoring tools can report all problems at once.
type StructuralError struct {
	Violations []string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("scenario graph is invalid: %s", strings.Join(e.Violations, "; "))
}
