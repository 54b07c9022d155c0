package services

import "errors"

var (
	// ErrNoActiveSnapshot is returned when an undo is attempted and the owner
	// has no active recommendation.
	ErrNoActiveSnapshot = errors.New("no active recommendation snapshot")
	// ErrNoPriorVersion is returned when an undo is attempted at the root of
	// the version chain.
	ErrNoPriorVersion = errors.New("no prior recommendation version")
	// ErrBatchNotFound is returned when an undo targets an unknown batch id.
	ErrBatchNotFound = errors.New("mutation batch not found")
	// ErrRegenerationInProgress is returned when another session of the same
	// owner holds the regeneration lock.
	ErrRegenerationInProgress = errors.New("regeneration already in progress")

	// ErrAdvisorUnavailable wraps upstream model failures so handlers can map
	// them to a gateway error instead of a generic 500.
	ErrAdvisorUnavailable = errors.New("recommendation advisor unavailable")

	ErrPipeNotFound  = errors.New("pipe not found")
	ErrBlendNotFound = errors.New("blend not found")
)
