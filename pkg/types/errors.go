package types

import "errors"

var (
	// ErrUnknownFacet is returned when a token has no entry in the vocabulary.
	ErrUnknownFacet = errors.New("unknown facet")
	// ErrInvalidFacetValue is returned when a categorical value is outside the
	// closed vocabulary or a range bound is not a positive integer. The
	// mutation is rejected and state is left unchanged.
	ErrInvalidFacetValue = errors.New("invalid facet value")
	// ErrHierarchyUnavailable means the hierarchy store could not be reached.
	// Callers must not treat this as "no such category".
	ErrHierarchyUnavailable = errors.New("hierarchy store unavailable")
	// ErrNotFound is the shared not-found sentinel for store lookups.
	ErrNotFound = errors.New("not found")
)
