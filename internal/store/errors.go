package store

import "fmt"

// ValidationError reports a request that is malformed before any state
// is touched.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError reports a lookup for an unknown incident ID. Available
// lists every ID currently in the store so callers can surface it.
type NotFoundError struct {
	IncidentID string
	Available  []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("incident with ID '%s' not found", e.IncidentID)
}

// NoOpError reports an update that named an existing incident but
// carried no fields to change.
type NoOpError struct {
	IncidentID string
}

func (e *NoOpError) Error() string {
	return fmt.Sprintf("no fields provided for update of incident '%s'", e.IncidentID)
}
