package githubfix

import (
	"fmt"
	"time"
)

// TransportError is a network-level failure that survived retries. The
// request never produced an API verdict.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("github %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RejectionError is a definitive no from the GitHub API.
type RejectionError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("github %s rejected (status %d): %s", e.Op, e.StatusCode, e.Message)
}

// BudgetExceededError means the whole operation ran past its wall-clock
// budget and was abandoned.
type BudgetExceededError struct {
	Budget time.Duration
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("operation exceeded maximum execution time of %s", e.Budget)
}
