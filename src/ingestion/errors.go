package ingestion

import "fmt"

// FetchError is the failure of one symbol. It never aborts the other
// symbols of a cycle.
type FetchError struct {
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FailurePolicy decides what Run does when a whole cycle fails, e.g.
// because the cache or the store is unreachable, or the cycle panicked.
type FailurePolicy int

const (
	// ContinueOnFailure logs the failure and polls again after the usual
	// interval. There is no other backoff.
	ContinueOnFailure FailurePolicy = iota
	// StopOnFailure makes Run return the error.
	StopOnFailure
)

func (p FailurePolicy) String() string {
	switch p {
	case ContinueOnFailure:
		return "continue"
	case StopOnFailure:
		return "stop"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}
