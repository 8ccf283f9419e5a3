package sparql

import (
	"errors"
	"fmt"
	"time"
)

// ErrStore is matched by every TimeoutError and QueryError via errors.Is.
var ErrStore = errors.New("sparql: store failure")

// Reason classifies a QueryError.
type Reason string

const (
	// ReasonUnreachable means the store could not be contacted.
	ReasonUnreachable Reason = "unreachable"
	// ReasonRejected means the store answered with a non-success status,
	// typically a malformed query.
	ReasonRejected Reason = "rejected"
	// ReasonMalformedResponse means the store answered 200 with a body that
	// is not a SPARQL JSON results document.
	ReasonMalformedResponse Reason = "malformed-response"
)

// TimeoutError reports that the store did not answer within the timeout.
type TimeoutError struct {
	Endpoint string
	Timeout  time.Duration
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("sparql: %s did not respond within %s", e.Endpoint, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *TimeoutError) Is(target error) bool { return target == ErrStore }

// QueryError reports a transport failure or a rejected query.
type QueryError struct {
	Endpoint string
	Reason   Reason
	// Status is the HTTP status for ReasonRejected, 0 otherwise.
	Status int
	// Body is the (truncated) response body for ReasonRejected.
	Body string
	Err  error
}

func (e *QueryError) Error() string {
	switch e.Reason {
	case ReasonRejected:
		return fmt.Sprintf("sparql: %s rejected query: HTTP %d: %s", e.Endpoint, e.Status, e.Body)
	case ReasonUnreachable:
		return fmt.Sprintf("sparql: %s unreachable: %v", e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("sparql: %s: %s: %v", e.Endpoint, e.Reason, e.Err)
	}
}

func (e *QueryError) Unwrap() error { return e.Err }

func (e *QueryError) Is(target error) bool { return target == ErrStore }

// IsTimeout reports whether err is, or wraps, a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// ReasonOf returns the Reason of a wrapped QueryError, or "" if there is none.
func ReasonOf(err error) Reason {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Reason
	}
	return ""
}
