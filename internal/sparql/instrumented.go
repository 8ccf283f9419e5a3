package sparql

import (
	"context"
	"errors"
	"time"
)

// Outcome labels reported by Instrumented.
const (
	OutcomeOK          = "ok"
	OutcomeTimeout     = "timeout"
	OutcomeUnreachable = "unreachable"
	OutcomeRejected    = "rejected"
	OutcomeMalformed   = "malformed"
	OutcomeCanceled    = "canceled"
)

// ObserveFunc receives the outcome and latency of one query.
type ObserveFunc func(outcome string, elapsed time.Duration)

type instrumented struct {
	next    Client
	observe ObserveFunc
}

// Instrumented wraps next so that every Select reports its outcome to observe.
func Instrumented(next Client, observe ObserveFunc) Client {
	return &instrumented{next: next, observe: observe}
}

func (c *instrumented) Select(ctx context.Context, queryText string, timeout time.Duration) ([]Row, error) {
	start := time.Now()
	rows, err := c.next.Select(ctx, queryText, timeout)
	c.observe(Outcome(err), time.Since(start))
	return rows, err
}

// Outcome maps a Select error to its outcome label.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if IsTimeout(err) {
		return OutcomeTimeout
	}
	switch ReasonOf(err) {
	case ReasonUnreachable:
		return OutcomeUnreachable
	case ReasonRejected:
		return OutcomeRejected
	case ReasonMalformedResponse:
		return OutcomeMalformed
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return OutcomeCanceled
	}
	return OutcomeUnreachable
}
