package dashboard

import (
	"time"

	"invoicedash/internal/backend"
)

// Sink receives the rendered phases of one action invocation. Each
// invocation binds exactly one sink, so actions never contend over an
// output target.
type Sink interface {
	// Loading is called synchronously before the request is issued.
	Loading(message string)
	Success(res *backend.Result)
	Failure(err error)
}

// Invocation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeRejected = "rejected" // input validation failed, no request issued
)

// Invocation is the audit record of one completed action run.
type Invocation struct {
	ID         string
	Action     string
	Path       string
	StatusCode int
	Outcome    string
	Detail     string
	Duration   time.Duration
}

// Recorder persists invocation records. Recording is best effort; a failing
// recorder must never affect the action outcome.
type Recorder interface {
	Record(inv Invocation)
}
