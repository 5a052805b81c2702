// Package dashboard implements the user-triggered actions of the dashboard:
// health check, open-items lookup, and the ad-hoc console query. All three
// share one state machine: Idle -> Loading -> Success|Error -> Idle.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"invoicedash/internal/backend"
)

var validate = validator.New()

// ValidationError rejects operator input before any network activity.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Action is one independently stateful dashboard action. A trigger arriving
// while a run is in flight is ignored rather than racing the first one.
type Action struct {
	Name string

	client   *backend.Client
	rec      Recorder
	inFlight atomic.Bool

	// prepare validates the raw operator input and returns the request path.
	prepare func(input string) (string, error)
}

// NewHealthAction checks backend liveness. Takes no input.
func NewHealthAction(client *backend.Client, rec Recorder) *Action {
	return &Action{
		Name:   "health",
		client: client,
		rec:    rec,
		prepare: func(string) (string, error) {
			return "/health", nil
		},
	}
}

// OpenItemsQuery carries the validated open-items input.
type OpenItemsQuery struct {
	OrganizationID int `validate:"required,gt=0"`
}

// NewOpenItemsAction lists unpaid invoices for one organization.
func NewOpenItemsAction(client *backend.Client, rec Recorder) *Action {
	return &Action{
		Name:   "open-items",
		client: client,
		rec:    rec,
		prepare: func(input string) (string, error) {
			id, err := strconv.Atoi(input)
			if err != nil {
				return "", &ValidationError{Msg: fmt.Sprintf("organization identifier %q must be an integer", input)}
			}
			if err := validate.Struct(OpenItemsQuery{OrganizationID: id}); err != nil {
				return "", &ValidationError{Msg: "organization identifier must be positive"}
			}
			return "/invoices/open?organization_id=" + strconv.Itoa(id), nil
		},
	}
}

// NewConsoleAction fetches an arbitrary operator-supplied path.
func NewConsoleAction(client *backend.Client, rec Recorder) *Action {
	return &Action{
		Name:   "console",
		client: client,
		rec:    rec,
		prepare: func(input string) (string, error) {
			if input == "" {
				return "", &ValidationError{Msg: "path is required"}
			}
			if _, err := url.Parse(input); err != nil {
				return "", &ValidationError{Msg: fmt.Sprintf("path %q is not a valid URL reference", input)}
			}
			return input, nil
		},
	}
}

// Run executes one invocation against sink. It returns false when the
// trigger was ignored because a previous run is still in flight.
// Failures are fully contained: they reach the sink and the recorder,
// never the caller.
func (a *Action) Run(ctx context.Context, input string, sink Sink) bool {
	if !a.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer a.inFlight.Store(false)

	inv := Invocation{
		ID:     uuid.NewString(),
		Action: a.Name,
	}

	path, err := a.prepare(input)
	if err != nil {
		inv.Outcome = OutcomeRejected
		inv.Detail = err.Error()
		a.record(inv)
		sink.Failure(err)
		return true
	}
	inv.Path = path

	sink.Loading(fmt.Sprintf("loading %s...", a.Name))

	start := time.Now()
	res, err := a.client.Fetch(ctx, path)
	inv.Duration = time.Since(start)

	if err != nil {
		inv.Outcome = OutcomeError
		inv.Detail = err.Error()
		var se *backend.StatusError
		if errors.As(err, &se) {
			inv.StatusCode = se.Code
		}
		a.record(inv)
		sink.Failure(err)
		return true
	}

	inv.Outcome = OutcomeOK
	inv.StatusCode = res.StatusCode
	a.record(inv)
	sink.Success(res)
	return true
}

func (a *Action) record(inv Invocation) {
	if a.rec != nil {
		a.rec.Record(inv)
	}
}
