package submit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-resty/resty/v2"
)

// Default outcome messages, used when the backend reply carries none.
const (
	DefaultSuccessMessage = "STK Push initiated successfully! Check your phone for the M-Pesa prompt."
	DefaultFailureMessage = "STK Push initiation failed. Please try again."

	pendingMessage = "Sending payment request..."
)

// ErrSubmissionInFlight is returned when Submit is called while a previous
// submission is still running. The guard is authoritative: the rejected
// call has no observable side effects.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// Outcome is the interpreted result of one submission attempt.
type Outcome struct {
	Success bool
	Message string
}

// submissionBody is the payload sent to the payment-initiation endpoint.
type submissionBody struct {
	PhoneNumber string `json:"phoneNumber"`
	Amount      int64  `json:"amount"`
}

// backendReply is the structured body the endpoint returns on any outcome.
type backendReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Controller gates, submits, and presents exactly one payment-initiation
// attempt per trigger. It owns the form's visible state: every transition
// goes through Render, so the presenter always sees a consistent view.
type Controller struct {
	endpoint  string
	http      *resty.Client
	presenter Presenter

	mu       sync.Mutex
	state    State
	inFlight bool
}

// NewController creates a controller posting to the given payment-initiation
// endpoint. presenter may be nil for headless use.
func NewController(endpoint string, presenter Presenter) *Controller {
	c := &Controller{
		endpoint:  endpoint,
		http:      resty.New(),
		presenter: presenter,
		state:     StateReady,
	}
	c.render("")
	return c
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit runs one full submission attempt from raw field text.
//
// Validation failures are reported synchronously through the presenter and
// returned as a *ValidationError; no request is made and the trigger is
// never disabled. A completed request cycle returns the interpreted Outcome
// with a nil error, whatever the outcome was. On every path the controller
// ends re-enabled and ready.
func (c *Controller) Submit(ctx context.Context, rawPhone, rawAmount string) (Outcome, error) {
	if !c.begin() {
		return Outcome{}, ErrSubmissionInFlight
	}
	defer c.end()

	// A new attempt clears whatever message the previous one left behind.
	c.render("")

	input, verr := validate(rawPhone, rawAmount)
	if verr != nil {
		// Failure message with the trigger still enabled: the controller
		// never left the ready state.
		c.presentView(Render(StateFailed, verr.Message))
		return Outcome{Success: false, Message: verr.Message}, verr
	}

	c.transition(StatePending, pendingMessage)

	// Ready-state restoration runs on every exit path past this point.
	var out Outcome
	defer func() {
		if out.Success {
			c.transition(StateSucceeded, out.Message)
		} else {
			c.transition(StateFailed, out.Message)
		}
		c.transitionSilent(StateReady)
	}()

	out = c.perform(ctx, input)
	return out, nil
}

// perform issues the single request and interprets the reply.
func (c *Controller) perform(ctx context.Context, in Input) Outcome {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(submissionBody{PhoneNumber: in.PhoneNumber, Amount: in.Amount}).
		Post(c.endpoint)
	if err != nil {
		return Outcome{Success: false, Message: fmt.Sprintf("An error occurred: %v. Please try again.", err)}
	}

	var reply backendReply
	parseErr := json.Unmarshal(resp.Body(), &reply)

	if !resp.IsSuccess() {
		// Non-2xx is a failure regardless of body content, but the body may
		// still carry a usable message.
		if parseErr == nil && reply.Message != "" {
			return Outcome{Success: false, Message: reply.Message}
		}
		return Outcome{Success: false, Message: fmt.Sprintf("Backend error: HTTP Status %d", resp.StatusCode())}
	}

	if parseErr != nil {
		return Outcome{Success: false, Message: fmt.Sprintf("An error occurred: %v. Please try again.", parseErr)}
	}

	if reply.Success {
		return Outcome{Success: true, Message: messageOrDefault(reply.Message, DefaultSuccessMessage)}
	}
	return Outcome{Success: false, Message: messageOrDefault(reply.Message, DefaultFailureMessage)}
}

// begin acquires the single-submission guard.
func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return false
	}
	c.inFlight = true
	return true
}

// end releases the single-submission guard.
func (c *Controller) end() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

// transition updates the state and renders it.
func (c *Controller) transition(state State, message string) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	c.presentView(Render(state, message))
}

// transitionSilent updates the state without re-rendering, used when the
// terminal view (enabled trigger, default label) already matches ready.
func (c *Controller) transitionSilent(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// render presents the current state with the given message.
func (c *Controller) render(message string) {
	c.presentView(Render(c.State(), message))
}

func (c *Controller) presentView(v View) {
	if c.presenter != nil {
		c.presenter.Present(v)
	}
}

func messageOrDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
