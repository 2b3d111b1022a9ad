// Package prediction drives the career prediction form.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pathway-finder/webclient/pkg/activity"
	"github.com/pathway-finder/webclient/pkg/careerapi"
	"github.com/pathway-finder/webclient/pkg/common/logger"
	"github.com/pathway-finder/webclient/pkg/observability/metrics"
)

type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	ErrUnknownField = errors.New("unknown prediction field")
	ErrMissingField = errors.New("required field is empty")
	ErrInFlight     = errors.New("prediction already in progress")
)

const (
	FailureMessage    = "An error occurred while fetching the prediction."
	ValidationMessage = "Please fill in all required fields."
)

type Predictor interface {
	Predict(ctx context.Context, req careerapi.PredictionRequest) (careerapi.PredictionResult, error)
}

// View is a consistent copy of the controller state for rendering.
type View struct {
	State  State
	Fields map[string]string
	Result *careerapi.PredictionResult
	Error  string
	Notice string
}

func (v View) Submitting() bool {
	return v.State == StateSubmitting
}

func (v View) ButtonLabel() string {
	if v.Submitting() {
		return "Processing..."
	}
	return "Predict Career"
}

type Controller struct {
	mu     sync.Mutex
	api    Predictor
	events *activity.Emitter

	state  State
	fields map[string]string
	result *careerapi.PredictionResult
	errMsg string
	notice string
	epoch  uint64
}

func NewController(api Predictor, events *activity.Emitter) *Controller {
	c := &Controller{api: api, events: events}
	c.fields = emptyFields()
	return c
}

func emptyFields() map[string]string {
	fields := make(map[string]string, len(careerapi.PredictionFields))
	for _, name := range careerapi.PredictionFields {
		fields[name] = ""
	}
	return fields
}

// SetField updates one form field. Outcome messages are kept; a finished
// submission returns to idle.
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.fields[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	c.fields[name] = value
	if c.state == StateSucceeded || c.state == StateFailed {
		c.state = StateIdle
	}
	return nil
}

// Submit sends the current fields to the career API. It refuses to run while
// another submission is in flight or while any field is empty.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return ErrInFlight
	}
	for _, name := range careerapi.PredictionFields {
		if c.fields[name] == "" {
			c.notice = ValidationMessage
			c.mu.Unlock()
			metrics.ObservePrediction(metrics.OutcomeRejected)
			return fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}
	c.state = StateSubmitting
	c.errMsg = ""
	c.notice = ""
	req := careerapi.PredictionRequestFromFields(c.fields)
	epoch := c.epoch
	c.mu.Unlock()

	result, err := c.api.Predict(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		// The page was left while the request was in flight.
		c.state = StateIdle
		return nil
	}
	if err != nil {
		logger.Log.WithError(err).WithField("kind", careerapi.KindOf(err).String()).Warn("prediction failed")
		c.state = StateFailed
		c.errMsg = FailureMessage
		metrics.ObservePrediction(metrics.OutcomeFailed)
		c.events.Emit(activity.PredictionFailed, map[string]interface{}{"kind": careerapi.KindOf(err).String()})
		return nil
	}

	c.state = StateSucceeded
	c.result = &result
	metrics.ObservePrediction(metrics.OutcomeSucceeded)
	c.events.Emit(activity.PredictionCompleted, map[string]interface{}{
		"education":          req.Education,
		"recommended_career": result.RecommendedCareer,
	})
	return nil
}

func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields := make(map[string]string, len(c.fields))
	for k, v := range c.fields {
		fields[k] = v
	}
	view := View{State: c.state, Fields: fields, Error: c.errMsg, Notice: c.notice}
	if c.result != nil {
		result := *c.result
		view.Result = &result
	}
	return view
}

// Reset discards the form and any outcome, as when the page is left. A
// submission still in flight keeps its guard until it resolves, and its
// outcome is dropped.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.fields = emptyFields()
	c.result = nil
	c.errMsg = ""
	c.notice = ""
	if c.state != StateSubmitting {
		c.state = StateIdle
	}
}
