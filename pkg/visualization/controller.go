// Package visualization shows the charts the career service renders for a
// dataset parameter.
package visualization

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pathway-finder/webclient/pkg/activity"
	"github.com/pathway-finder/webclient/pkg/careerapi"
	"github.com/pathway-finder/webclient/pkg/catalog"
	"github.com/pathway-finder/webclient/pkg/common/logger"
	"github.com/pathway-finder/webclient/pkg/observability/metrics"
)

const FailureMessage = "Failed to fetch visualization"

var ErrUnknownParameter = errors.New("unknown visualization parameter")

type Retriever interface {
	Visualization(ctx context.Context, parameter string) (careerapi.Charts, error)
}

type View struct {
	Parameters []catalog.Parameter
	Selected   string
	Loading    bool
	Charts     *careerapi.Charts
	Error      string
}

// SelectedLabel returns the display label of the selected parameter.
func (v View) SelectedLabel() string {
	for _, p := range v.Parameters {
		if p.ID == v.Selected {
			return p.Label
		}
	}
	return v.Selected
}

type Controller struct {
	mu      sync.Mutex
	api     Retriever
	catalog catalog.Catalog
	events  *activity.Emitter

	selected   string
	loading    bool
	charts     *careerapi.Charts
	err        string
	generation uint64
}

func NewController(api Retriever, cat catalog.Catalog, events *activity.Emitter) *Controller {
	return &Controller{api: api, catalog: cat, events: events}
}

// Select switches to parameter and fetches its charts. Only the most recent
// selection may change what is displayed; a slower earlier fetch that
// resolves afterwards is dropped.
func (c *Controller) Select(ctx context.Context, parameter string) error {
	if _, ok := c.catalog.Parameter(parameter); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, parameter)
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.selected = parameter
	c.charts = nil
	c.err = ""
	c.loading = true
	c.mu.Unlock()

	charts, err := c.api.Visualization(ctx, parameter)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		logger.Log.WithFields(map[string]interface{}{
			"parameter":  parameter,
			"generation": gen,
			"latest":     c.generation,
		}).Debug("dropping stale visualization response")
		metrics.ObserveVisualization(metrics.OutcomeStale)
		return nil
	}

	c.loading = false
	if err != nil {
		logger.Log.WithError(err).WithField("parameter", parameter).Warn("visualization fetch failed")
		c.err = FailureMessage
		metrics.ObserveVisualization(metrics.OutcomeFailed)
		c.events.Emit(activity.VisualizationFailed, map[string]interface{}{
			"parameter": parameter,
			"kind":      careerapi.KindOf(err).String(),
		})
		return nil
	}

	c.charts = &charts
	metrics.ObserveVisualization(metrics.OutcomeSucceeded)
	c.events.Emit(activity.VisualizationFetched, map[string]interface{}{
		"parameter": parameter,
	})
	return nil
}

func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := View{
		Parameters: c.catalog.Parameters,
		Selected:   c.selected,
		Loading:    c.loading,
		Error:      c.err,
	}
	if c.charts != nil {
		charts := *c.charts
		view.Charts = &charts
	}
	return view
}

// Reset clears the selection and invalidates any in-flight fetch.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.selected = ""
	c.loading = false
	c.charts = nil
	c.err = ""
}
