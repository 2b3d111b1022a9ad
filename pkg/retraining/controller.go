// Package retraining drives a model retrain for the file handed off by the
// upload page, showing simulated progress while the request runs.
package retraining

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/pathway-finder/webclient/pkg/activity"
	"github.com/pathway-finder/webclient/pkg/careerapi"
	"github.com/pathway-finder/webclient/pkg/common/logger"
	"github.com/pathway-finder/webclient/pkg/handoff"
	"github.com/pathway-finder/webclient/pkg/observability/metrics"
)

type State int

const (
	StateInit State = iota
	StateBlocked
	StateReady
	StateRetraining
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateBlocked:
		return "blocked"
	case StateReady:
		return "ready"
	case StateRetraining:
		return "retraining"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	MessageNoFile     = "No file uploaded. Please upload a file first."
	MessageBlocked    = "Please upload a file first."
	MessageInProgress = "Retraining in progress..."
	MessageSuccess    = "Retraining completed successfully!"
	MessageFailure    = "An error occurred during retraining. Please try again."

	// NotAvailable renders a metric the service did not return.
	NotAvailable = "N/A"

	startProgress   = 10
	progressCeiling = 90
	doneProgress    = 100

	DefaultInterval = time.Second
	DefaultStep     = 5
)

var (
	ErrBlocked  = errors.New("no uploaded file to retrain on")
	ErrInFlight = errors.New("retraining already in progress")
)

type Retrainer interface {
	Retrain(ctx context.Context, fileName string) (careerapi.Metrics, error)
}

type Options struct {
	Interval  time.Duration
	Step      int
	NewTicker TickerFunc
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Step <= 0 {
		o.Step = DefaultStep
	}
	if o.NewTicker == nil {
		o.NewTicker = NewTicker
	}
	return o
}

// MetricRow is one labelled line of the results panel.
type MetricRow struct {
	Label string
	Value string
}

// FormatMetric renders v in its shortest form, or N/A when absent.
func FormatMetric(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

type View struct {
	State    State
	FileName string
	Progress int
	Message  string
	Metrics  *careerapi.Metrics
}

func (v View) Retraining() bool {
	return v.State == StateRetraining
}

// HasFile reports whether a retrain can be offered at all.
func (v View) HasFile() bool {
	return v.FileName != ""
}

func (v View) ButtonLabel() string {
	if v.Retraining() {
		return MessageInProgress
	}
	return "Start Retraining"
}

func (v View) MetricRows() []MetricRow {
	if v.Metrics == nil {
		return nil
	}
	return []MetricRow{
		{Label: "Accuracy", Value: FormatMetric(v.Metrics.Accuracy)},
		{Label: "Precision", Value: FormatMetric(v.Metrics.Precision)},
		{Label: "Recall", Value: FormatMetric(v.Metrics.Recall)},
		{Label: "F1 Score", Value: FormatMetric(v.Metrics.F1)},
	}
}

// run is one retrain attempt. stop releases its ticker exactly once.
type run struct {
	ticker Ticker
	once   sync.Once
	done   chan struct{}
}

func (r *run) stop() {
	r.once.Do(func() {
		r.ticker.Stop()
		close(r.done)
	})
}

type Controller struct {
	mu     sync.Mutex
	api    Retrainer
	store  handoff.Store
	events *activity.Emitter
	opts   Options
	wg     sync.WaitGroup

	state    State
	fileName string
	progress int
	message  string
	metrics  *careerapi.Metrics
	current  *run
	epoch    uint64
}

func NewController(api Retrainer, store handoff.Store, events *activity.Emitter, opts Options) *Controller {
	return &Controller{api: api, store: store, events: events, opts: opts.withDefaults()}
}

// Mount starts a fresh page session by reading the handed-off file name
// once. Later hand-off writes are not observed until the next Mount.
func (c *Controller) Mount(ctx context.Context) error {
	c.Unmount()

	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	name, ok, err := c.store.Get(ctx, handoff.UploadedFileKey)

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return nil
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to read handed-off file name")
		ok = false
	}
	if !ok || name == "" {
		c.state = StateBlocked
		c.message = MessageNoFile
		return err
	}
	c.state = StateReady
	c.fileName = name
	return nil
}

// Start begins a retrain attempt and returns without waiting for it. The
// request is detached from ctx cancellation so leaving the page does not
// abort it; its outcome is discarded after Unmount.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateRetraining:
		return ErrInFlight
	case StateInit, StateBlocked:
		c.message = MessageBlocked
		metrics.ObserveRetraining(metrics.OutcomeRejected)
		return ErrBlocked
	}

	c.state = StateRetraining
	c.progress = startProgress
	c.message = MessageInProgress
	c.metrics = nil

	r := &run{ticker: c.opts.NewTicker(c.opts.Interval), done: make(chan struct{})}
	c.current = r
	epoch := c.epoch
	fileName := c.fileName
	reqCtx := context.WithoutCancel(ctx)

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		c.tick(r, epoch)
	}()
	go func() {
		defer c.wg.Done()
		result, err := c.api.Retrain(reqCtx, fileName)
		r.stop()
		c.finish(epoch, fileName, result, err)
	}()
	return nil
}

func (c *Controller) tick(r *run, epoch uint64) {
	ticks := r.ticker.C()
	for {
		select {
		case <-r.done:
			return
		case <-ticks:
			c.advance(epoch)
		}
	}
}

func (c *Controller) advance(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch || c.state != StateRetraining {
		return
	}
	if next := c.progress + c.opts.Step; next < progressCeiling {
		c.progress = next
	}
}

func (c *Controller) finish(epoch uint64, fileName string, result careerapi.Metrics, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stale := epoch != c.epoch
	if err != nil {
		logger.Log.WithError(err).WithField("file_name", fileName).Warn("retraining failed")
		metrics.ObserveRetraining(metrics.OutcomeFailed)
		c.events.Emit(activity.RetrainingFailed, map[string]interface{}{
			"file_name": fileName,
			"kind":      careerapi.KindOf(err).String(),
		})
		if !stale {
			c.state = StateFailed
			c.message = MessageFailure
			c.current = nil
		}
		return
	}

	metrics.ObserveRetraining(metrics.OutcomeSucceeded)
	c.events.Emit(activity.RetrainingCompleted, map[string]interface{}{
		"file_name": fileName,
		"accuracy":  FormatMetric(result.Accuracy),
		"precision": FormatMetric(result.Precision),
		"recall":    FormatMetric(result.Recall),
		"f1":        FormatMetric(result.F1),
	})
	if stale {
		logger.Log.WithField("file_name", fileName).Info("retraining finished after page was left")
		return
	}
	c.state = StateCompleted
	c.progress = doneProgress
	c.message = MessageSuccess
	c.metrics = &result
	c.current = nil
}

func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	return View{
		State:    c.state,
		FileName: c.fileName,
		Progress: c.progress,
		Message:  c.message,
		Metrics:  c.metrics,
	}
}

// Unmount releases the progress ticker and forgets the page session. An
// in-flight request keeps running but its outcome is ignored.
func (c *Controller) Unmount() {
	c.mu.Lock()
	r := c.current
	c.epoch++
	c.current = nil
	c.state = StateInit
	c.fileName = ""
	c.progress = 0
	c.message = ""
	c.metrics = nil
	c.mu.Unlock()

	if r != nil {
		r.stop()
	}
}

// Wait blocks until background work of every started attempt has ended.
func (c *Controller) Wait() {
	c.wg.Wait()
}
