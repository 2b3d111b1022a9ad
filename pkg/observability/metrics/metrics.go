package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
	OutcomeStale     = "stale"
)

type counterVec struct {
	name   string
	help   string
	order  []string
	values map[string]*atomic.Int64
}

func newCounterVec(name, help string, outcomes ...string) *counterVec {
	c := &counterVec{name: name, help: help, order: outcomes, values: make(map[string]*atomic.Int64)}
	for _, o := range outcomes {
		c.values[o] = new(atomic.Int64)
	}
	return c
}

func (c *counterVec) inc(outcome string) {
	if v, ok := c.values[outcome]; ok {
		v.Add(1)
	}
}

func (c *counterVec) write(w http.ResponseWriter) {
	fmt.Fprintf(w, "# HELP %s %s\n", c.name, c.help)
	fmt.Fprintf(w, "# TYPE %s counter\n", c.name)
	for _, o := range c.order {
		fmt.Fprintf(w, "%s{outcome=%q} %d\n", c.name, o, c.values[o].Load())
	}
}

var (
	predictions    = newCounterVec("pathway_predictions_total", "Prediction submissions by outcome.", OutcomeSucceeded, OutcomeFailed, OutcomeRejected)
	uploads        = newCounterVec("pathway_uploads_total", "Dataset uploads by outcome.", OutcomeSucceeded, OutcomeFailed, OutcomeRejected)
	retrainings    = newCounterVec("pathway_retrainings_total", "Retraining runs by outcome.", OutcomeSucceeded, OutcomeFailed, OutcomeRejected)
	visualizations = newCounterVec("pathway_visualizations_total", "Visualization fetches by outcome.", OutcomeSucceeded, OutcomeFailed, OutcomeStale)

	activeSessions atomic.Int64
)

func ObservePrediction(outcome string)    { predictions.inc(outcome) }
func ObserveUpload(outcome string)        { uploads.inc(outcome) }
func ObserveRetraining(outcome string)    { retrainings.inc(outcome) }
func ObserveVisualization(outcome string) { visualizations.inc(outcome) }

func SetActiveSessions(n int) {
	activeSessions.Store(int64(n))
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	predictions.write(w)
	uploads.write(w)
	retrainings.write(w)
	visualizations.write(w)

	fmt.Fprintf(w, "# HELP pathway_active_sessions Number of browser sessions with a live workspace.\n")
	fmt.Fprintf(w, "# TYPE pathway_active_sessions gauge\n")
	fmt.Fprintf(w, "pathway_active_sessions %d\n", activeSessions.Load())
}
