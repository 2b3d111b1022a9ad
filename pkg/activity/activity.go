// Package activity publishes controller outcomes for downstream consumers.
// Publication is best effort and never blocks the page that caused it.
package activity

import (
	"context"
	"sync"
	"time"

	"github.com/pathway-finder/webclient/pkg/common/logger"
)

const (
	PredictionCompleted   = "prediction.completed"
	PredictionFailed      = "prediction.failed"
	DatasetUploaded       = "dataset.uploaded"
	DatasetUploadFailed   = "dataset.upload_failed"
	RetrainingCompleted   = "retraining.completed"
	RetrainingFailed      = "retraining.failed"
	VisualizationFetched  = "visualization.fetched"
	VisualizationFailed   = "visualization.failed"
	defaultPublishTimeout = 5 * time.Second
)

type Publisher interface {
	Publish(ctx context.Context, eventType string, data map[string]interface{}) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, map[string]interface{}) error { return nil }

// Emitter publishes events on background goroutines with a deadline. A nil
// *Emitter is valid and drops everything.
type Emitter struct {
	pub     Publisher
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewEmitter(pub Publisher, timeout time.Duration) *Emitter {
	if pub == nil {
		pub = Nop{}
	}
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &Emitter{pub: pub, timeout: timeout}
}

func (e *Emitter) Emit(eventType string, data map[string]interface{}) {
	if e == nil {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()
		if err := e.pub.Publish(ctx, eventType, data); err != nil {
			logger.Log.WithError(err).WithField("event_type", eventType).Warn("activity event dropped")
		}
	}()
}

// Wait blocks until every emitted event has been attempted.
func (e *Emitter) Wait() {
	if e == nil {
		return
	}
	e.wg.Wait()
}
