// Package upload validates and sends dataset files, handing the uploaded
// file name to the retraining page through the session hand-off store.
package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/pathway-finder/webclient/pkg/activity"
	"github.com/pathway-finder/webclient/pkg/careerapi"
	"github.com/pathway-finder/webclient/pkg/common/logger"
	"github.com/pathway-finder/webclient/pkg/handoff"
	"github.com/pathway-finder/webclient/pkg/observability/metrics"
)

type State int

const (
	StateNoFile State = iota
	StateSelected
	StateUploading
	StateUploaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateNoFile:
		return "no_file"
	case StateSelected:
		return "selected"
	case StateUploading:
		return "uploading"
	case StateUploaded:
		return "uploaded"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

const (
	MessageNoFile      = "Please select a CSV file first"
	MessageNotCSV      = "Only CSV files are accepted"
	MessageUploading   = "Uploading..."
	MessageSuccess     = "File uploaded successfully!"
	MessageServerError = "Error uploading file. Please try again."
	MessageError       = "An error occurred. Please try again."

	csvExtension = ".csv"
)

var (
	ErrNoFile   = errors.New("no file selected")
	ErrNotCSV   = errors.New("file is not a CSV")
	ErrInFlight = errors.New("upload already in progress")
)

type Uploader interface {
	Upload(ctx context.Context, fileName string, content io.Reader) error
}

// File is a selected dataset. Content is dropped once an upload succeeds.
type File struct {
	Name    string
	Content []byte
}

// IsCSV reports whether name carries the .csv extension. The check is case
// sensitive: "DATA.CSV" is rejected.
func IsCSV(name string) bool {
	return strings.HasSuffix(name, csvExtension)
}

type View struct {
	State    State
	FileName string
	Message  string
}

func (v View) Uploading() bool {
	return v.State == StateUploading
}

// CanUpload reports whether the upload control should be enabled.
func (v View) CanUpload() bool {
	return v.FileName != "" && !v.Uploading()
}

func (v View) ButtonLabel() string {
	if v.Uploading() {
		return "Uploading..."
	}
	return "Upload"
}

// OfferRetraining reports whether the page should link to retraining.
func (v View) OfferRetraining() bool {
	return v.State == StateUploaded
}

type Controller struct {
	mu     sync.Mutex
	api    Uploader
	store  handoff.Store
	events *activity.Emitter

	state   State
	file    *File
	message string
	epoch   uint64
}

func NewController(api Uploader, store handoff.Store, events *activity.Emitter) *Controller {
	return &Controller{api: api, store: store, events: events}
}

// Select replaces the chosen file and clears any previous message.
func (c *Controller) Select(file File) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.file = &file
	c.message = ""
	if c.state != StateUploading {
		c.state = StateSelected
	}
}

// Deselect drops the chosen file, as when a form is posted without one.
func (c *Controller) Deselect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.file = nil
	c.message = ""
	if c.state != StateUploading {
		c.state = StateNoFile
	}
}

// Upload validates the selected file and sends it. Validation failures set
// the page message and return an error without contacting the service;
// service failures are reported through the view only.
func (c *Controller) Upload(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateUploading {
		c.mu.Unlock()
		return ErrInFlight
	}
	if c.file == nil {
		c.message = MessageNoFile
		c.mu.Unlock()
		metrics.ObserveUpload(metrics.OutcomeRejected)
		return ErrNoFile
	}
	if !IsCSV(c.file.Name) {
		c.message = MessageNotCSV
		c.mu.Unlock()
		metrics.ObserveUpload(metrics.OutcomeRejected)
		return ErrNotCSV
	}
	file := *c.file
	epoch := c.epoch
	c.state = StateUploading
	c.message = MessageUploading
	c.mu.Unlock()

	err := c.api.Upload(ctx, file.Name, bytes.NewReader(file.Content))
	if err == nil {
		err = c.store.Set(ctx, handoff.UploadedFileKey, file.Name)
		if err != nil {
			logger.Log.WithError(err).Error("failed to hand off uploaded file name")
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	left := epoch != c.epoch
	if left {
		// The page was left mid-upload; only the hand-off survives.
		c.state = StateNoFile
		if c.file != nil {
			c.state = StateSelected
		}
	}
	if err != nil {
		logger.Log.WithError(err).WithField("file_name", file.Name).Warn("dataset upload failed")
		if !left {
			c.state = StateError
			c.message = MessageError
			if careerapi.KindOf(err) == careerapi.KindStatus {
				c.message = MessageServerError
			}
		}
		metrics.ObserveUpload(metrics.OutcomeFailed)
		c.events.Emit(activity.DatasetUploadFailed, map[string]interface{}{
			"file_name": file.Name,
			"kind":      careerapi.KindOf(err).String(),
		})
		return nil
	}

	if !left {
		c.state = StateUploaded
		c.message = MessageSuccess
		if c.file != nil && c.file.Name == file.Name {
			c.file = &File{Name: file.Name}
		}
	}
	metrics.ObserveUpload(metrics.OutcomeSucceeded)
	c.events.Emit(activity.DatasetUploaded, map[string]interface{}{
		"file_name":  file.Name,
		"size_bytes": len(file.Content),
	})
	return nil
}

func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := View{State: c.state, Message: c.message}
	if c.file != nil {
		view.FileName = c.file.Name
	}
	return view
}

// Reset forgets the selected file and message, as when the page is left.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.file = nil
	c.message = ""
	if c.state != StateUploading {
		c.state = StateNoFile
	}
}
