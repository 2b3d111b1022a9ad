// Package workspace keeps the per-browser-session page controllers and
// models page navigation as mounting and unmounting them.
package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/pathway-finder/webclient/pkg/activity"
	"github.com/pathway-finder/webclient/pkg/catalog"
	"github.com/pathway-finder/webclient/pkg/handoff"
	"github.com/pathway-finder/webclient/pkg/prediction"
	"github.com/pathway-finder/webclient/pkg/retraining"
	"github.com/pathway-finder/webclient/pkg/upload"
	"github.com/pathway-finder/webclient/pkg/visualization"
)

// Route identifies the page a session is looking at.
type Route string

const (
	RouteNone           Route = ""
	RouteHome           Route = "home"
	RoutePrediction     Route = "prediction"
	RouteUpload         Route = "upload"
	RouteRetraining     Route = "retraining"
	RouteVisualizations Route = "visualizations"
	RouteNotFound       Route = "not_found"
)

// CareerAPI is everything the page controllers need from the career service.
type CareerAPI interface {
	prediction.Predictor
	upload.Uploader
	retraining.Retrainer
	visualization.Retriever
}

// Deps are shared by every workspace.
type Deps struct {
	API        CareerAPI
	Backend    handoff.Backend
	Catalog    catalog.Catalog
	Events     *activity.Emitter
	Retraining retraining.Options
}

type Workspace struct {
	ID            string
	Prediction    *prediction.Controller
	Upload        *upload.Controller
	Retraining    *retraining.Controller
	Visualization *visualization.Controller
	HandOff       handoff.Store

	CreatedAt  time.Time
	LastAccess time.Time

	navMu sync.Mutex
	route Route
}

func newWorkspace(id string, deps Deps, now time.Time) *Workspace {
	store := deps.Backend.Session(id)
	return &Workspace{
		ID:            id,
		Prediction:    prediction.NewController(deps.API, deps.Events),
		Upload:        upload.NewController(deps.API, store, deps.Events),
		Retraining:    retraining.NewController(deps.API, store, deps.Events, deps.Retraining),
		Visualization: visualization.NewController(deps.API, deps.Catalog, deps.Events),
		HandOff:       store,
		CreatedAt:     now,
		LastAccess:    now,
	}
}

// Enter moves the session to route. Leaving a page resets its controller;
// entering the retraining page mounts it. Re-entering the current route is
// a no-op so reloads keep page state.
func (w *Workspace) Enter(ctx context.Context, route Route) error {
	w.navMu.Lock()
	defer w.navMu.Unlock()

	if route == w.route {
		return nil
	}
	w.leave(w.route)
	w.route = route

	if route == RouteRetraining {
		return w.Retraining.Mount(ctx)
	}
	return nil
}

// Route returns the page the session is currently on.
func (w *Workspace) Route() Route {
	w.navMu.Lock()
	defer w.navMu.Unlock()
	return w.route
}

func (w *Workspace) leave(route Route) {
	switch route {
	case RoutePrediction:
		w.Prediction.Reset()
	case RouteUpload:
		w.Upload.Reset()
	case RouteRetraining:
		w.Retraining.Unmount()
	case RouteVisualizations:
		w.Visualization.Reset()
	}
}

// teardown releases timers held by the workspace's controllers.
func (w *Workspace) teardown() {
	w.navMu.Lock()
	defer w.navMu.Unlock()
	w.leave(w.route)
	w.route = RouteNone
	w.Retraining.Unmount()
}
