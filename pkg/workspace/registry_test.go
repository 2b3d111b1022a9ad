package workspace

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pathway-finder/webclient/pkg/careerapi"
	"github.com/pathway-finder/webclient/pkg/catalog"
	"github.com/pathway-finder/webclient/pkg/handoff"
	"github.com/pathway-finder/webclient/pkg/retraining"
)

type stubAPI struct {
	release chan struct{}
}

func (s *stubAPI) Predict(ctx context.Context, req careerapi.PredictionRequest) (careerapi.PredictionResult, error) {
	return careerapi.PredictionResult{RecommendedCareer: "Engineer"}, nil
}

func (s *stubAPI) Upload(ctx context.Context, fileName string, content io.Reader) error {
	return nil
}

func (s *stubAPI) Retrain(ctx context.Context, fileName string) (careerapi.Metrics, error) {
	if s.release != nil {
		<-s.release
	}
	return careerapi.Metrics{}, nil
}

func (s *stubAPI) Visualization(ctx context.Context, parameter string) (careerapi.Charts, error) {
	return careerapi.Charts{CountPlot: "c.png", BarPlot: "b.png"}, nil
}

type countingTicker struct {
	ch    chan time.Time
	stops atomic.Int32
}

func (c *countingTicker) C() <-chan time.Time { return c.ch }
func (c *countingTicker) Stop()               { c.stops.Add(1) }

type recordingBackend struct {
	*handoff.MemoryBackend
	mu      sync.Mutex
	cleared []string
}

func (b *recordingBackend) Clear(ctx context.Context, id string) error {
	b.mu.Lock()
	b.cleared = append(b.cleared, id)
	b.mu.Unlock()
	return b.MemoryBackend.Clear(ctx, id)
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func newRegistry(api CareerAPI, max int, ticker *countingTicker) (*Registry, *recordingBackend, *clock) {
	backend := &recordingBackend{MemoryBackend: handoff.NewMemoryBackend()}
	opts := retraining.Options{}
	if ticker != nil {
		opts.NewTicker = func(time.Duration) retraining.Ticker { return ticker }
	}
	reg := NewRegistry(Deps{
		API:        api,
		Backend:    backend,
		Catalog:    catalog.DefaultCatalog(),
		Retraining: opts,
	}, max, time.Hour)
	clk := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	reg.now = clk.Now
	return reg, backend, clk
}

func TestOpenSameIDReturnsSameWorkspace(t *testing.T) {
	reg, _, _ := newRegistry(&stubAPI{}, 10, nil)
	id := NewSessionID()

	first := reg.Open(id)
	second := reg.Open(id)
	if first != second {
		t.Fatal("expected the same workspace for the same session id")
	}
	if got, ok := reg.Get(id); !ok || got != first {
		t.Fatal("expected Get to find the workspace")
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 workspace, got %d", reg.Len())
	}
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	reg, backend, clk := newRegistry(&stubAPI{}, 2, nil)
	ctx := context.Background()

	a := reg.Open("a")
	a.HandOff.Set(ctx, handoff.UploadedFileKey, "a.csv")
	clk.now = clk.now.Add(time.Minute)
	reg.Open("b")
	clk.now = clk.now.Add(time.Minute)
	reg.Get("a")
	clk.now = clk.now.Add(time.Minute)

	reg.Open("c")
	if _, ok := reg.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if _, ok := reg.Get("a"); !ok {
		t.Fatal("expected recently used a to survive")
	}
	if len(backend.cleared) != 1 || backend.cleared[0] != "b" {
		t.Fatalf("expected b hand-off cleared, got %v", backend.cleared)
	}
	if value, _, _ := a.HandOff.Get(ctx, handoff.UploadedFileKey); value != "a.csv" {
		t.Fatalf("surviving hand-off changed: %q", value)
	}
}

func TestCleanupExpiresIdleWorkspaceAndStopsRetraining(t *testing.T) {
	api := &stubAPI{release: make(chan struct{})}
	ticker := &countingTicker{ch: make(chan time.Time)}
	reg, backend, clk := newRegistry(api, 10, ticker)
	ctx := context.Background()

	ws := reg.Open("idle")
	ws.HandOff.Set(ctx, handoff.UploadedFileKey, "students.csv")
	if err := ws.Enter(ctx, RouteRetraining); err != nil {
		t.Fatalf("enter retraining: %v", err)
	}
	if err := ws.Retraining.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	clk.now = clk.now.Add(2 * time.Hour)
	reg.Cleanup()

	if reg.Len() != 0 {
		t.Fatalf("expected idle workspace to expire, %d left", reg.Len())
	}
	if ticker.stops.Load() != 1 {
		t.Fatalf("expected retraining ticker stopped once, got %d", ticker.stops.Load())
	}
	if len(backend.cleared) != 1 || backend.cleared[0] != "idle" {
		t.Fatalf("expected hand-off cleared, got %v", backend.cleared)
	}

	close(api.release)
	ws.Retraining.Wait()
	if ticker.stops.Load() != 1 {
		t.Fatalf("ticker stopped again after resolution: %d", ticker.stops.Load())
	}
}

func TestEnterResetsPageBeingLeft(t *testing.T) {
	reg, _, _ := newRegistry(&stubAPI{}, 10, nil)
	ctx := context.Background()
	ws := reg.Open("nav")

	ws.Enter(ctx, RoutePrediction)
	ws.Prediction.SetField(careerapi.FieldInterest, "Technology")

	ws.Enter(ctx, RoutePrediction)
	if ws.Prediction.Snapshot().Fields[careerapi.FieldInterest] != "Technology" {
		t.Fatal("re-entering the same page must keep its state")
	}

	ws.Enter(ctx, RouteHome)
	if ws.Prediction.Snapshot().Fields[careerapi.FieldInterest] != "" {
		t.Fatal("leaving the page must reset the form")
	}
	if ws.Route() != RouteHome {
		t.Fatalf("expected home route, got %q", ws.Route())
	}
}

func TestRetrainingMountReadsHandOffOnEntry(t *testing.T) {
	reg, _, _ := newRegistry(&stubAPI{}, 10, nil)
	ctx := context.Background()
	ws := reg.Open("mount")

	ws.Enter(ctx, RouteRetraining)
	if ws.Retraining.Snapshot().State != retraining.StateBlocked {
		t.Fatal("expected blocked retraining without hand-off")
	}

	ws.HandOff.Set(ctx, handoff.UploadedFileKey, "students.csv")
	ws.Enter(ctx, RouteRetraining)
	if ws.Retraining.Snapshot().State != retraining.StateBlocked {
		t.Fatal("hand-off must only be read on mount")
	}

	ws.Enter(ctx, RouteUpload)
	ws.Enter(ctx, RouteRetraining)
	if view := ws.Retraining.Snapshot(); view.State != retraining.StateReady || view.FileName != "students.csv" {
		t.Fatalf("expected ready with students.csv, got %+v", view)
	}
}

func TestValidSessionID(t *testing.T) {
	if !ValidSessionID(NewSessionID()) {
		t.Fatal("generated id should be valid")
	}
	if ValidSessionID("not-a-session") {
		t.Fatal("garbage id should be rejected")
	}
}
