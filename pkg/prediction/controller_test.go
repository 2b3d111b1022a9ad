package prediction

import (
	"context"
	"errors"
	"testing"

	"github.com/pathway-finder/webclient/pkg/careerapi"
)

type fakePredictor struct {
	calls   int
	last    careerapi.PredictionRequest
	result  careerapi.PredictionResult
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (f *fakePredictor) Predict(ctx context.Context, req careerapi.PredictionRequest) (careerapi.PredictionResult, error) {
	f.calls++
	f.last = req
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	return f.result, f.err
}

func fillAll(t *testing.T, c *Controller) {
	t.Helper()
	values := map[string]string{
		careerapi.FieldEducation:        "A-level",
		careerapi.FieldInterest:         "Technology",
		careerapi.FieldFavoriteSubject:  "Physics",
		careerapi.FieldExtracurriculars: "Robotics Club",
		careerapi.FieldPersonalityTrait: "Analytical",
	}
	for name, value := range values {
		if err := c.SetField(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
}

func TestSubmitWithAnyEmptyFieldIssuesNoRequest(t *testing.T) {
	for _, missing := range careerapi.PredictionFields {
		api := &fakePredictor{}
		c := NewController(api, nil)
		fillAll(t, c)
		c.SetField(missing, "")

		err := c.Submit(context.Background())
		if !errors.Is(err, ErrMissingField) {
			t.Fatalf("%s empty: expected ErrMissingField, got %v", missing, err)
		}
		if api.calls != 0 {
			t.Fatalf("%s empty: expected no request, got %d", missing, api.calls)
		}
		if view := c.Snapshot(); view.Notice != ValidationMessage || view.State != StateIdle {
			t.Fatalf("%s empty: unexpected view %+v", missing, view)
		}
	}
}

func TestSubmitSuccessStoresResult(t *testing.T) {
	api := &fakePredictor{result: careerapi.PredictionResult{RecommendedCareer: "Software Engineer"}}
	c := NewController(api, nil)
	fillAll(t, c)

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	view := c.Snapshot()
	if view.State != StateSucceeded {
		t.Fatalf("expected succeeded, got %s", view.State)
	}
	if view.Result == nil || view.Result.RecommendedCareer != "Software Engineer" {
		t.Fatalf("unexpected result %+v", view.Result)
	}
	if api.last.FavoriteSubject != "Physics" || api.last.Extracurriculars != "Robotics Club" {
		t.Fatalf("unexpected request %+v", api.last)
	}
	if view.ButtonLabel() != "Predict Career" {
		t.Fatalf("unexpected label %q", view.ButtonLabel())
	}
}

func TestSubmitFailureSetsGenericMessage(t *testing.T) {
	api := &fakePredictor{err: &careerapi.Error{Op: "predict", Kind: careerapi.KindStatus, StatusCode: 500}}
	c := NewController(api, nil)
	fillAll(t, c)

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("failures are reported through state, got %v", err)
	}
	view := c.Snapshot()
	if view.State != StateFailed || view.Error != FailureMessage {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.Result != nil {
		t.Fatal("failure must not produce a result")
	}
}

func TestFieldEditReturnsToIdleKeepingOutcome(t *testing.T) {
	api := &fakePredictor{result: careerapi.PredictionResult{RecommendedCareer: "Doctor"}}
	c := NewController(api, nil)
	fillAll(t, c)
	c.Submit(context.Background())

	if err := c.SetField(careerapi.FieldInterest, "Medicine"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	view := c.Snapshot()
	if view.State != StateIdle {
		t.Fatalf("expected idle after edit, got %s", view.State)
	}
	if view.Result == nil || view.Fields[careerapi.FieldInterest] != "Medicine" {
		t.Fatalf("edit should only touch its field: %+v", view)
	}
}

func TestSetFieldRejectsUnknownName(t *testing.T) {
	c := NewController(&fakePredictor{}, nil)
	if err := c.SetField("Age", "17"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestSecondSubmitWhileInFlightIsRejected(t *testing.T) {
	api := &fakePredictor{
		result:  careerapi.PredictionResult{RecommendedCareer: "Engineer"},
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	c := NewController(api, nil)
	fillAll(t, c)

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()
	<-api.entered

	if view := c.Snapshot(); !view.Submitting() || view.ButtonLabel() != "Processing..." {
		t.Fatalf("expected submitting view, got %+v", view)
	}
	if err := c.Submit(context.Background()); !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}

	close(api.block)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.calls != 1 {
		t.Fatalf("expected exactly one request, got %d", api.calls)
	}
}

func TestResetDiscardsFormAndResult(t *testing.T) {
	api := &fakePredictor{result: careerapi.PredictionResult{RecommendedCareer: "Doctor"}}
	c := NewController(api, nil)
	fillAll(t, c)
	c.Submit(context.Background())

	c.Reset()
	view := c.Snapshot()
	if view.Result != nil || view.Fields[careerapi.FieldEducation] != "" || view.State != StateIdle {
		t.Fatalf("expected cleared view, got %+v", view)
	}
}
