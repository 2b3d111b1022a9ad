package upload

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/pathway-finder/webclient/pkg/careerapi"
	"github.com/pathway-finder/webclient/pkg/handoff"
)

type fakeUploader struct {
	calls   int
	name    string
	content string
	err     error
}

func (f *fakeUploader) Upload(ctx context.Context, fileName string, content io.Reader) error {
	f.calls++
	f.name = fileName
	b, _ := io.ReadAll(content)
	f.content = string(b)
	return f.err
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (failingStore) Set(context.Context, string, string) error     { return errors.New("store down") }

func newController(api Uploader) (*Controller, handoff.Store) {
	store := handoff.NewMemoryBackend().Session("s1")
	return NewController(api, store, nil), store
}

func TestUploadWithoutFileIssuesNoRequest(t *testing.T) {
	api := &fakeUploader{}
	c, _ := newController(api)

	if err := c.Upload(context.Background()); !errors.Is(err, ErrNoFile) {
		t.Fatalf("expected ErrNoFile, got %v", err)
	}
	if api.calls != 0 {
		t.Fatal("no request expected")
	}
	if view := c.Snapshot(); view.Message != MessageNoFile || view.CanUpload() {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestNonCSVNamesAreRejectedWithoutRequest(t *testing.T) {
	for _, name := range []string{"data.txt", "students.csv.bak", "STUDENTS.CSV", "csv", "report.Csv"} {
		api := &fakeUploader{}
		c, store := newController(api)
		c.Select(File{Name: name, Content: []byte("x")})

		if err := c.Upload(context.Background()); !errors.Is(err, ErrNotCSV) {
			t.Fatalf("%s: expected ErrNotCSV, got %v", name, err)
		}
		if api.calls != 0 {
			t.Fatalf("%s: no request expected", name)
		}
		if view := c.Snapshot(); view.Message != MessageNotCSV {
			t.Fatalf("%s: unexpected message %q", name, view.Message)
		}
		if _, ok, _ := store.Get(context.Background(), handoff.UploadedFileKey); ok {
			t.Fatalf("%s: hand-off must stay empty", name)
		}
	}
}

func TestSuccessfulUploadHandsOffFileName(t *testing.T) {
	api := &fakeUploader{}
	c, store := newController(api)
	c.Select(File{Name: "students.csv", Content: []byte("a,b\n")})

	if err := c.Upload(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.name != "students.csv" || api.content != "a,b\n" {
		t.Fatalf("unexpected upload %q %q", api.name, api.content)
	}

	value, ok, err := store.Get(context.Background(), handoff.UploadedFileKey)
	if err != nil || !ok || value != "students.csv" {
		t.Fatalf("expected hand-off students.csv, got %q ok=%v err=%v", value, ok, err)
	}

	view := c.Snapshot()
	if view.State != StateUploaded || view.Message != MessageSuccess || !view.OfferRetraining() {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.FileName != "students.csv" {
		t.Fatalf("expected file name to stay visible, got %q", view.FileName)
	}
}

func TestFailedUploadLeavesHandOffUntouched(t *testing.T) {
	cases := []struct {
		err     error
		message string
	}{
		{&careerapi.Error{Op: "upload", Kind: careerapi.KindStatus, StatusCode: 500}, MessageServerError},
		{&careerapi.Error{Op: "upload", Kind: careerapi.KindNetwork, Err: errors.New("refused")}, MessageError},
	}
	for _, tc := range cases {
		api := &fakeUploader{err: tc.err}
		c, store := newController(api)
		store.Set(context.Background(), handoff.UploadedFileKey, "previous.csv")
		c.Select(File{Name: "students.csv"})

		if err := c.Upload(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		view := c.Snapshot()
		if view.State != StateError || view.Message != tc.message {
			t.Fatalf("unexpected view %+v", view)
		}
		if value, _, _ := store.Get(context.Background(), handoff.UploadedFileKey); value != "previous.csv" {
			t.Fatalf("hand-off changed to %q", value)
		}
	}
}

func TestHandOffWriteFailureIsReportedAsError(t *testing.T) {
	c := NewController(&fakeUploader{}, failingStore{}, nil)
	c.Select(File{Name: "students.csv"})

	c.Upload(context.Background())
	if view := c.Snapshot(); view.State != StateError || view.Message != MessageError {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestSelectClearsPreviousMessage(t *testing.T) {
	c, _ := newController(&fakeUploader{})
	c.Select(File{Name: "notes.txt"})
	c.Upload(context.Background())

	c.Select(File{Name: "students.csv"})
	view := c.Snapshot()
	if view.Message != "" || view.State != StateSelected || !view.CanUpload() {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestIsCSVIsCaseSensitive(t *testing.T) {
	if !IsCSV("students.csv") {
		t.Fatal("students.csv should be accepted")
	}
	if IsCSV("students.CSV") {
		t.Fatal("upper-case extension is rejected")
	}
}
