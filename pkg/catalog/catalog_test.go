package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cat, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cat.Parameter("personality"); !ok {
		t.Fatal("expected default catalog to include personality")
	}
	if cat.Placeholder("Interest") == "" {
		t.Fatal("expected default placeholder for Interest")
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
education: ["O-level", "A-level", "Diploma"]
placeholders:
  Interest: "E.g. Music"
parameters:
  - id: interest
    label: Interest
  - id: personality
    label: Personality Trait
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cat.Education) != 3 || cat.Education[2] != "Diploma" {
		t.Fatalf("unexpected education options: %v", cat.Education)
	}
	if _, ok := cat.Parameter("education"); ok {
		t.Fatal("file catalog should replace the default parameters")
	}
	if cat.Placeholder("Interest") != "E.g. Music" {
		t.Fatalf("unexpected placeholder %q", cat.Placeholder("Interest"))
	}
}

func TestParseRejectsEmptyAndDuplicateParameters(t *testing.T) {
	if _, err := Parse([]byte("education: [A-level]\n")); err == nil {
		t.Fatal("expected error for missing parameters")
	}
	dup := "education: [A-level]\nparameters:\n  - id: interest\n  - id: interest\n"
	if _, err := Parse([]byte(dup)); err == nil {
		t.Fatal("expected error for duplicate parameter")
	}
}

func TestLoadMissingFileFallsBackWithError(t *testing.T) {
	cat, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if len(cat.Parameters) == 0 {
		t.Fatal("expected default catalog alongside the error")
	}
}
