package seed

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	path := writeSeed(t, `---
categories:
  - name: Guides
    description: Step-by-step guides and tutorials
  - name: API Reference
    slug: api
pages:
  - title: Getting Started
    category: guides
    tags: [beginner, setup]
    icon: BookOpen
    content: |
      <h1>Getting Started</h1>
`)

	f, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(f.Categories) != 2 {
		t.Fatalf("Load() categories = %d, want 2", len(f.Categories))
	}
	if f.Categories[1].Slug != "api" {
		t.Errorf("category slug = %q, want api", f.Categories[1].Slug)
	}
	if len(f.Pages) != 1 {
		t.Fatalf("Load() pages = %d, want 1", len(f.Pages))
	}
	if f.Pages[0].Content != "<h1>Getting Started</h1>\n" {
		t.Errorf("page content = %q", f.Pages[0].Content)
	}
}

func TestLoaderLoadEmptyFile(t *testing.T) {
	f, err := NewLoader(writeSeed(t, "")).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(f.Pages) != 0 || len(f.Categories) != 0 {
		t.Errorf("Load() on empty file returned %+v", f)
	}
}

func TestLoaderLoadRejectsUnknownKeys(t *testing.T) {
	path := writeSeed(t, `pages:
  - title: Intro
    categroy: guides
`)
	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Load() should reject misspelled keys")
	}
}

func TestLoaderLoadMissingFile(t *testing.T) {
	if _, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml")).Load(); err == nil {
		t.Error("Load() should fail on a missing file")
	}
}

func TestLoaderLoadInvalidYAML(t *testing.T) {
	if _, err := NewLoader(writeSeed(t, "pages: [unclosed")).Load(); err == nil {
		t.Error("Load() should fail on invalid YAML")
	}
}
