package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	// Create a temporary directory with a starling.toml
	dir := t.TempDir()
	tomlContent := `
[project]
name = "test-app"
version = "0.1.0"

[source]
dirs = ["build", "vendor-chunks"]
entry = "main.chunk"

[store]
path = "cache/chunks.db"

[check]
strict = true
`
	if err := os.WriteFile(filepath.Join(dir, "starling.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "test-app" {
		t.Errorf("project name = %q, want test-app", m.Project.Name)
	}
	if m.Project.Version != "0.1.0" {
		t.Errorf("project version = %q, want 0.1.0", m.Project.Version)
	}
	if len(m.Source.Dirs) != 2 {
		t.Errorf("source dirs count = %d, want 2", len(m.Source.Dirs))
	}
	if m.Source.Entry != "main.chunk" {
		t.Errorf("source entry = %q, want main.chunk", m.Source.Entry)
	}
	if !m.Check.Strict {
		t.Error("check strict = false, want true")
	}
	want := filepath.Join(m.Dir, "cache", "chunks.db")
	if m.StorePath() != want {
		t.Errorf("store path = %q, want %q", m.StorePath(), want)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[project]
name = "minimal"
`
	if err := os.WriteFile(filepath.Join(dir, "starling.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(m.Source.Dirs) != 1 || m.Source.Dirs[0] != "build" {
		t.Errorf("source dirs = %v, want [build]", m.Source.Dirs)
	}
	if m.Store.Path != filepath.Join(".starling", "chunks.db") {
		t.Errorf("store path = %q, want default", m.Store.Path)
	}
	if m.Check.Strict {
		t.Error("check strict = true, want false default")
	}
}

func TestLoadMissingManifest(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for missing starling.toml")
	}
}

func TestFindAndLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	tomlContent := `
[project]
name = "nested"
`
	if err := os.WriteFile(filepath.Join(root, "starling.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("manifest not found from nested directory")
	}
	if m.Project.Name != "nested" {
		t.Errorf("project name = %q, want nested", m.Project.Name)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	m, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil manifest, got %+v", m)
	}
}
