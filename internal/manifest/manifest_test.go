package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "ringc.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaultsTarget(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"name": "github.com/acme/widget", "source": "main.rg"}`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Target != TargetCircuit {
		t.Errorf("Target = %q, want %q", m.Target, TargetCircuit)
	}
	if m.Build.OutputPath == "" {
		t.Error("OutputPath should default, got empty")
	}
	if got, want := m.SourcePath(), filepath.Join(dir, "main.rg"); got != want {
		t.Errorf("SourcePath = %q, want %q", got, want)
	}
}

func TestLoadRejectsInvalidName(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"name": "not a module path!", "source": "main.rg"}`)

	if _, err := Load(dir); err == nil {
		t.Fatal("expected an error for an invalid module-style name")
	}
}

func TestLoadRejectsUnknownTarget(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"name": "github.com/acme/widget", "source": "main.rg", "target": "webassembly"}`)

	if _, err := Load(dir); err == nil {
		t.Fatal("expected an error for an unknown target")
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir); err == nil {
		t.Fatal("expected an error when ringc.json is absent")
	}
}

func TestInitThenLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "widget")
	if err := Init(dir, "github.com/acme/widget"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load after Init: %v", err)
	}
	if m.Name != "github.com/acme/widget" {
		t.Errorf("Name = %q", m.Name)
	}
	if !m.Build.Optimize {
		t.Error("Init should default Build.Optimize to true")
	}
	if _, err := os.Stat(m.SourcePath()); err != nil {
		t.Errorf("entry source file missing: %v", err)
	}
}
