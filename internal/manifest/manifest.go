// Package manifest reads ringc.json, the project manifest SPEC_FULL.md
// §2.3 specifies: an external, driver-only collaborator, never
// imported by the compiler core (internal/lexer..internal/witness).
// Grounded on the teacher's internal/build/builder.go ProjectManifest/
// BuildConfig shape, retargeted from a bytecode bundle's entry_point/
// dependencies/output_path to ringc's circuit/contract/library target
// selection, optimize toggle, and prime-field choice.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/mod/module"
)

// Target mirrors internal/semantic.Target in manifest-file string form.
type Target string

const (
	TargetCircuit  Target = "circuit"
	TargetContract Target = "contract"
	TargetLibrary  Target = "library"
)

// BuildSettings is the manifest's "build" object: the knobs
// cmd/ringc/commands hands to internal/semantic.Compile and
// internal/witness, mirroring the teacher's BuildConfig.Optimize/
// OutputPath fields, renamed and extended with Field for §4.R's prime
// field selection.
type BuildSettings struct {
	OutputPath string `json:"output_path"`
	Optimize   bool   `json:"optimize"`
	Field      string `json:"field,omitempty"`
}

// Manifest is the decoded ringc.json document, grounded on the
// teacher's ProjectManifest: Name/Version/Dependencies carry over
// directly, EntryPoint becomes Source (a file or a directory, per
// SPEC_FULL.md §2.3), and the teacher's free-form BuildConfig is
// narrowed to BuildSettings plus an explicit Target.
type Manifest struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Source       string            `json:"source"`
	Target       Target            `json:"target"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	Build        BuildSettings     `json:"build"`

	// Dir is the directory the manifest was loaded from, not part of
	// the JSON; Source is resolved relative to it.
	Dir string `json:"-"`
}

// Load reads and validates ringc.json from projectRoot, the same
// layout convention as the teacher's loadManifest (sentra.json at the
// project root).
func Load(projectRoot string) (*Manifest, error) {
	path := filepath.Join(projectRoot, "ringc.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrapf(err, "parsing manifest %s", path)
	}
	m.Dir = projectRoot
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if m.Name == "" {
		return errors.New("manifest: \"name\" is required")
	}
	if err := module.CheckPath(m.Name); err != nil {
		return errors.Wrapf(err, "manifest: \"name\" %q is not a valid module-style path", m.Name)
	}
	if m.Source == "" {
		return errors.New("manifest: \"source\" is required")
	}
	switch m.Target {
	case TargetCircuit, TargetContract, TargetLibrary:
	case "":
		m.Target = TargetCircuit
	default:
		return errors.Errorf("manifest: unknown target %q (want circuit, contract, or library)", m.Target)
	}
	if m.Build.OutputPath == "" {
		m.Build.OutputPath = filepath.Join("dist", m.Name+".json")
	}
	return nil
}

// SourcePath resolves Source against Dir.
func (m *Manifest) SourcePath() string {
	if filepath.IsAbs(m.Source) {
		return m.Source
	}
	return filepath.Join(m.Dir, m.Source)
}

// OutputPath resolves Build.OutputPath against Dir.
func (m *Manifest) OutputPath() string {
	if filepath.IsAbs(m.Build.OutputPath) {
		return m.Build.OutputPath
	}
	return filepath.Join(m.Dir, m.Build.OutputPath)
}

// Init writes a starter ringc.json plus an entry source file into
// dir, mirroring the teacher's InitCommand layout (manifest + main
// entry + gitignore) but with the language's own file extension and a
// minimal circuit instead of the teacher's banner-printing script.
func Init(dir, name string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating project directory %s", dir)
	}
	m := Manifest{
		Name:   name,
		Version: "0.1.0",
		Source: "main.rg",
		Target: TargetCircuit,
		Build: BuildSettings{
			OutputPath: "dist/" + name + ".json",
			Optimize:   true,
		},
	}
	encoded, err := json.MarshalIndent(&m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding manifest")
	}
	if err := os.WriteFile(filepath.Join(dir, "ringc.json"), append(encoded, '\n'), 0o644); err != nil {
		return errors.Wrap(err, "writing ringc.json")
	}
	entry := "fn main(a: u32, b: u32) -> u32 {\n    a + b\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "main.rg"), []byte(entry), 0o644); err != nil {
		return errors.Wrap(err, "writing entry source")
	}
	gitignore := "/dist/\n/.ringc-cache/\n"
	return errors.Wrap(os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644), "writing .gitignore")
}
