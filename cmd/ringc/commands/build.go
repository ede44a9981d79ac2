package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ringlang/ringc/internal/buildcache"
	"github.com/ringlang/ringc/internal/generator"
	"github.com/ringlang/ringc/internal/manifest"
)

// Build compiles the project at projectRoot (or "." if empty) and
// writes the resulting Application artifact to its manifest-declared
// output path, grounded on the teacher's BuildCommand/Builder.Build
// progress-line style (SPEC_FULL.md §2.2).
func Build(projectRoot string) error {
	if projectRoot == "" {
		projectRoot = "."
	}
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return errors.Wrap(err, "resolving project path")
	}
	m, err := manifest.Load(absRoot)
	if err != nil {
		return err
	}

	buildID := uuid.NewString()
	started := time.Now()
	fmt.Printf("Building %s v%s (%s)...\n", m.Name, m.Version, buildID)

	cache, cacheErr := buildcache.OpenLocal(absRoot)
	if cacheErr != nil {
		fmt.Fprintf(os.Stderr, "warning: build cache unavailable: %v\n", cacheErr)
	} else {
		defer cache.Close()
	}

	source, err := os.ReadFile(m.SourcePath())
	var cacheKey string
	if err == nil {
		cacheKey = buildcache.Key(source)
		if cache != nil {
			if app, hit, _ := cache.Get(cacheKey); hit {
				fmt.Printf("Found %s in the build cache, skipping recompilation\n", humanize.Bytes(uint64(len(source))))
				return writeApplicationJSON(m, app)
			}
		}
	}

	app, d, err := compile(m)
	if err != nil {
		return err
	}
	if d != nil {
		printDiagnostic(m.SourcePath(), d)
		os.Exit(1)
	}

	if cache != nil && cacheKey != "" {
		if err := cache.Put(cacheKey, app); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to populate build cache: %v\n", err)
		}
	}

	if err := writeApplicationJSON(m, app); err != nil {
		return err
	}
	fmt.Printf("Build complete: %s (%s instructions, %s elapsed)\n",
		m.OutputPath(), humanize.Comma(int64(len(app.Instructions))), time.Since(started))
	return nil
}

func writeApplicationJSON(m *manifest.Manifest, app *generator.Application) error {
	outPath := m.OutputPath()
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return errors.Wrapf(err, "creating output directory for %s", outPath)
	}
	raw, err := json.MarshalIndent(app, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding application artifact")
	}
	if err := os.WriteFile(outPath, raw, 0o644); err != nil {
		return errors.Wrapf(err, "writing artifact to %s", outPath)
	}
	return nil
}
