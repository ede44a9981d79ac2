package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ringlang/ringc/internal/manifest"
)

// Test compiles the project and lists every #[test] function the
// generator collected (spec.md §6's test attributes). Per spec.md §1
// the core never executes anything against a real backend, so Test
// reports what would run, which functions are skipped (#[ignore]) and
// which expect a panic (#[should_panic]), rather than running it.
func Test(projectRoot string) error {
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

	app, d, err := compile(m)
	if err != nil {
		return err
	}
	if d != nil {
		printDiagnostic(m.SourcePath(), d)
		os.Exit(1)
	}

	if len(app.UnitTests) == 0 {
		fmt.Println("no #[test] functions found")
		return nil
	}
	fmt.Printf("%d test function(s):\n", len(app.UnitTests))
	for _, t := range app.UnitTests {
		status := "runnable"
		switch {
		case t.Ignored:
			status = "ignored"
		case t.ShouldPanic:
			status = "expects a panic"
		}
		fmt.Printf("  %s — %s\n", t.Name, status)
	}
	fmt.Println("running a test against a real backend/prover is outside ringc's scope; this only validates they compile.")
	return nil
}
