package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ringlang/ringc/internal/manifest"
	"github.com/ringlang/ringc/internal/token"
	"github.com/ringlang/ringc/internal/witness"
)

// Run compiles the circuit/library at projectRoot and validates
// witnessPath against its declared Input type via internal/witness,
// the bit-exact JSON format spec.md §6 defines. Actually executing
// the circuit against a backend/prover is explicitly out of scope
// (spec.md §1: "the core... does not execute proofs"); Run's job ends
// at confirming the witness is well-typed for this Application.
func Run(projectRoot, witnessPath string) error {
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
	if app.Input == nil {
		fmt.Printf("%s takes no input; nothing to validate\n", m.Name)
		return nil
	}
	if witnessPath == "" {
		return errors.New("run: an input witness JSON file is required for a circuit with a non-unit input type")
	}

	raw, err := os.ReadFile(witnessPath)
	if err != nil {
		return errors.Wrapf(err, "reading witness file %s", witnessPath)
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return errors.Wrapf(err, "parsing witness JSON %s", witnessPath)
	}

	v, wd := witness.ValueFromJSON(decoded, app.Input, token.Location{})
	if wd != nil {
		printDiagnostic(witnessPath, wd)
		os.Exit(1)
	}

	fmt.Printf("Witness %s is well-typed for %s's input %s\n", witnessPath, m.Name, app.Input.String())
	fmt.Println("Handing off to an external backend/prover to execute the circuit is outside ringc's scope.")
	_ = witness.JSONOf(v)
	return nil
}
