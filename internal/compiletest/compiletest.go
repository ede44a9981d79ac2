// Package compiletest drives golden end-to-end compiler scenarios
// from txtar archives (golang.org/x/tools/txtar is testscript's own
// archive format, so no separate parsing step is needed): one archive
// per scenario holds the `.rg` source alongside a script of `compile`/
// `expect-diagnostic`/`expect-json` commands, per SPEC_FULL.md §2.4.
// Driven by github.com/rogpeppe/go-internal/testscript, mirroring the
// corpus-wide idiom of txtar fixtures for compiler golden tests.
package compiletest

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ringlang/ringc/internal/diag"
	"github.com/ringlang/ringc/internal/generator"
	"github.com/ringlang/ringc/internal/lexer"
	"github.com/ringlang/ringc/internal/parser"
	"github.com/ringlang/ringc/internal/semantic"
	"github.com/ringlang/ringc/internal/token"
)

// resultFile is the fixed name each `compile` writes its outcome to,
// for later `expect-*` commands in the same script to read back.
const resultFile = "compile-result.json"

// result is the envelope compile-result.json holds: either a
// dumped Application (Ok) or the diagnostic compilation failed with.
type result struct {
	Ok          bool                   `json:"ok"`
	Application map[string]interface{} `json:"application,omitempty"`
	Diagnostic  *diagSummary           `json:"diagnostic,omitempty"`
}

type diagSummary struct {
	Tier    string `json:"tier"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

var targetByName = map[string]semantic.Target{
	"circuit":  semantic.TargetCircuit,
	"contract": semantic.TargetContract,
	"library":  semantic.TargetLibrary,
}

// compileSource runs the full lexer/parser/semantic pipeline over
// source and renders it into a result envelope.
func compileSource(name, source, targetName string) (*result, error) {
	target, ok := targetByName[targetName]
	if !ok {
		return nil, fmt.Errorf("unknown compile target %q (want circuit, contract, or library)", targetName)
	}

	index := token.NewFileIndex()
	lx := lexer.New(index, name, source)
	tokens, err := lx.ScanTokens()
	if err != nil {
		if de, ok := err.(interface{ Diagnostic() *diag.Diagnostic }); ok {
			return &result{Ok: false, Diagnostic: summarize(de.Diagnostic())}, nil
		}
		return nil, err
	}

	p := parser.New(tokens, strings.Split(source, "\n"))
	stmts, perr := p.Parse()
	if perr != nil {
		if d, ok := perr.(*diag.Diagnostic); ok {
			return &result{Ok: false, Diagnostic: summarize(d)}, nil
		}
		return nil, perr
	}

	app, d := semantic.Compile(stmts, target, name, true)
	if d != nil {
		return &result{Ok: false, Diagnostic: summarize(d)}, nil
	}
	return &result{Ok: true, Application: dump(app)}, nil
}

func summarize(d *diag.Diagnostic) *diagSummary {
	return &diagSummary{
		Tier: string(d.Tier), Kind: string(d.Kind), Message: d.Message,
		Line: d.Loc.Line, Column: d.Loc.Column,
	}
}

// dump renders an Application to a plain JSON-able map, with BuildID
// blanked: it is minted fresh (google/uuid) every compilation and
// would make golden comparisons flaky otherwise.
func dump(app *generator.Application) map[string]interface{} {
	app.BuildID = ""
	raw, err := json.Marshal(app)
	if err != nil {
		panic(err) // Application's fields are all plain data; this cannot fail
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return out
}

func writeResult(path string, r *result) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func readResult(path string) (*result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r result
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// lookupPath walks a dot-separated field path (map keys, or numeric
// slice indices) through v, per expect-json's comparison contract.
func lookupPath(v interface{}, path string) (interface{}, bool) {
	cur := v
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]interface{}:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []interface{}:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return "null"
	default:
		raw, _ := json.Marshal(t)
		return string(raw)
	}
}
