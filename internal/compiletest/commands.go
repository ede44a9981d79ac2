package compiletest

import (
	"fmt"
	"os"
	"regexp"

	"github.com/rogpeppe/go-internal/testscript"
)

// Commands returns the custom testscript command set compile/
// expect-diagnostic/expect-json scenarios drive.
func Commands() map[string]func(ts *testscript.TestScript, neg bool, args []string) {
	return map[string]func(ts *testscript.TestScript, neg bool, args []string){
		"compile":           cmdCompile,
		"expect-diagnostic": cmdExpectDiagnostic,
		"expect-json":       cmdExpectJSON,
	}
}

// cmdCompile compiles a source file extracted from the txtar archive
// and stashes the outcome for later expect-* commands in the same
// script. Usage: `compile <source-file> [circuit|contract|library]`.
func cmdCompile(ts *testscript.TestScript, neg bool, args []string) {
	if len(args) < 1 || len(args) > 2 {
		ts.Fatalf("usage: compile <source-file> [circuit|contract|library]")
	}
	target := "circuit"
	if len(args) == 2 {
		target = args[1]
	}
	source, err := os.ReadFile(ts.MkAbs(args[0]))
	ts.Check(err)

	r, err := compileSource(args[0], string(source), target)
	ts.Check(err)
	ts.Check(writeResult(ts.MkAbs(resultFile), r))

	if neg && r.Ok {
		ts.Fatalf("compile %s: expected failure, got a successful compilation", args[0])
	}
	if !neg && !r.Ok {
		ts.Fatalf("compile %s: %s: %s", args[0], r.Diagnostic.Kind, r.Diagnostic.Message)
	}
}

// cmdExpectDiagnostic asserts the last compile failed with a Kind
// matching the given regular expression. Usage:
// `expect-diagnostic <kind-pattern>`.
func cmdExpectDiagnostic(ts *testscript.TestScript, neg bool, args []string) {
	if len(args) != 1 {
		ts.Fatalf("usage: expect-diagnostic <kind-pattern>")
	}
	r, err := readResult(ts.MkAbs(resultFile))
	ts.Check(err)
	if r.Ok {
		ts.Fatalf("expect-diagnostic: last compile succeeded, no diagnostic to check")
	}
	re, err := regexp.Compile(args[0])
	ts.Check(err)
	matched := re.MatchString(r.Diagnostic.Kind)
	if matched == neg {
		ts.Fatalf("expect-diagnostic: kind %q match against %q = %v, want %v", r.Diagnostic.Kind, args[0], matched, !neg)
	}
}

// cmdExpectJSON asserts a dot-separated field path of the last
// successful compile's Application dump equals the given value.
// Usage: `expect-json <field.path> <expected-value>`.
func cmdExpectJSON(ts *testscript.TestScript, neg bool, args []string) {
	if len(args) != 2 {
		ts.Fatalf("usage: expect-json <field.path> <expected-value>")
	}
	r, err := readResult(ts.MkAbs(resultFile))
	ts.Check(err)
	if !r.Ok {
		ts.Fatalf("expect-json: last compile failed: %s: %s", r.Diagnostic.Kind, r.Diagnostic.Message)
	}
	got, ok := lookupPath(r.Application, args[0])
	if !ok {
		if !neg {
			ts.Fatalf("expect-json: field %q not found in application dump", args[0])
		}
		return
	}
	matched := stringify(got) == args[1]
	if matched == neg {
		ts.Fatalf("expect-json: field %q = %v, want %v", args[0], stringify(got), fmt.Sprintf("%v (negated=%v)", args[1], neg))
	}
}
