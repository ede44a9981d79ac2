package compiletest

import "testing"

func TestCompileSourceSuccess(t *testing.T) {
	r, err := compileSource("main.rg", "fn main(a: u32, b: u32) -> u32 {\n    a + b\n}\n", "circuit")
	if err != nil {
		t.Fatalf("compileSource: %v", err)
	}
	if !r.Ok {
		t.Fatalf("expected success, got diagnostic %+v", r.Diagnostic)
	}
	if got, ok := lookupPath(r.Application, "Name"); !ok || stringify(got) != "main.rg" {
		t.Errorf("Name = %v", got)
	}
}

func TestCompileSourceDiagnostic(t *testing.T) {
	r, err := compileSource("bad.rg", "fn main() -> u32 {\n    undefined_thing\n}\n", "circuit")
	if err != nil {
		t.Fatalf("compileSource: %v", err)
	}
	if r.Ok {
		t.Fatal("expected a diagnostic, compilation succeeded")
	}
	if r.Diagnostic.Kind != "UndefinedName" {
		t.Errorf("Kind = %q, want UndefinedName", r.Diagnostic.Kind)
	}
}

func TestLookupPathMissing(t *testing.T) {
	m := map[string]interface{}{"a": map[string]interface{}{"b": "c"}}
	if _, ok := lookupPath(m, "a.b"); !ok {
		t.Error("expected a.b to resolve")
	}
	if _, ok := lookupPath(m, "a.z"); ok {
		t.Error("expected a.z to be missing")
	}
}

func TestCompileSourceUnknownTarget(t *testing.T) {
	if _, err := compileSource("main.rg", "fn main() {}\n", "webassembly"); err == nil {
		t.Fatal("expected an error for an unknown target")
	}
}
