// Package langserver implements a minimal, diagnostics-only language
// server for the source language: `ringc lsp` speaks the same
// Content-Length-framed JSON-RPC subset the teacher's internal/lsp
// speaks over stdio, and additionally exposes a websocket transport
// (github.com/gorilla/websocket, per SPEC_FULL.md §3) for a browser
// playground. Unlike the teacher's server, which offers completion
// and hover, this one only ever publishes
// textDocument/publishDiagnostics notifications — compiling whatever
// the client last sent through the full lexer/parser/semantic
// pipeline and reporting the first diag.Diagnostic hit, per
// SPEC_FULL.md §2.4's ambient-stack-carried-regardless rule applied
// to editor tooling.
package langserver

import (
	"github.com/ringlang/ringc/internal/diag"
	"github.com/ringlang/ringc/internal/lexer"
	"github.com/ringlang/ringc/internal/parser"
	"github.com/ringlang/ringc/internal/semantic"
	"github.com/ringlang/ringc/internal/token"
)

// Diagnostic is the LSP wire shape (textDocument/publishDiagnostics'
// `Diagnostic` type), mirroring the teacher's internal/lsp.Diagnostic
// field names.
type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity"`
	Source   string `json:"source"`
	Message  string `json:"message"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

const severityError = 1

// Diagnose runs content through the lexer, parser, and semantic
// analyzer and returns the diagnostics found (at most one — the
// pipeline is fail-fast per spec.md §7, so there is never more than
// the first hit to report).
func Diagnose(uri, content string) []Diagnostic {
	d := compile(content)
	if d == nil {
		return []Diagnostic{}
	}
	return []Diagnostic{fromDiagnostic(d)}
}

func compile(content string) *diag.Diagnostic {
	index := token.NewFileIndex()
	lx := lexer.New(index, "playground", content)
	tokens, err := lx.ScanTokens()
	if err != nil {
		if de, ok := err.(interface{ Diagnostic() *diag.Diagnostic }); ok {
			return de.Diagnostic()
		}
		return diag.NewLexical(diag.KindUnknownSymbol, token.Location{}, err.Error())
	}
	lines := splitLines(content)
	p := parser.New(tokens, lines)
	stmts, perr := p.Parse()
	if perr != nil {
		if d, ok := perr.(*diag.Diagnostic); ok {
			return d
		}
		return diag.NewSyntax(token.Location{}, perr.Error(), nil)
	}
	_, d := semantic.Compile(stmts, semantic.TargetLibrary, "playground", false)
	return d
}

func splitLines(content string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, content[start:i])
			start = i + 1
		}
	}
	lines = append(lines, content[start:])
	return lines
}

func fromDiagnostic(d *diag.Diagnostic) Diagnostic {
	line := d.Loc.Line - 1
	if line < 0 {
		line = 0
	}
	col := d.Loc.Column - 1
	if col < 0 {
		col = 0
	}
	pos := Position{Line: line, Character: col}
	return Diagnostic{
		Range:    Range{Start: pos, End: Position{Line: pos.Line, Character: pos.Character + 1}},
		Severity: severityError,
		Source:   string(d.Tier),
		Message:  d.Message,
	}
}
