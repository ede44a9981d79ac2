// Package commands implements the ringc CLI's subcommands, grounded
// on the teacher's cmd/sentra/commands package (one file per
// subcommand, an exported Command function taking the remaining
// args). build/run/test share compile, the pipeline every
// subcommand but init/lsp drives.
package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ringlang/ringc/internal/ast"
	"github.com/ringlang/ringc/internal/diag"
	"github.com/ringlang/ringc/internal/generator"
	"github.com/ringlang/ringc/internal/lexer"
	"github.com/ringlang/ringc/internal/manifest"
	"github.com/ringlang/ringc/internal/parser"
	"github.com/ringlang/ringc/internal/semantic"
	"github.com/ringlang/ringc/internal/token"
)

// fileUnit is one source file's lex+parse result, kept alongside its
// path so the statements can be reassembled in a deterministic order
// after parallel parsing.
type fileUnit struct {
	path  string
	stmts []ast.Stmt
}

// loadSources collects every .rg file under the manifest's source
// path (a single file or a directory tree) and lexes+parses them
// concurrently with golang.org/x/sync/errgroup — the only stage of
// the pipeline that is not single-threaded (spec.md §5 requires the
// analysis pass itself run on one goroutine).
func loadSources(m *manifest.Manifest) ([]ast.Stmt, error) {
	paths, err := sourceFiles(m.SourcePath())
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.Errorf("no .rg source files found under %s", m.SourcePath())
	}

	units := make([]fileUnit, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			stmts, d, err := parseFile(path)
			if err != nil {
				return err
			}
			if d != nil {
				return d
			}
			units[i] = fileUnit{path: path, stmts: stmts}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(units, func(i, j int) bool { return units[i].path < units[j].path })
	var all []ast.Stmt
	for _, u := range units {
		all = append(all, u.stmts...)
	}
	return all, nil
}

func sourceFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading source path %s", path)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var out []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".rg") {
			out = append(out, p)
		}
		return nil
	})
	return out, err
}

func parseFile(path string) ([]ast.Stmt, *diag.Diagnostic, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", path)
	}
	index := token.NewFileIndex()
	lx := lexer.New(index, path, string(source))
	tokens, err := lx.ScanTokens()
	if err != nil {
		if de, ok := err.(interface{ Diagnostic() *diag.Diagnostic }); ok {
			return nil, de.Diagnostic(), nil
		}
		return nil, nil, err
	}
	p := parser.New(tokens, strings.Split(string(source), "\n"))
	stmts, perr := p.Parse()
	if perr != nil {
		if d, ok := perr.(*diag.Diagnostic); ok {
			return nil, d, nil
		}
		return nil, nil, perr
	}
	return stmts, nil, nil
}

// targetOf maps the manifest's Target string to internal/semantic's
// enum.
func targetOf(t manifest.Target) semantic.Target {
	switch t {
	case manifest.TargetContract:
		return semantic.TargetContract
	case manifest.TargetLibrary:
		return semantic.TargetLibrary
	default:
		return semantic.TargetCircuit
	}
}

// compile runs the full pipeline for m, returning either the
// Application artifact or a fatal diagnostic (spec.md §7: errors are
// fatal, no partial output).
func compile(m *manifest.Manifest) (*generator.Application, *diag.Diagnostic, error) {
	stmts, err := loadSources(m)
	if err != nil {
		if d, ok := err.(*diag.Diagnostic); ok {
			return nil, d, nil
		}
		return nil, nil, err
	}
	app, d := semantic.Compile(stmts, targetOf(m.Target), m.Name, m.Build.Optimize)
	if d != nil {
		return nil, d, nil
	}
	return app, nil, nil
}

// printDiagnostic renders d the way spec.md §7 describes (file:line:
// col, message, caret), with ANSI coloring gated to ttys by
// mattn/go-isatty via colorize.
func printDiagnostic(path string, d *diag.Diagnostic) {
	fmt.Fprintln(os.Stderr, colorize(d.Error()))
	_ = path
}
