// Package semantic implements spec.md §4.A: the top-down AST walk
// that resolves names through lexical scopes, enforces the type
// system, folds constants, infers numeric-literal bit widths, and
// emits the generator's linear instruction stream. Grounded on the
// teacher's internal/compiler (compiler.go's statement dispatch,
// hoisting_compiler.go's pre-pass that registers top-level names
// before bodies are walked, stmt_compiler.go's per-statement-kind
// switch) — generalized from the teacher's dynamically typed script
// to this statically typed, field-aware language by routing every
// expression node through internal/element's typed operand rules
// instead of just evaluating Go values directly.
//
// Constant folding: a mutable local variable's tracked value is
// always treated as unknown from the moment it is declared, even if
// its initializer was itself constant — only immutable `let` bindings
// and module-level `const`/`static` items are ever folded through,
// since tracking a mutable binding's latest value across arbitrary
// control flow is out of scope here. This is a deliberate
// simplification over full SSA-style constant propagation.
package semantic

import (
	"github.com/ringlang/ringc/internal/ast"
	"github.com/ringlang/ringc/internal/bytecode"
	"github.com/ringlang/ringc/internal/diag"
	"github.com/ringlang/ringc/internal/element"
	"github.com/ringlang/ringc/internal/generator"
	"github.com/ringlang/ringc/internal/intrinsic"
	"github.com/ringlang/ringc/internal/scope"
	"github.com/ringlang/ringc/internal/token"
	"github.com/ringlang/ringc/internal/types"
	"github.com/ringlang/ringc/internal/value"
)

// Target names which Application shape this compilation produces
// (spec.md §3's Application sum).
type Target int

const (
	TargetCircuit Target = iota
	TargetContract
	TargetLibrary
)

// userFn is the ConstValue stashed on a scope.Item for a user-defined
// function (as opposed to an internal/intrinsic built-in): its
// generator type id, declared signature, and un-analyzed body, kept
// around from the hoisting pass until the body-analysis pass visits
// it.
type userFn struct {
	typeID   uint64
	name     string
	params   []types.Param
	selfType *types.Type // non-nil when Params[0] is `self`
	returns  *types.Type
	public   bool
	body     []ast.Stmt
	declIn   *scope.Scope // scope the body is analyzed against
	testInfo *generator.UnitTest
	contract bool // true for a contract method: sees an implicit `msg` binding
}

// Analyzer carries the scope chain (root = intrinsic scope, per
// spec.md §3's Scope data-model entry) and the generator instructions
// are emitted into as each statement/expression is walked.
type Analyzer struct {
	gen *generator.Generator
	cur *scope.Scope

	mainTypeID uint64
	haveMain   bool

	// condDepth tracks nesting of `if` conditions still open while
	// analyzing a block, so mutation of an outer-scope place inside a
	// conditional can be flagged as needing runtime ConditionalSelect
	// reconciliation rather than being silently constant-folded away.
	condDepth int

	// contractScopes holds each contract's dedicated method scope,
	// keyed by contract name, so processContract can walk its methods
	// directly instead of through a module-visible qualified name (see
	// stmt.go's hoistContract).
	contractScopes map[string]*scope.Scope
}

// Compile runs the full analysis pass over a module's top-level
// statements and assembles the final Application artifact (spec.md
// §4.G's into_application, spec.md §4.A's analyzer). optimize toggles
// dead-function elimination exactly as SPEC_FULL.md §2.3's
// `build.optimize` manifest field does.
func Compile(stmts []ast.Stmt, target Target, name string, optimize bool) (*generator.Application, *diag.Diagnostic) {
	a := &Analyzer{gen: generator.New(), cur: intrinsic.Root()}

	if d := a.hoist(stmts, a.cur); d != nil {
		return nil, d
	}
	if d := a.processTopLevel(stmts); d != nil {
		return nil, d
	}

	if target != TargetContract && !a.haveMain {
		return nil, diag.NewSemantic(diag.KindUndefinedName, token.Location{}, "no `main` function is defined")
	}

	kind := generator.KindLibrary
	switch target {
	case TargetCircuit:
		kind = generator.KindCircuit
	case TargetContract:
		kind = generator.KindContract
	}
	return a.gen.IntoApplication(kind, name, a.mainTypeID, optimize), nil
}

// pushScope enters a new lexical scope chained to the current one
// (spec.md §3: "a scope is created on entering a block/function/
// module/loop/conditional and dropped on exit").
func (a *Analyzer) pushScope() *scope.Scope {
	parent := a.cur
	a.cur = scope.New(parent)
	return parent
}

func (a *Analyzer) popScope(parent *scope.Scope) { a.cur = parent }

// constText renders a folded Value as the decimal (radix-agnostic)
// text bytecode.PushConst and internal/backend.AllocateNumber expect.
func constText(v value.Value) string {
	switch {
	case v.Type == nil:
		return "0"
	case v.Type.Kind == types.Boolean:
		if v.Bool {
			return "1"
		}
		return "0"
	case v.Int != nil:
		return v.Int.String()
	default:
		return "0"
	}
}

// materialize ensures el's value is on the generator's conceptual
// evaluation stack: a Place emits a LoadPush of its address, a folded
// Constant/Value emits PushConst, and an already-unfolded runtime
// Value is a no-op — the subexpression that produced it already left
// it on the stack as the last thing it did (see expr.go's binary/
// unary/cast handlers, which only emit their own operator instruction
// after materializing both operands in evaluation order).
func (a *Analyzer) materialize(el element.Element, loc token.Location) {
	switch el.Kind {
	case element.KindPlace:
		a.gen.PushInstruction(bytecode.LoadPush{Base: bytecode.New(loc), Address: el.Place.Address}, loc)
	case element.KindValue, element.KindConstant:
		if el.Value.Known {
			a.gen.PushInstruction(bytecode.PushConst{Base: bytecode.New(loc), Value: constText(el.Value)}, loc)
		}
	}
}

// elemType resolves the static type of any Element kind that carries
// one (Place/Value/Constant); used throughout expr.go/stmt.go for
// type-checking without repeating this switch everywhere.
func elemType(el element.Element) *types.Type {
	switch el.Kind {
	case element.KindPlace:
		return el.Place.Value.Type
	case element.KindValue, element.KindConstant:
		return el.Value.Type
	case element.KindType:
		return el.Type
	default:
		return nil
	}
}
