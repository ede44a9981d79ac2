package semantic

import (
	"math/big"

	"github.com/ringlang/ringc/internal/ast"
	"github.com/ringlang/ringc/internal/bytecode"
	"github.com/ringlang/ringc/internal/diag"
	"github.com/ringlang/ringc/internal/element"
	"github.com/ringlang/ringc/internal/scope"
	"github.com/ringlang/ringc/internal/token"
	"github.com/ringlang/ringc/internal/types"
	"github.com/ringlang/ringc/internal/value"
)

// analyzeMatch compiles a match expression. A compile-time-known
// scrutinee is fully constant-folded (every pattern tested statically,
// including recursive tuple/struct destructuring); a runtime scrutinee
// falls back to a restricted set of patterns compiled as chained
// equality tests, a documented simplification recorded in DESIGN.md.
func (a *Analyzer) analyzeMatch(n *ast.Match) (element.Element, *diag.Diagnostic) {
	scrutEl, d := a.analyzeExpr(n.Scrutinee)
	if d != nil {
		return element.Element{}, d
	}
	scrutV, ok := scrutEl.AsValue()
	if !ok {
		return element.Element{}, diag.NewSemantic(diag.KindOperandMustBeValue, n.Loc, "match scrutinee is not a value")
	}
	if scrutV.Known {
		return a.foldMatch(scrutV, n)
	}
	return a.runtimeMatch(scrutEl, scrutV, n)
}

// foldMatch tries every arm's pattern in order against a known value,
// binding pattern variables as fresh constants in a child scope before
// analyzing that arm's guard/result (spec.md §4.A's exhaustiveness and
// binding rules).
func (a *Analyzer) foldMatch(scrut value.Value, n *ast.Match) (element.Element, *diag.Diagnostic) {
	for _, arm := range n.Arms {
		bindings, matched := matchPattern(arm.Pattern, scrut)
		if !matched {
			continue
		}
		parent := a.pushScope()
		for name, v := range bindings {
			vv := v
			a.cur.Define(&scope.Item{
				Kind: scope.ItemVariable, Name: name, Type: v.Type,
				Address: a.gen.DefineVariable(v.Type.FieldWidth()), ConstValue: &vv,
			})
		}
		if arm.Guard != nil {
			gEl, d := a.analyzeExpr(arm.Guard)
			if d != nil {
				a.popScope(parent)
				return element.Element{}, d
			}
			gv, ok := gEl.AsValue()
			if !ok || !gv.Known {
				a.popScope(parent)
				return element.Element{}, diag.NewSemantic(diag.KindExpectedConstant, n.Loc, "match guard on a constant scrutinee must itself be constant")
			}
			if !gv.Bool {
				a.popScope(parent)
				continue
			}
		}
		result, d := a.analyzeExpr(arm.Result)
		a.popScope(parent)
		return result, d
	}
	return element.Element{}, diag.NewSemantic(diag.KindNonExhaustiveMatch, n.Loc, "no match arm covers the scrutinee's value")
}

// matchPattern tests p against a known value, returning the bindings
// it introduces. Tuple/struct patterns recurse field-by-field.
func matchPattern(p ast.Pattern, v value.Value) (map[string]value.Value, bool) {
	switch pat := p.(type) {
	case *ast.WildcardPattern:
		return map[string]value.Value{}, true
	case *ast.BindingPattern:
		return map[string]value.Value{pat.Name: v}, true
	case *ast.LiteralPattern:
		if pat.Bool != nil {
			return map[string]value.Value{}, v.Type != nil && v.Type.Kind == types.Boolean && v.Bool == *pat.Bool
		}
		if pat.Integer != nil {
			want, err := parseLiteralDecimal(*pat.Integer)
			if err != nil {
				return nil, false
			}
			return map[string]value.Value{}, v.Int != nil && v.Int.Cmp(want) == 0
		}
		return nil, false
	case *ast.PathPattern:
		name := pat.Segments[len(pat.Segments)-1]
		if v.Type != nil && v.Type.Kind == types.Enumeration {
			variant, ok := v.Type.FindVariant(name)
			if !ok {
				return nil, false
			}
			want, ok := new(big.Int).SetString(variant.Value, 10)
			return map[string]value.Value{}, ok && v.Int != nil && v.Int.Cmp(want) == 0
		}
		return nil, false
	case *ast.TuplePattern:
		if len(pat.Elements) != len(v.Elements) {
			return nil, false
		}
		out := map[string]value.Value{}
		for i, sub := range pat.Elements {
			b, ok := matchPattern(sub, v.Elements[i])
			if !ok {
				return nil, false
			}
			for k, vv := range b {
				out[k] = vv
			}
		}
		return out, true
	case *ast.StructPattern:
		out := map[string]value.Value{}
		for _, f := range pat.Fields {
			fv, ok := v.Fields[f.Name]
			if !ok {
				return nil, false
			}
			b, ok := matchPattern(f.Pattern, fv)
			if !ok {
				return nil, false
			}
			for k, vv := range b {
				out[k] = vv
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// runtimeMatch compiles a match over a non-constant scrutinee as a
// chain of equality tests; only literal/path/wildcard/binding patterns
// are supported at runtime (tuple/struct destructuring of a runtime
// value would need per-field dynamic comparison this backend has no
// instruction for).
func (a *Analyzer) runtimeMatch(scrutEl element.Element, scrutV value.Value, n *ast.Match) (element.Element, *diag.Diagnostic) {
	for _, arm := range n.Arms {
		switch arm.Pattern.(type) {
		case *ast.WildcardPattern, *ast.BindingPattern, *ast.LiteralPattern, *ast.PathPattern:
		default:
			return element.Element{}, diag.NewSemantic(diag.KindNonExhaustiveMatch, n.Loc,
				"runtime match on a non-constant scrutinee only supports literal, path, wildcard, and binding patterns")
		}
	}
	return a.runtimeMatchArm(scrutEl, scrutV, n.Arms, n.Loc)
}

func (a *Analyzer) runtimeMatchArm(scrutEl element.Element, scrutV value.Value, arms []ast.MatchArm, loc token.Location) (element.Element, *diag.Diagnostic) {
	if len(arms) == 0 {
		return element.Element{}, diag.NewSemantic(diag.KindNonExhaustiveMatch, loc, "match is not exhaustive")
	}
	arm := arms[0]
	switch pat := arm.Pattern.(type) {
	case *ast.WildcardPattern:
		return a.analyzeExpr(arm.Result)
	case *ast.BindingPattern:
		parent := a.pushScope()
		addr := a.gen.DefineVariable(scrutV.Type.FieldWidth())
		a.materialize(scrutEl, loc)
		a.gen.PushInstruction(bytecode.StoreSequence{Base: bytecode.New(loc), Address: addr, Size: scrutV.Type.FieldWidth()}, loc)
		a.cur.Define(&scope.Item{Kind: scope.ItemVariable, Name: pat.Name, Type: scrutV.Type, Address: addr})
		result, d := a.analyzeExpr(arm.Result)
		a.popScope(parent)
		return result, d
	default:
		litEl, d := a.literalPatternElement(arm.Pattern, scrutV.Type, loc)
		if d != nil {
			return element.Element{}, d
		}
		a.materialize(scrutEl, loc)
		a.materialize(litEl, loc)
		a.gen.PushInstruction(bytecode.Eq{Base: bytecode.New(loc)}, loc)
		a.gen.PushInstruction(bytecode.If{Base: bytecode.New(loc)}, loc)

		thenResult, d := a.analyzeExpr(arm.Result)
		if d != nil {
			return element.Element{}, d
		}
		a.materialize(thenResult, loc)
		a.gen.PushInstruction(bytecode.Else{Base: bytecode.New(loc)}, loc)

		elseResult, d := a.runtimeMatchArm(scrutEl, scrutV, arms[1:], loc)
		if d != nil {
			return element.Element{}, d
		}
		a.materialize(elseResult, loc)
		a.gen.PushInstruction(bytecode.EndIf{Base: bytecode.New(loc)}, loc)

		tv, _ := thenResult.AsValue()
		return element.FromValue(value.Value{Type: tv.Type}, loc), nil
	}
}

// literalPatternElement builds a constant comparison operand from a
// literal or path (named constant / enum variant) pattern.
func (a *Analyzer) literalPatternElement(p ast.Pattern, t *types.Type, loc token.Location) (element.Element, *diag.Diagnostic) {
	switch pat := p.(type) {
	case *ast.LiteralPattern:
		if pat.Bool != nil {
			return element.FromValue(value.Boolean(*pat.Bool), loc), nil
		}
		if pat.Integer != nil {
			n, err := parseLiteralDecimal(*pat.Integer)
			if err != nil {
				return element.Element{}, diag.NewValue(diag.KindIntegerOverflow, loc, err.Error())
			}
			return element.FromValue(value.Value{Type: t, Known: true, Int: n}, loc), nil
		}
		return element.Element{}, diag.NewSemantic(diag.KindInvalidOperation, loc, "unsupported literal pattern")
	case *ast.PathPattern:
		name := pat.Segments[len(pat.Segments)-1]
		if t != nil && t.Kind == types.Enumeration {
			if variant, ok := t.FindVariant(name); ok {
				n, _ := new(big.Int).SetString(variant.Value, 10)
				return element.FromValue(value.Value{Type: t, Known: true, Int: n}, loc), nil
			}
		}
		return a.analyzeIdentifier(name, loc)
	default:
		return element.Element{}, diag.NewSemantic(diag.KindInvalidOperation, loc, "unsupported match pattern")
	}
}
