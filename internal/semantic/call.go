package semantic

import (
	"github.com/ringlang/ringc/internal/ast"
	"github.com/ringlang/ringc/internal/bytecode"
	"github.com/ringlang/ringc/internal/diag"
	"github.com/ringlang/ringc/internal/element"
	"github.com/ringlang/ringc/internal/intrinsic"
	"github.com/ringlang/ringc/internal/scope"
	"github.com/ringlang/ringc/internal/token"
	"github.com/ringlang/ringc/internal/types"
	"github.com/ringlang/ringc/internal/value"
)

// analyzeCall dispatches on the callee shape: a bare name, a `a::b`
// path, or `obj.method(...)` UFCS sugar (spec.md §4.A: "a method call
// is sugar for calling the type's associated function with the
// receiver as its first argument").
func (a *Analyzer) analyzeCall(n *ast.Call) (element.Element, *diag.Diagnostic) {
	switch callee := n.Callee.(type) {
	case *ast.Identifier:
		item, ok := a.cur.Resolve(callee.Name)
		if !ok || item.Kind != scope.ItemFunction {
			return element.Element{}, diag.NewSemantic(diag.KindUndefinedName, n.Loc, "undefined function "+callee.Name)
		}
		return a.invoke(item, nil, n.Args, n.Loc)
	case *ast.Path:
		cur := a.cur
		var item *scope.Item
		var ok bool
		for i, seg := range callee.Segments {
			item, ok = cur.Resolve(seg)
			if !ok {
				return element.Element{}, diag.NewSemantic(diag.KindUndefinedName, n.Loc, "undefined name "+seg)
			}
			if i == len(callee.Segments)-1 {
				break
			}
			if item.Kind != scope.ItemModule {
				return element.Element{}, diag.NewSemantic(diag.KindModuleNotFound, n.Loc, seg+" is not a module")
			}
			cur = item.Module
		}
		if item.Kind != scope.ItemFunction {
			return element.Element{}, diag.NewSemantic(diag.KindUndefinedName, n.Loc, "path does not name a function")
		}
		return a.invoke(item, nil, n.Args, n.Loc)
	case *ast.Field:
		objEl, d := a.analyzeExpr(callee.Object)
		if d != nil {
			return element.Element{}, d
		}
		return a.invokeMethod(objEl, callee.Name, n.Args, n.Loc)
	default:
		return element.Element{}, diag.NewSemantic(diag.KindInvalidOperation, n.Loc, "expression is not callable")
	}
}

// invokeMethod resolves `objEl.name(args)` to the associated function
// `<TypeName>::name`, qualified in whatever scope it was defined in
// (impls are hoisted into the enclosing module scope under that
// qualified key — see stmt.go's hoistImpl).
func (a *Analyzer) invokeMethod(objEl element.Element, name string, args []ast.Expr, loc token.Location) (element.Element, *diag.Diagnostic) {
	t := elemType(objEl)
	if t == nil || (t.Kind != types.Structure && t.Kind != types.Enumeration) {
		return element.Element{}, diag.NewSemantic(diag.KindExpectedStructure, loc, "method call requires a structure or enum receiver")
	}
	qualified := t.Name + "::" + name
	item, ok := a.cur.Resolve(qualified)
	if !ok {
		// Fall back to the bare method name through the scope chain:
		// internal/intrinsic registers methods such as schnorr's
		// `verify` under their bare name in their module scope, so
		// that name has to be in scope here.
		item, ok = a.cur.Resolve(name)
	}
	if !ok || item.Kind != scope.ItemFunction {
		return element.Element{}, diag.NewSemantic(diag.KindUndefinedName, loc, "undefined method "+qualified)
	}
	return a.invoke(item, &objEl, args, loc)
}

func (a *Analyzer) invoke(item *scope.Item, selfArg *element.Element, argExprs []ast.Expr, loc token.Location) (element.Element, *diag.Diagnostic) {
	switch fn := item.ConstValue.(type) {
	case *intrinsic.VariadicFunc:
		return a.invokeVariadic(fn, argExprs, loc)
	case *intrinsic.Func:
		return a.invokeIntrinsic(fn, selfArg, argExprs, loc)
	case *userFn:
		return a.invokeUser(fn, selfArg, argExprs, loc)
	default:
		return element.Element{}, diag.NewSemantic(diag.KindInvalidOperation, loc, "expression is not callable")
	}
}

func (a *Analyzer) invokeVariadic(fn *intrinsic.VariadicFunc, argExprs []ast.Expr, loc token.Location) (element.Element, *diag.Diagnostic) {
	if fn.Builtin == intrinsic.BuiltinDbg {
		if len(argExprs) == 0 {
			return element.Element{}, diag.NewSemantic(diag.KindArgumentCountMismatch, loc, "dbg! requires a format string")
		}
		lit, ok := argExprs[0].(*ast.StringLiteral)
		if !ok {
			return element.Element{}, diag.NewSemantic(diag.KindArgumentTypeMismatch, loc, "dbg! format must be a string literal")
		}
		for _, argExpr := range argExprs[1:] {
			el, d := a.analyzeExpr(argExpr)
			if d != nil {
				return element.Element{}, d
			}
			a.materialize(el, loc)
		}
		a.gen.PushInstruction(bytecode.Dbg{Base: bytecode.New(loc), Format: lit.Value, Args: len(argExprs) - 1}, loc)
		return element.FromValue(value.Unit(), loc), nil
	}
	return element.Element{}, diag.NewSemantic(diag.KindInvalidOperation, loc, "unsupported variadic builtin")
}

func (a *Analyzer) invokeIntrinsic(fn *intrinsic.Func, selfArg *element.Element, argExprs []ast.Expr, loc token.Location) (element.Element, *diag.Diagnostic) {
	args, d := a.analyzeArgs(selfArg, argExprs, loc)
	if d != nil {
		return element.Element{}, d
	}
	if fn.Builtin == intrinsic.BuiltinRequire {
		if len(args) != 1 {
			return element.Element{}, diag.NewSemantic(diag.KindArgumentCountMismatch, loc, "require takes one boolean argument")
		}
		a.materialize(args[0], loc)
		a.gen.PushInstruction(bytecode.Require{Base: bytecode.New(loc), Annotation: ""}, loc)
		return element.FromValue(value.Unit(), loc), nil
	}
	argSize := 0
	for _, el := range args {
		v, _ := el.AsValue()
		a.materialize(el, loc)
		if v.Type != nil {
			argSize += v.Type.FieldWidth()
		}
	}
	retSize := 0
	if fn.Returns != nil {
		retSize = fn.Returns.FieldWidth()
	}
	a.gen.PushInstruction(bytecode.CallIntrinsic{
		Base: bytecode.New(loc), Name: string(fn.Builtin), ArgsSize: argSize, RetSize: retSize,
	}, loc)
	return element.FromValue(value.Value{Type: fn.Returns}, loc), nil
}

func (a *Analyzer) invokeUser(fn *userFn, selfArg *element.Element, argExprs []ast.Expr, loc token.Location) (element.Element, *diag.Diagnostic) {
	args, d := a.analyzeArgs(selfArg, argExprs, loc)
	if d != nil {
		return element.Element{}, d
	}
	if len(args) != len(fn.params) {
		return element.Element{}, diag.NewSemantic(diag.KindArgumentCountMismatch, loc, "wrong number of arguments to "+fn.name)
	}
	argSize := 0
	for i, el := range args {
		v, ok := el.AsValue()
		if !ok || !v.Type.Equal(fn.params[i].Type) {
			return element.Element{}, diag.NewSemantic(diag.KindArgumentTypeMismatch, loc, "argument type mismatch in call to "+fn.name)
		}
		a.materialize(el, loc)
		argSize += fn.params[i].Type.FieldWidth()
	}
	a.gen.PushInstruction(bytecode.Call{
		Base: bytecode.New(loc), Address: int(fn.typeID), ArgsSize: argSize, RetSize: fn.returns.FieldWidth(),
	}, loc)
	return element.FromValue(value.Value{Type: fn.returns}, loc), nil
}

func (a *Analyzer) analyzeArgs(selfArg *element.Element, argExprs []ast.Expr, loc token.Location) ([]element.Element, *diag.Diagnostic) {
	var args []element.Element
	if selfArg != nil {
		args = append(args, *selfArg)
	}
	for _, e := range argExprs {
		el, d := a.analyzeExpr(e)
		if d != nil {
			return nil, d
		}
		args = append(args, el)
	}
	return args, nil
}
