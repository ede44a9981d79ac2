package semantic

import (
	"github.com/ringlang/ringc/internal/ast"
	"github.com/ringlang/ringc/internal/diag"
	"github.com/ringlang/ringc/internal/scope"
	"github.com/ringlang/ringc/internal/types"
)

// resolveType converts a parsed TypeExpr to a resolved types.Type,
// looking up named types (structs, enums, aliases, and the
// intrinsic-scope Point/Signature/Transaction/MTreeMap markers)
// through the current scope chain.
func (a *Analyzer) resolveType(te *ast.TypeExpr) (*types.Type, *diag.Diagnostic) {
	if te == nil {
		return types.NewUnit(), nil
	}
	if (te.Kind == ast.TypeUint || te.Kind == ast.TypeInt) && (te.Bits < types.MinBitlength || te.Bits > types.MaxBitlength) {
		return nil, diag.NewSemantic(diag.KindInvalidOperation, te.Loc, te.Name+" is not a valid integer type")
	}
	switch te.Kind {
	case ast.TypeUnit:
		return types.NewUnit(), nil
	case ast.TypeBool:
		return types.NewBoolean(), nil
	case ast.TypeUint:
		return types.NewInteger(false, te.Bits), nil
	case ast.TypeInt:
		return types.NewInteger(true, te.Bits), nil
	case ast.TypeField:
		return types.NewField(), nil
	case ast.TypeString:
		return types.NewString(), nil
	case ast.TypeArray:
		elem, d := a.resolveType(te.Elem)
		if d != nil {
			return nil, d
		}
		size, d := a.constArraySize(te)
		if d != nil {
			return nil, d
		}
		return types.NewArray(elem, size), nil
	case ast.TypeTuple:
		items := make([]*types.Type, len(te.Items))
		for i, it := range te.Items {
			t, d := a.resolveType(it)
			if d != nil {
				return nil, d
			}
			items[i] = t
		}
		return types.NewTuple(items), nil
	case ast.TypeNamed:
		return a.resolveNamedType(te)
	default:
		return nil, diag.NewSemantic(diag.KindInvalidOperation, te.Loc, "unsupported type expression")
	}
}

// constArraySize folds an array type's size expression, which spec.md
// §4.A requires be a compile-time constant.
func (a *Analyzer) constArraySize(te *ast.TypeExpr) (int, *diag.Diagnostic) {
	if te.Size == nil {
		return 0, diag.NewSemantic(diag.KindExpectedConstant, te.Loc, "array type requires a size expression")
	}
	el, d := a.analyzeExpr(te.Size)
	if d != nil {
		return 0, d
	}
	v, ok := el.AsValue()
	if !ok || !v.Known || v.Int == nil {
		return 0, diag.NewSemantic(diag.KindExpectedConstant, te.Loc, "array size must be a constant integer")
	}
	return int(v.Int.Int64()), nil
}

// resolveNamedType walks te.Path through the scope chain (module
// segments, then the final type name), per spec.md §4's module-local
// use/mod resolution supplement.
func (a *Analyzer) resolveNamedType(te *ast.TypeExpr) (*types.Type, *diag.Diagnostic) {
	segs := te.Path
	if len(segs) == 0 {
		segs = []string{te.Name}
	}
	cur := a.cur
	var item *scope.Item
	var ok bool
	for i, seg := range segs {
		item, ok = cur.Resolve(seg)
		if !ok {
			return nil, diag.NewSemantic(diag.KindUndefinedName, te.Loc, "undefined type "+seg)
		}
		if i == len(segs)-1 {
			break
		}
		if item.Kind != scope.ItemModule {
			return nil, diag.NewSemantic(diag.KindModuleNotFound, te.Loc, seg+" is not a module")
		}
		cur = item.Module
	}
	if item.Kind != scope.ItemType {
		return nil, diag.NewSemantic(diag.KindUndefinedName, te.Loc, te.Name+" does not name a type")
	}
	return item.Type, nil
}
