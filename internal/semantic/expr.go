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

// analyzeExpr is the postorder walk over every ast.Expr node. For any
// Element it returns whose value is not statically Known, the
// instructions needed to compute and leave it as the top-of-stack
// value have already been emitted — callers never need to re-emit
// anything for an unfolded subexpression, only materialize() a Place
// or folded Constant they need pushed.
func (a *Analyzer) analyzeExpr(e ast.Expr) (element.Element, *diag.Diagnostic) {
	switch n := e.(type) {
	case *ast.BoolLiteral:
		return element.FromValue(value.Boolean(n.Value), n.Loc), nil
	case *ast.IntegerLiteral:
		return a.analyzeIntegerLiteral(n)
	case *ast.StringLiteral:
		return element.FromValue(value.String(n.Value), n.Loc), nil
	case *ast.Identifier:
		return a.analyzeIdentifier(n.Name, n.Loc)
	case *ast.SelfExpr:
		return a.analyzeIdentifier("self", n.Loc)
	case *ast.Path:
		return a.analyzePath(n)
	case *ast.Paren:
		return a.analyzeExpr(n.Inner)
	case *ast.TupleLiteral:
		return a.analyzeTupleLiteral(n)
	case *ast.ArrayList:
		return a.analyzeArrayList(n)
	case *ast.ArrayRepeated:
		return a.analyzeArrayRepeated(n)
	case *ast.StructLiteral:
		return a.analyzeStructLiteral(n)
	case *ast.Block:
		return a.analyzeBlockExpr(n)
	case *ast.Conditional:
		return a.analyzeConditional(n)
	case *ast.Match:
		return a.analyzeMatch(n)
	case *ast.Binary:
		return a.analyzeBinary(n)
	case *ast.Unary:
		return a.analyzeUnary(n)
	case *ast.Cast:
		return a.analyzeCast(n)
	case *ast.Call:
		return a.analyzeCall(n)
	case *ast.Index:
		return a.analyzeIndex(n)
	case *ast.RangeIndex:
		return a.analyzeRangeIndex(n)
	case *ast.Field:
		return a.analyzeField(n)
	case *ast.TupleIndex:
		return a.analyzeTupleIndexExpr(n)
	case *ast.Assign:
		return a.analyzeAssign(n)
	case *ast.Range:
		return element.Element{}, diag.NewSemantic(diag.KindInvalidOperation, n.Loc, "a range is only valid as a for-loop bound or slice index")
	default:
		return element.Element{}, diag.NewSemantic(diag.KindInvalidOperation, e.Location(), "unsupported expression")
	}
}

// analyzeIntegerLiteral infers the minimal (signed?, bitlength) that
// fits the literal's decimal text, per spec.md's numeric-literal
// inference rule (value.MinimalBitlengthForLiteral).
func (a *Analyzer) analyzeIntegerLiteral(n *ast.IntegerLiteral) (element.Element, *diag.Diagnostic) {
	n10, err := parseLiteralDecimal(n.Literal)
	if err != nil {
		return element.Element{}, diag.NewValue(diag.KindIntegerOverflow, n.Loc, err.Error())
	}
	signed, bits := value.MinimalBitlengthForLiteral(n10)
	return element.FromValue(value.Integer(signed, bits, n10), n.Loc), nil
}

func parseLiteralDecimal(lit token.IntegerLiteral) (*big.Int, error) {
	base := 10
	switch lit.Radix {
	case token.RadixBinary:
		base = 2
	case token.RadixOctal:
		base = 8
	case token.RadixHexadecimal:
		base = 16
	}
	n, ok := new(big.Int).SetString(lit.Integer, base)
	if !ok {
		return nil, &value.OverflowError{Value: big.NewInt(0)}
	}
	return n, nil
}

func (a *Analyzer) analyzeIdentifier(name string, loc token.Location) (element.Element, *diag.Diagnostic) {
	item, ok := a.cur.Resolve(name)
	if !ok {
		return element.Element{}, diag.NewSemantic(diag.KindUndefinedName, loc, "undefined name "+name)
	}
	switch item.Kind {
	case scope.ItemVariable:
		v := value.Value{Type: item.Type}
		if !item.Mutable {
			if cv, ok := item.ConstValue.(*value.Value); ok && cv != nil {
				v = *cv
			}
		}
		return element.FromPlace(element.Place{Name: name, Value: v, Mutable: item.Mutable, Address: item.Address}, loc), nil
	case scope.ItemConstant:
		cv, _ := item.ConstValue.(*value.Value)
		if cv == nil {
			return element.Element{}, diag.NewSemantic(diag.KindExpectedConstant, loc, name+" has no constant value")
		}
		return element.FromConstant(*cv, loc), nil
	case scope.ItemType:
		return element.FromType(item.Type, loc), nil
	case scope.ItemModule:
		return element.FromModule(item.Module, loc), nil
	default:
		return element.Element{}, diag.NewSemantic(diag.KindInvalidOperation, loc, name+" cannot be used as a value directly; call it")
	}
}

// analyzePath resolves a::b::c through nested module scopes, returning
// whatever the final segment names (a function reference is only
// valid as a Call's callee, handled separately in analyzeCall).
func (a *Analyzer) analyzePath(n *ast.Path) (element.Element, *diag.Diagnostic) {
	cur := a.cur
	var item *scope.Item
	var ok bool
	for i, seg := range n.Segments {
		item, ok = cur.Resolve(seg)
		if !ok {
			return element.Element{}, diag.NewSemantic(diag.KindUndefinedName, n.Loc, "undefined name "+seg)
		}
		if i == len(n.Segments)-1 {
			break
		}
		if item.Kind != scope.ItemModule {
			return element.Element{}, diag.NewSemantic(diag.KindModuleNotFound, n.Loc, seg+" is not a module")
		}
		cur = item.Module
	}
	switch item.Kind {
	case scope.ItemConstant:
		cv, _ := item.ConstValue.(*value.Value)
		if cv == nil {
			return element.Element{}, diag.NewSemantic(diag.KindExpectedConstant, n.Loc, "path has no constant value")
		}
		return element.FromConstant(*cv, n.Loc), nil
	case scope.ItemType:
		// bare enum-variant-less path naming a type, or (inside a
		// pattern context) a type tag; here it's only meaningful as an
		// enum variant access handled by Field, so surface the type.
		return element.FromType(item.Type, n.Loc), nil
	case scope.ItemModule:
		return element.FromModule(item.Module, n.Loc), nil
	default:
		return element.FromPath(n.Segments, n.Loc), nil
	}
}

func (a *Analyzer) analyzeTupleLiteral(n *ast.TupleLiteral) (element.Element, *diag.Diagnostic) {
	elems := make([]element.Element, len(n.Elements))
	for i, e := range n.Elements {
		el, d := a.analyzeExpr(e)
		if d != nil {
			return element.Element{}, d
		}
		elems[i] = el
	}
	return a.composeSequence(elems, func(vs []value.Value, ts []*types.Type) *types.Type { return types.NewTuple(ts) }, n.Loc)
}

func (a *Analyzer) analyzeArrayList(n *ast.ArrayList) (element.Element, *diag.Diagnostic) {
	elems := make([]element.Element, len(n.Elements))
	for i, e := range n.Elements {
		el, d := a.analyzeExpr(e)
		if d != nil {
			return element.Element{}, d
		}
		elems[i] = el
	}
	return a.composeSequence(elems, func(vs []value.Value, ts []*types.Type) *types.Type {
		if len(ts) == 0 {
			return types.NewArray(types.NewUnit(), 0)
		}
		return types.NewArray(ts[0], len(ts))
	}, n.Loc)
}

// composeSequence folds an ordered element list into a single
// Array/Tuple Value when every element is Known, otherwise emits each
// element's push in order, leaving the flattened runtime
// representation on the stack (spec.md's field-width flattening
// layout — a composite's "address" is just the first element's).
func (a *Analyzer) composeSequence(elems []element.Element, mk func([]value.Value, []*types.Type) *types.Type, loc token.Location) (element.Element, *diag.Diagnostic) {
	vs := make([]value.Value, len(elems))
	ts := make([]*types.Type, len(elems))
	allKnown := true
	for i, el := range elems {
		v, ok := el.AsValue()
		if !ok {
			return element.Element{}, diag.NewSemantic(diag.KindOperandMustBeValue, loc, "element is not a value")
		}
		vs[i] = v
		ts[i] = v.Type
		if !v.Known {
			allKnown = false
		}
	}
	t := mk(vs, ts)
	if allKnown {
		return element.FromValue(value.Value{Type: t, Known: true, Elements: vs}, loc), nil
	}
	for i, el := range elems {
		a.materialize(el, loc)
		_ = i
	}
	return element.FromValue(value.Value{Type: t}, loc), nil
}

func (a *Analyzer) analyzeArrayRepeated(n *ast.ArrayRepeated) (element.Element, *diag.Diagnostic) {
	countEl, d := a.analyzeExpr(n.Count)
	if d != nil {
		return element.Element{}, d
	}
	cv, ok := countEl.AsValue()
	if !ok || !cv.Known || cv.Int == nil {
		return element.Element{}, diag.NewSemantic(diag.KindExpectedConstant, n.Loc, "array repeat count must be a constant")
	}
	count := int(cv.Int.Int64())
	elems := make([]element.Element, count)
	for i := range elems {
		el, d := a.analyzeExpr(n.Value)
		if d != nil {
			return element.Element{}, d
		}
		elems[i] = el
	}
	return a.composeSequence(elems, func(vs []value.Value, ts []*types.Type) *types.Type {
		if len(ts) == 0 {
			return types.NewArray(types.NewUnit(), 0)
		}
		return types.NewArray(ts[0], len(ts))
	}, n.Loc)
}

func (a *Analyzer) analyzeStructLiteral(n *ast.StructLiteral) (element.Element, *diag.Diagnostic) {
	t, d := a.resolveType(n.Type)
	if d != nil {
		return element.Element{}, d
	}
	if t.Kind != types.Structure {
		return element.Element{}, diag.NewSemantic(diag.KindExpectedStructure, n.Loc, "not a structure type")
	}
	if len(n.Fields) != len(t.Fields) {
		return element.Element{}, diag.NewSemantic(diag.KindFieldCountMismatch, n.Loc, "structure literal field count mismatch")
	}
	fieldEls := make(map[string]element.Element, len(n.Fields))
	order := make([]string, 0, len(n.Fields))
	for _, fv := range n.Fields {
		decl, ok := t.FindField(fv.Name)
		if !ok {
			return element.Element{}, diag.NewSemantic(diag.KindUnknownField, n.Loc, "unknown field "+fv.Name)
		}
		el, d := a.analyzeExpr(fv.Value)
		if d != nil {
			return element.Element{}, d
		}
		v, ok := el.AsValue()
		if !ok || !v.Type.Equal(decl.Type) {
			return element.Element{}, diag.NewSemantic(diag.KindArgumentTypeMismatch, n.Loc, "field "+fv.Name+" type mismatch")
		}
		fieldEls[fv.Name] = el
		order = append(order, fv.Name)
	}
	allKnown := true
	vs := make(map[string]value.Value, len(order))
	for _, name := range order {
		v, _ := fieldEls[name].AsValue()
		vs[name] = v
		if !v.Known {
			allKnown = false
		}
	}
	if allKnown {
		return element.FromValue(value.Value{Type: t, Known: true, Fields: vs, FieldOrd: order}, n.Loc), nil
	}
	// push in declared-field order so the flattened stack layout
	// matches t.FieldWidth()'s cumulative-offset convention.
	for _, f := range t.Fields {
		a.materialize(fieldEls[f.Name], n.Loc)
	}
	return element.FromValue(value.Value{Type: t}, n.Loc), nil
}

func (a *Analyzer) analyzeBlockExpr(n *ast.Block) (element.Element, *diag.Diagnostic) {
	parent := a.pushScope()
	defer a.popScope(parent)
	return a.analyzeBlockBody(n.Statements, n.Loc)
}

// analyzeBlockBody walks stmts in the current scope, returning the
// trailing expression-statement's value (or Unit) as the block's
// value, per spec.md's block-expression rule.
func (a *Analyzer) analyzeBlockBody(stmts []ast.Stmt, loc token.Location) (element.Element, *diag.Diagnostic) {
	result := element.FromValue(value.Unit(), loc)
	for i, s := range stmts {
		if es, ok := s.(*ast.ExprStmt); ok && i == len(stmts)-1 && !es.Terminated {
			el, d := a.analyzeExpr(es.Expr)
			if d != nil {
				return element.Element{}, d
			}
			result = el
			continue
		}
		if d := a.innerStmt(s); d != nil {
			return element.Element{}, d
		}
	}
	return result, nil
}

func (a *Analyzer) analyzeConditional(n *ast.Conditional) (element.Element, *diag.Diagnostic) {
	condEl, d := a.analyzeExpr(n.Condition)
	if d != nil {
		return element.Element{}, d
	}
	cv, ok := condEl.AsValue()
	if !ok || cv.Type.Kind != types.Boolean {
		return element.Element{}, diag.NewSemantic(diag.KindTypeMismatch, n.Loc, "if condition must be boolean")
	}

	if cv.Known {
		// Fully constant-fold: only the taken branch is analyzed and
		// emitted, matching spec.md's "fold when scrutinee is known"
		// rule for conditionals exactly as for match.
		if cv.Bool {
			return a.analyzeBlockExpr(n.Then)
		}
		if n.Else == nil {
			return element.FromValue(value.Unit(), n.Loc), nil
		}
		return a.analyzeExpr(n.Else)
	}

	a.condDepth++
	defer func() { a.condDepth-- }()

	thenEl, d := a.analyzeBlockExpr(n.Then)
	if d != nil {
		return element.Element{}, d
	}
	var elseEl element.Element
	if n.Else != nil {
		elseEl, d = a.analyzeExpr(n.Else)
		if d != nil {
			return element.Element{}, d
		}
	} else {
		elseEl = element.FromValue(value.Unit(), n.Loc)
	}
	thenV, _ := thenEl.AsValue()
	elseV, _ := elseEl.AsValue()
	if thenV.Type != nil && elseV.Type != nil && !thenV.Type.Equal(elseV.Type) {
		return element.Element{}, diag.NewSemantic(diag.KindTypeMismatch, n.Loc, "if/else branches must have the same type")
	}

	// Both branches already pushed their (possibly-folded) values by
	// the point each analysis call above returned; materialize only
	// folds constants that didn't get pushed as part of the branch.
	a.materialize(thenEl, n.Loc)
	a.materialize(elseEl, n.Loc)
	a.materialize(condEl, n.Loc)
	bits := thenV.Type.Bitlength
	a.gen.PushInstruction(bytecode.ConditionalSelect{Base: bytecode.New(n.Loc), Bitlength: bits}, n.Loc)
	return element.FromValue(value.Value{Type: thenV.Type}, n.Loc), nil
}

func (a *Analyzer) analyzeBinary(n *ast.Binary) (element.Element, *diag.Diagnostic) {
	left, d := a.analyzeExpr(n.Left)
	if d != nil {
		return element.Element{}, d
	}
	right, d := a.analyzeExpr(n.Right)
	if d != nil {
		return element.Element{}, d
	}
	result, d := element.Binary(n.Loc, n.Operator, left, right)
	if d != nil {
		return element.Element{}, d
	}
	if result.Value.Known {
		return result, nil
	}
	a.materialize(left, n.Loc)
	a.materialize(right, n.Loc)
	lv, _ := left.AsValue()
	a.emitBinaryOp(n.Operator, lv.Type, n.Loc)
	return result, nil
}

func (a *Analyzer) emitBinaryOp(op ast.BinaryOp, lt *types.Type, loc token.Location) {
	bits, signed := 0, false
	if lt != nil {
		bits, signed = lt.Bitlength, lt.IsSigned()
	}
	base := bytecode.New(loc)
	switch op {
	case ast.OpAdd:
		a.gen.PushInstruction(bytecode.Add{Base: base, Bitlength: bits, Signed: signed}, loc)
	case ast.OpSub:
		a.gen.PushInstruction(bytecode.Sub{Base: base, Bitlength: bits, Signed: signed}, loc)
	case ast.OpMul:
		a.gen.PushInstruction(bytecode.Mul{Base: base, Bitlength: bits, Signed: signed}, loc)
	case ast.OpDiv:
		a.gen.PushInstruction(bytecode.Div{Base: base, Bitlength: bits, Signed: signed}, loc)
	case ast.OpRem:
		a.gen.PushInstruction(bytecode.Rem{Base: base, Bitlength: bits, Signed: signed}, loc)
	case ast.OpEq:
		a.gen.PushInstruction(bytecode.Eq{Base: base}, loc)
	case ast.OpNe:
		a.gen.PushInstruction(bytecode.Ne{Base: base}, loc)
	case ast.OpLt:
		a.gen.PushInstruction(bytecode.Lt{Base: base, Bitlength: bits, Signed: signed}, loc)
	case ast.OpLe:
		a.gen.PushInstruction(bytecode.Le{Base: base, Bitlength: bits, Signed: signed}, loc)
	case ast.OpGt:
		a.gen.PushInstruction(bytecode.Gt{Base: base, Bitlength: bits, Signed: signed}, loc)
	case ast.OpGe:
		a.gen.PushInstruction(bytecode.Ge{Base: base, Bitlength: bits, Signed: signed}, loc)
	case ast.OpAndAnd:
		a.gen.PushInstruction(bytecode.And{Base: base}, loc)
	case ast.OpOrOr:
		a.gen.PushInstruction(bytecode.Or{Base: base}, loc)
	case ast.OpXorXor:
		a.gen.PushInstruction(bytecode.Xor{Base: base}, loc)
	case ast.OpBitAnd:
		a.gen.PushInstruction(bytecode.BitAnd{Base: base, Bitlength: bits}, loc)
	case ast.OpBitOr:
		a.gen.PushInstruction(bytecode.BitOr{Base: base, Bitlength: bits}, loc)
	case ast.OpBitXor:
		a.gen.PushInstruction(bytecode.BitXor{Base: base, Bitlength: bits}, loc)
	case ast.OpShl:
		a.gen.PushInstruction(bytecode.BitShl{Base: base, Bitlength: bits}, loc)
	case ast.OpShr:
		a.gen.PushInstruction(bytecode.BitShr{Base: base, Bitlength: bits}, loc)
	}
}

func (a *Analyzer) analyzeUnary(n *ast.Unary) (element.Element, *diag.Diagnostic) {
	operand, d := a.analyzeExpr(n.Operand)
	if d != nil {
		return element.Element{}, d
	}
	result, d := element.Unary(n.Loc, n.Operator, operand)
	if d != nil {
		return element.Element{}, d
	}
	if result.Value.Known {
		return result, nil
	}
	a.materialize(operand, n.Loc)
	base := bytecode.New(n.Loc)
	switch n.Operator {
	case ast.OpNot:
		a.gen.PushInstruction(bytecode.Not{Base: base}, n.Loc)
	case ast.OpBitNot:
		a.gen.PushInstruction(bytecode.BitNot{Base: base, Bitlength: result.Value.Type.Bitlength}, n.Loc)
	case ast.OpNeg:
		a.gen.PushInstruction(bytecode.Neg{Base: base, Bitlength: result.Value.Type.Bitlength, Signed: true}, n.Loc)
	}
	return result, nil
}

func (a *Analyzer) analyzeCast(n *ast.Cast) (element.Element, *diag.Diagnostic) {
	operand, d := a.analyzeExpr(n.Operand)
	if d != nil {
		return element.Element{}, d
	}
	target, d := a.resolveType(n.Type)
	if d != nil {
		return element.Element{}, d
	}
	result, d := element.Cast(n.Loc, operand, target)
	if d != nil {
		return element.Element{}, d
	}
	if result.Value.Known {
		return result, nil
	}
	a.materialize(operand, n.Loc)
	a.gen.PushInstruction(bytecode.Cast{
		Base: bytecode.New(n.Loc), Bitlength: target.Bitlength, Signed: target.IsSigned(), ToField: target.Kind == types.Field,
	}, n.Loc)
	return result, nil
}

// analyzeIndex lowers `object[index]`. A constant index against a
// Place folds to a narrowed Place (a new PathStep); a runtime index
// emits a Slice instruction over the object's already-materialized
// flattened representation.
func (a *Analyzer) analyzeIndex(n *ast.Index) (element.Element, *diag.Diagnostic) {
	objEl, d := a.analyzeExpr(n.Object)
	if d != nil {
		return element.Element{}, d
	}
	objType := elemType(objEl)
	if objType == nil || objType.Kind != types.Array {
		return element.Element{}, diag.NewSemantic(diag.KindExpectedArray, n.Loc, "indexing requires an array")
	}
	idxEl, d := a.analyzeExpr(n.Index)
	if d != nil {
		return element.Element{}, d
	}
	idxV, ok := idxEl.AsValue()
	if !ok || !idxV.Type.IsInteger() {
		return element.Element{}, diag.NewSemantic(diag.KindTypeMismatch, n.Loc, "array index must be an integer")
	}
	elemW := objType.Elem.FieldWidth()

	if objEl.Kind == element.KindPlace && idxV.Known && idxV.Int != nil {
		idx := int(idxV.Int.Int64())
		if idx < 0 || idx >= objType.Size {
			return element.Element{}, diag.NewSemantic(diag.KindIndexOutOfBounds, n.Loc, "array index out of bounds")
		}
		p := objEl.Place
		p.Address += idx * elemW
		p.Path = append(append([]element.PathStep{}, p.Path...), element.PathStep{IsConstIdx: true, ConstIdx: idx})
		p.Value = value.Value{Type: objType.Elem}
		return element.FromPlace(p, n.Loc), nil
	}

	a.materialize(objEl, n.Loc)
	a.materialize(idxEl, n.Loc)
	a.gen.PushInstruction(bytecode.Slice{Base: bytecode.New(n.Loc), TotalSize: objType.FieldWidth(), ElementSize: elemW}, n.Loc)
	return element.FromValue(value.Value{Type: objType.Elem}, n.Loc), nil
}

func (a *Analyzer) analyzeRangeIndex(n *ast.RangeIndex) (element.Element, *diag.Diagnostic) {
	objEl, d := a.analyzeExpr(n.Object)
	if d != nil {
		return element.Element{}, d
	}
	objType := elemType(objEl)
	if objType == nil || objType.Kind != types.Array {
		return element.Element{}, diag.NewSemantic(diag.KindExpectedArray, n.Loc, "slicing requires an array")
	}
	lo, d := a.constIndexBound(n.Low, n.Loc)
	if d != nil {
		return element.Element{}, d
	}
	hi, d := a.constIndexBound(n.High, n.Loc)
	if d != nil {
		return element.Element{}, d
	}
	if n.Inclusive {
		hi++
	}
	if lo < 0 || hi > objType.Size || lo > hi {
		return element.Element{}, diag.NewSemantic(diag.KindIndexOutOfBounds, n.Loc, "slice bounds out of range")
	}
	elemW := objType.Elem.FieldWidth()
	resultType := types.NewArray(objType.Elem, hi-lo)

	if objEl.Kind == element.KindPlace {
		p := objEl.Place
		p.Address += lo * elemW
		p.Value = value.Value{Type: resultType}
		return element.FromPlace(p, n.Loc), nil
	}
	a.materialize(objEl, n.Loc)
	a.gen.PushInstruction(bytecode.Slice{Base: bytecode.New(n.Loc), TotalSize: objType.FieldWidth(), ElementSize: elemW}, n.Loc)
	return element.FromValue(value.Value{Type: resultType}, n.Loc), nil
}

func (a *Analyzer) constIndexBound(e ast.Expr, loc token.Location) (int, *diag.Diagnostic) {
	if e == nil {
		return 0, nil
	}
	el, d := a.analyzeExpr(e)
	if d != nil {
		return 0, d
	}
	v, ok := el.AsValue()
	if !ok || !v.Known || v.Int == nil {
		return 0, diag.NewSemantic(diag.KindExpectedConstant, loc, "slice bounds must be constant")
	}
	return int(v.Int.Int64()), nil
}

// analyzeField lowers `object.name`: a structure field access against
// a Place narrows it with a PathStep; against a module, a qualified
// lookup; otherwise (a struct value already fully materialized on the
// stack) it is rejected as a documented simplification — field access
// on a non-Place struct rvalue requires binding it to a `let` first.
func (a *Analyzer) analyzeField(n *ast.Field) (element.Element, *diag.Diagnostic) {
	if mod, ok := n.Object.(*ast.Identifier); ok {
		if item, found := a.cur.Resolve(mod.Name); found && item.Kind == scope.ItemModule {
			return a.analyzeIdentifierIn(item.Module, n.Name, n.Loc)
		}
	}
	objEl, d := a.analyzeExpr(n.Object)
	if d != nil {
		return element.Element{}, d
	}
	if objEl.Kind == element.KindModule {
		return a.analyzeIdentifierIn(objEl.Module, n.Name, n.Loc)
	}
	objType := elemType(objEl)
	if objType == nil || objType.Kind != types.Structure {
		return element.Element{}, diag.NewSemantic(diag.KindExpectedStructure, n.Loc, "field access requires a structure")
	}
	fieldDecl, ok := objType.FindField(n.Name)
	if !ok {
		return element.Element{}, diag.NewSemantic(diag.KindUnknownField, n.Loc, "unknown field "+n.Name)
	}
	offset := 0
	for _, f := range objType.Fields {
		if f.Name == n.Name {
			break
		}
		offset += f.Type.FieldWidth()
	}
	if objEl.Kind == element.KindPlace {
		p := objEl.Place
		p.Address += offset
		p.Path = append(append([]element.PathStep{}, p.Path...), element.PathStep{Field: n.Name})
		if p.Value.Known {
			p.Value = p.Value.Fields[n.Name]
		} else {
			p.Value = value.Value{Type: fieldDecl.Type}
		}
		return element.FromPlace(p, n.Loc), nil
	}
	v, _ := objEl.AsValue()
	if v.Known {
		return element.FromValue(v.Fields[n.Name], n.Loc), nil
	}
	return element.Element{}, diag.NewSemantic(diag.KindExpectedPlaceExpression, n.Loc,
		"field access on a computed structure value requires binding it to a variable first")
}

func (a *Analyzer) analyzeIdentifierIn(s *scope.Scope, name string, loc token.Location) (element.Element, *diag.Diagnostic) {
	item, ok := s.ResolveLocal(name)
	if !ok {
		return element.Element{}, diag.NewSemantic(diag.KindUndefinedName, loc, "undefined name "+name)
	}
	switch item.Kind {
	case scope.ItemConstant:
		cv, _ := item.ConstValue.(*value.Value)
		return element.FromConstant(*cv, loc), nil
	case scope.ItemType:
		return element.FromType(item.Type, loc), nil
	case scope.ItemModule:
		return element.FromModule(item.Module, loc), nil
	default:
		return element.FromPath([]string{name}, loc), nil
	}
}

func (a *Analyzer) analyzeTupleIndexExpr(n *ast.TupleIndex) (element.Element, *diag.Diagnostic) {
	objEl, d := a.analyzeExpr(n.Object)
	if d != nil {
		return element.Element{}, d
	}
	objType := elemType(objEl)
	if objType == nil || objType.Kind != types.Tuple {
		return element.Element{}, diag.NewSemantic(diag.KindExpectedTuple, n.Loc, "tuple index requires a tuple")
	}
	if n.Index < 0 || n.Index >= len(objType.Items) {
		return element.Element{}, diag.NewSemantic(diag.KindIndexOutOfBounds, n.Loc, "tuple index out of bounds")
	}
	offset := 0
	for i := 0; i < n.Index; i++ {
		offset += objType.Items[i].FieldWidth()
	}
	if objEl.Kind == element.KindPlace {
		p := objEl.Place
		p.Address += offset
		p.Path = append(append([]element.PathStep{}, p.Path...), element.PathStep{IsConstIdx: true, ConstIdx: n.Index})
		p.Value = value.Value{Type: objType.Items[n.Index]}
		if objEl.Place.Value.Known {
			p.Value = objEl.Place.Value.Elements[n.Index]
		}
		return element.FromPlace(p, n.Loc), nil
	}
	v, _ := objEl.AsValue()
	if v.Known {
		return element.FromValue(v.Elements[n.Index], n.Loc), nil
	}
	return element.Element{}, diag.NewSemantic(diag.KindExpectedPlaceExpression, n.Loc,
		"tuple index on a computed value requires binding it to a variable first")
}

// analyzeAssign lowers `target (op)= value`, per spec.md §4.A's
// "Assignment is a statement-level operator" rule (modeled as an Expr
// node for uniform handling inside expression statements).
func (a *Analyzer) analyzeAssign(n *ast.Assign) (element.Element, *diag.Diagnostic) {
	targetEl, d := a.analyzeExpr(n.Target)
	if d != nil {
		return element.Element{}, d
	}
	if targetEl.Kind != element.KindPlace {
		return element.Element{}, diag.NewSemantic(diag.KindExpectedPlaceExpression, n.Loc, "assignment target must be a place")
	}
	if !targetEl.Place.Mutable {
		return element.Element{}, diag.NewSemantic(diag.KindImmutabilityViolation, n.Loc, "cannot assign to immutable "+targetEl.Place.Name)
	}
	rhsEl, d := a.analyzeExpr(n.Value)
	if d != nil {
		return element.Element{}, d
	}
	if n.Operator != "" {
		final, d := element.Binary(n.Loc, n.Operator, targetEl, rhsEl)
		if d != nil {
			return element.Element{}, d
		}
		if final.Value.Known {
			a.materialize(final, n.Loc)
		} else {
			// targetEl (the current value) must be re-loaded since
			// compound assignment reads-then-writes; rhsEl was already
			// materialized by analyzeExpr(n.Value) only if unfolded —
			// reload the place explicitly to get evaluation order right.
			a.gen.PushInstruction(bytecode.LoadPush{Base: bytecode.New(n.Loc), Address: targetEl.Place.Address}, n.Loc)
			a.materialize(rhsEl, n.Loc)
			lv, _ := targetEl.AsValue()
			a.emitBinaryOp(n.Operator, lv.Type, n.Loc)
		}
	} else {
		a.materialize(rhsEl, n.Loc)
	}
	width := targetEl.Place.Value.Type.FieldWidth()
	a.gen.PushInstruction(bytecode.StoreSequence{Base: bytecode.New(n.Loc), Address: targetEl.Place.Address, Size: width}, n.Loc)
	return element.FromValue(value.Unit(), n.Loc), nil
}
