// Package element implements the analyzer's expression evaluation
// stack node (spec.md §3's "Element" sum) and the typed primitive
// operation rules every binary/unary operator is checked and folded
// against. Grounded on the teacher's expression-evaluation switch in
// internal/compiler, generalized from Go's dynamically-typed
// interface{} values into an explicit tagged union since every
// operation here must be checked against a statically declared type
// before it is allowed to fold or emit.
package element

import (
	"math/big"

	"github.com/ringlang/ringc/internal/ast"
	"github.com/ringlang/ringc/internal/diag"
	"github.com/ringlang/ringc/internal/scope"
	"github.com/ringlang/ringc/internal/token"
	"github.com/ringlang/ringc/internal/types"
	"github.com/ringlang/ringc/internal/value"
)

// Kind discriminates the Element sum.
type Kind int

const (
	KindPlace Kind = iota
	KindValue
	KindConstant
	KindType
	KindModule
	KindArgumentList
	KindPath
)

// Place is a named, possibly mutable lvalue (spec.md §3's "Place"
// entry): an identifier bound to a data-stack address, carrying its
// current analyzer-known value and an access path of indices/fields
// accumulated by postfix indexing/field expressions.
type Place struct {
	Name    string
	Value   value.Value
	Mutable bool
	Address int
	Path    []PathStep
}

// PathStep is one index or field hop accumulated while analyzing a
// chain of `[]`/`.` postfix operators against a Place.
type PathStep struct {
	Field      string // set for a `.name` or `.N` tuple-index step
	IsConstIdx bool
	ConstIdx   int
	// DynIndex is set when the step's index could not be folded at
	// compile time.
	DynIndex bool
}

// Element is one node on the analyzer's expression-evaluation stack.
type Element struct {
	Kind Kind

	Place    Place
	Value    value.Value
	Type     *types.Type
	Module   *scope.Scope
	Path     []string
	Args     []Element
	Loc      token.Location
}

func FromPlace(p Place, loc token.Location) Element {
	return Element{Kind: KindPlace, Place: p, Loc: loc}
}

func FromValue(v value.Value, loc token.Location) Element {
	return Element{Kind: KindValue, Value: v, Loc: loc}
}

func FromConstant(v value.Value, loc token.Location) Element {
	return Element{Kind: KindConstant, Value: v, Loc: loc}
}

func FromType(t *types.Type, loc token.Location) Element {
	return Element{Kind: KindType, Type: t, Loc: loc}
}

func FromModule(m *scope.Scope, loc token.Location) Element {
	return Element{Kind: KindModule, Module: m, Loc: loc}
}

func FromPath(segs []string, loc token.Location) Element {
	return Element{Kind: KindPath, Path: segs, Loc: loc}
}

// AsValue auto-dereferences a Place to its carried Value, per rule 1
// of spec.md's typed primitive operation rules ("Place auto-derefs to
// its carried value"). Constant and Value elements pass through
// unchanged.
func (e Element) AsValue() (value.Value, bool) {
	switch e.Kind {
	case KindPlace:
		return e.Place.Value, true
	case KindValue, KindConstant:
		return e.Value, true
	default:
		return value.Value{}, false
	}
}

func (e Element) IsConstant() bool {
	return e.Kind == KindConstant || (e.Kind == KindValue && e.Value.Known) ||
		(e.Kind == KindPlace && e.Place.Value.Known && !e.Place.Mutable)
}

// family classifies an ast.BinaryOp into the operand-rule category
// spec.md's "Typed primitive operation rules" groups operators by.
type family int

const (
	famArith family = iota
	famCompare
	famBoolean
	famBitwise
)

func classify(op ast.BinaryOp) family {
	switch op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpRem:
		return famArith
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return famCompare
	case ast.OpAndAnd, ast.OpOrOr, ast.OpXorXor:
		return famBoolean
	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpShl, ast.OpShr:
		return famBitwise
	default:
		return famArith
	}
}

// Binary applies op to left/right, enforcing the operand-compatibility
// rule for op's family, folding when both sides are constants, and
// returning the diagnostic to raise on violation.
func Binary(loc token.Location, op ast.BinaryOp, left, right Element) (Element, *diag.Diagnostic) {
	lv, lok := left.AsValue()
	rv, rok := right.AsValue()
	if !lok || !rok {
		return Element{}, diag.NewSemantic(diag.KindOperandMustBeValue, loc, "operand is not a value")
	}

	switch classify(op) {
	case famArith:
		return binaryArith(loc, op, lv, rv)
	case famCompare:
		return binaryCompare(loc, op, lv, rv)
	case famBoolean:
		return binaryBoolean(loc, op, lv, rv)
	case famBitwise:
		return binaryBitwise(loc, op, lv, rv)
	}
	return Element{}, diag.NewSemantic(diag.KindInvalidOperation, loc, "unsupported operator")
}

func sameScalarType(a, b *types.Type) bool { return a.Equal(b) }

func binaryArith(loc token.Location, op ast.BinaryOp, lv, rv value.Value) (Element, *diag.Diagnostic) {
	if !(lv.Type.IsInteger() || lv.Type.Kind == types.Field) || !sameScalarType(lv.Type, rv.Type) {
		return Element{}, diag.NewSemantic(diag.KindTypeMismatch, loc, "arithmetic operands must be matching integer or field types")
	}
	if lv.Type.Kind == types.Field && (op == ast.OpDiv) {
		return Element{}, diag.NewSemantic(diag.KindForbiddenFieldDivision, loc, "field values cannot be divided")
	}
	if lv.Type.Kind == types.Field && (op == ast.OpRem) {
		return Element{}, diag.NewSemantic(diag.KindForbiddenFieldRemainder, loc, "field values have no remainder operation")
	}

	result := value.Value{Type: lv.Type}
	if lv.Known && rv.Known {
		folded, err := foldArith(op, lv.Int, rv.Int)
		if err != nil {
			return Element{}, diag.NewValue(diag.KindDivisionByZero, loc, err.Error())
		}
		if lv.Type.Kind != types.Field && !value.InRange(lv.Type.IsSigned(), lv.Type.Bitlength, folded) {
			d := diag.NewValue(diag.KindIntegerOverflow, loc,
				(&value.OverflowError{Value: folded, Signed: lv.Type.IsSigned(), Bitlength: lv.Type.Bitlength}).Error())
			return Element{}, d
		}
		result.Known = true
		result.Int = folded
	}
	return FromValue(result, loc), nil
}

func foldArith(op ast.BinaryOp, a, b *big.Int) (*big.Int, error) {
	switch op {
	case ast.OpAdd:
		return new(big.Int).Add(a, b), nil
	case ast.OpSub:
		return new(big.Int).Sub(a, b), nil
	case ast.OpMul:
		return new(big.Int).Mul(a, b), nil
	case ast.OpDiv:
		if b.Sign() == 0 {
			return nil, divByZeroError{}
		}
		return new(big.Int).Quo(a, b), nil
	case ast.OpRem:
		if b.Sign() == 0 {
			return nil, divByZeroError{}
		}
		return new(big.Int).Rem(a, b), nil
	default:
		return nil, divByZeroError{}
	}
}

type divByZeroError struct{}

func (divByZeroError) Error() string { return "division by zero" }

func binaryCompare(loc token.Location, op ast.BinaryOp, lv, rv value.Value) (Element, *diag.Diagnostic) {
	numeric := lv.Type.IsInteger() || lv.Type.Kind == types.Field
	boolEq := lv.Type.Kind == types.Boolean && (op == ast.OpEq || op == ast.OpNe)
	unitEq := lv.Type.Kind == types.Unit && (op == ast.OpEq || op == ast.OpNe)
	if !((numeric && sameScalarType(lv.Type, rv.Type)) || boolEq || unitEq) {
		return Element{}, diag.NewSemantic(diag.KindTypesMismatchEquals, loc, "comparison operands must be matching types")
	}
	result := value.Value{Type: types.NewBoolean()}
	if lv.Known && rv.Known {
		var b bool
		switch {
		case unitEq:
			b = op == ast.OpEq
		case boolEq:
			eq := lv.Bool == rv.Bool
			b = eq == (op == ast.OpEq)
		default:
			c := lv.Int.Cmp(rv.Int)
			switch op {
			case ast.OpEq:
				b = c == 0
			case ast.OpNe:
				b = c != 0
			case ast.OpLt:
				b = c < 0
			case ast.OpLe:
				b = c <= 0
			case ast.OpGt:
				b = c > 0
			case ast.OpGe:
				b = c >= 0
			}
		}
		result.Known = true
		result.Bool = b
	}
	return FromValue(result, loc), nil
}

func binaryBoolean(loc token.Location, op ast.BinaryOp, lv, rv value.Value) (Element, *diag.Diagnostic) {
	if lv.Type.Kind != types.Boolean || rv.Type.Kind != types.Boolean {
		return Element{}, diag.NewSemantic(diag.KindTypeMismatch, loc, "boolean operator requires boolean operands")
	}
	result := value.Value{Type: types.NewBoolean()}
	if lv.Known && rv.Known {
		var b bool
		switch op {
		case ast.OpAndAnd:
			b = lv.Bool && rv.Bool
		case ast.OpOrOr:
			b = lv.Bool || rv.Bool
		case ast.OpXorXor:
			b = lv.Bool != rv.Bool
		}
		result.Known = true
		result.Bool = b
	}
	return FromValue(result, loc), nil
}

func binaryBitwise(loc token.Location, op ast.BinaryOp, lv, rv value.Value) (Element, *diag.Diagnostic) {
	if !lv.Type.IsInteger() {
		return Element{}, diag.NewSemantic(diag.KindTypeMismatch, loc, "bitwise operators require integer operands")
	}
	if op == ast.OpShl || op == ast.OpShr {
		if rv.Type.IsSigned() {
			return Element{}, diag.NewSemantic(diag.KindTypeMismatch, loc, "shift amount must be unsigned")
		}
	} else if !sameScalarType(lv.Type, rv.Type) {
		return Element{}, diag.NewSemantic(diag.KindTypeMismatch, loc, "bitwise operands must be matching integer types")
	}

	result := value.Value{Type: lv.Type}
	if lv.Known && rv.Known {
		folded := foldBitwise(op, lv.Int, rv.Int, lv.Type.Bitlength)
		if !value.InRange(lv.Type.IsSigned(), lv.Type.Bitlength, folded) {
			return Element{}, diag.NewValue(diag.KindIntegerOverflow, loc,
				(&value.OverflowError{Value: folded, Signed: lv.Type.IsSigned(), Bitlength: lv.Type.Bitlength}).Error())
		}
		result.Known = true
		result.Int = folded
	}
	return FromValue(result, loc), nil
}

func foldBitwise(op ast.BinaryOp, a, b *big.Int, bits int) *big.Int {
	switch op {
	case ast.OpBitAnd:
		return new(big.Int).And(a, b)
	case ast.OpBitOr:
		return new(big.Int).Or(a, b)
	case ast.OpBitXor:
		return new(big.Int).Xor(a, b)
	case ast.OpShl:
		return new(big.Int).Lsh(a, uint(b.Uint64()))
	case ast.OpShr:
		return new(big.Int).Rsh(a, uint(b.Uint64()))
	default:
		return new(big.Int)
	}
}

// Unary applies a prefix unary operator, per spec.md's negation/not/
// bitnot rules.
func Unary(loc token.Location, op ast.UnaryOp, operand Element) (Element, *diag.Diagnostic) {
	v, ok := operand.AsValue()
	if !ok {
		return Element{}, diag.NewSemantic(diag.KindOperandMustBeValue, loc, "operand is not a value")
	}
	switch op {
	case ast.OpNot:
		if v.Type.Kind != types.Boolean {
			return Element{}, diag.NewSemantic(diag.KindTypeMismatch, loc, "! requires a boolean operand")
		}
		result := value.Value{Type: types.NewBoolean()}
		if v.Known {
			result.Known = true
			result.Bool = !v.Bool
		}
		return FromValue(result, loc), nil
	case ast.OpBitNot:
		if !v.Type.IsInteger() {
			return Element{}, diag.NewSemantic(diag.KindTypeMismatch, loc, "~ requires an integer operand")
		}
		result := value.Value{Type: v.Type}
		if v.Known {
			mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(v.Type.Bitlength)), big.NewInt(1))
			result.Known = true
			result.Int = new(big.Int).Xor(v.Int, mask)
		}
		return FromValue(result, loc), nil
	case ast.OpNeg:
		if v.Type.Kind == types.Field {
			result := value.Value{Type: v.Type}
			if v.Known {
				result.Known = true
				result.Int = new(big.Int).Neg(v.Int)
			}
			return FromValue(result, loc), nil
		}
		if !v.Type.IsInteger() {
			return Element{}, diag.NewSemantic(diag.KindTypeMismatch, loc, "negation requires a signed integer or field operand")
		}
		signed := true
		bits := v.Type.Bitlength
		if !v.Type.IsSigned() {
			bits++ // unsigned negation promotes to signed bitlength+1
		}
		result := value.Value{Type: types.NewInteger(signed, bits)}
		if v.Known {
			n := new(big.Int).Neg(v.Int)
			if !value.InRange(signed, bits, n) {
				return Element{}, diag.NewValue(diag.KindIntegerOverflow, loc,
					(&value.OverflowError{Value: n, Signed: signed, Bitlength: bits}).Error())
			}
			result.Known = true
			result.Int = n
		}
		return FromValue(result, loc), nil
	default:
		return Element{}, diag.NewSemantic(diag.KindInvalidOperation, loc, "unsupported unary operator")
	}
}

// Cast applies `as`, per spec.md's casting rules.
func Cast(loc token.Location, operand Element, target *types.Type) (Element, *diag.Diagnostic) {
	v, ok := operand.AsValue()
	if !ok {
		return Element{}, diag.NewSemantic(diag.KindOperandMustBeValue, loc, "operand is not a value")
	}
	srcNumeric := v.Type.IsInteger() || v.Type.Kind == types.Field
	dstNumeric := target.IsInteger() || target.Kind == types.Field
	if !srcNumeric || !dstNumeric {
		if v.Type.Kind == types.Boolean || v.Type.Kind == types.Unit {
			if !v.Type.Equal(target) {
				return Element{}, diag.NewSemantic(diag.KindInvalidCast, loc, "cannot cast boolean or unit to a different type")
			}
		} else {
			return Element{}, diag.NewSemantic(diag.KindInvalidCast, loc, "invalid cast")
		}
	}
	if v.Type.Kind == types.Field && target.IsInteger() {
		if !v.Known {
			return Element{}, diag.NewSemantic(diag.KindInvalidCast, loc, "field-to-integer cast requires a constant value")
		}
		if !value.InRange(target.IsSigned(), target.Bitlength, v.Int) {
			return Element{}, diag.NewValue(diag.KindIntegerOverflow, loc,
				(&value.OverflowError{Value: v.Int, Signed: target.IsSigned(), Bitlength: target.Bitlength}).Error())
		}
	}
	result := value.Value{Type: target}
	if v.Known && srcNumeric && dstNumeric {
		if target.Kind != types.Field && !value.InRange(target.IsSigned(), target.Bitlength, v.Int) {
			return Element{}, diag.NewValue(diag.KindIntegerOverflow, loc,
				(&value.OverflowError{Value: v.Int, Signed: target.IsSigned(), Bitlength: target.Bitlength}).Error())
		}
		result.Known = true
		result.Int = v.Int
	} else if v.Known {
		result.Known = v.Known
		result.Bool = v.Bool
	}
	return FromValue(result, loc), nil
}
