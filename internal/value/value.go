// Package value implements the analyzer's compile-time value domain
// and the sized-integer range arithmetic used both for constant
// folding and for the diagnostic range checks that guard
// every primitive operation. Grounded on the teacher's own expression
// evaluator (internal/compiler's constant-folding switch), generalized
// from Go's untyped numeric constants to explicit bit-width-aware
// big.Int arithmetic since this source language's integers are
// arbitrarily (but boundedly) sized.
package value

import (
	"fmt"
	"math/big"

	"github.com/ringlang/ringc/internal/types"
)

// Value is a compile-time-known or type-only analyzer value, the sum
// described in spec.md §3's "Value (analyzer domain)" entry.
type Value struct {
	Type *types.Type

	// Known is set once Int/Bool/Elements carry a folded constant.
	Known bool
	Int   *big.Int // IntegerUnsigned/IntegerSigned/Field
	Bool  bool
	Str   string

	Elements []Value            // Array/Tuple elements, in order
	Fields   map[string]Value   // Structure field values, by name
	FieldOrd []string           // Structure field name order (matches Type.Fields)
}

func Unit() Value { return Value{Type: types.NewUnit(), Known: true} }

func Boolean(v bool) Value {
	return Value{Type: types.NewBoolean(), Known: true, Bool: v}
}

func UnknownBoolean() Value { return Value{Type: types.NewBoolean()} }

func Integer(signed bool, bitlength int, v *big.Int) Value {
	return Value{Type: types.NewInteger(signed, bitlength), Known: v != nil, Int: v}
}

func UnknownInteger(signed bool, bitlength int) Value {
	return Value{Type: types.NewInteger(signed, bitlength)}
}

func Field(v *big.Int) Value {
	return Value{Type: types.NewField(), Known: v != nil, Int: v}
}

func UnknownField() Value { return Value{Type: types.NewField()} }

func String(s string) Value {
	return Value{Type: types.NewString(), Known: true, Str: s}
}

// Range returns the inclusive [min, max] representable by a sized
// integer, per spec.md's `2 ≤ bitlength ≤ 248` invariant: unsigned
// integers span [0, 2^n - 1], signed span [-2^(n-1), 2^(n-1) - 1].
func Range(signed bool, bitlength int) (min, max *big.Int) {
	one := big.NewInt(1)
	if !signed {
		max = new(big.Int).Sub(new(big.Int).Lsh(one, uint(bitlength)), one)
		return big.NewInt(0), max
	}
	half := new(big.Int).Lsh(one, uint(bitlength-1))
	max = new(big.Int).Sub(half, one)
	min = new(big.Int).Neg(half)
	return min, max
}

// InRange reports whether v lies in the representable range of the
// given sign/bitlength.
func InRange(signed bool, bitlength int, v *big.Int) bool {
	min, max := Range(signed, bitlength)
	return v.Cmp(min) >= 0 && v.Cmp(max) <= 0
}

// OverflowError is raised wherever a folded value would not fit its
// declared or inferred bit-width.
type OverflowError struct {
	Value     *big.Int
	Signed    bool
	Bitlength int
}

func (e *OverflowError) Error() string {
	kind := "u"
	if e.Signed {
		kind = "i"
	}
	return fmt.Sprintf("value %s does not fit %s%d", e.Value.String(), kind, e.Bitlength)
}

// MinimalUnsignedBitlength returns the smallest unsigned bit width
// that can represent every value in [lo, hi], used to infer a
// for-loop counter's type (spec.md's for-loop bitlength-inference
// rule).
func MinimalUnsignedBitlength(lo, hi *big.Int) int {
	hibound := hi
	if lo.CmpAbs(hi) > 0 {
		hibound = lo
	}
	bits := hibound.BitLen()
	if bits < types.MinBitlength {
		bits = types.MinBitlength
	}
	if bits > types.MaxBitlength {
		bits = types.MaxBitlength
	}
	return bits
}

// MinimalBitlengthForLiteral returns the smallest (signed?, bitlength)
// that fits v, preferring unsigned when v is non-negative, per the
// analyzer's numeric-literal inference rule.
func MinimalBitlengthForLiteral(v *big.Int) (signed bool, bitlength int) {
	if v.Sign() < 0 {
		n := new(big.Int).Neg(v)
		bits := n.BitLen() + 1
		if bits < types.MinBitlength {
			bits = types.MinBitlength
		}
		return true, bits
	}
	bits := v.BitLen()
	if bits < types.MinBitlength {
		bits = types.MinBitlength
	}
	return false, bits
}

func (v Value) IsZero() bool {
	return v.Known && v.Int != nil && v.Int.Sign() == 0
}

func (v Value) String() string {
	switch {
	case v.Type == nil:
		return "<unknown>"
	case v.Type.Kind == types.Boolean:
		if !v.Known {
			return "bool(?)"
		}
		return fmt.Sprintf("%v", v.Bool)
	case v.Type.IsInteger() || v.Type.Kind == types.Field:
		if !v.Known {
			return v.Type.String() + "(?)"
		}
		return v.Int.String()
	case v.Type.Kind == types.String:
		return v.Str
	default:
		return v.Type.String()
	}
}
