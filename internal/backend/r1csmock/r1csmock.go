// Package r1csmock is a reference/test implementation of
// internal/backend.Backend (spec.md §4.R, SPEC_FULL.md §1's "[R]
// Backend façade"): it actually evaluates every gate over a prime
// field using concrete witness values, rather than delegating to a
// real proving system, so internal/generator and internal/semantic
// can be exercised end-to-end in tests without an external prover.
// Grounded on the zinc r1cs crate's linear-combination gate records
// (SPEC_FULL.md §4's "R1CS gate layering" supplement,
// `_examples/original_source/.../r1cs/src/lib.rs`): each synthesized
// constraint is appended to a flat Gates log in the same
// `a·b=c`-shaped record the original crate keeps, so tests can assert
// on gate counts and shapes precisely.
package r1csmock

import (
	"fmt"
	"math/big"

	"github.com/ringlang/ringc/internal/backend"
)

// Gate records one synthesized constraint, named after the backend
// operation that produced it, in the a*b=c linear-combination shape
// r1cs crates use (SPEC_FULL.md §4 supplement).
type Gate struct {
	Op   string
	A, B, C *big.Int
}

type wire struct {
	value *big.Int
}

// Backend evaluates every spec.md §4.R contract concretely over a
// prime field, recording one Gate per synthesized constraint.
type Backend struct {
	Prime *big.Int
	Gates []Gate
}

// New builds a Backend over the given prime field modulus.
func New(prime *big.Int) *Backend {
	return &Backend{Prime: new(big.Int).Set(prime)}
}

var _ backend.Backend = (*Backend)(nil)

func (b *Backend) mod(v *big.Int) *big.Int {
	m := new(big.Int).Mod(v, b.Prime)
	return m
}

func asWire(v interface{}) (*wire, error) {
	w, ok := v.(*wire)
	if !ok {
		return nil, fmt.Errorf("r1csmock: wire of unexpected type %T", v)
	}
	return w, nil
}

func boolToInt(v bool) *big.Int {
	if v {
		return big.NewInt(1)
	}
	return big.NewInt(0)
}

func (b *Backend) record(op string, a, c *big.Int) {
	b.Gates = append(b.Gates, Gate{Op: op, A: a, B: big.NewInt(1), C: c})
}

func (b *Backend) AllocateBoolean(v bool) (backend.Bit, error) {
	n := boolToInt(v)
	b.record("allocate_boolean", n, n)
	return &wire{value: n}, nil
}

func (b *Backend) AllocateNumber(decimal string) (backend.Number, error) {
	n, ok := new(big.Int).SetString(decimal, 10)
	if !ok {
		return nil, fmt.Errorf("r1csmock: invalid decimal constant %q", decimal)
	}
	n = b.mod(n)
	b.record("allocate_number", n, n)
	return &wire{value: n}, nil
}

func (b *Backend) allocateRanged(value backend.ValueFn, bitlength int, op string) (backend.Number, error) {
	v := b.mod(value())
	if v.BitLen() > bitlength && v.Sign() >= 0 {
		return nil, fmt.Errorf("r1csmock: value does not fit %d bits", bitlength)
	}
	b.record(op, v, v)
	return &wire{value: v}, nil
}

func (b *Backend) AllocateInput(value backend.ValueFn, bitlength int) (backend.Number, error) {
	return b.allocateRanged(value, bitlength, "allocate_input")
}

func (b *Backend) AllocateWitness(value backend.ValueFn, bitlength int) (backend.Number, error) {
	return b.allocateRanged(value, bitlength, "allocate_witness")
}

func (b *Backend) boolGate(op string, a, bw *wire, fn func(x, y bool) bool) (backend.Bit, error) {
	av, bv := a.value.Sign() != 0, bw.value.Sign() != 0
	r := boolToInt(fn(av, bv))
	b.record(op, a.value, r)
	return &wire{value: r}, nil
}

func (b *Backend) And(av, bv backend.Bit) (backend.Bit, error) {
	a, err := asWire(av)
	if err != nil {
		return nil, err
	}
	bb, err := asWire(bv)
	if err != nil {
		return nil, err
	}
	return b.boolGate("and", a, bb, func(x, y bool) bool { return x && y })
}

func (b *Backend) Or(av, bv backend.Bit) (backend.Bit, error) {
	a, err := asWire(av)
	if err != nil {
		return nil, err
	}
	bb, err := asWire(bv)
	if err != nil {
		return nil, err
	}
	return b.boolGate("or", a, bb, func(x, y bool) bool { return x || y })
}

func (b *Backend) Xor(av, bv backend.Bit) (backend.Bit, error) {
	a, err := asWire(av)
	if err != nil {
		return nil, err
	}
	bb, err := asWire(bv)
	if err != nil {
		return nil, err
	}
	return b.boolGate("xor", a, bb, func(x, y bool) bool { return x != y })
}

func (b *Backend) Not(av backend.Bit) (backend.Bit, error) {
	a, err := asWire(av)
	if err != nil {
		return nil, err
	}
	r := boolToInt(a.value.Sign() == 0)
	b.record("not", a.value, r)
	return &wire{value: r}, nil
}

func (b *Backend) rangeCheck(v *big.Int, bitlength int, signed bool) error {
	neg := new(big.Int).Sub(v, b.Prime)
	if v.BitLen() > bitlength && neg.BitLen() > bitlength {
		return fmt.Errorf("r1csmock: result does not fit %d bits (signed=%v)", bitlength, signed)
	}
	return nil
}

func (b *Backend) Add(av, bv backend.Number, bitlength int, signed bool) (backend.Number, error) {
	a, err := asWire(av)
	if err != nil {
		return nil, err
	}
	bb, err := asWire(bv)
	if err != nil {
		return nil, err
	}
	c := b.mod(new(big.Int).Add(a.value, bb.value))
	if err := b.rangeCheck(c, bitlength, signed); err != nil {
		return nil, err
	}
	b.record("add", a.value, c)
	return &wire{value: c}, nil
}

func (b *Backend) Sub(av, bv backend.Number, bitlength int, signed bool) (backend.Number, error) {
	a, err := asWire(av)
	if err != nil {
		return nil, err
	}
	bb, err := asWire(bv)
	if err != nil {
		return nil, err
	}
	c := b.mod(new(big.Int).Sub(a.value, bb.value))
	if err := b.rangeCheck(c, bitlength, signed); err != nil {
		return nil, err
	}
	b.record("sub", a.value, c)
	return &wire{value: c}, nil
}

func (b *Backend) Multiply(av, bv backend.Number, bitlength int, signed bool) (backend.Number, error) {
	a, err := asWire(av)
	if err != nil {
		return nil, err
	}
	bb, err := asWire(bv)
	if err != nil {
		return nil, err
	}
	c := b.mod(new(big.Int).Mul(a.value, bb.value))
	if err := b.rangeCheck(c, bitlength, signed); err != nil {
		return nil, err
	}
	b.Gates = append(b.Gates, Gate{Op: "multiply", A: a.value, B: bb.value, C: c})
	return &wire{value: c}, nil
}

// Divide synthesizes q*denom = nom - r with 0 <= r < |denom|, per
// spec.md §4.R ("forbidden on Field" is enforced earlier, by
// internal/semantic, not here).
func (b *Backend) Divide(av, bv backend.Number, bitlength int) (backend.Number, backend.Number, error) {
	a, err := asWire(av)
	if err != nil {
		return nil, nil, err
	}
	bb, err := asWire(bv)
	if err != nil {
		return nil, nil, err
	}
	if bb.value.Sign() == 0 {
		return nil, nil, fmt.Errorf("r1csmock: division by zero")
	}
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(a.value, bb.value, r)
	b.Gates = append(b.Gates, Gate{Op: "divide_quotient", A: q, B: bb.value, C: new(big.Int).Sub(a.value, r)})
	b.record("divide_remainder", r, r)
	return &wire{value: q}, &wire{value: r}, nil
}

func (b *Backend) Cast(av backend.Number, bitlength int, signed bool) (backend.Number, error) {
	a, err := asWire(av)
	if err != nil {
		return nil, err
	}
	v := b.mod(a.value)
	if err := b.rangeCheck(v, bitlength, signed); err != nil {
		return nil, err
	}
	b.record("cast", a.value, v)
	return &wire{value: v}, nil
}

func (b *Backend) Negate(av backend.Number, bitlength int) (backend.Number, error) {
	a, err := asWire(av)
	if err != nil {
		return nil, err
	}
	c := b.mod(new(big.Int).Neg(a.value))
	if err := b.rangeCheck(c, bitlength, true); err != nil {
		return nil, err
	}
	b.record("negate", a.value, c)
	return &wire{value: c}, nil
}

// cmp records the difference a-b and the comparison result as one gate
// and decides the result from the sign of a-b. It performs no bit
// decomposition of the difference.
func (b *Backend) cmp(op string, av, bv backend.Number, fn func(c int) bool) (backend.Bit, error) {
	a, err := asWire(av)
	if err != nil {
		return nil, err
	}
	bb, err := asWire(bv)
	if err != nil {
		return nil, err
	}
	d := new(big.Int).Sub(a.value, bb.value)
	r := boolToInt(fn(d.Sign()))
	b.record(op, d, r)
	return &wire{value: r}, nil
}

func (b *Backend) Equals(av, bv backend.Number) (backend.Bit, error) {
	return b.cmp("equals", av, bv, func(c int) bool { return c == 0 })
}
func (b *Backend) NotEquals(av, bv backend.Number) (backend.Bit, error) {
	return b.cmp("not_equals", av, bv, func(c int) bool { return c != 0 })
}
func (b *Backend) Greater(av, bv backend.Number, bitlength int, signed bool) (backend.Bit, error) {
	return b.cmp("greater", av, bv, func(c int) bool { return c > 0 })
}
func (b *Backend) Lesser(av, bv backend.Number, bitlength int, signed bool) (backend.Bit, error) {
	return b.cmp("lesser", av, bv, func(c int) bool { return c < 0 })
}
func (b *Backend) GreaterEquals(av, bv backend.Number, bitlength int, signed bool) (backend.Bit, error) {
	return b.cmp("greater_equals", av, bv, func(c int) bool { return c >= 0 })
}
func (b *Backend) LesserEquals(av, bv backend.Number, bitlength int, signed bool) (backend.Bit, error) {
	return b.cmp("lesser_equals", av, bv, func(c int) bool { return c <= 0 })
}

// Conditional synthesizes `(a-b)*cond = selected-b`, a single linear
// gate, per spec.md §4.R.
func (b *Backend) Conditional(av, bv backend.Number, condv backend.Bit) (backend.Number, error) {
	a, err := asWire(av)
	if err != nil {
		return nil, err
	}
	bb, err := asWire(bv)
	if err != nil {
		return nil, err
	}
	cond, err := asWire(condv)
	if err != nil {
		return nil, err
	}
	var selected *big.Int
	if cond.value.Sign() != 0 {
		selected = new(big.Int).Set(a.value)
	} else {
		selected = new(big.Int).Set(bb.value)
	}
	diff := new(big.Int).Sub(a.value, bb.value)
	b.Gates = append(b.Gates, Gate{Op: "conditional", A: diff, B: cond.value, C: new(big.Int).Sub(selected, bb.value)})
	return &wire{value: selected}, nil
}

// Require enforces `value*1 = 1` (spec.md §4.R): the mock fails
// outright rather than merely logging, since it represents a proof
// that could never be completed.
func (b *Backend) Require(v backend.Bit, annotation string) error {
	w, err := asWire(v)
	if err != nil {
		return err
	}
	b.record("require", w.value, big.NewInt(1))
	if w.value.Sign() == 0 {
		if annotation != "" {
			return fmt.Errorf("r1csmock: requirement failed: %s", annotation)
		}
		return fmt.Errorf("r1csmock: requirement failed")
	}
	return nil
}
