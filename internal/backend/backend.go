// Package backend defines the façade the generator targets (spec.md
// §4.R): a thin set of named entry points that synthesize R1CS gates
// in whatever downstream proving system is wired in. The core never
// calls a concrete prover — it only calls this interface — and it
// never executes a proof itself (spec.md §1's explicit non-goal).
// Grounded on the teacher's own external-collaborator boundaries (the
// VM's `internal/vm` package, now removed, exposed a comparable
// closed set of opcodes to the compiler without the compiler knowing
// how they executed); this package keeps that same shape of "compiler
// knows the contract, not the implementation."
package backend

import "math/big"

// Bit is one allocated boolean wire. Implementations are opaque
// backend-owned handles; the generator only ever passes them back
// into other Backend calls, never inspects them.
type Bit any

// Number is one allocated field-element wire, decomposed into a fixed
// bit length per spec.md §4.R's range-decomposition contract.
type Number any

// ValueFn supplies a witness value lazily, the way a real backend
// only needs concrete witness data at proving time, not at circuit-
// synthesis time.
type ValueFn func() *big.Int

// Backend is the generator's target. Every method corresponds
// to one row of spec.md §4.R's contract table, except that the table's
// single "add/sub(a,b,bitlength)" row maps to separate Add and Sub
// methods.
type Backend interface {
	AllocateBoolean(v bool) (Bit, error)
	AllocateNumber(decimal string) (Number, error)
	AllocateInput(value ValueFn, bitlength int) (Number, error)
	AllocateWitness(value ValueFn, bitlength int) (Number, error)

	And(a, b Bit) (Bit, error)
	Or(a, b Bit) (Bit, error)
	Xor(a, b Bit) (Bit, error)
	Not(a Bit) (Bit, error)

	Add(a, b Number, bitlength int, signed bool) (Number, error)
	Sub(a, b Number, bitlength int, signed bool) (Number, error)
	Multiply(a, b Number, bitlength int, signed bool) (Number, error)
	Divide(a, b Number, bitlength int) (quotient, remainder Number, err error)
	Cast(a Number, bitlength int, signed bool) (Number, error)
	Negate(a Number, bitlength int) (Number, error)

	Equals(a, b Number) (Bit, error)
	NotEquals(a, b Number) (Bit, error)
	Greater(a, b Number, bitlength int, signed bool) (Bit, error)
	Lesser(a, b Number, bitlength int, signed bool) (Bit, error)
	GreaterEquals(a, b Number, bitlength int, signed bool) (Bit, error)
	LesserEquals(a, b Number, bitlength int, signed bool) (Bit, error)

	Conditional(a, b Number, cond Bit) (Number, error)
	Require(v Bit, annotation string) error
}
