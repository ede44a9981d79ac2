// Package bytecode defines the linear instruction stream the
// generator emits (spec.md §4.G): one struct per instruction kind,
// rather than the teacher's byte-packed opcode/chunk encoding. The
// representations are irreconcilable — the teacher's `Chunk` is a
// `[]byte` executed in-process by its own VM, while this stream is
// never executed here; `internal/generator` walks it to patch call
// addresses and to drop dead functions. A struct per instruction
// keeps that walk a plain type switch instead of a byte decoder nobody
// downstream needs. Still grounded on the teacher's instruction-naming
// conventions (`OpAdd`, `OpEqual`, `OpJump`, `OpCall`, `OpReturn`) and
// its separate per-instruction debug-info table (`DebugInfo`/
// `GetDebugInfo`), now folded directly onto each instruction as a
// `Loc` field instead of a parallel slice.
package bytecode

import "github.com/ringlang/ringc/internal/token"

// Instruction is any entry of the generator's linear instruction
// stream.
type Instruction interface {
	Location() token.Location
	instrNode()
}

type Base struct{ Loc token.Location }

func (b Base) Location() token.Location { return b.Loc }
func (Base) instrNode()                 {}

// --- stack / data movement ---

// PushConst pushes a folded constant value (decimal text, radix-
// agnostic) onto the evaluation stack.
type PushConst struct {
	Base
	Value string
}

// LoadPush reads a data-stack slot and pushes its value.
type LoadPush struct {
	Base
	Address int
}

// StoreSequence pops a value and writes it to a data-stack address
// range (the target place's full field-width).
type StoreSequence struct {
	Base
	Address int
	Size    int
}

// StoreSequenceByIndex pops a value and writes it to a data-stack
// address computed at runtime as Address + (index * ElementSize).
type StoreSequenceByIndex struct {
	Base
	Address     int
	ElementSize int
}

// Slice reads ElementSize-wide consecutive slots starting at a
// runtime- or compile-time-computed offset within a TotalSize-wide
// array already on the stack.
type Slice struct {
	Base
	TotalSize   int
	ElementSize int
}

// --- arithmetic / comparison / boolean / bitwise ---

type Add struct {
	Base
	Bitlength int
	Signed    bool
}
type Sub struct {
	Base
	Bitlength int
	Signed    bool
}
type Mul struct {
	Base
	Bitlength int
	Signed    bool
}
type Div struct {
	Base
	Bitlength int
	Signed    bool
}
type Rem struct {
	Base
	Bitlength int
	Signed    bool
}
type Neg struct {
	Base
	Bitlength int
	Signed    bool
}

type Eq struct{ Base }
type Ne struct{ Base }
type Lt struct {
	Base
	Bitlength int
	Signed    bool
}
type Le struct {
	Base
	Bitlength int
	Signed    bool
}
type Gt struct {
	Base
	Bitlength int
	Signed    bool
}
type Ge struct {
	Base
	Bitlength int
	Signed    bool
}

type And struct{ Base }
type Or struct{ Base }
type Xor struct{ Base }
type Not struct{ Base }

type BitAnd struct {
	Base
	Bitlength int
}
type BitOr struct {
	Base
	Bitlength int
}
type BitXor struct {
	Base
	Bitlength int
}
type BitShl struct {
	Base
	Bitlength int
}
type BitShr struct {
	Base
	Bitlength int
}
type BitNot struct {
	Base
	Bitlength int
}

// Cast converts the stack top's number to Bitlength (and, if ToField
// is set, to the field type).
type Cast struct {
	Base
	Bitlength int
	Signed    bool
	ToField   bool
}

// --- control flow ---

type If struct{ Base }
type Else struct{ Base }
type EndIf struct{ Base }

// ConditionalSelect lowers `if c { a } else { b }` to the backend's
// single `conditional(a, b, cond)` gate (spec.md §4.A/§4.R): emitted
// once both branches and the condition are already on the stack.
type ConditionalSelect struct {
	Base
	Bitlength int
}

// LoopBegin/LoopEnd bracket a for-loop body; Iterations is the
// compile-time-known trip count.
type LoopBegin struct {
	Base
	Iterations int
}
type LoopEnd struct{ Base }

// Call invokes the function at Address (the callee's type id until
// IntoApplication's patchCalls rewrites it to the final address, with
// or without dead-function elimination).
type Call struct {
	Base
	Address   int
	ArgsSize  int
	RetSize   int
}

// CallIntrinsic invokes a named standard-library builtin (spec.md
// §4.I) rather than a user-defined function at a fixed address — the
// generator never resolves Name to an address; the backend façade
// dispatches on it directly.
type CallIntrinsic struct {
	Base
	Name     string
	ArgsSize int
	RetSize  int
}

// Return pops Size field elements as the function's return value.
type Return struct {
	Base
	Size int
}

// Exit marks circuit/contract-method entry-point completion.
type Exit struct{ Base }

// --- debug / location markers ---

// FileMarker and FunctionMarker are emitted once at the start of each
// function by Generator.StartFunction; LineMarker/ColumnMarker are
// emitted by PushInstruction only when they differ from the last
// emission (redundancy suppression, per spec.md §4.G).
type FileMarker struct {
	Base
	File string
}
type FunctionMarker struct {
	Base
	Name string
}
type LineMarker struct{ Base }
type ColumnMarker struct{ Base }

// Dbg lowers the `dbg!` intrinsic: a formatted print of the named
// arguments' current values, never synthesizing any gate.
type Dbg struct {
	Base
	Format string
	Args   int
}

// Require lowers the `require` intrinsic/backend call: asserts the
// top-of-stack boolean is true, with an optional human annotation.
type Require struct {
	Base
	Annotation string
}

// New builds the Base embedded by every instruction's constructor.
func New(loc token.Location) Base { return Base{Loc: loc} }
