// Package generator implements the per-function data-stack frame
// model, instruction emission, and function-address bookkeeping
// described in spec.md §4.G, plus the dead-function-elimination pass
// and the final `Application` artifact assembly. Grounded on the
// teacher's internal/compiler bytecode-emission pattern (a single
// growable instruction buffer, a stack-depth counter reset per
// function, a location-tracking field that suppresses redundant debug
// opcodes) — generalized from the teacher's in-process VM target to
// this project's instructions, which are only ever walked by the
// external backend façade, never executed here.
package generator

import (
	"github.com/google/uuid"

	"github.com/ringlang/ringc/internal/bytecode"
	"github.com/ringlang/ringc/internal/token"
	"github.com/ringlang/ringc/internal/types"
)

// Entry is a program-level callable retained across dead-function
// elimination: a circuit's `main`, a contract method, or a unit test.
type Entry struct {
	TypeID  uint64
	Name    string
	Mutable bool
	Input   *types.Type
	Output  *types.Type
}

// UnitTest records a `#[test]` function's metadata (spec.md §6).
type UnitTest struct {
	TypeID      uint64
	Name        string
	ShouldPanic bool
	Ignored     bool
}

// StorageField is one contract storage slot, with its byte offset
// recovered from the original zinc storage-layout format (SPEC_FULL.md
// §4's "Contract storage layout serialization" supplement).
type StorageField struct {
	Name   string
	Type   *types.Type
	Offset int
}

// funcSpan records one StartFunction call's raw instruction range,
// used both for redundant-marker suppression bookkeeping and as the
// unit of compaction during dead-function elimination.
type funcSpan struct {
	typeID uint64
	start  int
}

// Generator accumulates one program's instruction stream and
// per-function bookkeeping (spec.md §4.G's Generator state list).
type Generator struct {
	instructions []bytecode.Instruction
	funcAddr     map[uint64]int
	funcOrder    []funcSpan
	stackPtr     int
	lastFile     int
	lastLine     int
	lastCol      int
	haveLast     bool
	entries      map[uint64]Entry
	unitTests    map[uint64]UnitTest
	storage      []StorageField
	buildID      string

	// callIdx records the instruction-stream index of every Call
	// emitted with a non-zero location. Dead-function elimination and
	// patchCalls do not read it; they scan the instruction stream.
	// Pointers into instructions would be invalidated by later
	// append-triggered reallocation, so indices are kept instead.
	callIdx []int
}

// New creates an empty Generator with a fresh per-compilation build id
// (SPEC_FULL.md §3: `google/uuid`, embedded in the Application header;
// internal/buildcache keys do not include it).
func New() *Generator {
	return &Generator{
		funcAddr:  make(map[uint64]int),
		entries:   make(map[uint64]Entry),
		unitTests: make(map[uint64]UnitTest),
		buildID:   uuid.NewString(),
	}
}

// BuildID returns this compilation's unique id.
func (g *Generator) BuildID() string { return g.buildID }

// StartFunction records typeID's entry address, resets the data-stack
// pointer, and emits the FileMarker/FunctionMarker pair spec.md §4.G
// requires at the start of every function.
func (g *Generator) StartFunction(loc token.Location, typeID uint64, name string) {
	addr := len(g.instructions)
	g.funcAddr[typeID] = addr
	g.funcOrder = append(g.funcOrder, funcSpan{typeID: typeID, start: addr})
	g.stackPtr = 0
	g.haveLast = false
	g.instructions = append(g.instructions, bytecode.FileMarker{Base: bytecode.New(loc), File: loc.FilePath()})
	g.instructions = append(g.instructions, bytecode.FunctionMarker{Base: bytecode.New(loc), Name: name})
}

// DefineVariable bumps the data-stack pointer by size and returns the
// address of the newly reserved slot. Anonymous intermediate values
// pass size only; named Places keep the address in their own
// scope.Item.
func (g *Generator) DefineVariable(size int) int {
	addr := g.stackPtr
	g.stackPtr += size
	return addr
}

// StackDepth reports the current function's live stack-pointer
// position (used by internal/semantic to size contract storage and
// argument frames before the first DefineVariable call).
func (g *Generator) StackDepth() int { return g.stackPtr }

// PushInstruction appends inst, emitting LineMarker/ColumnMarker first
// only when loc differs from the last emission (spec.md §4.G's
// redundant-location-marker-suppression contract).
func (g *Generator) PushInstruction(inst bytecode.Instruction, loc token.Location) {
	if loc.IsZero() {
		g.instructions = append(g.instructions, inst)
		return
	}
	if !g.haveLast || loc.FileID != g.lastFile || loc.Line != g.lastLine {
		g.instructions = append(g.instructions, bytecode.LineMarker{Base: bytecode.New(loc)})
		g.lastLine = loc.Line
		g.lastFile = loc.FileID
		g.haveLast = true
		g.lastCol = -1
	}
	if loc.Column != g.lastCol {
		g.instructions = append(g.instructions, bytecode.ColumnMarker{Base: bytecode.New(loc)})
		g.lastCol = loc.Column
	}
	if _, ok := inst.(bytecode.Call); ok {
		g.callIdx = append(g.callIdx, len(g.instructions))
	}
	g.instructions = append(g.instructions, inst)
}

// RegisterEntry records a circuit/contract/unit-test entry point,
// keyed by its type id, surviving dead-function elimination
// unconditionally.
func (g *Generator) RegisterEntry(e Entry) { g.entries[e.TypeID] = e }

// RegisterUnitTest records a `#[test]` function's metadata.
func (g *Generator) RegisterUnitTest(t UnitTest) { g.unitTests[t.TypeID] = t }

// SetStorage records a contract's field layout, computing each field's
// byte offset from the cumulative field width of the fields before it
// (SPEC_FULL.md §4's contract storage layout supplement).
func (g *Generator) SetStorage(fields []StorageField) {
	offset := 0
	for i := range fields {
		fields[i].Offset = offset
		offset += fields[i].Type.FieldWidth()
	}
	g.storage = fields
}

// Storage returns the contract's storage layout, if any.
func (g *Generator) Storage() []StorageField { return g.storage }

// FuncAddress resolves typeID's current (pre-elimination) entry
// address. Calls do not use it: internal/semantic emits each Call with
// the callee's type id in its Address field, and patchCalls rewrites
// that to the final address in IntoApplication.
func (g *Generator) FuncAddress(typeID uint64) (int, bool) {
	a, ok := g.funcAddr[typeID]
	return a, ok
}
