package generator

import (
	"sort"

	"github.com/ringlang/ringc/internal/bytecode"
	"github.com/ringlang/ringc/internal/types"
)

// Kind discriminates the three Application artifact shapes (spec.md
// §3: "Application artifact").
type Kind int

const (
	KindCircuit Kind = iota
	KindContract
	KindLibrary
)

// Method is one contract entry, keyed by name in Application.Methods.
type Method struct {
	TypeID  uint64
	Address int
	Mutable bool
	Input   *types.Type
	Output  *types.Type
}

// Application is the compiled program artifact spec.md §3 describes:
// a Circuit, Contract, or Library, plus its flat instruction vector
// and unit tests. The exact on-disk byte encoding is delegated to the
// witness/manifest layer (spec.md §6); this struct is the in-memory
// record internal/witness and cmd/ringc serialize from.
type Application struct {
	Kind    Kind
	Name    string
	BuildID string

	// Circuit
	EntryAddress int
	Input        *types.Type
	Output       *types.Type

	// Contract
	Storage []StorageField
	Methods map[string]Method

	UnitTests    []UnitTest
	Instructions []bytecode.Instruction
}

// IntoApplication builds the final artifact from every function the
// generator has seen. mainTypeID is the type id of the entry function
// (`main`) for Circuit/Library; it is ignored for Contract, whose
// Methods table enumerates every public method.
// When optimize is true, dead-function elimination runs first (spec.md
// §4.G); either way, every Call's Address field — which carries a
// target type id until this point — is rewritten to the function's
// final instruction-stream address.
func (g *Generator) IntoApplication(kind Kind, name string, mainTypeID uint64, optimize bool) *Application {
	instructions := g.instructions
	funcOrder := g.funcOrder
	funcAddr := g.funcAddr

	if optimize {
		instructions, funcOrder, funcAddr = g.eliminateDeadFunctions(mainTypeID)
	}

	app := &Application{
		Kind:      kind,
		Name:      name,
		BuildID:   g.buildID,
		UnitTests: g.collectUnitTests(funcAddr),
	}

	switch kind {
	case KindCircuit, KindLibrary:
		if e, ok := g.entries[mainTypeID]; ok {
			app.Input = e.Input
			app.Output = e.Output
		}
		if addr, ok := funcAddr[mainTypeID]; ok {
			app.EntryAddress = addr
		}
	case KindContract:
		app.Storage = g.storage
		app.Methods = make(map[string]Method)
		for typeID, e := range g.entries {
			addr, ok := funcAddr[typeID]
			if !ok {
				continue // eliminated as unreachable — not a public method
			}
			app.Methods[e.Name] = Method{
				TypeID: typeID, Address: addr, Mutable: e.Mutable,
				Input: e.Input, Output: e.Output,
			}
		}
	}

	app.Instructions = patchCalls(instructions, funcAddr)
	_ = funcOrder
	return app
}

func (g *Generator) collectUnitTests(funcAddr map[uint64]int) []UnitTest {
	var out []UnitTest
	ids := make([]uint64, 0, len(g.unitTests))
	for id := range g.unitTests {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if _, ok := funcAddr[id]; ok {
			out = append(out, g.unitTests[id])
		}
	}
	return out
}

// patchCalls rewrites every Call instruction's Address field from a
// target type id to that function's final instruction address.
func patchCalls(instructions []bytecode.Instruction, funcAddr map[uint64]int) []bytecode.Instruction {
	out := make([]bytecode.Instruction, len(instructions))
	copy(out, instructions)
	for i, inst := range out {
		if call, ok := inst.(bytecode.Call); ok {
			if addr, ok := funcAddr[uint64(call.Address)]; ok {
				call.Address = addr
			}
			out[i] = call
		}
	}
	return out
}

// eliminateDeadFunctions implements spec.md §4.G's dead-function
// elimination: starting from the entry type ids (contract methods,
// the circuit/library main, and every unit test), compute the
// transitive closure of Call targets over the function-boundary graph,
// then compact the instruction stream to just the reachable spans and
// rebuild the function-address table against the compacted offsets.
func (g *Generator) eliminateDeadFunctions(mainTypeID uint64) ([]bytecode.Instruction, []funcSpan, map[uint64]int) {
	spanByType := make(map[uint64]funcSpan, len(g.funcOrder))
	for _, sp := range g.funcOrder {
		spanByType[sp.typeID] = sp
	}
	spanEnd := func(i int) int {
		if i+1 < len(g.funcOrder) {
			return g.funcOrder[i+1].start
		}
		return len(g.instructions)
	}

	reachable := make(map[uint64]bool)
	var worklist []uint64
	for id := range g.entries {
		worklist = append(worklist, id)
	}
	for id := range g.unitTests {
		worklist = append(worklist, id)
	}
	if _, ok := spanByType[mainTypeID]; ok {
		worklist = append(worklist, mainTypeID)
	}

	for len(worklist) > 0 {
		id := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if reachable[id] {
			continue
		}
		reachable[id] = true
		sp, ok := spanByType[id]
		if !ok {
			continue
		}
		idx := indexOfSpan(g.funcOrder, id)
		for i := sp.start; i < spanEnd(idx); i++ {
			if call, ok := g.instructions[i].(bytecode.Call); ok {
				worklist = append(worklist, uint64(call.Address))
			}
		}
	}

	var compacted []bytecode.Instruction
	newAddr := make(map[uint64]int, len(reachable))
	var newOrder []funcSpan
	for i, sp := range g.funcOrder {
		if !reachable[sp.typeID] {
			continue
		}
		newAddr[sp.typeID] = len(compacted)
		newOrder = append(newOrder, funcSpan{typeID: sp.typeID, start: len(compacted)})
		compacted = append(compacted, g.instructions[sp.start:spanEnd(i)]...)
	}
	return compacted, newOrder, newAddr
}

func indexOfSpan(spans []funcSpan, typeID uint64) int {
	for i, sp := range spans {
		if sp.typeID == typeID {
			return i
		}
	}
	return -1
}
