package semantic

import (
	"math/big"

	"github.com/ringlang/ringc/internal/ast"
	"github.com/ringlang/ringc/internal/bytecode"
	"github.com/ringlang/ringc/internal/diag"
	"github.com/ringlang/ringc/internal/generator"
	"github.com/ringlang/ringc/internal/intrinsic"
	"github.com/ringlang/ringc/internal/scope"
	"github.com/ringlang/ringc/internal/token"
	"github.com/ringlang/ringc/internal/types"
	"github.com/ringlang/ringc/internal/value"
)

// hoist runs the two-phase forward-reference pass spec.md §4.A
// requires before any body is analyzed: use-aliases first, then every
// struct/enum declaration, then every fn/impl/contract/mod signature
// (minting a types.NextTypeID() per function so a call can reference a
// function declared later in the same scope). Bodies are left
// untouched until processTopLevel's second walk.
func (a *Analyzer) hoist(stmts []ast.Stmt, into *scope.Scope) *diag.Diagnostic {
	prev := a.cur
	a.cur = into
	defer func() { a.cur = prev }()

	for _, s := range stmts {
		if u, ok := s.(*ast.UseStmt); ok {
			if d := a.hoistUse(u); d != nil {
				return d
			}
		}
	}
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.StructStmt:
			if d := a.hoistStruct(st); d != nil {
				return d
			}
		case *ast.EnumStmt:
			if d := a.hoistEnum(st); d != nil {
				return d
			}
		}
	}
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.FnStmt:
			if d := a.hoistFn(st, nil, into, "", false); d != nil {
				return d
			}
		case *ast.ImplStmt:
			if d := a.hoistImpl(st, into); d != nil {
				return d
			}
		case *ast.ContractStmt:
			if d := a.hoistContract(st, into); d != nil {
				return d
			}
		case *ast.ModStmt:
			if d := a.hoistMod(st, into); d != nil {
				return d
			}
		}
	}
	return nil
}

// rootScope walks up to the outermost (intrinsic) scope: `use` paths
// are always resolved from there, never lexically, matching the
// language's crate-absolute path convention.
func (a *Analyzer) rootScope() *scope.Scope {
	s := a.cur
	for s.Parent != nil {
		s = s.Parent
	}
	return s
}

func (a *Analyzer) hoistUse(u *ast.UseStmt) *diag.Diagnostic {
	cur := a.rootScope()
	var item *scope.Item
	var ok bool
	for i, seg := range u.Path {
		item, ok = cur.Resolve(seg)
		if !ok {
			return diag.NewSemantic(diag.KindUndefinedName, u.Loc, "undefined path segment "+seg)
		}
		if i == len(u.Path)-1 {
			break
		}
		if item.Kind != scope.ItemModule {
			return diag.NewSemantic(diag.KindModuleNotFound, u.Loc, seg+" is not a module")
		}
		cur = item.Module
	}
	name := u.Alias
	if name == "" {
		name = u.Path[len(u.Path)-1]
	}
	aliased := *item
	aliased.Name = name
	if !a.cur.Define(&aliased) {
		return diag.NewSemantic(diag.KindDuplicateDefinition, u.Loc, "duplicate definition of "+name)
	}
	return nil
}

func (a *Analyzer) hoistStruct(st *ast.StructStmt) *diag.Diagnostic {
	fields := make([]types.StructField, len(st.Fields))
	for i, f := range st.Fields {
		t, d := a.resolveType(f.Type)
		if d != nil {
			return d
		}
		fields[i] = types.StructField{Name: f.Name, Type: t}
	}
	t := types.NewStructure(st.Name, fields)
	if !a.cur.Define(&scope.Item{Kind: scope.ItemType, Name: st.Name, Type: t}) {
		return diag.NewSemantic(diag.KindDuplicateDefinition, st.Loc, "duplicate definition of "+st.Name)
	}
	return nil
}

func (a *Analyzer) hoistEnum(st *ast.EnumStmt) *diag.Diagnostic {
	variants := make([]types.EnumVariant, len(st.Variants))
	prev := big.NewInt(-1)
	for i, v := range st.Variants {
		var n *big.Int
		if v.Value != nil {
			parsed, err := parseLiteralDecimal(*v.Value)
			if err != nil {
				return diag.NewValue(diag.KindIntegerOverflow, st.Loc, err.Error())
			}
			n = parsed
		} else {
			n = new(big.Int).Add(prev, big.NewInt(1))
		}
		prev = n
		variants[i] = types.EnumVariant{Name: v.Name, Value: n.String()}
	}
	bits := value.MinimalUnsignedBitlength(big.NewInt(0), prev)
	t := types.NewEnumeration(st.Name, bits, variants)
	if !a.cur.Define(&scope.Item{Kind: scope.ItemType, Name: st.Name, Type: t}) {
		return diag.NewSemantic(diag.KindDuplicateDefinition, st.Loc, "duplicate definition of "+st.Name)
	}
	return nil
}

// testAttr scans a function's #[test] / #[ignore] attributes, per
// spec.md §6's unit-test metadata.
func testAttr(attrs []*ast.Attribute) (isTest, ignored, shouldPanic bool) {
	for _, at := range attrs {
		if at.Is("test") {
			isTest = true
			for _, el := range at.Elements {
				if len(el.Path) == 1 && el.Path[0] == "should_panic" {
					shouldPanic = true
				}
			}
		}
		if at.Is("ignore") {
			ignored = true
		}
	}
	return
}

// hoistFn resolves a function's signature and stashes a *userFn as the
// scope item's ConstValue; its body is walked later by analyzeFnBody.
// selfType is non-nil inside an impl/contract, giving the implicit
// `self` parameter's type; isContract marks a contract method, which
// additionally sees an implicit `msg: Transaction` binding.
func (a *Analyzer) hoistFn(st *ast.FnStmt, selfType *types.Type, into *scope.Scope, namePrefix string, isContract bool) *diag.Diagnostic {
	params := make([]types.Param, 0, len(st.Params))
	for _, p := range st.Params {
		if p.IsSelf {
			if selfType == nil {
				return diag.NewSemantic(diag.KindInvalidOperation, st.Loc, "self parameter outside of an impl or contract")
			}
			params = append(params, types.Param{Name: "self", Type: selfType})
			continue
		}
		t, d := a.resolveType(p.Type)
		if d != nil {
			return d
		}
		params = append(params, types.Param{Name: p.Name, Type: t})
	}
	returns, d := a.resolveType(st.ReturnType)
	if d != nil {
		return d
	}
	typeID := types.NextTypeID()
	uf := &userFn{
		typeID: typeID, name: st.Name, params: params, selfType: selfType,
		returns: returns, public: st.Public, body: st.Body, declIn: into, contract: isContract,
	}
	if isTest, ignored, shouldPanic := testAttr(st.Attrs()); isTest {
		uf.testInfo = &generator.UnitTest{TypeID: typeID, Name: st.Name, ShouldPanic: shouldPanic, Ignored: ignored}
	}
	name := st.Name
	if namePrefix != "" {
		name = namePrefix + "::" + st.Name
	}
	if !into.Define(&scope.Item{Kind: scope.ItemFunction, Name: name, Type: types.NewFunction(params, returns), ConstValue: uf}) {
		return diag.NewSemantic(diag.KindDuplicateDefinition, st.Loc, "duplicate definition of "+name)
	}
	return nil
}

// hoistImpl qualifies each method under "Type::name" in the enclosing
// scope, matching invokeMethod's UFCS lookup convention (call.go).
func (a *Analyzer) hoistImpl(st *ast.ImplStmt, into *scope.Scope) *diag.Diagnostic {
	item, ok := into.Resolve(st.Type)
	if !ok || item.Kind != scope.ItemType {
		return diag.NewSemantic(diag.KindUndefinedName, st.Loc, "impl target "+st.Type+" is not a declared type")
	}
	for _, raw := range st.Items {
		fn, ok := raw.(*ast.FnStmt)
		if !ok {
			continue // consts inside impl are evaluated in processImpl
		}
		if d := a.hoistFn(fn, item.Type, into, st.Type, false); d != nil {
			return d
		}
	}
	return nil
}

// hoistContract registers the contract's fields as both a struct type
// (so `Name` can be referenced as a value type) and as
// generator.StorageField slots, then hoists its methods into a
// dedicated scope reachable only from processContract — contract
// methods, unlike impl methods, are never called from ordinary
// expressions, only invoked externally by a transaction.
func (a *Analyzer) hoistContract(st *ast.ContractStmt, into *scope.Scope) *diag.Diagnostic {
	fields := make([]types.StructField, len(st.Fields))
	storage := make([]generator.StorageField, len(st.Fields))
	for i, f := range st.Fields {
		t, d := a.resolveType(f.Type)
		if d != nil {
			return d
		}
		fields[i] = types.StructField{Name: f.Name, Type: t}
		storage[i] = generator.StorageField{Name: f.Name, Type: t}
	}
	t := types.NewStructure(st.Name, fields)
	if !into.Define(&scope.Item{Kind: scope.ItemType, Name: st.Name, Type: t}) {
		return diag.NewSemantic(diag.KindDuplicateDefinition, st.Loc, "duplicate definition of "+st.Name)
	}
	a.gen.SetStorage(storage)

	contractScope := scope.New(into)
	if a.contractScopes == nil {
		a.contractScopes = make(map[string]*scope.Scope)
	}
	a.contractScopes[st.Name] = contractScope
	for _, raw := range st.Items {
		fn, ok := raw.(*ast.FnStmt)
		if !ok {
			continue
		}
		if d := a.hoistFn(fn, t, contractScope, "", true); d != nil {
			return d
		}
	}
	return nil
}

func (a *Analyzer) hoistMod(st *ast.ModStmt, into *scope.Scope) *diag.Diagnostic {
	if st.Items == nil {
		return nil // file-reference `mod name;` — no filesystem resolution here
	}
	sub := scope.New(into)
	if !into.Define(&scope.Item{Kind: scope.ItemModule, Name: st.Name, Module: sub}) {
		return diag.NewSemantic(diag.KindDuplicateDefinition, st.Loc, "duplicate definition of "+st.Name)
	}
	return a.hoist(st.Items, sub)
}

// processTopLevel walks stmts a second time in source order, analyzing
// every body now that every forward reference is resolvable.
func (a *Analyzer) processTopLevel(stmts []ast.Stmt) *diag.Diagnostic {
	for _, s := range stmts {
		if d := a.moduleItem(s); d != nil {
			return d
		}
	}
	return nil
}

func (a *Analyzer) moduleItem(s ast.Stmt) *diag.Diagnostic {
	switch st := s.(type) {
	case *ast.EmptyStmt, *ast.StructStmt, *ast.EnumStmt, *ast.UseStmt:
		return nil // fully handled by hoist
	case *ast.ConstStmt:
		return a.moduleConst(st)
	case *ast.StaticStmt:
		return a.moduleStatic(st)
	case *ast.TypeAliasStmt:
		return a.moduleTypeAlias(st)
	case *ast.FnStmt:
		return a.processFnByName(a.cur, st.Name)
	case *ast.ModStmt:
		return a.processMod(st)
	case *ast.ImplStmt:
		return a.processImpl(st)
	case *ast.ContractStmt:
		return a.processContract(st)
	default:
		return diag.NewSemantic(diag.KindInvalidOperation, s.Location(), "unsupported top-level statement")
	}
}

func (a *Analyzer) moduleConst(st *ast.ConstStmt) *diag.Diagnostic {
	el, d := a.analyzeExpr(st.Value)
	if d != nil {
		return d
	}
	v, ok := el.AsValue()
	if !ok || !v.Known {
		return diag.NewSemantic(diag.KindExpectedConstant, st.Loc, "const "+st.Name+" must be a compile-time constant")
	}
	if st.Type != nil {
		declared, d := a.resolveType(st.Type)
		if d != nil {
			return d
		}
		if !declared.Equal(v.Type) {
			return diag.NewSemantic(diag.KindTypeMismatch, st.Loc, "const "+st.Name+" type mismatch")
		}
	}
	vv := v
	if !a.cur.Define(&scope.Item{Kind: scope.ItemConstant, Name: st.Name, Type: v.Type, ConstValue: &vv}) {
		return diag.NewSemantic(diag.KindDuplicateDefinition, st.Loc, "duplicate definition of "+st.Name)
	}
	return nil
}

// moduleStatic models `static` identically to `const` (SPEC_FULL.md's
// documented simplification: this implementation has no mutable
// module-level storage distinct from contract fields).
func (a *Analyzer) moduleStatic(st *ast.StaticStmt) *diag.Diagnostic {
	return a.moduleConst(&ast.ConstStmt{StmtBase: st.StmtBase, Name: st.Name, Type: st.Type, Value: st.Value})
}

func (a *Analyzer) moduleTypeAlias(st *ast.TypeAliasStmt) *diag.Diagnostic {
	t, d := a.resolveType(st.Type)
	if d != nil {
		return d
	}
	if !a.cur.Define(&scope.Item{Kind: scope.ItemType, Name: st.Name, Type: t}) {
		return diag.NewSemantic(diag.KindDuplicateDefinition, st.Loc, "duplicate definition of "+st.Name)
	}
	return nil
}

// processFnByName resolves name in scope (already hoisted) and
// analyzes its body.
func (a *Analyzer) processFnByName(scope_ *scope.Scope, name string) *diag.Diagnostic {
	item, ok := scope_.ResolveLocal(name)
	if !ok {
		item, ok = scope_.Resolve(name)
	}
	if !ok {
		return diag.NewSemantic(diag.KindUndefinedName, token.Location{}, "internal: fn "+name+" missing from hoist pass")
	}
	uf, ok := item.ConstValue.(*userFn)
	if !ok {
		return nil
	}
	return a.analyzeFnBody(uf)
}

func (a *Analyzer) processMod(st *ast.ModStmt) *diag.Diagnostic {
	if st.Items == nil {
		return nil
	}
	item, ok := a.cur.Resolve(st.Name)
	if !ok || item.Kind != scope.ItemModule {
		return diag.NewSemantic(diag.KindModuleNotFound, st.Loc, "module "+st.Name+" missing from hoist pass")
	}
	prev := a.cur
	a.cur = item.Module
	d := a.processTopLevel(st.Items)
	a.cur = prev
	return d
}

func (a *Analyzer) processImpl(st *ast.ImplStmt) *diag.Diagnostic {
	for _, raw := range st.Items {
		fn, ok := raw.(*ast.FnStmt)
		if !ok {
			continue
		}
		if d := a.processFnByName(a.cur, st.Type+"::"+fn.Name); d != nil {
			return d
		}
	}
	return nil
}

func (a *Analyzer) processContract(st *ast.ContractStmt) *diag.Diagnostic {
	contractScope := a.contractScopes[st.Name]
	if contractScope == nil {
		return diag.NewSemantic(diag.KindUndefinedName, st.Loc, "internal: contract "+st.Name+" missing from hoist pass")
	}
	for _, raw := range st.Items {
		fn, ok := raw.(*ast.FnStmt)
		if !ok {
			continue
		}
		if d := a.processFnByName(contractScope, fn.Name); d != nil {
			return d
		}
	}
	return nil
}

// analyzeFnBody allocates a stack slot per parameter (plus, for a
// contract method, the implicit `msg: Transaction` binding), walks the
// body, checks the trailing value against the declared return type,
// and registers the function as a surviving entry point when it is
// public, `main`, a unit test, or a contract method (spec.md §4.G's
// dead-function-elimination root set).
func (a *Analyzer) analyzeFnBody(uf *userFn) *diag.Diagnostic {
	loc := token.Location{}
	if len(uf.body) > 0 {
		loc = uf.body[0].Location()
	}
	a.gen.StartFunction(loc, uf.typeID, uf.name)

	fnScope := scope.New(uf.declIn)
	for _, p := range uf.params {
		addr := a.gen.DefineVariable(p.Type.FieldWidth())
		fnScope.Define(&scope.Item{Kind: scope.ItemVariable, Name: p.Name, Type: p.Type, Address: addr})
	}
	if uf.contract {
		msgAddr := a.gen.DefineVariable(intrinsic.TransactionType().FieldWidth())
		fnScope = intrinsic.WithTransactionMessage(fnScope, msgAddr)
	}

	prev := a.cur
	a.cur = fnScope
	result, d := a.analyzeBlockBody(uf.body, loc)
	a.cur = prev
	if d != nil {
		return d
	}

	resV, _ := result.AsValue()
	if resV.Type != nil && !resV.Type.Equal(uf.returns) {
		return diag.NewSemantic(diag.KindReturnTypeMismatch, loc, "function "+uf.name+" return type mismatch")
	}
	a.materialize(result, loc)
	a.gen.PushInstruction(bytecode.Return{Base: bytecode.New(loc), Size: uf.returns.FieldWidth()}, loc)

	if uf.name == "main" {
		a.mainTypeID = uf.typeID
		a.haveMain = true
	}
	if uf.public || uf.contract || uf.testInfo != nil || uf.name == "main" {
		argParams := uf.params
		if uf.selfType != nil && len(argParams) > 0 {
			argParams = argParams[1:] // exclude the implicit `self` receiver
		}
		input := types.NewUnit()
		if len(argParams) > 0 {
			input = argParams[0].Type
		}
		a.gen.RegisterEntry(generator.Entry{TypeID: uf.typeID, Name: uf.name, Mutable: uf.contract, Input: input, Output: uf.returns})
	}
	if uf.testInfo != nil {
		a.gen.RegisterUnitTest(*uf.testInfo)
	}
	return nil
}

// innerStmt dispatches a function-body-level statement.
func (a *Analyzer) innerStmt(s ast.Stmt) *diag.Diagnostic {
	switch st := s.(type) {
	case *ast.EmptyStmt:
		return nil
	case *ast.LetStmt:
		return a.innerLet(st)
	case *ast.ConstStmt:
		return a.moduleConst(st)
	case *ast.ForStmt:
		return a.innerFor(st)
	case *ast.ExprStmt:
		_, d := a.analyzeExpr(st.Expr)
		return d
	default:
		return diag.NewSemantic(diag.KindInvalidOperation, s.Location(), "unsupported statement in this position")
	}
}

func (a *Analyzer) innerLet(st *ast.LetStmt) *diag.Diagnostic {
	el, d := a.analyzeExpr(st.Value)
	if d != nil {
		return d
	}
	v, ok := el.AsValue()
	if !ok {
		return diag.NewSemantic(diag.KindOperandMustBeValue, st.Loc, "let initializer is not a value")
	}
	if st.Type != nil {
		declared, d := a.resolveType(st.Type)
		if d != nil {
			return d
		}
		if !declared.Equal(v.Type) {
			return diag.NewSemantic(diag.KindTypeMismatch, st.Loc, "let "+st.Name+" type mismatch")
		}
	}
	addr := a.gen.DefineVariable(v.Type.FieldWidth())
	a.materialize(el, st.Loc)
	a.gen.PushInstruction(bytecode.StoreSequence{Base: bytecode.New(st.Loc), Address: addr, Size: v.Type.FieldWidth()}, st.Loc)

	item := &scope.Item{Kind: scope.ItemVariable, Name: st.Name, Type: v.Type, Mutable: st.Mutable, Address: addr}
	// mutable locals are never treated as statically known from
	// declaration onward — AsValue() would otherwise return a stale
	// folded value across a later reassignment.
	if !st.Mutable && v.Known {
		vv := v
		item.ConstValue = &vv
	}
	if !a.cur.Define(item) {
		return diag.NewSemantic(diag.KindDuplicateDefinition, st.Loc, "duplicate definition of "+st.Name)
	}
	return nil
}

// innerFor statically unrolls a for-loop: its bounds must be constant
// (circuit compilation has no runtime branching), so every iteration's
// body is analyzed separately with its own counter binding folded to
// that iteration's value. A `while` guard that folds to false is
// treated as staying false for every later iteration, letting the
// unroll stop early (SPEC_FULL.md's monotonic-while-guard decision).
// A guard known only at run time wraps that iteration's body in
// If/EndIf and is evaluated again on every iteration.
func (a *Analyzer) innerFor(st *ast.ForStmt) *diag.Diagnostic {
	lowEl, d := a.analyzeExpr(st.Low)
	if d != nil {
		return d
	}
	highEl, d := a.analyzeExpr(st.High)
	if d != nil {
		return d
	}
	lowV, ok1 := lowEl.AsValue()
	highV, ok2 := highEl.AsValue()
	if !ok1 || !ok2 || !lowV.Known || !highV.Known || lowV.Int == nil || highV.Int == nil {
		return diag.NewSemantic(diag.KindLoopBoundsNotConstant, st.Loc, "for-loop bounds must be constant integers")
	}
	hi := new(big.Int).Set(highV.Int)
	if st.Inclusive {
		hi.Add(hi, big.NewInt(1))
	}
	n := 0
	if hi.Cmp(lowV.Int) > 0 {
		n = int(new(big.Int).Sub(hi, lowV.Int).Int64())
	}
	counterBits := value.MinimalUnsignedBitlength(lowV.Int, new(big.Int).Sub(hi, big.NewInt(1)))
	counterType := types.NewInteger(false, counterBits)

	loc := st.Loc
	a.gen.PushInstruction(bytecode.LoopBegin{Base: bytecode.New(loc), Iterations: n}, loc)
	for i := 0; i < n; i++ {
		iterVal := new(big.Int).Add(lowV.Int, big.NewInt(int64(i)))
		parent := a.pushScope()

		addr := a.gen.DefineVariable(counterType.FieldWidth())
		a.gen.PushInstruction(bytecode.PushConst{Base: bytecode.New(loc), Value: iterVal.String()}, loc)
		a.gen.PushInstruction(bytecode.StoreSequence{Base: bytecode.New(loc), Address: addr, Size: counterType.FieldWidth()}, loc)
		a.cur.Define(&scope.Item{
			Kind: scope.ItemVariable, Name: st.Variable, Type: counterType, Address: addr,
			ConstValue: &value.Value{Type: counterType, Known: true, Int: iterVal},
		})

		gated := false
		if st.While != nil {
			guardEl, d := a.analyzeExpr(st.While)
			if d != nil {
				a.popScope(parent)
				return d
			}
			gv, ok := guardEl.AsValue()
			if ok && gv.Known && !gv.Bool {
				a.popScope(parent)
				break
			}
			if ok && !gv.Known {
				a.materialize(guardEl, loc)
				a.gen.PushInstruction(bytecode.If{Base: bytecode.New(loc)}, loc)
				gated = true
			}
		}
		for _, bs := range st.Body {
			if d := a.innerStmt(bs); d != nil {
				a.popScope(parent)
				return d
			}
		}
		if gated {
			a.gen.PushInstruction(bytecode.EndIf{Base: bytecode.New(loc)}, loc)
		}
		a.popScope(parent)
	}
	a.gen.PushInstruction(bytecode.LoopEnd{Base: bytecode.New(loc)}, loc)
	return nil
}
