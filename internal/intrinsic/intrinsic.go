// Package intrinsic builds the root scope every compilation starts
// from (spec.md §4.I): `dbg`/`require`, the `std::crypto`/`convert`/
// `array`/`ff`/`collections` module tree, and the `zksync` transfer
// built-in plus its `Transaction` structure. Grounded on the teacher's
// internal/stdlib module-registry idea (a fixed table of named
// built-ins pre-populating the interpreter's global scope), adapted
// here to populate internal/scope.Scope with function signatures
// instead of runnable Go closures, since these built-ins are lowered
// by internal/semantic straight to backend calls or internal/bytecode
// instructions rather than executed in-process.
package intrinsic

import (
	"github.com/ringlang/ringc/internal/scope"
	"github.com/ringlang/ringc/internal/types"
)

// Builtin names one intrinsic function; internal/semantic type-asserts
// a resolved scope.Item's ConstValue back to *Func and switches on this
// tag to choose the right instruction/backend lowering.
type Builtin string

const (
	BuiltinDbg     Builtin = "dbg"
	BuiltinRequire Builtin = "require"

	BuiltinSha256        Builtin = "std::crypto::sha256"
	BuiltinPedersen      Builtin = "std::crypto::pedersen"
	BuiltinSchnorrVerify Builtin = "std::crypto::schnorr::Signature::verify"

	BuiltinToBits            Builtin = "std::convert::to_bits"
	BuiltinFromBitsUnsigned  Builtin = "std::convert::from_bits_unsigned"
	BuiltinFromBitsSigned    Builtin = "std::convert::from_bits_signed"
	BuiltinFromBitsField     Builtin = "std::convert::from_bits_field"

	BuiltinArrayReverse  Builtin = "std::array::reverse"
	BuiltinArrayTruncate Builtin = "std::array::truncate"
	BuiltinArrayPad      Builtin = "std::array::pad"

	BuiltinFFInvert Builtin = "std::ff::invert"

	BuiltinMTreeMapGet      Builtin = "std::collections::MTreeMap::get"
	BuiltinMTreeMapContains Builtin = "std::collections::MTreeMap::contains"
	BuiltinMTreeMapInsert   Builtin = "std::collections::MTreeMap::insert"
	BuiltinMTreeMapRemove   Builtin = "std::collections::MTreeMap::remove"

	BuiltinZksyncTransfer Builtin = "zksync::transfer"
)

// Func is the value stored as a scope.Item's ConstValue for every
// intrinsic function: its fixed positional argument signature (spec.md
// §4.I: "matches positionally") and the Builtin tag the analyzer
// switches on.
type Func struct {
	Builtin Builtin
	Params  []types.Param
	Returns *types.Type
}

// VariadicFunc is a built-in whose argument count is open-ended (only
// `dbg!`, whose arguments are the formatted values themselves).
type VariadicFunc struct {
	Builtin Builtin
	Format  bool // first argument is the format string literal
}

var (
	pointType       *types.Type
	signatureType   *types.Type
	transactionType *types.Type
)

func addrType() *types.Type    { return types.NewInteger(false, 160) }
func balanceType() *types.Type { return types.NewInteger(false, 248) }

func init() {
	pointType = types.NewStructure("Point", []types.StructField{
		{Name: "x", Type: types.NewField()},
		{Name: "y", Type: types.NewField()},
	})
	signatureType = types.NewStructure("Signature", []types.StructField{
		{Name: "r", Type: pointType},
		{Name: "s", Type: types.NewField()},
		{Name: "pk", Type: pointType},
	})
	transactionType = types.NewStructure("Transaction", []types.StructField{
		{Name: "sender", Type: addrType()},
		{Name: "value", Type: balanceType()},
	})
}

// PointType, SignatureType, TransactionType expose the intrinsic
// structure types so internal/semantic can type `msg: Transaction` in
// contract method scopes and type-check `std::crypto` arguments
// without re-resolving them through scope lookup on every call.
func PointType() *types.Type       { return pointType }
func SignatureType() *types.Type   { return signatureType }
func TransactionType() *types.Type { return transactionType }

func defineFunc(s *scope.Scope, name string, fn *Func) {
	s.Define(&scope.Item{
		Kind:       scope.ItemFunction,
		Name:       name,
		Type:       types.NewFunction(fn.Params, fn.Returns),
		ConstValue: fn,
	})
}

func defineVariadic(s *scope.Scope, name string, fn *VariadicFunc) {
	s.Define(&scope.Item{
		Kind:       scope.ItemFunction,
		Name:       name,
		Type:       types.NewFunction(nil, types.NewUnit()),
		ConstValue: fn,
	})
}

func defineModule(parent *scope.Scope, name string) *scope.Scope {
	sub := scope.New(parent)
	parent.Define(&scope.Item{Kind: scope.ItemModule, Name: name, Module: sub})
	return sub
}

func defineType(s *scope.Scope, name string, t *types.Type) {
	s.Define(&scope.Item{Kind: scope.ItemType, Name: name, Type: t})
}

// Root builds a fresh intrinsic root scope. Called once per
// compilation unit so distinct compiles never share mutable scope
// state.
func Root() *scope.Scope {
	root := scope.New(nil)

	defineVariadic(root, "dbg", &VariadicFunc{Builtin: BuiltinDbg, Format: true})
	defineFunc(root, "require", &Func{
		Builtin: BuiltinRequire,
		Params:  []types.Param{{Name: "condition", Type: types.NewBoolean()}},
		Returns: types.NewUnit(),
	})

	std := defineModule(root, "std")

	crypto := defineModule(std, "crypto")
	defineFunc(crypto, "sha256", &Func{
		Builtin: BuiltinSha256,
		Params:  []types.Param{{Name: "preimage", Type: types.NewField()}},
		Returns: types.NewField(),
	})
	defineFunc(crypto, "pedersen", &Func{
		Builtin: BuiltinPedersen,
		Params:  []types.Param{{Name: "preimage", Type: types.NewField()}},
		Returns: pointType,
	})
	ecc := defineModule(crypto, "ecc")
	defineType(ecc, "Point", pointType)
	schnorr := defineModule(crypto, "schnorr")
	defineType(schnorr, "Signature", signatureType)
	defineFunc(schnorr, "verify", &Func{
		Builtin: BuiltinSchnorrVerify,
		Params: []types.Param{
			{Name: "signature", Type: signatureType},
			{Name: "message", Type: types.NewField()},
		},
		Returns: types.NewBoolean(),
	})

	convert := defineModule(std, "convert")
	defineFunc(convert, "to_bits", &Func{
		Builtin: BuiltinToBits,
		Params:  []types.Param{{Name: "value", Type: types.NewField()}},
		Returns: types.NewArray(types.NewBoolean(), types.FieldBitlength),
	})
	defineFunc(convert, "from_bits_unsigned", &Func{
		Builtin: BuiltinFromBitsUnsigned,
		Params:  []types.Param{{Name: "bits", Type: types.NewArray(types.NewBoolean(), types.FieldBitlength)}},
		Returns: types.NewInteger(false, types.MaxBitlength),
	})
	defineFunc(convert, "from_bits_signed", &Func{
		Builtin: BuiltinFromBitsSigned,
		Params:  []types.Param{{Name: "bits", Type: types.NewArray(types.NewBoolean(), types.FieldBitlength)}},
		Returns: types.NewInteger(true, types.MaxBitlength),
	})
	defineFunc(convert, "from_bits_field", &Func{
		Builtin: BuiltinFromBitsField,
		Params:  []types.Param{{Name: "bits", Type: types.NewArray(types.NewBoolean(), types.FieldBitlength)}},
		Returns: types.NewField(),
	})

	array := defineModule(std, "array")
	anyArray := types.NewArray(types.NewField(), 0) // placeholder element/size; analyzer substitutes the call-site's actual array type
	defineFunc(array, "reverse", &Func{Builtin: BuiltinArrayReverse, Params: []types.Param{{Name: "a", Type: anyArray}}, Returns: anyArray})
	defineFunc(array, "truncate", &Func{Builtin: BuiltinArrayTruncate, Params: []types.Param{{Name: "a", Type: anyArray}, {Name: "new_length", Type: types.NewInteger(false, 64)}}, Returns: anyArray})
	defineFunc(array, "pad", &Func{Builtin: BuiltinArrayPad, Params: []types.Param{{Name: "a", Type: anyArray}, {Name: "new_length", Type: types.NewInteger(false, 64)}, {Name: "fill", Type: types.NewField()}}, Returns: anyArray})

	ff := defineModule(std, "ff")
	defineFunc(ff, "invert", &Func{
		Builtin: BuiltinFFInvert,
		Params:  []types.Param{{Name: "value", Type: types.NewField()}},
		Returns: types.NewField(),
	})

	collections := defineModule(std, "collections")
	// MTreeMap<K,V> is the one generic the spec's non-goals permit
	// (spec.md §1): the analyzer resolves K/V from the type annotation
	// on the `let` binding rather than from this signature, since
	// internal/types has no generic-parameter representation.
	mtree := defineModule(collections, "MTreeMap")
	defineFunc(mtree, "get", &Func{Builtin: BuiltinMTreeMapGet, Returns: types.NewField()})
	defineFunc(mtree, "contains", &Func{Builtin: BuiltinMTreeMapContains, Returns: types.NewBoolean()})
	defineFunc(mtree, "insert", &Func{Builtin: BuiltinMTreeMapInsert, Returns: types.NewUnit()})
	defineFunc(mtree, "remove", &Func{Builtin: BuiltinMTreeMapRemove, Returns: types.NewUnit()})

	zksync := defineModule(root, "zksync")
	defineType(zksync, "Transaction", transactionType)
	defineFunc(zksync, "transfer", &Func{
		Builtin: BuiltinZksyncTransfer,
		Params: []types.Param{
			{Name: "to", Type: addrType()},
			{Name: "amount", Type: balanceType()},
		},
		Returns: types.NewUnit(),
	})

	return root
}

// WithTransactionMessage returns a child scope of parent with a `msg:
// Transaction` variable defined, per spec.md §4.I: contract method
// bodies see an implicit `msg` binding describing the caller.
func WithTransactionMessage(parent *scope.Scope, address int) *scope.Scope {
	s := scope.New(parent)
	s.Define(&scope.Item{
		Kind:    scope.ItemVariable,
		Name:    "msg",
		Type:    transactionType,
		Address: address,
	})
	return s
}
