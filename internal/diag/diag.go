// Package diag implements the four error tiers of spec.md §7: Lexical,
// Syntax, Semantic, and Value/Arithmetic. It is grounded on the
// teacher's internal/errors/errors.go: one struct type, a caret-style
// renderer, and constructor helpers per tier, rather than a library of
// typed Go errors per rule (the rules themselves are distinguished by
// Kind, a string enum, so tests can assert on it precisely).
package diag

import (
	"fmt"
	"strings"

	"github.com/ringlang/ringc/internal/token"
)

// Tier is one of the four error tiers from spec.md §7.
type Tier string

const (
	Lexical  Tier = "lexical error"
	Syntax   Tier = "syntax error"
	Semantic Tier = "semantic error"
	Value    Tier = "value error"
)

// Kind enumerates every distinct rule violation so tests can assert on
// the exact kind rather than parsing a message string.
type Kind string

const (
	// Lexical
	KindEmptyBinaryBody      Kind = "EmptyBinaryBody"
	KindEmptyOctalBody       Kind = "EmptyOctalBody"
	KindEmptyHexadecimalBody Kind = "EmptyHexadecimalBody"
	KindEmptyExponent        Kind = "EmptyExponent"
	KindExpectedOneOf        Kind = "ExpectedOneOf"
	KindNotAnInteger         Kind = "NotAnInteger"
	KindUnexpectedEnd        Kind = "UnexpectedEnd"
	KindUnterminatedString   Kind = "UnterminatedString"
	KindUnterminatedComment  Kind = "UnterminatedComment"
	KindUnknownSymbol        Kind = "UnknownSymbol"

	// Syntax
	KindSyntax Kind = "Syntax"

	// Semantic
	KindUndefinedName             Kind = "UndefinedName"
	KindDuplicateDefinition       Kind = "DuplicateDefinition"
	KindTypeMismatch              Kind = "TypeMismatch"
	KindTypesMismatchEquals       Kind = "TypesMismatchEquals"
	KindImmutabilityViolation     Kind = "ImmutabilityViolation"
	KindExpectedConstant          Kind = "ExpectedConstant"
	KindArgumentCountMismatch     Kind = "ArgumentCountMismatch"
	KindArgumentTypeMismatch      Kind = "ArgumentTypeMismatch"
	KindNonExhaustiveMatch        Kind = "NonExhaustiveMatch"
	KindInvalidCast               Kind = "InvalidCast"
	KindForbiddenFieldDivision    Kind = "ForbiddenFieldDivision"
	KindForbiddenFieldRemainder   Kind = "ForbiddenFieldRemainder"
	KindForbiddenFieldBitwise     Kind = "ForbiddenFieldBitwise"
	KindForbiddenFieldNegation    Kind = "ForbiddenFieldNegation"
	KindModuleNotFound             Kind = "ModuleNotFound"
	KindIndexOutOfBounds           Kind = "IndexOutOfBounds"
	KindExpectedPlaceExpression     Kind = "ExpectedPlaceExpression"
	KindExpectedArray              Kind = "ExpectedArray"
	KindExpectedTuple               Kind = "ExpectedTuple"
	KindExpectedStructure            Kind = "ExpectedStructure"
	KindUnknownField                Kind = "UnknownField"
	KindFieldCountMismatch          Kind = "FieldCountMismatch"
	KindReturnTypeMismatch           Kind = "ReturnTypeMismatch"
	KindLoopBoundsNotConstant        Kind = "LoopBoundsNotConstant"
	KindShiftRequiresUnsigned        Kind = "ShiftRequiresUnsigned"
	KindOperandMustBeValue           Kind = "OperandMustBeValue"
	KindInvalidOperation             Kind = "InvalidOperation"

	// Value / arithmetic
	KindIntegerOverflow      Kind = "Integer::Overflow"
	KindDivisionByZero       Kind = "DivisionByZero"
	KindValueOverflow        Kind = "ValueOverflow"
)

// Diagnostic is a fatal, structured compile error carrying enough
// information to render the teacher's file:line:col + caret format.
type Diagnostic struct {
	Tier    Tier
	Kind    Kind
	Message string
	Loc     token.Location
	Source  string // the source line the error occurred on, if known
	Hint    string // e.g. HINT_EXPECTED_INDEX_IDENTIFIER
}

func (d *Diagnostic) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", d.Tier, d.Message)
	if !d.Loc.IsZero() {
		fmt.Fprintf(&sb, "  at %s\n", d.Loc.String())
		if d.Source != "" {
			fmt.Fprintf(&sb, "\n  %d | %s\n", d.Loc.Line, d.Source)
			pad := len(fmt.Sprintf("  %d | ", d.Loc.Line))
			sb.WriteString(strings.Repeat(" ", pad))
			if d.Loc.Column > 0 {
				sb.WriteString(strings.Repeat(" ", d.Loc.Column-1))
			}
			sb.WriteString("^\n")
		}
	}
	if d.Hint != "" {
		fmt.Fprintf(&sb, "  hint: %s\n", d.Hint)
	}
	return sb.String()
}

// WithSource attaches the offending source line for the caret render.
func (d *Diagnostic) WithSource(line string) *Diagnostic {
	d.Source = line
	return d
}

// WithHint attaches a short remediation hint.
func (d *Diagnostic) WithHint(hint string) *Diagnostic {
	d.Hint = hint
	return d
}

func newDiag(tier Tier, kind Kind, loc token.Location, message string) *Diagnostic {
	return &Diagnostic{Tier: tier, Kind: kind, Message: message, Loc: loc}
}

// NewLexical builds a Lexical-tier diagnostic.
func NewLexical(kind Kind, loc token.Location, message string) *Diagnostic {
	return newDiag(Lexical, kind, loc, message)
}

// NewSyntax builds a Syntax-tier diagnostic: the caller supplies the
// list of token strings that would have been accepted.
func NewSyntax(loc token.Location, found string, expected []string) *Diagnostic {
	msg := fmt.Sprintf("expected one of %s, found %q", strings.Join(expected, ", "), found)
	return newDiag(Syntax, KindSyntax, loc, msg)
}

// NewSemantic builds a Semantic-tier diagnostic.
func NewSemantic(kind Kind, loc token.Location, message string) *Diagnostic {
	return newDiag(Semantic, kind, loc, message)
}

// NewValue builds a Value/Arithmetic-tier diagnostic.
func NewValue(kind Kind, loc token.Location, message string) *Diagnostic {
	return newDiag(Value, kind, loc, message)
}

// HintExpectedIndexIdentifier matches spec.md §4.P's named hint constant.
const HintExpectedIndexIdentifier = "HINT_EXPECTED_INDEX_IDENTIFIER"
