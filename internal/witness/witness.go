// Package witness implements the bit-exact JSON witness/public-input
// wire format of spec.md §6: decoding a JSON document against a
// resolved types.Type into an analyzer value.Value, and re-encoding a
// value.Value back to the same JSON shape, satisfying the round-trip
// property of spec.md §8 ("json_of(value_from_json(v, T)) == v up to
// radix normalization"). This package is the only place in the core
// that touches encoding/json: the rest of the compiler never
// serializes anything, per spec.md §1's "the on-disk JSON witness/
// public-input serialization format (specified in §6 as a wire
// contract only)".
package witness

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ringlang/ringc/internal/diag"
	"github.com/ringlang/ringc/internal/token"
	"github.com/ringlang/ringc/internal/types"
	"github.com/ringlang/ringc/internal/value"
)

// maxDecimalOutput is the threshold spec.md §6 draws between decimal
// and 0x-prefixed hex output for numeric fields: "field elements <=
// 2^64-1 are emitted as decimal strings, larger values as 0x-prefixed
// hex."
var maxDecimalOutput = new(big.Int).SetUint64(^uint64(0))

// ValueFromJSON decodes raw (as produced by encoding/json.Unmarshal
// into interface{}) against t, per spec.md §6's per-JSON-shape
// decoding rules.
func ValueFromJSON(raw interface{}, t *types.Type, loc token.Location) (value.Value, *diag.Diagnostic) {
	switch t.Kind {
	case types.Unit:
		if raw != nil {
			return value.Value{}, diag.NewValue(diag.KindValueOverflow, loc, "expected null for unit type")
		}
		return value.Unit(), nil

	case types.Boolean:
		b, ok := raw.(bool)
		if !ok {
			return value.Value{}, diag.NewValue(diag.KindValueOverflow, loc, "expected a JSON boolean")
		}
		return value.Boolean(b), nil

	case types.IntegerUnsigned, types.IntegerSigned, types.Field:
		s, ok := raw.(string)
		if !ok {
			if n, ok := raw.(float64); ok {
				s = strconv.FormatFloat(n, 'f', -1, 64)
			} else {
				return value.Value{}, diag.NewValue(diag.KindValueOverflow, loc, "expected a numeric string")
			}
		}
		n, err := parseNumericString(s)
		if err != nil {
			return value.Value{}, diag.NewValue(diag.KindValueOverflow, loc, err.Error())
		}
		if n.Sign() < 0 && t.Kind != types.IntegerSigned {
			return value.Value{}, diag.NewValue(diag.KindValueOverflow, loc, "negative value for an unsigned/field type")
		}
		if t.Kind != types.Field && !value.InRange(t.Kind == types.IntegerSigned, t.Bitlength, n) {
			return value.Value{}, diag.NewValue(diag.KindValueOverflow,
				loc, (&value.OverflowError{Value: n, Signed: t.Kind == types.IntegerSigned, Bitlength: t.Bitlength}).Error())
		}
		if t.Kind == types.Field {
			return value.Field(n), nil
		}
		return value.Integer(t.Kind == types.IntegerSigned, t.Bitlength, n), nil

	case types.Array:
		arr, ok := raw.([]interface{})
		if !ok {
			return value.Value{}, diag.NewValue(diag.KindValueOverflow, loc, "expected a JSON array")
		}
		if len(arr) != t.Size {
			return value.Value{}, diag.NewValue(diag.KindValueOverflow, loc,
				fmt.Sprintf("array length %d does not match declared size %d", len(arr), t.Size))
		}
		elems := make([]value.Value, len(arr))
		for i, raw := range arr {
			v, d := ValueFromJSON(raw, t.Elem, loc)
			if d != nil {
				return value.Value{}, d
			}
			elems[i] = v
		}
		return value.Value{Type: t, Known: true, Elements: elems}, nil

	case types.Tuple:
		arr, ok := raw.([]interface{})
		if !ok {
			return value.Value{}, diag.NewValue(diag.KindValueOverflow, loc, "expected a JSON array for a tuple")
		}
		if len(arr) != len(t.Items) {
			return value.Value{}, diag.NewValue(diag.KindValueOverflow, loc, "tuple length mismatch")
		}
		elems := make([]value.Value, len(arr))
		for i, raw := range arr {
			v, d := ValueFromJSON(raw, t.Items[i], loc)
			if d != nil {
				return value.Value{}, d
			}
			elems[i] = v
		}
		return value.Value{Type: t, Known: true, Elements: elems}, nil

	case types.Structure:
		obj, ok := raw.(map[string]interface{})
		if !ok {
			return value.Value{}, diag.NewValue(diag.KindValueOverflow, loc, "expected a JSON object for a structure")
		}
		if len(obj) != len(t.Fields) {
			return value.Value{}, diag.NewValue(diag.KindValueOverflow, loc, "unexpected or missing structure fields")
		}
		fields := make(map[string]value.Value, len(t.Fields))
		order := make([]string, 0, len(t.Fields))
		for _, f := range t.Fields {
			raw, ok := obj[f.Name]
			if !ok {
				return value.Value{}, diag.NewValue(diag.KindValueOverflow, loc, "missing declared field "+f.Name)
			}
			v, d := ValueFromJSON(raw, f.Type, loc)
			if d != nil {
				return value.Value{}, d
			}
			fields[f.Name] = v
			order = append(order, f.Name)
		}
		return value.Value{Type: t, Known: true, Fields: fields, FieldOrd: order}, nil

	case types.Enumeration:
		name, ok := raw.(string)
		if !ok {
			return value.Value{}, diag.NewValue(diag.KindValueOverflow, loc, "expected a JSON string naming an enum variant")
		}
		variant, ok := t.FindVariant(name)
		if !ok {
			return value.Value{}, diag.NewValue(diag.KindValueOverflow, loc, "unknown enum variant "+name)
		}
		n, _ := new(big.Int).SetString(variant.Value, 10)
		return value.Value{Type: t, Known: true, Int: n}, nil

	default:
		return value.Value{}, diag.NewValue(diag.KindValueOverflow, loc, "unsupported witness type "+t.String())
	}
}

// parseNumericString accepts the radices spec.md §6 names: 0b/0o/0x
// prefixes, or plain decimal (optionally negative).
func parseNumericString(s string) (*big.Int, error) {
	neg := strings.HasPrefix(s, "-")
	body := strings.TrimPrefix(s, "-")
	var n *big.Int
	var ok bool
	switch {
	case strings.HasPrefix(body, "0b"):
		n, ok = new(big.Int).SetString(body[2:], 2)
	case strings.HasPrefix(body, "0o"):
		n, ok = new(big.Int).SetString(body[2:], 8)
	case strings.HasPrefix(body, "0x"):
		n, ok = new(big.Int).SetString(body[2:], 16)
	default:
		n, ok = new(big.Int).SetString(body, 10)
	}
	if !ok {
		return nil, fmt.Errorf("not a valid integer literal: %q", s)
	}
	if neg {
		n = new(big.Int).Neg(n)
	}
	return n, nil
}

// JSONOf re-encodes v to the shape ValueFromJSON accepts, mirroring
// the input rules per spec.md §6.
func JSONOf(v value.Value) interface{} {
	if v.Type == nil {
		return nil
	}
	switch v.Type.Kind {
	case types.Unit:
		return nil
	case types.Boolean:
		return v.Bool
	case types.IntegerUnsigned, types.IntegerSigned, types.Field:
		return encodeNumber(v.Int)
	case types.Array, types.Tuple:
		out := make([]interface{}, len(v.Elements))
		for i, e := range v.Elements {
			out[i] = JSONOf(e)
		}
		return out
	case types.Structure:
		out := make(map[string]interface{}, len(v.FieldOrd))
		for _, name := range v.FieldOrd {
			out[name] = JSONOf(v.Fields[name])
		}
		return out
	case types.Enumeration:
		n := v.Int
		for _, variant := range v.Type.Variants {
			vn, _ := new(big.Int).SetString(variant.Value, 10)
			if vn != nil && n != nil && vn.Cmp(n) == 0 {
				return variant.Name
			}
		}
		return encodeNumber(n)
	default:
		return nil
	}
}

func encodeNumber(n *big.Int) string {
	if n == nil {
		return "0"
	}
	abs := new(big.Int).Abs(n)
	if abs.Cmp(maxDecimalOutput) <= 0 {
		return n.String()
	}
	sign := ""
	if n.Sign() < 0 {
		sign = "-"
	}
	return sign + "0x" + abs.Text(16)
}
