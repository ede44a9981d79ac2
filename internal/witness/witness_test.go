package witness

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ringlang/ringc/internal/token"
	"github.com/ringlang/ringc/internal/types"
)

func decode(t *testing.T, raw string, ty *types.Type) interface{} {
	t.Helper()
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return v
}

func TestRoundTripInteger(t *testing.T) {
	ty := types.NewInteger(false, 8)
	raw := decode(t, `"42"`, ty)
	v, d := ValueFromJSON(raw, ty, token.Location{})
	if d != nil {
		t.Fatalf("unexpected diagnostic: %v", d)
	}
	if v.Int.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("got %v, want 42", v.Int)
	}
	if got := JSONOf(v); got != "42" {
		t.Fatalf("round trip: got %v", got)
	}
}

func TestRoundTripHexRadix(t *testing.T) {
	ty := types.NewInteger(false, 16)
	raw := decode(t, `"0xff"`, ty)
	v, d := ValueFromJSON(raw, ty, token.Location{})
	if d != nil {
		t.Fatalf("unexpected diagnostic: %v", d)
	}
	if v.Int.Cmp(big.NewInt(255)) != 0 {
		t.Fatalf("got %v, want 255", v.Int)
	}
}

func TestOverflowRejected(t *testing.T) {
	ty := types.NewInteger(false, 4)
	raw := decode(t, `"99"`, ty)
	_, d := ValueFromJSON(raw, ty, token.Location{})
	if d == nil {
		t.Fatalf("expected overflow diagnostic")
	}
}

func TestNegativeOnUnsignedRejected(t *testing.T) {
	ty := types.NewInteger(false, 8)
	raw := decode(t, `"-1"`, ty)
	_, d := ValueFromJSON(raw, ty, token.Location{})
	if d == nil {
		t.Fatalf("expected a rejection for negative value on unsigned type")
	}
}

func TestArrayLengthMismatchRejected(t *testing.T) {
	ty := types.NewArray(types.NewInteger(false, 8), 3)
	raw := decode(t, `["1","2"]`, ty)
	_, d := ValueFromJSON(raw, ty, token.Location{})
	if d == nil {
		t.Fatalf("expected a length-mismatch rejection")
	}
}

func TestStructureMissingFieldRejected(t *testing.T) {
	ty := types.NewStructure("P", []types.StructField{
		{Name: "x", Type: types.NewField()},
		{Name: "y", Type: types.NewField()},
	})
	raw := decode(t, `{"x":"1"}`, ty)
	_, d := ValueFromJSON(raw, ty, token.Location{})
	if d == nil {
		t.Fatalf("expected a missing-field rejection")
	}
}

func TestLargeFieldElementEncodedAsHex(t *testing.T) {
	ty := types.NewField()
	big2to65 := new(big.Int).Lsh(big.NewInt(1), 65)
	v := types.Type{}
	_ = v
	raw := decode(t, "\""+big2to65.String()+"\"", ty)
	val, d := ValueFromJSON(raw, ty, token.Location{})
	if d != nil {
		t.Fatalf("unexpected diagnostic: %v", d)
	}
	got := JSONOf(val)
	s, ok := got.(string)
	if !ok || len(s) < 2 || s[:2] != "0x" {
		t.Fatalf("expected 0x-prefixed hex, got %v", got)
	}
}
