package buildcache

import (
	"testing"

	"github.com/ringlang/ringc/internal/bytecode"
	"github.com/ringlang/ringc/internal/generator"
	"github.com/ringlang/ringc/internal/token"
	"github.com/ringlang/ringc/internal/types"
)

func sampleApp() *generator.Application {
	return &generator.Application{
		Kind:    generator.KindCircuit,
		Name:    "add",
		BuildID: "test-build",
		Input:   types.NewInteger(false, 32),
		Output:  types.NewInteger(false, 32),
		Instructions: []bytecode.Instruction{
			bytecode.PushConst{Base: bytecode.New(token.Location{}), Value: "1"},
			bytecode.Return{Base: bytecode.New(token.Location{}), Size: 32},
		},
	}
}

func TestLocalCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenLocal(dir)
	if err != nil {
		t.Fatalf("OpenLocal: %v", err)
	}
	defer cache.Close()

	key := Key([]byte("fn main(a: u32, b: u32) -> u32 { a + b }"))

	if _, ok, err := cache.Get(key); err != nil || ok {
		t.Fatalf("expected a cache miss, got ok=%v err=%v", ok, err)
	}

	want := sampleApp()
	if err := cache.Put(key, want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := cache.Get(key)
	if err != nil || !ok {
		t.Fatalf("expected a cache hit, got ok=%v err=%v", ok, err)
	}
	if got.Name != want.Name || got.BuildID != want.BuildID || len(got.Instructions) != len(want.Instructions) {
		t.Errorf("round-tripped application mismatch: got %+v", got)
	}
}

func TestKeyIsContentAddressed(t *testing.T) {
	a := Key([]byte("fn main() {}"))
	b := Key([]byte("fn main() {}"))
	c := Key([]byte("fn main() { 1; }"))
	if a != b {
		t.Error("identical source should hash identically")
	}
	if a == c {
		t.Error("different source should hash differently")
	}
}

func TestDispatchDSNUnknownScheme(t *testing.T) {
	if _, err := OpenRemote("redis://localhost"); err == nil {
		t.Fatal("expected an error for an unsupported DSN scheme")
	}
}
