package bytecode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chazu/starling/pkg/value"
)

func wireTestChunk() *Chunk {
	d := value.NewDict()
	d.SetKey(value.Str("b"), value.Int(2))
	d.SetKey(value.Str("a"), value.List{value.Int(1), value.None})

	c := NewChunk("config.star")
	c.LocalCount = 2
	c.ModuleCount = 1
	c.EmitU16(OpConstDict, c.AddConstant(d))
	c.EmitU16(OpStoreModule, 0)
	c.EmitConst(value.Bool(true))
	c.AddSpan(len(c.Code)-3, 10, 14)
	c.Emit(OpReturn)
	return c
}

func TestChunkRoundTrip(t *testing.T) {
	c := wireTestChunk()
	data, err := MarshalChunk(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalChunk(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Name != c.Name {
		t.Errorf("name = %q, want %q", got.Name, c.Name)
	}
	if !bytes.Equal(got.Code, c.Code) {
		t.Error("code differs after round trip")
	}
	if got.LocalCount != c.LocalCount || got.ModuleCount != c.ModuleCount {
		t.Error("slot counts differ after round trip")
	}
	if len(got.Spans) != 1 || got.Spans[0] != c.Spans[0] {
		t.Errorf("spans = %v, want %v", got.Spans, c.Spans)
	}
	if len(got.Constants) != len(c.Constants) {
		t.Fatalf("got %d constants, want %d", len(got.Constants), len(c.Constants))
	}
	for i, want := range c.Constants {
		if !got.Constants[i].Equal(want) {
			t.Errorf("constant %d = %s, want %s", i, got.Constants[i].Repr(), want.Repr())
		}
	}
}

func TestDictConstantOrderSurvivesRoundTrip(t *testing.T) {
	c := wireTestChunk()
	data, err := MarshalChunk(c)
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalChunk(data)
	if err != nil {
		t.Fatal(err)
	}
	d, ok := got.Constants[0].(*value.Dict)
	if !ok {
		t.Fatalf("constant 0 is %T, want *value.Dict", got.Constants[0])
	}
	var keys []string
	d.All(func(k, _ value.Value) bool {
		keys = append(keys, string(k.(value.Str)))
		return true
	})
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Errorf("key order = %v, want [b a]", keys)
	}
}

func TestMarshalIsDeterministic(t *testing.T) {
	a, err := MarshalChunk(wireTestChunk())
	if err != nil {
		t.Fatal(err)
	}
	b, err := MarshalChunk(wireTestChunk())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical chunks serialized to different bytes")
	}
}

func TestChunkHashStable(t *testing.T) {
	h1, err := ChunkHash(wireTestChunk())
	if err != nil {
		t.Fatal(err)
	}
	h2, err := ChunkHash(wireTestChunk())
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Error("identical chunks hashed differently")
	}

	other := wireTestChunk()
	other.Emit(OpNop)
	h3, err := ChunkHash(other)
	if err != nil {
		t.Fatal(err)
	}
	if h3 == h1 {
		t.Error("different chunks hashed identically")
	}
}

func TestUnmarshalRejectsBadVersion(t *testing.T) {
	c := wireTestChunk()
	data, err := cborEncMode.Marshal(wireChunk{Version: 99, Name: c.Name})
	if err != nil {
		t.Fatal(err)
	}
	_, err = UnmarshalChunk(data)
	if err == nil {
		t.Fatal("version 99 accepted")
	}
	if !strings.Contains(err.Error(), "version") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalChunk([]byte{0xFF, 0x00, 0x12}); err == nil {
		t.Fatal("garbage bytes accepted")
	}
}

func TestUnmarshalRejectsDanglingConstantIndex(t *testing.T) {
	c := NewChunk("bad-pool")
	c.EmitU16(OpConst, 5) // empty pool
	c.Emit(OpReturn)
	data, err := MarshalChunk(c)
	if err != nil {
		t.Fatal(err)
	}
	_, err = UnmarshalChunk(data)
	if err == nil {
		t.Fatal("dangling constant index accepted")
	}
	if !strings.Contains(err.Error(), "constant") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUnmarshalRejectsTruncatedInstruction(t *testing.T) {
	c := NewChunk("truncated")
	c.EmitConst(value.Int(1))
	c.Code = c.Code[:2] // cut the operand short
	data, err := MarshalChunk(c)
	if err != nil {
		t.Fatal(err)
	}
	_, err = UnmarshalChunk(data)
	if err == nil {
		t.Fatal("truncated instruction accepted")
	}
	if !strings.Contains(err.Error(), "truncated") {
		t.Errorf("unexpected error: %v", err)
	}
}
