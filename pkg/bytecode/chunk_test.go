package bytecode

import (
	"testing"

	"github.com/chazu/starling/pkg/value"
)

func TestSpanAt(t *testing.T) {
	c := NewChunk("spans")
	c.EmitU16(OpLoadLocal, 0)
	first := c.EmitConst(value.Int(1))
	c.AddSpan(first, 10, 14)
	c.Emit(OpAdd)
	second := c.Emit(OpReturn)
	c.AddSpan(second, 20, 21)

	if _, ok := c.SpanAt(0); ok {
		t.Error("offset before the first span should have no span")
	}

	// The ADD between the two recorded offsets falls under the first span.
	got, ok := c.SpanAt(first + OpConst.InstructionLen())
	if !ok || got.Begin != 10 || got.End != 14 {
		t.Errorf("mid-chunk span = %+v, %v, want 10:14", got, ok)
	}

	got, ok = c.SpanAt(second)
	if !ok || got.Begin != 20 || got.End != 21 {
		t.Errorf("span at %04X = %+v, %v, want 20:21", second, got, ok)
	}
}

func TestAddConstantDedupes(t *testing.T) {
	c := NewChunk("pool")
	a := c.AddConstant(value.Str("x"))
	b := c.AddConstant(value.Int(7))
	again := c.AddConstant(value.Str("x"))
	if a != again {
		t.Errorf("equal constants got indices %d and %d", a, again)
	}
	if a == b {
		t.Error("distinct constants share an index")
	}
	if len(c.Constants) != 2 {
		t.Errorf("pool size = %d, want 2", len(c.Constants))
	}
}

func TestPatchJumpRejectsNonBranch(t *testing.T) {
	c := NewChunk("patch")
	addr := c.EmitConst(value.Int(1))
	if err := c.PatchJump(addr); err == nil {
		t.Fatal("patched a non-branch instruction")
	}
}
