package bytecode

import (
	"strings"
	"testing"

	"github.com/chazu/starling/pkg/value"
)

func TestStackBalanceStraightLine(t *testing.T) {
	c := NewChunk("straight")
	c.EmitConst(value.Int(1))
	c.EmitConst(value.Int(2))
	c.Emit(OpAdd)
	c.Emit(OpReturn)
	if err := c.CheckStackBalance(); err != nil {
		t.Fatalf("balanced chunk rejected: %v", err)
	}
}

func TestStackBalanceUnderflow(t *testing.T) {
	c := NewChunk("underflow")
	c.Emit(OpAdd)
	c.Emit(OpReturnNone)
	err := c.CheckStackBalance()
	if err == nil {
		t.Fatal("underflow not detected")
	}
	if !strings.Contains(err.Error(), "pops") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStackBalanceReturnDepth(t *testing.T) {
	c := NewChunk("leaky")
	c.EmitConst(value.Int(1))
	c.EmitConst(value.Int(2))
	c.Emit(OpReturn)
	err := c.CheckStackBalance()
	if err == nil {
		t.Fatal("leaked value at return not detected")
	}
}

func TestStackBalanceBranchDepthMismatch(t *testing.T) {
	// One arm pushes a value, the other does not, so the join point is
	// reached at two different depths.
	c := NewChunk("mismatch")
	c.Emit(OpConstTrue)
	jmp := c.EmitJump(OpIfNotBr)
	c.EmitConst(value.Int(1))
	if err := c.PatchJump(jmp); err != nil {
		t.Fatal(err)
	}
	c.Emit(OpPop)
	c.Emit(OpReturnNone)
	err := c.CheckStackBalance()
	if err == nil {
		t.Fatal("depth mismatch at join not detected")
	}
	if !strings.Contains(err.Error(), "depths") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStackBalanceConditional(t *testing.T) {
	// if cond: x = 1 else: x = 2, both arms store and meet at depth 0.
	c := NewChunk("cond")
	c.Emit(OpConstTrue)
	elseJmp := c.EmitJump(OpIfNotBr)
	c.EmitConst(value.Int(1))
	c.EmitU16(OpStoreLocal, 0)
	endJmp := c.EmitJump(OpBr)
	if err := c.PatchJump(elseJmp); err != nil {
		t.Fatal(err)
	}
	c.EmitConst(value.Int(2))
	c.EmitU16(OpStoreLocal, 0)
	if err := c.PatchJump(endJmp); err != nil {
		t.Fatal(err)
	}
	c.Emit(OpReturnNone)
	if err := c.CheckStackBalance(); err != nil {
		t.Fatalf("balanced conditional rejected: %v", err)
	}
}

func TestStackBalanceForLoop(t *testing.T) {
	// for x in items: pass
	c := NewChunk("loop")
	c.EmitU16(OpLoadLocal, 0)
	c.Emit(OpMakeIter)
	loopTop := len(c.Code)
	exitJmp := c.EmitJump(OpForIter)
	c.EmitU16(OpStoreLocal, 1)
	backJmp := c.EmitJump(OpBr)
	if err := c.PatchJumpTo(backJmp, loopTop); err != nil {
		t.Fatal(err)
	}
	if err := c.PatchJump(exitJmp); err != nil {
		t.Fatal(err)
	}
	c.Emit(OpReturnNone)
	if err := c.CheckStackBalance(); err != nil {
		t.Fatalf("balanced loop rejected: %v", err)
	}
}

func TestStackBalanceBranchOutOfRange(t *testing.T) {
	c := NewChunk("wild")
	c.Emit(OpConstTrue)
	c.Code = append(c.Code, byte(OpIfBr), 0x7F, 0xFF)
	c.Emit(OpReturnNone)
	err := c.CheckStackBalance()
	if err == nil {
		t.Fatal("wild branch not detected")
	}
	if !strings.Contains(err.Error(), "outside code") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStackEffectWithArgs(t *testing.T) {
	c := NewChunk("effects")
	c.Emit(OpPop)
	in := c.DecodeInstr(0)
	pops, pushes := StackEffect(in)
	if pops != 1 || pushes != 0 {
		t.Errorf("POP effect = %d/%d, want 1/0", pops, pushes)
	}

	c2 := NewChunk("makelist")
	c2.EmitU8(OpMakeList, 5)
	in2 := c2.DecodeInstr(0)
	pops, pushes = StackEffect(in2)
	if pops != 5 || pushes != 1 {
		t.Errorf("MAKE_LIST 5 effect = %d/%d, want 5/1", pops, pushes)
	}

	c3 := NewChunk("makedict")
	c3.EmitU8(OpMakeDict, 3)
	in3 := c3.DecodeInstr(0)
	pops, pushes = StackEffect(in3)
	if pops != 6 || pushes != 1 {
		t.Errorf("MAKE_DICT 3 effect = %d/%d, want 6/1", pops, pushes)
	}
}

func TestMaxStackDepth(t *testing.T) {
	c := NewChunk("depth")
	c.EmitConst(value.Int(1))
	c.EmitConst(value.Int(2))
	c.EmitConst(value.Int(3))
	c.Emit(OpAdd)
	c.Emit(OpAdd)
	c.Emit(OpReturn)
	depth, err := c.MaxStackDepth()
	if err != nil {
		t.Fatal(err)
	}
	if depth != 3 {
		t.Errorf("MaxStackDepth = %d, want 3", depth)
	}
}

func TestStackBalanceEmptyChunk(t *testing.T) {
	c := NewChunk("empty")
	if err := c.CheckStackBalance(); err != nil {
		t.Fatalf("empty chunk rejected: %v", err)
	}
}
