package bytecode

import (
	"strings"
	"testing"

	"github.com/chazu/starling/pkg/value"
)

func TestDisassembleLines(t *testing.T) {
	c := NewChunk("test")
	c.EmitConst(value.Int(42))
	c.EmitU16(OpLoadLocal, 3)
	c.EmitU16(OpStoreModule, 7)
	c.Emit(OpAdd)
	c.EmitU16(OpLoadAttr, c.AddConstant(value.Str("name")))
	c.Emit(OpReturn)

	lines := c.DisassembleToLines()
	want := []string{
		"0000  CONST 42",
		"0003  LOAD_LOCAL l3",
		"0006  STORE_MODULE m7",
		"0009  ADD",
		"000A  LOAD_ATTR name",
		"000D  RETURN",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), strings.Join(lines, "\n"))
	}
	for i, line := range lines {
		if line != want[i] {
			t.Errorf("line %d = %q, want %q", i, line, want[i])
		}
	}
}

func TestDisassembleCall(t *testing.T) {
	c := NewChunk("call")
	c.EmitU16(OpLoadModule, 0)
	addr := len(c.Code)
	c.Code = append(c.Code, byte(OpCall), 2) // argc
	c.Code = append(c.Code, 0, 0, 0, 12)     // span begin
	c.Code = append(c.Code, 0, 0, 0, 18)     // span end
	c.Emit(OpReturn)

	in := c.DecodeInstr(addr)
	got := DisassembleInstr(in)
	want := "0003  CALL 2 12:18"
	if got != want {
		t.Errorf("call line = %q, want %q", got, want)
	}
	pops, pushes := StackEffect(in)
	if pops != 3 || pushes != 1 {
		t.Errorf("CALL effect = %d/%d, want 3/1", pops, pushes)
	}
}

func TestDisassembleBranchOffsets(t *testing.T) {
	c := NewChunk("branch")
	c.Emit(OpConstTrue)
	jmp := c.EmitJump(OpIfNotBr)
	c.EmitConst(value.Int(1))
	c.Emit(OpPop)
	if err := c.PatchJump(jmp); err != nil {
		t.Fatal(err)
	}
	c.Emit(OpReturnNone)

	lines := c.DisassembleToLines()
	found := false
	for _, line := range lines {
		if strings.Contains(line, "IF_NOT_BR +4") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected IF_NOT_BR +4 in listing:\n%s", strings.Join(lines, "\n"))
	}
}

func TestDisassembleHeader(t *testing.T) {
	c := NewChunk("module.star")
	c.LocalCount = 2
	c.ModuleCount = 1
	c.Emit(OpReturnNone)
	out := c.Disassemble()
	if !strings.HasPrefix(out, "== module.star (locals=2 modules=1 constants=0) ==\n") {
		t.Errorf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "0000  RETURN_NONE\n") {
		t.Errorf("missing instruction line:\n%s", out)
	}
}

func TestDisassembleDictConstant(t *testing.T) {
	d := value.NewDict()
	d.SetKey(value.Str("a"), value.Int(1))
	c := NewChunk("dict")
	c.EmitU16(OpConstDict, c.AddConstant(d))
	lines := c.DisassembleToLines()
	want := `0000  CONST_DICT {"a": 1}`
	if len(lines) != 1 || lines[0] != want {
		t.Errorf("dict line = %v, want %q", lines, want)
	}
}

func TestDecodeUnknownOpcodeKeepsWalking(t *testing.T) {
	c := NewChunk("junk")
	c.Code = []byte{0xEE, byte(OpReturnNone)}
	lines := c.DisassembleToLines()
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "UNKNOWN(0xEE)") {
		t.Errorf("line 0 = %q, want UNKNOWN marker", lines[0])
	}
}
