package bytecode

import (
	"encoding/binary"
	"fmt"

	"github.com/chazu/starling/pkg/value"
)

// SpanEntry maps a bytecode offset to a source byte range. Entries are
// appended in emission order, so Offset is non-decreasing.
type SpanEntry struct {
	Offset uint32
	Begin  uint32
	End    uint32
}

// Chunk is a compiled unit of bytecode together with its constant pool
// and source-span table.
type Chunk struct {
	Name        string
	Code        []byte
	Constants   []value.Value
	Spans       []SpanEntry
	LocalCount  uint16
	ModuleCount uint16
}

// NewChunk creates an empty chunk with the given name.
func NewChunk(name string) *Chunk {
	return &Chunk{Name: name}
}

// AddConstant adds a value to the constant pool and returns its index.
// Equal hashable constants are deduplicated; a linear scan is fine at the
// pool sizes chunks actually reach.
func (c *Chunk) AddConstant(v value.Value) uint16 {
	for i, existing := range c.Constants {
		if existing.Equal(v) {
			return uint16(i)
		}
	}
	c.Constants = append(c.Constants, v)
	return uint16(len(c.Constants) - 1)
}

// Emit appends a bare opcode.
func (c *Chunk) Emit(op Opcode) int {
	addr := len(c.Code)
	c.Code = append(c.Code, byte(op))
	return addr
}

// EmitU8 appends an opcode with a one-byte operand.
func (c *Chunk) EmitU8(op Opcode, operand uint8) int {
	addr := len(c.Code)
	c.Code = append(c.Code, byte(op), operand)
	return addr
}

// EmitU16 appends an opcode with a two-byte big-endian operand.
func (c *Chunk) EmitU16(op Opcode, operand uint16) int {
	addr := len(c.Code)
	c.Code = append(c.Code, byte(op), byte(operand>>8), byte(operand))
	return addr
}

// EmitConst adds v to the constant pool and emits an OpConst referencing
// it.
func (c *Chunk) EmitConst(v value.Value) int {
	return c.EmitU16(OpConst, c.AddConstant(v))
}

// EmitJump emits a branch instruction with a placeholder offset and
// returns its address for later patching.
func (c *Chunk) EmitJump(op Opcode) int {
	addr := len(c.Code)
	c.Code = append(c.Code, byte(op), 0xFF, 0xFF)
	return addr
}

// PatchJump rewrites the branch at addr to target the current end of the
// code. Offsets are relative to the end of the branch instruction.
func (c *Chunk) PatchJump(addr int) error {
	return c.PatchJumpTo(addr, len(c.Code))
}

// PatchJumpTo rewrites the branch at addr to target the given address.
func (c *Chunk) PatchJumpTo(addr, target int) error {
	op := Opcode(c.Code[addr])
	if !op.IsJump() {
		return fmt.Errorf("bytecode: patch target %04X is %s, not a branch", addr, op)
	}
	delta := target - (addr + op.InstructionLen())
	if delta < -32768 || delta > 32767 {
		return fmt.Errorf("bytecode: branch from %04X to %04X overflows 16-bit offset", addr, target)
	}
	binary.BigEndian.PutUint16(c.Code[addr+1:], uint16(int16(delta)))
	return nil
}

// AddSpan records that code emitted at offset originates from the source
// range [begin, end).
func (c *Chunk) AddSpan(offset int, begin, end uint32) {
	c.Spans = append(c.Spans, SpanEntry{Offset: uint32(offset), Begin: begin, End: end})
}

// SpanAt returns the source span covering the instruction at offset, or
// false when no span was recorded.
func (c *Chunk) SpanAt(offset int) (SpanEntry, bool) {
	// Last entry at or before offset wins.
	for i := len(c.Spans) - 1; i >= 0; i-- {
		if int(c.Spans[i].Offset) <= offset {
			return c.Spans[i], true
		}
	}
	return SpanEntry{}, false
}

// CheckKnownOpcodes reports the first opcode in the code that has no
// metadata entry. Strict verification rejects such chunks instead of
// disassembling them as UNKNOWN.
func (c *Chunk) CheckKnownOpcodes() error {
	for pc := 0; pc < len(c.Code); {
		op := Opcode(c.Code[pc])
		if _, ok := opcodeInfoTable[op]; !ok {
			return fmt.Errorf("bytecode: unknown opcode 0x%02X at %04X", byte(op), pc)
		}
		pc += op.InstructionLen()
	}
	return nil
}

func (c *Chunk) readU8(addr int) uint8 {
	return c.Code[addr]
}

func (c *Chunk) readU16(addr int) uint16 {
	return binary.BigEndian.Uint16(c.Code[addr:])
}

func (c *Chunk) readI16(addr int) int16 {
	return int16(binary.BigEndian.Uint16(c.Code[addr:]))
}

func (c *Chunk) readU32(addr int) uint32 {
	return binary.BigEndian.Uint32(c.Code[addr:])
}

// constAt fetches a constant by pool index, panicking on a corrupt
// reference. Malformed chunks arriving over the wire are rejected before
// decode, so an out-of-range index here is a bug in emission.
func (c *Chunk) constAt(idx uint16) value.Value {
	if int(idx) >= len(c.Constants) {
		panic(fmt.Sprintf("bytecode: constant index %d out of range (pool has %d)", idx, len(c.Constants)))
	}
	return c.Constants[idx]
}
