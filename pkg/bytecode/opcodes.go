package bytecode

import "fmt"

// Opcode identifies which operation a bytecode instruction performs.
// Opcodes are organized into ranges by category for easy identification.
type Opcode byte

const (
	// ========================================================================
	// Stack manipulation (0x00-0x0F)
	// ========================================================================

	OpNop Opcode = 0x00 // No operation
	OpPop Opcode = 0x01 // Pop top of stack
	OpDup Opcode = 0x02 // Duplicate top of stack

	// ========================================================================
	// Constants (0x10-0x1F)
	// ========================================================================

	OpConst      Opcode = 0x10 // Push constant from pool: OpConst <index:u16>
	OpConstNone  Opcode = 0x11 // Push None
	OpConstTrue  Opcode = 0x12 // Push True
	OpConstFalse Opcode = 0x13 // Push False
	OpConstDict  Opcode = 0x14 // Push a literal dict constant: OpConstDict <index:u16>

	// ========================================================================
	// Variable slots (0x20-0x2F)
	// ========================================================================

	OpLoadLocal   Opcode = 0x20 // Push local slot: OpLoadLocal <slot:u16>
	OpStoreLocal  Opcode = 0x21 // Pop and store to local slot: OpStoreLocal <slot:u16>
	OpLoadModule  Opcode = 0x22 // Push module slot: OpLoadModule <slot:u16>
	OpStoreModule Opcode = 0x23 // Pop and store to module slot: OpStoreModule <slot:u16>

	// ========================================================================
	// Attributes and indexing (0x30-0x3F)
	// ========================================================================

	OpLoadAttr  Opcode = 0x30 // obj.name: OpLoadAttr <name:u16 const index>
	OpStoreAttr Opcode = 0x31 // obj.name = v: OpStoreAttr <name:u16 const index>
	OpIndex     Opcode = 0x32 // obj[key]
	OpSetIndex  Opcode = 0x33 // obj[key] = v

	// ========================================================================
	// Binary operations (0x40-0x4F)
	// ========================================================================

	OpAdd      Opcode = 0x40 // +
	OpSub      Opcode = 0x41 // -
	OpMul      Opcode = 0x42 // *
	OpDiv      Opcode = 0x43 // /
	OpFloorDiv Opcode = 0x44 // //
	OpPercent  Opcode = 0x45 // %
	OpIn       Opcode = 0x46 // in
	OpNotIn    Opcode = 0x47 // not in

	// ========================================================================
	// Comparison (0x50-0x57)
	// ========================================================================

	OpEq Opcode = 0x50 // ==
	OpNe Opcode = 0x51 // !=
	OpLt Opcode = 0x52 // <
	OpLe Opcode = 0x53 // <=
	OpGt Opcode = 0x54 // >
	OpGe Opcode = 0x55 // >=

	// ========================================================================
	// Unary operations (0x58-0x5F)
	// ========================================================================

	OpNot  Opcode = 0x58 // not
	OpNeg  Opcode = 0x59 // unary -
	OpPlus Opcode = 0x5A // unary +

	// ========================================================================
	// Control flow (0x60-0x6F)
	// ========================================================================

	OpBr       Opcode = 0x60 // Unconditional jump: OpBr <offset:i16>
	OpIfBr     Opcode = 0x61 // Jump if top is truthy: OpIfBr <offset:i16>
	OpIfNotBr  Opcode = 0x62 // Jump if top is falsy: OpIfNotBr <offset:i16>
	OpMakeIter Opcode = 0x63 // Replace top with its iterator
	OpForIter  Opcode = 0x64 // Push next item, or pop iterator and jump when exhausted: OpForIter <offset:i16>

	// ========================================================================
	// Construction (0x70-0x7F)
	// ========================================================================

	OpMakeList Opcode = 0x70 // Pop n values, push list: OpMakeList <n:u8>
	OpMakeDict Opcode = 0x71 // Pop n cells (key/value pairs), push dict: OpMakeDict <n:u8>
	OpUnpack   Opcode = 0x72 // Pop iterable, push its n items: OpUnpack <n:u8>

	// ========================================================================
	// Calls (0x80-0x8F)
	// ========================================================================

	OpCall   Opcode = 0x80 // Call: OpCall <argc:u8> <span:u32,u32>
	OpCallKw Opcode = 0x81 // Call with kwargs dict flag: OpCallKw <argc:u8> <kw:u8> <span:u32,u32>

	// ========================================================================
	// Return (0xF0-0xFF)
	// ========================================================================

	OpReturn     Opcode = 0xF0 // Return top of stack
	OpReturnNone Opcode = 0xF1 // Return None
)

// OpcodeInfo provides static metadata about each opcode.
//
// Pops and Pushes are the opcode's fixed stack effect. Instructions whose
// effect depends on their argument (calls, construction) report the rest
// through the argument's InstrArg counts; the two always add.
type OpcodeInfo struct {
	Name       string // Human-readable name
	Pops       int    // Fixed values popped from stack
	Pushes     int    // Fixed values pushed to stack
	OperandLen int    // Number of operand bytes following the opcode
}

var opcodeInfoTable = map[Opcode]OpcodeInfo{
	// Stack manipulation. OpPop's pop is carried by its Pops1Arg argument
	// rather than the fixed table.
	OpNop: {"NOP", 0, 0, 0},
	OpPop: {"POP", 0, 0, 0},
	OpDup: {"DUP", 1, 2, 0},

	// Constants
	OpConst:      {"CONST", 0, 1, 2},
	OpConstNone:  {"CONST_NONE", 0, 1, 0},
	OpConstTrue:  {"CONST_TRUE", 0, 1, 0},
	OpConstFalse: {"CONST_FALSE", 0, 1, 0},
	OpConstDict:  {"CONST_DICT", 0, 1, 2},

	// Variable slots
	OpLoadLocal:   {"LOAD_LOCAL", 0, 1, 2},
	OpStoreLocal:  {"STORE_LOCAL", 1, 0, 2},
	OpLoadModule:  {"LOAD_MODULE", 0, 1, 2},
	OpStoreModule: {"STORE_MODULE", 1, 0, 2},

	// Attributes and indexing
	OpLoadAttr:  {"LOAD_ATTR", 1, 1, 2},
	OpStoreAttr: {"STORE_ATTR", 2, 0, 2},
	OpIndex:     {"INDEX", 2, 1, 0},
	OpSetIndex:  {"SET_INDEX", 3, 0, 0},

	// Binary
	OpAdd:      {"ADD", 2, 1, 0},
	OpSub:      {"SUB", 2, 1, 0},
	OpMul:      {"MUL", 2, 1, 0},
	OpDiv:      {"DIV", 2, 1, 0},
	OpFloorDiv: {"FLOOR_DIV", 2, 1, 0},
	OpPercent:  {"PERCENT", 2, 1, 0},
	OpIn:       {"IN", 2, 1, 0},
	OpNotIn:    {"NOT_IN", 2, 1, 0},

	// Comparison
	OpEq: {"EQ", 2, 1, 0},
	OpNe: {"NE", 2, 1, 0},
	OpLt: {"LT", 2, 1, 0},
	OpLe: {"LE", 2, 1, 0},
	OpGt: {"GT", 2, 1, 0},
	OpGe: {"GE", 2, 1, 0},

	// Unary
	OpNot:  {"NOT", 1, 1, 0},
	OpNeg:  {"NEG", 1, 1, 0},
	OpPlus: {"PLUS", 1, 1, 0},

	// Control flow
	OpBr:       {"BR", 0, 0, 2},
	OpIfBr:     {"IF_BR", 1, 0, 2},
	OpIfNotBr:  {"IF_NOT_BR", 1, 0, 2},
	OpMakeIter: {"MAKE_ITER", 1, 1, 0},
	OpForIter:  {"FOR_ITER", 0, 1, 2},

	// Construction. Variable pops/pushes come from the argument.
	OpMakeList: {"MAKE_LIST", 0, 1, 1},
	OpMakeDict: {"MAKE_DICT", 0, 1, 1},
	OpUnpack:   {"UNPACK", 1, 0, 1},

	// Calls pop the callable plus argc values (argument-reported) and
	// push the result.
	OpCall:   {"CALL", 1, 1, 9},
	OpCallKw: {"CALL_KW", 1, 1, 10},

	// Return
	OpReturn:     {"RETURN", 1, 0, 0},
	OpReturnNone: {"RETURN_NONE", 0, 0, 0},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// OperandLen returns the number of operand bytes for this opcode.
func (op Opcode) OperandLen() int {
	return GetOpcodeInfo(op).OperandLen
}

// InstructionLen returns the total length of an instruction (1 + operand bytes).
func (op Opcode) InstructionLen() int {
	return 1 + op.OperandLen()
}

// IsJump returns true if this opcode carries a branch offset.
func (op Opcode) IsJump() bool {
	switch op {
	case OpBr, OpIfBr, OpIfNotBr, OpForIter:
		return true
	}
	return false
}

// IsTerminal returns true if execution never falls through this opcode.
func (op Opcode) IsTerminal() bool {
	switch op {
	case OpBr, OpReturn, OpReturnNone:
		return true
	}
	return false
}

// AllOpcodes returns a slice of all defined opcodes.
// Useful for testing that all opcodes have metadata.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
