package bytecode

import "github.com/chazu/starling/pkg/value"

// Instr is one decoded instruction: its opcode, typed argument, address
// and encoded size.
type Instr struct {
	Op   Opcode
	Arg  InstrArg
	Addr int
	Size int
}

// DecodeInstr decodes the instruction at addr into its typed argument
// form. Operands are big-endian. An unknown opcode decodes as a
// single-byte instruction with no argument so a disassembler can keep
// walking.
func (c *Chunk) DecodeInstr(addr int) Instr {
	op := Opcode(c.Code[addr])
	in := Instr{Op: op, Addr: addr, Size: op.InstructionLen()}

	switch op {
	case OpPop:
		in.Arg = Pops1Arg{}

	case OpConst:
		in.Arg = ConstArg{V: c.constAt(c.readU16(addr + 1))}

	case OpConstDict:
		v := c.constAt(c.readU16(addr + 1))
		if d, ok := v.(*value.Dict); ok {
			in.Arg = DictConstArg{D: d}
		} else {
			in.Arg = ConstArg{V: v}
		}

	case OpLoadLocal, OpStoreLocal:
		in.Arg = LocalSlotArg(c.readU16(addr + 1))

	case OpLoadModule, OpStoreModule:
		in.Arg = ModuleSlotArg(c.readU16(addr + 1))

	case OpLoadAttr, OpStoreAttr:
		v := c.constAt(c.readU16(addr + 1))
		if s, ok := v.(value.Str); ok {
			in.Arg = SymbolArg(string(s))
		} else {
			in.Arg = ConstArg{V: v}
		}

	case OpBr, OpIfBr, OpIfNotBr, OpForIter:
		in.Arg = AddrOffsetArg(c.readI16(addr + 1))

	case OpMakeList:
		in.Arg = PopsArg(c.readU8(addr + 1))

	case OpMakeDict:
		// Each entry is a key and a value on the stack.
		in.Arg = PopsArg(uint32(c.readU8(addr+1)) * 2)

	case OpUnpack:
		in.Arg = PushesArg(c.readU8(addr + 1))

	case OpCall:
		in.Arg = Args2{
			A: PopsArg(c.readU8(addr + 1)),
			B: SpanArg{Begin: c.readU32(addr + 2), End: c.readU32(addr + 6)},
		}

	case OpCallKw:
		in.Arg = Args3{
			A: PopsArg(c.readU8(addr + 1)),
			B: PopsMaybe1Arg(c.readU8(addr+2) != 0),
			C: SpanArg{Begin: c.readU32(addr + 3), End: c.readU32(addr + 7)},
		}

	default:
		in.Arg = NoArg{}
		if _, known := opcodeInfoTable[op]; !known {
			in.Size = 1
		}
	}
	return in
}

// Handler receives decoded instructions from Dispatch and EachInstr.
type Handler interface {
	Handle(in Instr) bool
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(in Instr) bool

func (f HandlerFunc) Handle(in Instr) bool { return f(in) }

// Dispatch decodes the instruction at pc, hands it to h, and returns the
// address of the next instruction.
func (c *Chunk) Dispatch(pc int, h Handler) int {
	in := c.DecodeInstr(pc)
	h.Handle(in)
	return pc + in.Size
}

// EachInstr walks the chunk's code linearly, handing each decoded
// instruction to h. Walking stops early when h returns false.
func (c *Chunk) EachInstr(h Handler) {
	for pc := 0; pc < len(c.Code); {
		in := c.DecodeInstr(pc)
		if !h.Handle(in) {
			return
		}
		pc += in.Size
	}
}
