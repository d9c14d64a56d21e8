package bytecode

import (
	"fmt"
	"strings"

	"github.com/chazu/starling/pkg/value"
)

// maxConstReprLen bounds how long an embedded constant's rendering may be
// in a disassembly listing before it collapses to its type tag.
const maxConstReprLen = 100

// truncatedRepr renders a constant for disassembly. Oversized constants
// (a dict literal with hundreds of entries, say) render as "<type>" so
// listings stay scannable. This lossy rendering is deliberate, not an
// error path.
func truncatedRepr(v value.Value) string {
	repr := v.Repr()
	if len(repr) > maxConstReprLen {
		return "<" + v.TypeName() + ">"
	}
	return repr
}

// InstrArg is the contract every instruction's fixed argument satisfies.
//
// The pop/push counts describe what the instruction does to the operand
// stack beyond its fixed opcode effect, so a stack-balance verifier can
// account for an instruction without knowing its executor.
type InstrArg interface {
	// AppendRepr appends a space-prefixed disassembly fragment, or
	// nothing for arguments carrying no printable information.
	AppendRepr(sb *strings.Builder)
	// PopsStack is the number of additional operand-stack cells the
	// instruction's execution consumes.
	PopsStack() uint32
	// PushesStack is the symmetric count of cells produced.
	PushesStack() uint32
}

// NoArg is the argument of instructions with no payload.
type NoArg struct{}

func (NoArg) AppendRepr(*strings.Builder) {}
func (NoArg) PopsStack() uint32           { return 0 }
func (NoArg) PushesStack() uint32         { return 0 }

// U32Arg is a plain numeric argument.
type U32Arg uint32

func (a U32Arg) AppendRepr(sb *strings.Builder) { fmt.Fprintf(sb, " %d", uint32(a)) }
func (U32Arg) PopsStack() uint32                { return 0 }
func (U32Arg) PushesStack() uint32              { return 0 }

// LocalSlotArg identifies a local variable slot. Renders as " l3".
type LocalSlotArg uint32

func (a LocalSlotArg) AppendRepr(sb *strings.Builder) { fmt.Fprintf(sb, " l%d", uint32(a)) }
func (LocalSlotArg) PopsStack() uint32                { return 0 }
func (LocalSlotArg) PushesStack() uint32              { return 0 }

// ModuleSlotArg identifies a module-level variable slot. Renders as " m7".
type ModuleSlotArg uint32

func (a ModuleSlotArg) AppendRepr(sb *strings.Builder) { fmt.Fprintf(sb, " m%d", uint32(a)) }
func (ModuleSlotArg) PopsStack() uint32                { return 0 }
func (ModuleSlotArg) PushesStack() uint32              { return 0 }

// AddrArg is an absolute bytecode address.
type AddrArg uint32

func (a AddrArg) AppendRepr(sb *strings.Builder) { fmt.Fprintf(sb, " %d", uint32(a)) }
func (AddrArg) PopsStack() uint32                { return 0 }
func (AddrArg) PushesStack() uint32              { return 0 }

// AddrOffsetArg is a branch offset relative to the end of the
// instruction. Renders signed: " +12" for forward jumps.
type AddrOffsetArg int32

func (a AddrOffsetArg) AppendRepr(sb *strings.Builder) { fmt.Fprintf(sb, " %+d", int32(a)) }
func (AddrOffsetArg) PopsStack() uint32                { return 0 }
func (AddrOffsetArg) PushesStack() uint32              { return 0 }

// SpanArg is a source byte-offset range. Renders as " 12:18".
type SpanArg struct {
	Begin uint32
	End   uint32
}

func (a SpanArg) AppendRepr(sb *strings.Builder) { fmt.Fprintf(sb, " %d:%d", a.Begin, a.End) }
func (SpanArg) PopsStack() uint32                { return 0 }
func (SpanArg) PushesStack() uint32              { return 0 }

// SymbolArg is an interned name (attribute, keyword).
type SymbolArg string

func (a SymbolArg) AppendRepr(sb *strings.Builder) {
	sb.WriteByte(' ')
	sb.WriteString(string(a))
}
func (SymbolArg) PopsStack() uint32   { return 0 }
func (SymbolArg) PushesStack() uint32 { return 0 }

// ConstArg is an embedded constant value.
type ConstArg struct {
	V value.Value
}

func (a ConstArg) AppendRepr(sb *strings.Builder) {
	sb.WriteByte(' ')
	sb.WriteString(truncatedRepr(a.V))
}
func (ConstArg) PopsStack() uint32   { return 0 }
func (ConstArg) PushesStack() uint32 { return 0 }

// OptionalConstArg is an embedded constant that may be absent. An absent
// value renders as " ()".
type OptionalConstArg struct {
	V value.Value // nil when absent
}

func (a OptionalConstArg) AppendRepr(sb *strings.Builder) {
	if a.V == nil {
		sb.WriteString(" ()")
		return
	}
	sb.WriteByte(' ')
	sb.WriteString(truncatedRepr(a.V))
}
func (OptionalConstArg) PopsStack() uint32   { return 0 }
func (OptionalConstArg) PushesStack() uint32 { return 0 }

// ConstListArg is an embedded sequence of constants.
type ConstListArg []value.Value

func (a ConstListArg) AppendRepr(sb *strings.Builder) {
	sb.WriteString(" [")
	for i, v := range a {
		if i != 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(truncatedRepr(v))
	}
	sb.WriteByte(']')
}
func (ConstListArg) PopsStack() uint32   { return 0 }
func (ConstListArg) PushesStack() uint32 { return 0 }

// DictConstArg is an embedded literal mapping, rendered entry by entry in
// the literal's insertion order.
type DictConstArg struct {
	D *value.Dict
}

func (a DictConstArg) AppendRepr(sb *strings.Builder) {
	sb.WriteString(" {")
	first := true
	a.D.All(func(k, v value.Value) bool {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(truncatedRepr(k))
		sb.WriteString(": ")
		sb.WriteString(truncatedRepr(v))
		return true
	})
	sb.WriteByte('}')
}
func (DictConstArg) PopsStack() uint32   { return 0 }
func (DictConstArg) PushesStack() uint32 { return 0 }

// PopsArg encodes how many values the instruction pops beyond its fixed
// effect. Renders the count.
type PopsArg uint32

func (a PopsArg) AppendRepr(sb *strings.Builder) { fmt.Fprintf(sb, " %d", uint32(a)) }
func (a PopsArg) PopsStack() uint32              { return uint32(a) }
func (PopsArg) PushesStack() uint32              { return 0 }

// PushesArg encodes how many values the instruction pushes beyond its
// fixed effect. Renders the count.
type PushesArg uint32

func (a PushesArg) AppendRepr(sb *strings.Builder) { fmt.Fprintf(sb, " %d", uint32(a)) }
func (PushesArg) PopsStack() uint32                { return 0 }
func (a PushesArg) PushesStack() uint32            { return uint32(a) }

// Pops1Arg encodes that the instruction pops exactly one value. It
// carries no printable information.
type Pops1Arg struct{}

func (Pops1Arg) AppendRepr(*strings.Builder) {}
func (Pops1Arg) PopsStack() uint32           { return 1 }
func (Pops1Arg) PushesStack() uint32         { return 0 }

// PopsMaybe1Arg encodes that the instruction pops one value only when the
// flag is set.
type PopsMaybe1Arg bool

func (a PopsMaybe1Arg) AppendRepr(sb *strings.Builder) {
	if a {
		sb.WriteString(" 1")
	} else {
		sb.WriteString(" 0")
	}
}

func (a PopsMaybe1Arg) PopsStack() uint32 {
	if a {
		return 1
	}
	return 0
}
func (PopsMaybe1Arg) PushesStack() uint32 { return 0 }

// Args2 is a pair of arguments: renderings concatenate in order, stack
// counts sum.
type Args2 struct {
	A InstrArg
	B InstrArg
}

func (a Args2) AppendRepr(sb *strings.Builder) {
	a.A.AppendRepr(sb)
	a.B.AppendRepr(sb)
}
func (a Args2) PopsStack() uint32   { return a.A.PopsStack() + a.B.PopsStack() }
func (a Args2) PushesStack() uint32 { return a.A.PushesStack() + a.B.PushesStack() }

// Args3 is a triple of arguments.
type Args3 struct {
	A InstrArg
	B InstrArg
	C InstrArg
}

func (a Args3) AppendRepr(sb *strings.Builder) {
	a.A.AppendRepr(sb)
	a.B.AppendRepr(sb)
	a.C.AppendRepr(sb)
}
func (a Args3) PopsStack() uint32 {
	return a.A.PopsStack() + a.B.PopsStack() + a.C.PopsStack()
}
func (a Args3) PushesStack() uint32 {
	return a.A.PushesStack() + a.B.PushesStack() + a.C.PushesStack()
}

// Args4 is a quadruple of arguments.
type Args4 struct {
	A InstrArg
	B InstrArg
	C InstrArg
	D InstrArg
}

func (a Args4) AppendRepr(sb *strings.Builder) {
	a.A.AppendRepr(sb)
	a.B.AppendRepr(sb)
	a.C.AppendRepr(sb)
	a.D.AppendRepr(sb)
}
func (a Args4) PopsStack() uint32 {
	return a.A.PopsStack() + a.B.PopsStack() + a.C.PopsStack() + a.D.PopsStack()
}
func (a Args4) PushesStack() uint32 {
	return a.A.PushesStack() + a.B.PushesStack() + a.C.PushesStack() + a.D.PushesStack()
}

// ArgList is a fixed sequence of arguments of one shape.
type ArgList []InstrArg

func (a ArgList) AppendRepr(sb *strings.Builder) {
	for _, arg := range a {
		arg.AppendRepr(sb)
	}
}

func (a ArgList) PopsStack() uint32 {
	var n uint32
	for _, arg := range a {
		n += arg.PopsStack()
	}
	return n
}

func (a ArgList) PushesStack() uint32 {
	var n uint32
	for _, arg := range a {
		n += arg.PushesStack()
	}
	return n
}

// ReprOf renders an argument to a string, mostly for tests and logs.
func ReprOf(arg InstrArg) string {
	var sb strings.Builder
	arg.AppendRepr(&sb)
	return sb.String()
}
