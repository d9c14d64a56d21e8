package bytecode

import (
	"fmt"
	"strings"
)

// DisassembleInstr renders a single decoded instruction as one listing
// line, without a trailing newline.
func DisassembleInstr(in Instr) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%04X  %s", in.Addr, in.Op)
	in.Arg.AppendRepr(&sb)
	return sb.String()
}

// DisassembleToLines decodes every instruction in the chunk and returns
// one rendered line per instruction.
func (c *Chunk) DisassembleToLines() []string {
	var lines []string
	c.EachInstr(HandlerFunc(func(in Instr) bool {
		lines = append(lines, DisassembleInstr(in))
		return true
	}))
	return lines
}

// Disassemble renders the whole chunk as a listing: a header naming the
// chunk and its slot counts, then one line per instruction.
func (c *Chunk) Disassemble() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s (locals=%d modules=%d constants=%d) ==\n",
		c.Name, c.LocalCount, c.ModuleCount, len(c.Constants))
	for _, line := range c.DisassembleToLines() {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
