package bytecode

import "fmt"

// StackEffect returns the total operand-stack pops and pushes of a
// decoded instruction: the opcode's fixed effect plus whatever its
// argument contributes.
func StackEffect(in Instr) (pops, pushes uint32) {
	info := GetOpcodeInfo(in.Op)
	pops = uint32(info.Pops) + in.Arg.PopsStack()
	pushes = uint32(info.Pushes) + in.Arg.PushesStack()
	return pops, pushes
}

// CheckStackBalance verifies that every execution path through the chunk
// keeps the operand stack consistent: no path pops below empty, every
// address is reached with one fixed depth, and every return sees exactly
// the depth it expects.
//
// The walk is a worklist over (address, depth) states. OpForIter is the
// one instruction whose two successors see different depths: the branch
// taken on iterator exhaustion pops the iterator, while the fallthrough
// keeps it and pushes the next element.
func (c *Chunk) CheckStackBalance() error {
	type state struct {
		addr  int
		depth int
	}
	depthAt := make(map[int]int)
	work := []state{{addr: 0, depth: 0}}

	push := func(addr, depth int) error {
		if depth < 0 {
			return fmt.Errorf("bytecode: address %04X reached at negative depth %d", addr, depth)
		}
		if addr < 0 || addr > len(c.Code) {
			return fmt.Errorf("bytecode: branch target %04X outside code of length %d", addr, len(c.Code))
		}
		if addr == len(c.Code) {
			// Falling off the end is only legal at depth zero.
			if depth != 0 {
				return fmt.Errorf("bytecode: code ends at depth %d, want 0", depth)
			}
			return nil
		}
		if seen, ok := depthAt[addr]; ok {
			if seen != depth {
				return fmt.Errorf("bytecode: address %04X reached at depths %d and %d", addr, seen, depth)
			}
			return nil
		}
		depthAt[addr] = depth
		work = append(work, state{addr: addr, depth: depth})
		return nil
	}

	if len(c.Code) == 0 {
		return nil
	}
	depthAt[0] = 0

	for len(work) > 0 {
		s := work[len(work)-1]
		work = work[:len(work)-1]

		in := c.DecodeInstr(s.addr)
		pops, pushes := StackEffect(in)
		if uint32(s.depth) < pops {
			return fmt.Errorf("bytecode: %04X %s pops %d at depth %d", s.addr, in.Op, pops, s.depth)
		}
		depth := s.depth - int(pops) + int(pushes)
		next := s.addr + in.Size

		switch in.Op {
		case OpReturn:
			if depth != 0 {
				return fmt.Errorf("bytecode: %04X RETURN leaves depth %d, want 0", s.addr, depth)
			}
		case OpReturnNone:
			if depth != 0 {
				return fmt.Errorf("bytecode: %04X RETURN_NONE leaves depth %d, want 0", s.addr, depth)
			}
		case OpBr:
			target := next + int(c.readI16(s.addr+1))
			if err := push(target, depth); err != nil {
				return err
			}
		case OpIfBr, OpIfNotBr:
			target := next + int(c.readI16(s.addr+1))
			if err := push(target, depth); err != nil {
				return err
			}
			if err := push(next, depth); err != nil {
				return err
			}
		case OpForIter:
			// Exhaustion branch discards the iterator instead of
			// pushing an element.
			target := next + int(c.readI16(s.addr+1))
			if err := push(target, depth-2); err != nil {
				return err
			}
			if err := push(next, depth); err != nil {
				return err
			}
		default:
			if err := push(next, depth); err != nil {
				return err
			}
		}
	}
	return nil
}

// MaxStackDepth returns the deepest operand stack any path through the
// chunk reaches. The chunk must already pass CheckStackBalance.
func (c *Chunk) MaxStackDepth() (int, error) {
	if err := c.CheckStackBalance(); err != nil {
		return 0, err
	}
	max := 0
	depthAt := map[int]int{0: 0}
	type state struct {
		addr  int
		depth int
	}
	work := []state{{addr: 0, depth: 0}}
	for len(work) > 0 {
		s := work[len(work)-1]
		work = work[:len(work)-1]
		if s.addr >= len(c.Code) {
			continue
		}
		in := c.DecodeInstr(s.addr)
		pops, pushes := StackEffect(in)
		depth := s.depth - int(pops) + int(pushes)
		if depth > max {
			max = depth
		}
		next := s.addr + in.Size
		visit := func(addr, d int) {
			if addr >= len(c.Code) || addr < 0 {
				return
			}
			if seen, ok := depthAt[addr]; ok && seen == d {
				return
			}
			depthAt[addr] = d
			work = append(work, state{addr: addr, depth: d})
		}
		switch in.Op {
		case OpReturn, OpReturnNone:
		case OpBr:
			visit(next+int(c.readI16(s.addr+1)), depth)
		case OpIfBr, OpIfNotBr:
			visit(next+int(c.readI16(s.addr+1)), depth)
			visit(next, depth)
		case OpForIter:
			visit(next+int(c.readI16(s.addr+1)), depth-2)
			visit(next, depth)
		default:
			visit(next, depth)
		}
	}
	return max, nil
}
