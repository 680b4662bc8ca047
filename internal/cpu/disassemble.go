package cpu

import "fmt"

// Peeker reads memory without side effects.
type Peeker interface {
	Peek(address uint16) uint8
}

// Disassemble formats the instruction at address and returns its length.
// Undocumented instructions are prefixed with '*', as in nestest logs.
func Disassemble(mem Peeker, address uint16) (string, uint16) {
	opcode := mem.Peek(address)
	op := Decode(opcode)
	size := op.Mode.Size()

	lo := mem.Peek(address + 1)
	hi := mem.Peek(address + 2)
	word := uint16(hi)<<8 | uint16(lo)

	var operand string
	switch op.Mode {
	case Implied:
	case Accumulator:
		operand = "A"
	case Immediate:
		operand = fmt.Sprintf("#$%02X", lo)
	case ZeroPage:
		operand = fmt.Sprintf("$%02X", lo)
	case ZeroPageX:
		operand = fmt.Sprintf("$%02X,X", lo)
	case ZeroPageY:
		operand = fmt.Sprintf("$%02X,Y", lo)
	case Relative:
		operand = fmt.Sprintf("$%04X", uint16(int32(address+2)+int32(int8(lo))))
	case Absolute:
		operand = fmt.Sprintf("$%04X", word)
	case AbsoluteX:
		operand = fmt.Sprintf("$%04X,X", word)
	case AbsoluteY:
		operand = fmt.Sprintf("$%04X,Y", word)
	case Indirect:
		operand = fmt.Sprintf("($%04X)", word)
	case IndexedIndirect:
		operand = fmt.Sprintf("($%02X,X)", lo)
	case IndirectIndexed:
		operand = fmt.Sprintf("($%02X),Y", lo)
	}

	prefix := " "
	if !op.Instruction.Documented() {
		prefix = "*"
	}

	raw := fmt.Sprintf("%02X", opcode)
	switch size {
	case 2:
		raw += fmt.Sprintf(" %02X", lo)
	case 3:
		raw += fmt.Sprintf(" %02X %02X", lo, hi)
	}

	text := fmt.Sprintf("%04X  %-8s %s%s", address, raw, prefix, op.Instruction)
	if operand != "" {
		text += " " + operand
	}
	return text, size
}
