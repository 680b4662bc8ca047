package cpu

// execute runs one decoded instruction and returns the cycles it adds to
// the table cost (taken branches only).
func (cpu *CPU) execute(op Opcode, address uint16, pageCrossed bool) int {
	switch op.Instruction {
	// Load operations
	case LDA:
		cpu.A = cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case LDX:
		cpu.X = cpu.memory.Read(address)
		cpu.setZN(cpu.X)
	case LDY:
		cpu.Y = cpu.memory.Read(address)
		cpu.setZN(cpu.Y)

	// Store operations
	case STA:
		cpu.memory.Write(address, cpu.A)
	case STX:
		cpu.memory.Write(address, cpu.X)
	case STY:
		cpu.memory.Write(address, cpu.Y)

	// Arithmetic operations
	case ADC:
		cpu.adc(cpu.memory.Read(address))
	case SBC:
		cpu.sbc(cpu.memory.Read(address))

	// Logical operations
	case AND:
		cpu.A &= cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case ORA:
		cpu.A |= cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case EOR:
		cpu.A ^= cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case BIT:
		value := cpu.memory.Read(address)
		cpu.Z = cpu.A&value == 0
		cpu.V = value&vFlagMask != 0
		cpu.N = value&nFlagMask != 0

	// Shifts and rotates
	case ASL:
		cpu.modify(op.Mode, address, cpu.asl)
	case LSR:
		cpu.modify(op.Mode, address, cpu.lsr)
	case ROL:
		cpu.modify(op.Mode, address, cpu.rol)
	case ROR:
		cpu.modify(op.Mode, address, cpu.ror)

	// Comparisons
	case CMP:
		cpu.compare(cpu.A, cpu.memory.Read(address))
	case CPX:
		cpu.compare(cpu.X, cpu.memory.Read(address))
	case CPY:
		cpu.compare(cpu.Y, cpu.memory.Read(address))

	// Increments and decrements
	case INC:
		value := cpu.memory.Read(address) + 1
		cpu.memory.Write(address, value)
		cpu.setZN(value)
	case DEC:
		value := cpu.memory.Read(address) - 1
		cpu.memory.Write(address, value)
		cpu.setZN(value)
	case INX:
		cpu.X++
		cpu.setZN(cpu.X)
	case INY:
		cpu.Y++
		cpu.setZN(cpu.Y)
	case DEX:
		cpu.X--
		cpu.setZN(cpu.X)
	case DEY:
		cpu.Y--
		cpu.setZN(cpu.Y)

	// Transfers
	case TAX:
		cpu.X = cpu.A
		cpu.setZN(cpu.X)
	case TAY:
		cpu.Y = cpu.A
		cpu.setZN(cpu.Y)
	case TXA:
		cpu.A = cpu.X
		cpu.setZN(cpu.A)
	case TYA:
		cpu.A = cpu.Y
		cpu.setZN(cpu.A)
	case TSX:
		cpu.X = cpu.SP
		cpu.setZN(cpu.X)
	case TXS:
		cpu.SP = cpu.X

	// Stack
	case PHA:
		cpu.push(cpu.A)
	case PLA:
		cpu.A = cpu.pop()
		cpu.setZN(cpu.A)
	case PHP:
		cpu.push(cpu.GetStatusByte() | bFlagMask | unusedMask)
	case PLP:
		cpu.pullStatus()

	// Flags
	case CLC:
		cpu.C = false
	case SEC:
		cpu.C = true
	case CLI:
		cpu.I = false
	case SEI:
		cpu.I = true
	case CLD:
		cpu.D = false
	case SED:
		cpu.D = true
	case CLV:
		cpu.V = false

	// Jumps and subroutines
	case JMP:
		cpu.PC = address
	case JSR:
		// PC already points past the operand; push the address of its
		// last byte.
		cpu.pushWord(cpu.PC - 1)
		cpu.PC = address
	case RTS:
		cpu.PC = cpu.popWord() + 1
	case RTI:
		cpu.pullStatus()
		cpu.PC = cpu.popWord()
	case BRK:
		cpu.brk()

	// Branches
	case BCC:
		return cpu.branch(!cpu.C, address, pageCrossed)
	case BCS:
		return cpu.branch(cpu.C, address, pageCrossed)
	case BNE:
		return cpu.branch(!cpu.Z, address, pageCrossed)
	case BEQ:
		return cpu.branch(cpu.Z, address, pageCrossed)
	case BPL:
		return cpu.branch(!cpu.N, address, pageCrossed)
	case BMI:
		return cpu.branch(cpu.N, address, pageCrossed)
	case BVC:
		return cpu.branch(!cpu.V, address, pageCrossed)
	case BVS:
		return cpu.branch(cpu.V, address, pageCrossed)

	case NOP:
		// memory forms still perform their read
		if op.Mode.memory() {
			cpu.memory.Read(address)
		}

	default:
		cpu.executeUndocumented(op, address, pageCrossed)
	}
	return 0
}

func (cpu *CPU) adc(value uint8) {
	carry := uint16(0)
	if cpu.C {
		carry = 1
	}
	result := uint16(cpu.A) + uint16(value) + carry

	// overflow when both inputs share a sign the result does not
	cpu.V = (cpu.A^uint8(result))&(value^uint8(result))&0x80 != 0
	cpu.C = result > 0xFF
	cpu.A = uint8(result)
	cpu.setZN(cpu.A)
}

// sbc is adc of the one's complement; the borrow is the inverted carry.
func (cpu *CPU) sbc(value uint8) {
	cpu.adc(value ^ 0xFF)
}

func (cpu *CPU) compare(register, value uint8) {
	cpu.C = register >= value
	cpu.setZN(register - value)
}

// modify applies a read-modify-write operation to A or to memory.
func (cpu *CPU) modify(mode AddressingMode, address uint16, f func(uint8) uint8) uint8 {
	if mode == Accumulator {
		cpu.A = f(cpu.A)
		cpu.setZN(cpu.A)
		return cpu.A
	}
	value := f(cpu.memory.Read(address))
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return value
}

func (cpu *CPU) asl(value uint8) uint8 {
	cpu.C = value&0x80 != 0
	return value << 1
}

func (cpu *CPU) lsr(value uint8) uint8 {
	cpu.C = value&0x01 != 0
	return value >> 1
}

func (cpu *CPU) rol(value uint8) uint8 {
	oldCarry := cpu.C
	cpu.C = value&0x80 != 0
	value <<= 1
	if oldCarry {
		value |= 0x01
	}
	return value
}

func (cpu *CPU) ror(value uint8) uint8 {
	oldCarry := cpu.C
	cpu.C = value&0x01 != 0
	value >>= 1
	if oldCarry {
		value |= 0x80
	}
	return value
}

// pullStatus restores P from the stack. B does not exist in the register
// and bit 5 always reads back set.
func (cpu *CPU) pullStatus() {
	cpu.SetStatusByte(cpu.pop()&^bFlagMask | unusedMask)
}

// branch takes the branch when cond holds: one extra cycle, two when the
// target lies on another page.
func (cpu *CPU) branch(cond bool, target uint16, pageCrossed bool) int {
	if !cond {
		return 0
	}
	cpu.PC = target
	if pageCrossed {
		return 2
	}
	return 1
}

// brk pushes the address two bytes past the opcode and a copy of P with B
// set, then jumps through the IRQ vector. With I set the instruction is
// dropped the same way an IRQ would be, skipping its padding byte.
func (cpu *CPU) brk() {
	cpu.PC++ // padding byte
	if cpu.I {
		return
	}
	cpu.pushWord(cpu.PC)
	cpu.push(cpu.GetStatusByte() | bFlagMask | unusedMask)
	cpu.I = true
	cpu.PC = cpu.readWord(irqVector)
}
