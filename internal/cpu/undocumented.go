package cpu

// executeUndocumented runs the stable undocumented opcodes. Each is the
// documented combination listed in the NESdev undocumented opcode notes.
// KIL and XAA never get here; Step faults on them.
func (cpu *CPU) executeUndocumented(op Opcode, address uint16, pageCrossed bool) {
	switch op.Instruction {
	// read-modify-write followed by an accumulator operation
	case SLO:
		value := cpu.modify(op.Mode, address, cpu.asl)
		cpu.A |= value
		cpu.setZN(cpu.A)
	case RLA:
		value := cpu.modify(op.Mode, address, cpu.rol)
		cpu.A &= value
		cpu.setZN(cpu.A)
	case SRE:
		value := cpu.modify(op.Mode, address, cpu.lsr)
		cpu.A ^= value
		cpu.setZN(cpu.A)
	case RRA:
		value := cpu.modify(op.Mode, address, cpu.ror)
		cpu.adc(value)
	case DCP:
		value := cpu.memory.Read(address) - 1
		cpu.memory.Write(address, value)
		cpu.compare(cpu.A, value)
	case ISC:
		value := cpu.memory.Read(address) + 1
		cpu.memory.Write(address, value)
		cpu.sbc(value)

	// loads and stores of A and X together
	case LAX:
		cpu.A = cpu.memory.Read(address)
		cpu.X = cpu.A
		cpu.setZN(cpu.A)
	case SAX:
		cpu.memory.Write(address, cpu.A&cpu.X)
	case LAR:
		value := cpu.memory.Read(address) & cpu.SP
		cpu.A, cpu.X, cpu.SP = value, value, value
		cpu.setZN(value)

	// immediate combinations
	case ANC:
		cpu.A &= cpu.memory.Read(address)
		cpu.setZN(cpu.A)
		cpu.C = cpu.N
	case ALR:
		cpu.A &= cpu.memory.Read(address)
		cpu.A = cpu.lsr(cpu.A)
		cpu.setZN(cpu.A)
	case ARR:
		cpu.A &= cpu.memory.Read(address)
		cpu.A >>= 1
		if cpu.C {
			cpu.A |= 0x80
		}
		cpu.setZN(cpu.A)
		cpu.C = cpu.A&0x40 != 0
		cpu.V = (cpu.A>>6^cpu.A>>5)&1 != 0
	case ATX:
		cpu.A &= cpu.memory.Read(address)
		cpu.X = cpu.A
		cpu.setZN(cpu.A)
	case AXS:
		ax := cpu.A & cpu.X
		value := cpu.memory.Read(address)
		cpu.C = ax >= value
		cpu.X = ax - value
		cpu.setZN(cpu.X)

	// stores ANDed with the high byte of the base address plus one
	case AXA:
		cpu.storeHigh(op.Mode, address, pageCrossed, cpu.A&cpu.X)
	case XAS:
		cpu.SP = cpu.A & cpu.X
		cpu.storeHigh(op.Mode, address, pageCrossed, cpu.SP)
	case SYA:
		cpu.storeHigh(op.Mode, address, pageCrossed, cpu.Y)
	case SXA:
		cpu.storeHigh(op.Mode, address, pageCrossed, cpu.X)
	}
}

// storeHigh writes value & (H+1), where H is the high byte of the address
// before indexing. When indexing crossed a page the written value also
// replaces the high byte of the target address.
func (cpu *CPU) storeHigh(mode AddressingMode, address uint16, pageCrossed bool, value uint8) {
	index := cpu.Y
	if mode == AbsoluteX {
		index = cpu.X
	}
	base := address - uint16(index)
	value &= uint8(base>>8) + 1
	if pageCrossed {
		address = uint16(value)<<8 | address&0x00FF
	}
	cpu.memory.Write(address, value)
}
