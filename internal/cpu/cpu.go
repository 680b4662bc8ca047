// Package cpu implements the 6502 CPU emulation for the NES.
package cpu

import (
	"fmt"

	"github.com/golang/glog"

	"nescore/internal/fault"
)

const (
	// Stack base address
	stackBase = 0x0100
	// Status register bit masks
	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01
	// Zero page mask
	zeroPageMask = 0xFF
	// Page boundary mask
	pageMask = 0xFF00
	// Interrupt vectors
	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE

	// power-on status: I, B and the unused bit
	powerOnStatus = 0x34

	interruptCycles = 7
)

// MemoryInterface defines the interface for CPU memory access
type MemoryInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPU represents the 6502 processor used in the NES
type CPU struct {
	// Registers
	A  uint8  // Accumulator
	X  uint8  // X register
	Y  uint8  // Y register
	SP uint8  // Stack pointer
	PC uint16 // Program counter

	// Status register flags
	C bool // Carry
	Z bool // Zero
	I bool // Interrupt disable
	D bool // Decimal mode (stored, never used by arithmetic)
	B bool // Break, only ever set by power-on/reset
	V bool // Overflow
	N bool // Negative

	memory MemoryInterface

	// Cycle counter
	cycles uint64

	// Interrupt lines
	nmiPending bool
	irqLine    bool

	// cycles owed to OAM DMA, charged to the current step
	stall int
}

// New creates a new CPU instance. The CPU is not reset; call Reset once a
// cartridge is reachable through memory so the reset vector can be read.
func New(memory MemoryInterface) *CPU {
	return &CPU{
		memory: memory,
		SP:     0xFD,
	}
}

// Reset puts the CPU in its power-on state and jumps through the reset
// vector. The sequence costs 7 cycles.
func (cpu *CPU) Reset() {
	cpu.A = 0
	cpu.X = 0
	cpu.Y = 0
	cpu.SP = 0xFD
	cpu.SetStatusByte(powerOnStatus)
	cpu.nmiPending = false
	cpu.irqLine = false
	cpu.stall = 0

	cpu.PC = cpu.readWord(resetVector)
	cpu.cycles += interruptCycles

	glog.V(2).Infof("cpu: reset, PC=$%04X", cpu.PC)
}

// Cycles returns the number of cycles executed since power-on.
func (cpu *CPU) Cycles() uint64 {
	return cpu.cycles
}

// NMI latches a non-maskable interrupt. It is serviced by the next Step,
// before any further instruction is fetched.
func (cpu *CPU) NMI() {
	cpu.nmiPending = true
}

// SetIRQ sets the level of the IRQ line. An asserted line is serviced by
// each Step while I is clear.
func (cpu *CPU) SetIRQ(state bool) {
	cpu.irqLine = state
}

// Stall charges n extra cycles to the instruction in progress. OAM DMA uses
// it to suspend the CPU for the duration of the copy.
func (cpu *CPU) Stall(n int) {
	cpu.stall += n
}

// Step executes one instruction, or enters one pending interrupt, and
// returns the cycles it took. A non-nil error is always a fault.Fault and
// leaves the CPU where the faulting opcode was fetched.
func (cpu *CPU) Step() (int, error) {
	if cpu.nmiPending {
		cpu.nmiPending = false
		cpu.interrupt(nmiVector)
		return cpu.finish(interruptCycles), nil
	}
	if cpu.irqLine && !cpu.I {
		cpu.interrupt(irqVector)
		return cpu.finish(interruptCycles), nil
	}

	pc := cpu.PC
	opcode := cpu.memory.Read(pc)
	op := Decode(opcode)

	switch op.Instruction {
	case invalidInstruction:
		return 0, fault.Opcode(fault.KindDecodeGap, pc, opcode, "no decode table entry")
	case KIL:
		return 0, fault.Opcode(fault.KindLockup, pc, opcode, "KIL halts the processor")
	case XAA:
		return 0, fault.Opcode(fault.KindUnpredictableOpcode, pc, opcode, "XAA result depends on the chip")
	}
	if !validMode(op.Instruction, op.Mode) {
		return 0, fault.Opcode(fault.KindInvalidMode, pc, opcode, "%s cannot use %s addressing", op.Instruction, op.Mode)
	}

	address, pageCrossed := cpu.operandAddress(op.Mode)

	if glog.V(3) {
		glog.Infof("cpu: %04X  %02X  %s %-12s $%04X  %s", pc, opcode, op.Instruction, op.Mode, address, cpu.State())
	}

	cycles := int(op.Cycles)
	if pageCrossed && op.PageCycle {
		cycles++
	}

	// Control flow overwrites PC in execute.
	cpu.PC = pc + op.Mode.Size()
	cycles += cpu.execute(op, address, pageCrossed)

	return cpu.finish(cycles), nil
}

func (cpu *CPU) finish(cycles int) int {
	cycles += cpu.stall
	cpu.stall = 0
	cpu.cycles += uint64(cycles)
	return cycles
}

// operandAddress returns the effective address for the given addressing
// mode and whether indexing crossed a page. It reads operand bytes at PC+1
// and PC+2 without moving PC. Immediate operands resolve to PC+1; branch
// targets resolve to the destination, with the crossing measured from the
// instruction that follows the branch.
func (cpu *CPU) operandAddress(mode AddressingMode) (uint16, bool) {
	switch mode {
	case Implied, Accumulator:
		return 0, false

	case Immediate:
		return cpu.PC + 1, false

	case ZeroPage:
		return uint16(cpu.memory.Read(cpu.PC + 1)), false

	case ZeroPageX:
		return uint16(cpu.memory.Read(cpu.PC+1) + cpu.X), false

	case ZeroPageY:
		return uint16(cpu.memory.Read(cpu.PC+1) + cpu.Y), false

	case Relative:
		offset := int8(cpu.memory.Read(cpu.PC + 1))
		next := cpu.PC + 2
		target := uint16(int32(next) + int32(offset))
		return target, next&pageMask != target&pageMask

	case Absolute:
		return cpu.readWord(cpu.PC + 1), false

	case AbsoluteX:
		base := cpu.readWord(cpu.PC + 1)
		address := base + uint16(cpu.X)
		return address, base&pageMask != address&pageMask

	case AbsoluteY:
		base := cpu.readWord(cpu.PC + 1)
		address := base + uint16(cpu.Y)
		return address, base&pageMask != address&pageMask

	case Indirect: // Only used by JMP
		ptr := cpu.readWord(cpu.PC + 1)
		// The high byte is fetched without carrying into the pointer's
		// page: JMP ($10FF) reads $10FF and $1000.
		low := uint16(cpu.memory.Read(ptr))
		high := uint16(cpu.memory.Read(ptr&pageMask | (ptr+1)&zeroPageMask))
		return high<<8 | low, false

	case IndexedIndirect: // (zp,X)
		ptr := cpu.memory.Read(cpu.PC+1) + cpu.X
		return cpu.readZeroPageWord(ptr), false

	case IndirectIndexed: // (zp),Y
		base := cpu.readZeroPageWord(cpu.memory.Read(cpu.PC + 1))
		address := base + uint16(cpu.Y)
		return address, base&pageMask != address&pageMask
	}
	return 0, false
}

func (cpu *CPU) readWord(address uint16) uint16 {
	low := uint16(cpu.memory.Read(address))
	high := uint16(cpu.memory.Read(address + 1))
	return high<<8 | low
}

// readZeroPageWord reads a pointer from the zero page, wrapping $FF to $00.
func (cpu *CPU) readZeroPageWord(ptr uint8) uint16 {
	low := uint16(cpu.memory.Read(uint16(ptr)))
	high := uint16(cpu.memory.Read(uint16(ptr + 1)))
	return high<<8 | low
}

// Stack operations
func (cpu *CPU) push(value uint8) {
	cpu.memory.Write(stackBase+uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.memory.Read(stackBase + uint16(cpu.SP))
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))   // High byte first
	cpu.push(uint8(value & 0xFF)) // Low byte second
}

func (cpu *CPU) popWord() uint16 {
	low := uint16(cpu.pop())
	high := uint16(cpu.pop())
	return (high << 8) | low
}

// setZN sets Zero and Negative flags based on value
func (cpu *CPU) setZN(value uint8) {
	cpu.Z = value == 0
	cpu.N = (value & nFlagMask) != 0
}

// interrupt pushes PC and status and jumps through vector. Hardware
// interrupts push B clear.
func (cpu *CPU) interrupt(vector uint16) {
	cpu.pushWord(cpu.PC)
	cpu.push(cpu.GetStatusByte()&^bFlagMask | unusedMask)
	cpu.I = true
	cpu.PC = cpu.readWord(vector)
	glog.V(3).Infof("cpu: interrupt via $%04X to $%04X", vector, cpu.PC)
}

// GetStatusByte returns the status register as a byte
func (cpu *CPU) GetStatusByte() uint8 {
	status := uint8(unusedMask)
	if cpu.N {
		status |= nFlagMask
	}
	if cpu.V {
		status |= vFlagMask
	}
	if cpu.B {
		status |= bFlagMask
	}
	if cpu.D {
		status |= dFlagMask
	}
	if cpu.I {
		status |= iFlagMask
	}
	if cpu.Z {
		status |= zFlagMask
	}
	if cpu.C {
		status |= cFlagMask
	}
	return status
}

// SetStatusByte sets the status register from a byte
func (cpu *CPU) SetStatusByte(status uint8) {
	cpu.N = (status & nFlagMask) != 0
	cpu.V = (status & vFlagMask) != 0
	cpu.B = (status & bFlagMask) != 0
	cpu.D = (status & dFlagMask) != 0
	cpu.I = (status & iFlagMask) != 0
	cpu.Z = (status & zFlagMask) != 0
	cpu.C = (status & cFlagMask) != 0
}

// State is a copy of the programmer-visible registers.
type State struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16
	P       uint8
	Cycles  uint64
}

// State returns a snapshot of the registers.
func (cpu *CPU) State() State {
	return State{
		A:      cpu.A,
		X:      cpu.X,
		Y:      cpu.Y,
		SP:     cpu.SP,
		PC:     cpu.PC,
		P:      cpu.GetStatusByte(),
		Cycles: cpu.cycles,
	}
}

// String formats the registers the way nestest logs do.
func (s State) String() string {
	return fmt.Sprintf("A:%02X X:%02X Y:%02X P:%02X SP:%02X PC:%04X CYC:%d",
		s.A, s.X, s.Y, s.P, s.SP, s.PC, s.Cycles)
}

// Flags renders P as NV-BDIZC with clear flags in lower case.
func (s State) Flags() string {
	const names = "NV-BDIZC"
	out := []byte("nv-bdizc")
	for i := 0; i < 8; i++ {
		if s.P&(0x80>>uint(i)) != 0 {
			out[i] = names[i]
		}
	}
	return string(out)
}
