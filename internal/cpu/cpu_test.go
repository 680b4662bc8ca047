package cpu

import (
	"testing"

	"nescore/internal/fault"
)

// MockMemory implements MemoryInterface for testing
type MockMemory struct {
	data       [0x10000]uint8 // 64KB address space
	readCount  map[uint16]int
	writeCount map[uint16]int
}

// NewMockMemory creates a new mock memory instance
func NewMockMemory() *MockMemory {
	return &MockMemory{
		readCount:  make(map[uint16]int),
		writeCount: make(map[uint16]int),
	}
}

// Read implements the MemoryInterface Read method
func (m *MockMemory) Read(address uint16) uint8 {
	m.readCount[address]++
	return m.data[address]
}

// Write implements the MemoryInterface Write method
func (m *MockMemory) Write(address uint16, value uint8) {
	m.writeCount[address]++
	m.data[address] = value
}

// Peek implements Peeker
func (m *MockMemory) Peek(address uint16) uint8 {
	return m.data[address]
}

// SetBytes sets multiple bytes starting at the given address
func (m *MockMemory) SetBytes(address uint16, values ...uint8) {
	for i, value := range values {
		m.data[address+uint16(i)] = value
	}
}

// GetReadCount returns the number of times an address was read
func (m *MockMemory) GetReadCount(address uint16) int {
	return m.readCount[address]
}

// GetWriteCount returns the number of times an address was written
func (m *MockMemory) GetWriteCount(address uint16) int {
	return m.writeCount[address]
}

// CPUTestHelper provides common test utilities
type CPUTestHelper struct {
	CPU    *CPU
	Memory *MockMemory
}

// NewCPUTestHelper creates a new test helper
func NewCPUTestHelper() *CPUTestHelper {
	memory := NewMockMemory()
	return &CPUTestHelper{
		CPU:    New(memory),
		Memory: memory,
	}
}

// SetupResetVector sets the reset vector and performs reset
func (h *CPUTestHelper) SetupResetVector(address uint16) {
	h.Memory.SetBytes(resetVector, uint8(address&0xFF), uint8(address>>8))
	h.CPU.Reset()
}

// LoadProgram loads a program starting at the given address
func (h *CPUTestHelper) LoadProgram(address uint16, program ...uint8) {
	h.Memory.SetBytes(address, program...)
}

// Run loads program at $8000, resets into it and executes n steps.
func (h *CPUTestHelper) Run(t *testing.T, n int, program ...uint8) int {
	t.Helper()
	h.LoadProgram(0x8000, program...)
	h.SetupResetVector(0x8000)
	total := 0
	for i := 0; i < n; i++ {
		total += h.Step(t)
	}
	return total
}

// Step executes one instruction and fails the test on a fault.
func (h *CPUTestHelper) Step(t *testing.T) int {
	t.Helper()
	cycles, err := h.CPU.Step()
	if err != nil {
		t.Fatalf("Unexpected fault: %v", err)
	}
	return cycles
}

// AssertRegisters checks if CPU registers match expected values
func (h *CPUTestHelper) AssertRegisters(t *testing.T, testName string, expectedA, expectedX, expectedY, expectedSP uint8, expectedPC uint16) {
	t.Helper()

	if h.CPU.A != expectedA {
		t.Errorf("%s: Expected A=0x%02X, got 0x%02X", testName, expectedA, h.CPU.A)
	}
	if h.CPU.X != expectedX {
		t.Errorf("%s: Expected X=0x%02X, got 0x%02X", testName, expectedX, h.CPU.X)
	}
	if h.CPU.Y != expectedY {
		t.Errorf("%s: Expected Y=0x%02X, got 0x%02X", testName, expectedY, h.CPU.Y)
	}
	if h.CPU.SP != expectedSP {
		t.Errorf("%s: Expected SP=0x%02X, got 0x%02X", testName, expectedSP, h.CPU.SP)
	}
	if h.CPU.PC != expectedPC {
		t.Errorf("%s: Expected PC=0x%04X, got 0x%04X", testName, expectedPC, h.CPU.PC)
	}
}

// AssertFlags checks the N, V, Z and C flags
func (h *CPUTestHelper) AssertFlags(t *testing.T, testName string, expectedN, expectedV, expectedZ, expectedC bool) {
	t.Helper()

	flags := []struct {
		name     string
		actual   bool
		expected bool
	}{
		{"N", h.CPU.N, expectedN},
		{"V", h.CPU.V, expectedV},
		{"Z", h.CPU.Z, expectedZ},
		{"C", h.CPU.C, expectedC},
	}

	for _, flag := range flags {
		if flag.actual != flag.expected {
			t.Errorf("%s: Expected %s=%v, got %v", testName, flag.name, flag.expected, flag.actual)
		}
	}
}

// AssertMemory checks if memory at address matches expected value
func (h *CPUTestHelper) AssertMemory(t *testing.T, testName string, address uint16, expected uint8) {
	t.Helper()
	actual := h.Memory.Peek(address)
	if actual != expected {
		t.Errorf("%s: Expected memory[0x%04X]=0x%02X, got 0x%02X", testName, address, expected, actual)
	}
}

func TestCPUReset(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.CPU.A, helper.CPU.X, helper.CPU.Y = 1, 2, 3
	helper.SetupResetVector(0xC123)

	helper.AssertRegisters(t, "Reset", 0x00, 0x00, 0x00, 0xFD, 0xC123)
	if p := helper.CPU.GetStatusByte(); p != 0x34 {
		t.Errorf("Expected P=0x34 after reset, got 0x%02X", p)
	}
	if helper.CPU.Cycles() != 7 {
		t.Errorf("Expected reset to take 7 cycles, got %d", helper.CPU.Cycles())
	}
}

func TestStatusBit5AlwaysSet(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.CPU.SetStatusByte(0x00)
	if p := helper.CPU.GetStatusByte(); p != 0x20 {
		t.Errorf("Expected P=0x20, got 0x%02X", p)
	}
}

func TestLockupOpcodesFault(t *testing.T) {
	for _, opcode := range []uint8{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2} {
		helper := NewCPUTestHelper()
		helper.LoadProgram(0x8000, opcode)
		helper.SetupResetVector(0x8000)

		_, err := helper.CPU.Step()
		f, ok := fault.As(err)
		if !ok || f.Kind != fault.KindLockup {
			t.Errorf("Opcode 0x%02X: expected lock-up fault, got %v", opcode, err)
			continue
		}
		if f.Address != 0x8000 || !f.HasOpcode || f.Opcode != opcode {
			t.Errorf("Opcode 0x%02X: fault does not identify the instruction: %v", opcode, f)
		}
		if helper.CPU.PC != 0x8000 {
			t.Errorf("Opcode 0x%02X: PC moved to 0x%04X", opcode, helper.CPU.PC)
		}
	}
}

func TestXAAIsUnpredictable(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0x8B, 0xFF)
	helper.SetupResetVector(0x8000)

	_, err := helper.CPU.Step()
	if !fault.Is(err, fault.KindUnpredictableOpcode) {
		t.Errorf("Expected unpredictable opcode fault, got %v", err)
	}
}

func TestStepChargesStall(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0xEA)
	helper.SetupResetVector(0x8000)

	helper.CPU.Stall(513)
	cycles := helper.Step(t)
	if cycles != 2+513 {
		t.Errorf("Expected 515 cycles, got %d", cycles)
	}
	if helper.CPU.Cycles() != 7+515 {
		t.Errorf("Expected cycle counter 522, got %d", helper.CPU.Cycles())
	}
}

func TestStateString(t *testing.T) {
	s := State{A: 0x01, X: 0x02, Y: 0x03, SP: 0xFD, PC: 0xC000, P: 0x24, Cycles: 7}
	want := "A:01 X:02 Y:03 P:24 SP:FD PC:C000 CYC:7"
	if s.String() != want {
		t.Errorf("Expected %q, got %q", want, s.String())
	}
	if s.Flags() != "nv-bdIzc" {
		t.Errorf("Expected nv-bdIzc, got %s", s.Flags())
	}
}
