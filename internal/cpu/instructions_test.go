package cpu

import (
	"testing"
	"testing/quick"
)

// runWith loads program at $8000, resets, applies setup and executes n steps.
func runWith(t *testing.T, n int, setup func(*CPU), program ...uint8) (*CPUTestHelper, int) {
	t.Helper()
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, program...)
	helper.SetupResetVector(0x8000)
	if setup != nil {
		setup(helper.CPU)
	}
	total := 0
	for i := 0; i < n; i++ {
		total += helper.Step(t)
	}
	return helper, total
}

func TestADCMatchesReference(t *testing.T) {
	check := func(a, m uint8, carry bool) bool {
		helper, _ := runWith(t, 1, func(c *CPU) {
			c.A = a
			c.C = carry
		}, 0x69, m)

		cin := 0
		if carry {
			cin = 1
		}
		sum := int(a) + int(m) + cin
		signed := int(int8(a)) + int(int8(m)) + cin
		result := uint8(sum)

		c := helper.CPU
		return c.A == result &&
			c.C == (sum > 0xFF) &&
			c.V == (signed < -128 || signed > 127) &&
			c.Z == (result == 0) &&
			c.N == (result&0x80 != 0)
	}
	if err := quick.Check(check, nil); err != nil {
		t.Error(err)
	}
}

func TestSBCMatchesReference(t *testing.T) {
	for _, opcode := range []uint8{0xE9, 0xEB} {
		check := func(a, m uint8, carry bool) bool {
			helper, _ := runWith(t, 1, func(c *CPU) {
				c.A = a
				c.C = carry
			}, opcode, m)

			borrow := 1
			if carry {
				borrow = 0
			}
			diff := int(a) - int(m) - borrow
			signed := int(int8(a)) - int(int8(m)) - borrow
			result := uint8(diff)

			c := helper.CPU
			return c.A == result &&
				c.C == (diff >= 0) &&
				c.V == (signed < -128 || signed > 127) &&
				c.Z == (result == 0) &&
				c.N == (result&0x80 != 0)
		}
		if err := quick.Check(check, nil); err != nil {
			t.Errorf("opcode 0x%02X: %v", opcode, err)
		}
	}
}

func TestDecimalFlagDoesNotAffectADC(t *testing.T) {
	// SED; CLC; LDA #$09; ADC #$01
	helper, _ := runWith(t, 4, nil, 0xF8, 0x18, 0xA9, 0x09, 0x69, 0x01)
	if helper.CPU.A != 0x0A {
		t.Errorf("Expected binary result 0x0A, got 0x%02X", helper.CPU.A)
	}
	if !helper.CPU.D {
		t.Error("Expected D to stay set")
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name    string
		program []uint8
		a, x, y uint8
		n, z, c bool
	}{
		{"CMP equal", []uint8{0xC9, 0x50}, 0x50, 0, 0, false, true, true},
		{"CMP greater", []uint8{0xC9, 0x10}, 0x50, 0, 0, false, false, true},
		{"CMP less", []uint8{0xC9, 0x60}, 0x50, 0, 0, true, false, false},
		{"CMP wraps", []uint8{0xC9, 0x01}, 0x81, 0, 0, true, false, true},
		{"CPX equal", []uint8{0xE0, 0x22}, 0, 0x22, 0, false, true, true},
		{"CPY less", []uint8{0xC0, 0x01}, 0, 0, 0x00, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			helper, _ := runWith(t, 1, func(c *CPU) {
				c.A, c.X, c.Y = tt.a, tt.x, tt.y
			}, tt.program...)
			helper.AssertFlags(t, tt.name, tt.n, false, tt.z, tt.c)
		})
	}
}

func TestBranches(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*CPU)
		offset uint8
		wantPC uint16
		cycles int
	}{
		{"BEQ taken", func(c *CPU) { c.Z = true }, 0x05, 0x8007, 3},
		{"BEQ not taken", func(c *CPU) { c.Z = false }, 0x05, 0x8002, 2},
		{"BEQ backwards across page", func(c *CPU) { c.Z = true }, 0xF0, 0x7FF2, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			helper, cycles := runWith(t, 1, tt.setup, 0xF0, tt.offset)
			if helper.CPU.PC != tt.wantPC {
				t.Errorf("Expected PC=0x%04X, got 0x%04X", tt.wantPC, helper.CPU.PC)
			}
			if cycles != tt.cycles {
				t.Errorf("Expected %d cycles, got %d", tt.cycles, cycles)
			}
		})
	}
}

func TestAllBranchConditions(t *testing.T) {
	tests := []struct {
		opcode uint8
		setup  func(*CPU)
	}{
		{0x10, func(c *CPU) { c.N = false }}, // BPL
		{0x30, func(c *CPU) { c.N = true }},  // BMI
		{0x50, func(c *CPU) { c.V = false }}, // BVC
		{0x70, func(c *CPU) { c.V = true }},  // BVS
		{0x90, func(c *CPU) { c.C = false }}, // BCC
		{0xB0, func(c *CPU) { c.C = true }},  // BCS
		{0xD0, func(c *CPU) { c.Z = false }}, // BNE
		{0xF0, func(c *CPU) { c.Z = true }},  // BEQ
	}

	for _, tt := range tests {
		helper, _ := runWith(t, 1, tt.setup, tt.opcode, 0x10)
		if helper.CPU.PC != 0x8012 {
			t.Errorf("Opcode 0x%02X: expected branch to 0x8012, got 0x%04X", tt.opcode, helper.CPU.PC)
		}
	}
}

func TestPHAPLARoundTrip(t *testing.T) {
	// LDA #$C3; PHA; LDA #$00; PLA
	helper, _ := runWith(t, 4, nil, 0xA9, 0xC3, 0x48, 0xA9, 0x00, 0x68)
	helper.AssertRegisters(t, "PHA/PLA", 0xC3, 0x00, 0x00, 0xFD, 0x8006)
	helper.AssertMemory(t, "PHA/PLA", 0x01FD, 0xC3)
	helper.AssertFlags(t, "PHA/PLA", true, false, false, false)
}

func TestPHPPLPRoundTrip(t *testing.T) {
	for _, p := range []uint8{0x00, 0xFF, 0xC3, 0x3C, 0x81} {
		// PHP; PLP
		helper, _ := runWith(t, 2, func(c *CPU) { c.SetStatusByte(p) }, 0x08, 0x28)

		pushed := helper.Memory.Peek(0x01FD)
		if pushed != p|0x30 {
			t.Errorf("P=0x%02X: expected pushed copy 0x%02X, got 0x%02X", p, p|0x30, pushed)
		}
		got := helper.CPU.GetStatusByte()
		want := p&^0x10 | 0x20
		if got != want {
			t.Errorf("P=0x%02X: expected 0x%02X after PLP, got 0x%02X", p, want, got)
		}
		if helper.CPU.SP != 0xFD {
			t.Errorf("P=0x%02X: SP not restored: 0x%02X", p, helper.CPU.SP)
		}
	}
}

func TestJSRRTS(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0x20, 0x00, 0x90) // JSR $9000
	helper.LoadProgram(0x9000, 0x60)             // RTS
	helper.SetupResetVector(0x8000)

	if cycles := helper.Step(t); cycles != 6 {
		t.Errorf("JSR: Expected 6 cycles, got %d", cycles)
	}
	helper.AssertRegisters(t, "JSR", 0, 0, 0, 0xFB, 0x9000)
	helper.AssertMemory(t, "JSR return high", 0x01FD, 0x80)
	helper.AssertMemory(t, "JSR return low", 0x01FC, 0x02)

	if cycles := helper.Step(t); cycles != 6 {
		t.Errorf("RTS: Expected 6 cycles, got %d", cycles)
	}
	helper.AssertRegisters(t, "RTS", 0, 0, 0, 0xFD, 0x8003)
}

func TestJMPIndirectPageBug(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0x6C, 0xFF, 0x02) // JMP ($02FF)
	helper.LoadProgram(0x02FF, 0x34)
	helper.LoadProgram(0x0200, 0x12)
	helper.LoadProgram(0x0300, 0xEE)
	helper.SetupResetVector(0x8000)

	helper.Step(t)
	if helper.CPU.PC != 0x1234 {
		t.Errorf("Expected PC=0x1234, got 0x%04X", helper.CPU.PC)
	}
}

func TestZeroPageIndexWraps(t *testing.T) {
	// LDA $F0,X with X=$20 reads $0010
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0xB5, 0xF0)
	helper.LoadProgram(0x0010, 0x77)
	helper.LoadProgram(0x0110, 0x11)
	helper.SetupResetVector(0x8000)
	helper.CPU.X = 0x20

	if cycles := helper.Step(t); cycles != 4 {
		t.Errorf("Expected 4 cycles, got %d", cycles)
	}
	if helper.CPU.A != 0x77 {
		t.Errorf("Expected A=0x77, got 0x%02X", helper.CPU.A)
	}
}

func TestIndexedIndirectPointerWraps(t *testing.T) {
	// LDA ($FF,X) with X=0: pointer bytes at $FF and $00
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0xA1, 0xFF)
	helper.LoadProgram(0x00FF, 0x00)
	helper.LoadProgram(0x0000, 0x03)
	helper.LoadProgram(0x0300, 0x5A)
	helper.SetupResetVector(0x8000)

	helper.Step(t)
	if helper.CPU.A != 0x5A {
		t.Errorf("Expected A=0x5A, got 0x%02X", helper.CPU.A)
	}
}

func TestPageCrossPenalty(t *testing.T) {
	tests := []struct {
		name    string
		program []uint8
		x, y    uint8
		cycles  int
	}{
		{"LDA abs,X same page", []uint8{0xBD, 0x00, 0x02}, 0x10, 0, 4},
		{"LDA abs,X crosses", []uint8{0xBD, 0xF0, 0x02}, 0x20, 0, 5},
		{"LDA abs,Y crosses", []uint8{0xB9, 0xFF, 0x02}, 0, 0x01, 5},
		{"STA abs,X crosses", []uint8{0x9D, 0xF0, 0x02}, 0x20, 0, 5},
		{"STA abs,X same page", []uint8{0x9D, 0x00, 0x02}, 0x01, 0, 5},
		{"INC abs,X crosses", []uint8{0xFE, 0xF0, 0x02}, 0x20, 0, 7},
		{"NOP abs,X crosses", []uint8{0x1C, 0xF0, 0x02}, 0x20, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cycles := runWith(t, 1, func(c *CPU) {
				c.X, c.Y = tt.x, tt.y
			}, tt.program...)
			if cycles != tt.cycles {
				t.Errorf("Expected %d cycles, got %d", tt.cycles, cycles)
			}
		})
	}
}

func TestIndirectIndexedPageCross(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0xB1, 0x10) // LDA ($10),Y
	helper.LoadProgram(0x0010, 0xFF, 0x02)
	helper.LoadProgram(0x0300, 0x42)
	helper.SetupResetVector(0x8000)
	helper.CPU.Y = 0x01

	if cycles := helper.Step(t); cycles != 6 {
		t.Errorf("Expected 6 cycles, got %d", cycles)
	}
	if helper.CPU.A != 0x42 {
		t.Errorf("Expected A=0x42, got 0x%02X", helper.CPU.A)
	}
}

func TestStoresDoNotReadOperand(t *testing.T) {
	helper, _ := runWith(t, 1, func(c *CPU) { c.A = 0x99 }, 0x8D, 0x00, 0x20) // STA $2000
	if helper.Memory.GetReadCount(0x2000) != 0 {
		t.Errorf("STA read its target %d times", helper.Memory.GetReadCount(0x2000))
	}
	if helper.Memory.GetWriteCount(0x2000) != 1 {
		t.Errorf("Expected exactly one write, got %d", helper.Memory.GetWriteCount(0x2000))
	}
}

func TestShiftsAndRotates(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint8
		a      uint8
		carry  bool
		wantA  uint8
		wantC  bool
		wantN  bool
		wantZ  bool
	}{
		{"ASL", 0x0A, 0x81, false, 0x02, true, false, false},
		{"LSR", 0x4A, 0x01, false, 0x00, true, false, true},
		{"ROL carry in", 0x2A, 0x40, true, 0x81, false, true, false},
		{"ROL carry out", 0x2A, 0x80, false, 0x00, true, false, true},
		{"ROR carry in", 0x6A, 0x02, true, 0x81, false, true, false},
		{"ROR carry out", 0x6A, 0x01, false, 0x00, true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			helper, _ := runWith(t, 1, func(c *CPU) {
				c.A = tt.a
				c.C = tt.carry
			}, tt.opcode)
			if helper.CPU.A != tt.wantA {
				t.Errorf("Expected A=0x%02X, got 0x%02X", tt.wantA, helper.CPU.A)
			}
			helper.AssertFlags(t, tt.name, tt.wantN, false, tt.wantZ, tt.wantC)
		})
	}
}

func TestReadModifyWriteMemory(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000,
		0x06, 0x10, // ASL $10
		0xE6, 0x11, // INC $11
		0xC6, 0x12, // DEC $12
	)
	helper.LoadProgram(0x0010, 0x40, 0xFF, 0x01)
	helper.SetupResetVector(0x8000)

	if cycles := helper.Step(t); cycles != 5 {
		t.Errorf("ASL zp: Expected 5 cycles, got %d", cycles)
	}
	helper.AssertMemory(t, "ASL", 0x0010, 0x80)
	helper.Step(t)
	helper.AssertMemory(t, "INC", 0x0011, 0x00)
	if !helper.CPU.Z {
		t.Error("INC to zero should set Z")
	}
	helper.Step(t)
	helper.AssertMemory(t, "DEC", 0x0012, 0x00)
}

func TestBIT(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0x24, 0x10) // BIT $10
	helper.LoadProgram(0x0010, 0xC0)
	helper.SetupResetVector(0x8000)
	helper.CPU.A = 0x01

	helper.Step(t)
	helper.AssertFlags(t, "BIT", true, true, true, false)
}

func TestTransfers(t *testing.T) {
	// LDX #$80; TXA; TAY; TXS; LDX #$00; TSX
	helper, _ := runWith(t, 6, nil, 0xA2, 0x80, 0x8A, 0xA8, 0x9A, 0xA2, 0x00, 0xBA)
	helper.AssertRegisters(t, "Transfers", 0x80, 0x80, 0x80, 0x80, 0x8008)
	if !helper.CPU.N {
		t.Error("TSX should set N from $80")
	}
}

func TestFlagInstructions(t *testing.T) {
	// SEC; SEI; SED; CLC; CLI; CLD; CLV
	helper, _ := runWith(t, 3, func(c *CPU) { c.I = false }, 0x38, 0x78, 0xF8, 0x18, 0x58, 0xD8, 0xB8)
	if !helper.CPU.C || !helper.CPU.I || !helper.CPU.D {
		t.Errorf("Expected C, I and D set: %s", helper.CPU.State().Flags())
	}
	for i := 0; i < 4; i++ {
		helper.Step(t)
	}
	if helper.CPU.C || helper.CPU.I || helper.CPU.D || helper.CPU.V {
		t.Errorf("Expected C, I, D and V clear: %s", helper.CPU.State().Flags())
	}
}
