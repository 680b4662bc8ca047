package bus

import (
	"strings"
	"testing"

	"nescore/internal/cartridge"
	"nescore/internal/fault"
	"nescore/internal/input"
)

// rom places code at CPU addresses in a 16KB NROM image.
type rom map[uint16][]uint8

// newTestBus builds an NROM-128 cartridge with CHR-RAM. Reset goes to
// $8000, NMI to $9000 and IRQ/BRK to $A000.
func newTestBus(t *testing.T, code rom) *Bus {
	t.Helper()

	prg := make([]uint8, 0x4000)
	for addr, bytes := range code {
		copy(prg[addr&0x3FFF:], bytes)
	}
	copy(prg[0x3FFA:], []uint8{0x00, 0x90, 0x00, 0x80, 0x00, 0xA0})

	cart, err := cartridge.New(cartridge.Header{PRGBanks: 1, Mirroring: cartridge.MirrorVertical}, prg, nil)
	if err != nil {
		t.Fatalf("cartridge.New: %v", err)
	}
	return New(cart)
}

func mustStep(t *testing.T, b *Bus) int {
	t.Helper()
	cycles, err := b.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	return cycles
}

func TestBus_ResetReadsVectorThroughMirror(t *testing.T) {
	b := newTestBus(t, nil)

	s := b.CPUState()
	if s.PC != 0x8000 || s.SP != 0xFD || s.P != 0x34 {
		t.Errorf("Unexpected reset state: %s", s)
	}
	if b.Cycles() != 7 {
		t.Errorf("Expected 7 reset cycles, got %d", b.Cycles())
	}
}

func TestBus_PPUStaysLockedToCPU(t *testing.T) {
	b := newTestBus(t, rom{
		0x8000: {0xEA, 0xA5, 0x00, 0x4C, 0x00, 0x80}, // NOP; LDA $00; JMP $8000
	})

	for i := 0; i < 20000; i++ {
		mustStep(t, b)
		target := (b.Cycles() - b.cycleBase) * 3
		dots := b.PPU.Dots()
		if dots > target || target-dots >= 341 {
			t.Fatalf("Step %d: PPU at %d dots, CPU at %d", i, dots, target)
		}
	}
}

func TestBus_NMIOncePerFrame(t *testing.T) {
	b := newTestBus(t, rom{
		0x8000: {0xA9, 0x80, 0x8D, 0x00, 0x20, 0x4C, 0x05, 0x80}, // enable NMI, spin
		0x9000: {0xE6, 0x10, 0x40},                               // INC $10; RTI
	})

	if err := b.RunFrames(3); err != nil {
		t.Fatalf("RunFrames: %v", err)
	}
	if b.FrameCount() != 3 {
		t.Fatalf("Expected 3 frames, got %d", b.FrameCount())
	}
	// the third NMI is latched but not yet taken
	if v := b.ReadByte(0x0010); v != 2 {
		t.Errorf("Expected 2 handled NMIs, got %d", v)
	}

	if cycles := mustStep(t, b); cycles != 7 {
		t.Errorf("Expected NMI entry (7 cycles), got %d", cycles)
	}
	mustStep(t, b)
	if v := b.ReadByte(0x0010); v != 3 {
		t.Errorf("Expected 3 handled NMIs, got %d", v)
	}
}

func TestBus_HaltIsSticky(t *testing.T) {
	b := newTestBus(t, rom{0x8000: {0x02}}) // KIL

	_, err := b.Step()
	if !fault.Is(err, fault.KindLockup) {
		t.Fatalf("Expected lockup fault, got %v", err)
	}
	if !strings.Contains(err.Error(), "PC:8000") {
		t.Errorf("Diagnostic should carry the registers: %v", err)
	}
	if f, _ := fault.As(err); f.Snapshot == "" || !f.HasOpcode || f.Opcode != 0x02 {
		t.Errorf("Unexpected fault contents: %+v", f)
	}

	again, err2 := b.Step()
	if err2 != err || again != 0 {
		t.Errorf("Halted bus should return the same fault, got %d, %v", again, err2)
	}
	if !b.Halted() {
		t.Error("Expected Halted")
	}

	b.Reset()
	if b.Halted() || b.Err() != nil {
		t.Error("Reset should clear the halt")
	}
}

func TestBus_ROMWriteHalts(t *testing.T) {
	b := newTestBus(t, rom{0x8000: {0x8D, 0x00, 0x80}}) // STA $8000

	cycles, err := b.Step()
	if !fault.Is(err, fault.KindROMWrite) {
		t.Fatalf("Expected ROM write fault, got %v", err)
	}
	if cycles != 4 {
		t.Errorf("Expected the store's 4 cycles, got %d", cycles)
	}
}

func TestBus_EmptySlotHalts(t *testing.T) {
	b := New(nil)
	if !fault.Is(b.Err(), fault.KindUnmappedAddress) {
		t.Fatalf("Expected unmapped address fault, got %v", b.Err())
	}
	if _, err := b.Step(); err == nil {
		t.Error("Step should fail without a cartridge")
	}
}

func TestBus_OAMDMA(t *testing.T) {
	b := newTestBus(t, rom{0x8000: {0xA9, 0x02, 0x8D, 0x14, 0x40}}) // LDA #$02; STA $4014
	for i := 0; i < 256; i++ {
		b.Memory.Write(0x0200+uint16(i), uint8(255-i))
	}

	mustStep(t, b)
	// the copy starts on an odd cycle
	if cycles := mustStep(t, b); cycles != 4+514 {
		t.Errorf("Expected 518 cycles, got %d", cycles)
	}

	oam := b.PPU.OAM()
	if oam[0] != 0xFF || oam[255] != 0x00 {
		t.Errorf("OAM not copied: %02X..%02X", oam[0], oam[255])
	}
}

func TestBus_IRQ(t *testing.T) {
	b := newTestBus(t, rom{0x8000: {0x58, 0xEA}}) // CLI; NOP
	b.SetIRQ(true)

	mustStep(t, b)
	if cycles := mustStep(t, b); cycles != 7 {
		t.Errorf("Expected IRQ entry, got %d cycles", cycles)
	}
	if pc := b.CPUState().PC; pc != 0xA000 {
		t.Errorf("Expected PC=$A000, got $%04X", pc)
	}
}

func TestBus_ControllerPort(t *testing.T) {
	b := newTestBus(t, rom{0x8000: {
		0xA9, 0x01, 0x8D, 0x16, 0x40, // strobe on
		0xA9, 0x00, 0x8D, 0x16, 0x40, // strobe off
		0xAD, 0x16, 0x40,             // LDA $4016
	}})
	b.SetControllerButton(1, input.ButtonA, true)

	for i := 0; i < 5; i++ {
		mustStep(t, b)
	}
	if a := b.CPUState().A; a != 0x41 {
		t.Errorf("Expected A=0x41, got 0x%02X", a)
	}
}

func TestBus_ReadByteHasNoSideEffects(t *testing.T) {
	b := newTestBus(t, rom{0x8000: {0x4C, 0x00, 0x80}})
	b.StepFrame()

	if b.ReadByte(0x2002)&0x80 == 0 {
		t.Fatal("Expected VBlank after a frame")
	}
	if b.ReadByte(0x2002)&0x80 == 0 {
		t.Error("ReadByte should not clear VBlank")
	}
}

func TestBus_ReadRange(t *testing.T) {
	b := newTestBus(t, rom{0x8000: {0xA9, 0x42, 0x4C}})

	got := b.ReadRange(0x8000, 0x8002)
	want := []uint8{0xA9, 0x42, 0x4C}
	if len(got) != len(want) {
		t.Fatalf("Expected %d bytes, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Byte %d: expected %02X, got %02X", i, want[i], got[i])
		}
	}

	if r := b.ReadRange(0xFFFE, 0xFFFF); len(r) != 2 {
		t.Errorf("Range ending at $FFFF should not wrap, got %d bytes", len(r))
	}
	if r := b.ReadRange(0x10, 0x0F); r != nil {
		t.Errorf("Inverted range should be empty, got %v", r)
	}
}
