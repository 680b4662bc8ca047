// Package bus wires the NES components together and drives them: one CPU
// instruction per Step, then the PPU caught up to the CPU's cycle count.
package bus

import (
	"github.com/golang/glog"

	"nescore/internal/apu"
	"nescore/internal/cartridge"
	"nescore/internal/cpu"
	"nescore/internal/fault"
	"nescore/internal/input"
	"nescore/internal/memory"
	"nescore/internal/ppu"
)

// Bus connects all NES components together
type Bus struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Memory *memory.Memory
	Input  *input.Ports

	cart *cartridge.Cartridge

	// CPU cycle count at the last PPU reset; the PPU counts from there
	cycleBase uint64

	// set once; every later Step returns it
	err error
}

// New creates a system with cart inserted and resets it. A nil cart gives a
// console with an empty slot, which halts on the reset vector fetch.
func New(cart *cartridge.Cartridge) *Bus {
	var (
		slot      memory.CartridgeInterface
		mirroring = cartridge.MirrorHorizontal
	)
	if cart != nil {
		slot = cart
		mirroring = cart.Mirroring()
	}

	b := &Bus{
		PPU:   ppu.New(),
		APU:   apu.New(),
		Input: input.NewPorts(),
		cart:  cart,
	}

	b.Memory = memory.New(b.PPU, b.APU, slot)
	b.Memory.SetInputSystem(b.Input)
	b.Memory.SetDMACallback(b.oamDMA)
	b.PPU.SetMemory(memory.NewPPUMemory(slot, mirroring))
	b.CPU = cpu.New(b.Memory)

	b.Reset()
	return b
}

// Reset presses the console's reset button. RAM and VRAM keep their
// contents; a halted system runs again.
func (b *Bus) Reset() {
	b.err = nil
	b.Memory.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()

	b.cycleBase = b.CPU.Cycles()
	b.CPU.Reset()

	if err := b.Memory.Err(); err != nil {
		b.halt(err)
		return
	}
	glog.V(2).Infof("bus: reset, %s", b.CPU.State())
}

// Step executes one CPU instruction, or one interrupt entry, and brings the
// PPU level with it. It returns the CPU cycles spent, OAM DMA included.
// Once a fault has halted the system every call returns that fault.
func (b *Bus) Step() (int, error) {
	if b.err != nil {
		return 0, b.err
	}

	cycles, err := b.CPU.Step()
	if err != nil {
		return 0, b.halt(err)
	}
	if err := b.Memory.Err(); err != nil {
		return cycles, b.halt(err)
	}

	ev := b.PPU.CatchUp(b.CPU.Cycles() - b.cycleBase)
	if ev.Has(ppu.EventNMI) {
		// taken before the next fetch, never mid-instruction
		b.CPU.NMI()
	}
	if err := b.PPU.Err(); err != nil {
		return cycles, b.halt(err)
	}

	return cycles, nil
}

// StepFrame runs until the PPU completes the frame in progress.
func (b *Bus) StepFrame() error {
	start := b.PPU.FrameCount()
	for b.PPU.FrameCount() == start {
		if _, err := b.Step(); err != nil {
			return err
		}
	}
	return nil
}

// RunFrames runs n whole frames.
func (b *Bus) RunFrames(n int) error {
	for i := 0; i < n; i++ {
		if err := b.StepFrame(); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bus) halt(err error) error {
	b.err = fault.WithSnapshot(err, b.snapshot())
	glog.Errorf("bus: emulation halted: %v", b.err)
	return b.err
}

func (b *Bus) snapshot() string {
	return b.CPU.State().String() + " " + b.PPU.State().String()
}

// oamDMA copies a CPU page into OAM and suspends the CPU for the transfer:
// 513 cycles, plus one to align on an odd cycle.
func (b *Bus) oamDMA(page uint8) {
	var data [256]uint8
	base := uint16(page) << 8
	for i := range data {
		data[i] = b.Memory.Read(base + uint16(i))
	}
	b.PPU.WriteOAMPage(&data)

	stall := 513
	if b.CPU.Cycles()%2 == 1 {
		stall++
	}
	b.CPU.Stall(stall)
}

// Err returns the fault that halted the system, if any.
func (b *Bus) Err() error {
	return b.err
}

// Halted reports whether a fault has stopped emulation.
func (b *Bus) Halted() bool {
	return b.err != nil
}

// Frame returns the PPU frame buffer.
func (b *Bus) Frame() *ppu.FrameBuffer {
	return b.PPU.Frame()
}

// FrameCount returns the number of frames completed since Reset.
func (b *Bus) FrameCount() uint64 {
	return b.PPU.FrameCount()
}

// Cycles returns the CPU cycles executed since power-on.
func (b *Bus) Cycles() uint64 {
	return b.CPU.Cycles()
}

// SetIRQ drives the CPU's IRQ line. Nothing on an NROM board asserts it; it
// is here for debuggers and tests.
func (b *Bus) SetIRQ(level bool) {
	b.CPU.SetIRQ(level)
}

// Cartridge returns the inserted cartridge, or nil.
func (b *Bus) Cartridge() *cartridge.Cartridge {
	return b.cart
}

// ReadByte returns the byte the CPU would read at address, without the
// read's side effects.
func (b *Bus) ReadByte(address uint16) uint8 {
	return b.Memory.Peek(address)
}

// ReadRange returns the bytes from lo to hi inclusive, without side effects.
// An inverted range is empty.
func (b *Bus) ReadRange(lo, hi uint16) []uint8 {
	if hi < lo {
		return nil
	}
	out := make([]uint8, 0, int(hi-lo)+1)
	for addr := uint32(lo); addr <= uint32(hi); addr++ {
		out = append(out, b.Memory.Peek(uint16(addr)))
	}
	return out
}

// CPUState returns the CPU registers.
func (b *Bus) CPUState() cpu.State {
	return b.CPU.State()
}

// PPUState returns the PPU registers.
func (b *Bus) PPUState() ppu.State {
	return b.PPU.State()
}

// SetControllerButton presses or releases a button on pad 1 or 2.
func (b *Bus) SetControllerButton(controller int, button input.Button, pressed bool) {
	switch controller {
	case 1:
		b.Input.Controller1.SetButton(button, pressed)
	case 2:
		b.Input.Controller2.SetButton(button, pressed)
	}
}

// SetControllerButtons replaces the held buttons of pad 1 or 2.
func (b *Bus) SetControllerButtons(controller int, buttons input.Button) {
	switch controller {
	case 1:
		b.Input.Controller1.SetButtons(buttons)
	case 2:
		b.Input.Controller2.SetButtons(buttons)
	}
}
