// Package ppu implements the Picture Processing Unit for the NES.
//
// Timing is kept per scanline: each Step runs one whole line of 341 dots and
// reports what happened on the way (VBlank entry, an NMI request, a finished
// frame) as an Event instead of calling back into its owner.
package ppu

import (
	"fmt"

	"github.com/golang/glog"
)

// Screen dimensions.
const (
	Width  = 256
	Height = 240
)

const (
	dotsPerScanline = 341
	dotsPerCPUCycle = 3

	preRenderLine  = -1
	postRenderLine = Height
	vblankLine     = Height + 1
	lastLine       = 260
)

// PPUSTATUS bits.
const (
	statusOverflow = 0x20
	statusSprite0  = 0x40
	statusVBlank   = 0x80
)

// Memory is the PPU's view of its own 14-bit address space.
type Memory interface {
	Read(address uint16) (uint8, error)
	Write(address uint16, value uint8) error
}

// Event reports what a Step or CatchUp produced.
type Event uint8

const (
	// EventNMI asks the CPU to take an NMI before its next instruction.
	EventNMI Event = 1 << iota
	// EventFrame means the frame buffer holds a complete picture.
	EventFrame
)

// Has reports whether every bit of f is set in e.
func (e Event) Has(f Event) bool {
	return e&f == f
}

// Phase names the part of the frame a scanline belongs to.
type Phase int

const (
	PhasePreRender Phase = iota
	PhaseVisible
	PhasePostRender
	PhaseVBlank
)

func (ph Phase) String() string {
	switch ph {
	case PhasePreRender:
		return "pre-render"
	case PhaseVisible:
		return "visible"
	case PhasePostRender:
		return "post-render"
	case PhaseVBlank:
		return "vblank"
	}
	return fmt.Sprintf("phase(%d)", int(ph))
}

// PPU represents the NES Picture Processing Unit (2C02)
type PPU struct {
	// CPU-visible registers
	ctrl    uint8 // $2000
	mask    uint8 // $2001
	status  uint8 // $2002
	oamAddr uint8 // $2003

	// Loopy registers
	v uint16 // current VRAM address (15 bits)
	t uint16 // temporary VRAM address (15 bits)
	x uint8  // fine X scroll (3 bits)
	w bool   // write toggle shared by $2005 and $2006

	readBuffer uint8 // $2007 read buffer
	openBus    uint8 // last value driven onto the register bus

	// NMI enabled through $2000 while VBlank was already set
	nmiLatched bool

	memory Memory
	err    error

	oam [256]uint8

	scanline   int
	dots       uint64 // dots run since power-on, at the end of the last whole scanline
	frameCount uint64
	oddFrame   bool

	frame FrameBuffer
}

// New creates a new PPU instance
func New() *PPU {
	return &PPU{scanline: preRenderLine}
}

// SetMemory sets the PPU memory interface
func (p *PPU) SetMemory(m Memory) {
	p.memory = m
}

// Reset returns the registers to their power-up state and restarts the frame
// at the pre-render line. OAM, VRAM and the frame buffer are left alone.
func (p *PPU) Reset() {
	p.ctrl = 0
	p.mask = 0
	p.status = 0
	p.oamAddr = 0
	p.v, p.t, p.x, p.w = 0, 0, 0, false
	p.readBuffer = 0
	p.openBus = 0
	p.nmiLatched = false
	p.err = nil
	p.scanline = preRenderLine
	p.dots = 0
	p.frameCount = 0
	p.oddFrame = false
}

// Err returns the first memory fault seen since the last Reset.
func (p *PPU) Err() error {
	return p.err
}

// Frame returns the frame buffer. It is complete after EventFrame and is
// overwritten line by line while the next frame renders.
func (p *PPU) Frame() *FrameBuffer {
	return &p.frame
}

// FrameCount returns the number of frames completed since Reset.
func (p *PPU) FrameCount() uint64 {
	return p.frameCount
}

// Scanline returns the line the next Step will run, -1 being pre-render.
func (p *PPU) Scanline() int {
	return p.scanline
}

// Dots returns the PPU dots consumed by whole scanlines since Reset.
func (p *PPU) Dots() uint64 {
	return p.dots
}

// Phase returns the phase of the next scanline and its index within it.
func (p *PPU) Phase() (Phase, int) {
	switch {
	case p.scanline == preRenderLine:
		return PhasePreRender, 0
	case p.scanline < postRenderLine:
		return PhaseVisible, p.scanline
	case p.scanline == postRenderLine:
		return PhasePostRender, 0
	default:
		return PhaseVBlank, p.scanline - vblankLine
	}
}

func (p *PPU) renderingEnabled() bool {
	return p.mask&0x18 != 0
}

// lineLength is the dot count of the next scanline. The pre-render line
// drops its last dot on odd frames while rendering is on.
func (p *PPU) lineLength() uint64 {
	if p.scanline == preRenderLine && p.oddFrame && p.renderingEnabled() {
		return dotsPerScanline - 1
	}
	return dotsPerScanline
}

// Step runs one whole scanline and moves to the next.
func (p *PPU) Step() Event {
	var ev Event

	switch {
	case p.scanline == preRenderLine:
		if p.renderingEnabled() {
			p.copyX()
			p.copyY()
		}
	case p.scanline < postRenderLine:
		p.renderScanline(p.scanline)
		if p.renderingEnabled() {
			p.incrementY()
			p.copyX()
		}
	}

	p.dots += p.lineLength()
	p.scanline++

	switch p.scanline {
	case vblankLine:
		p.status |= statusVBlank
		p.frameCount++
		ev |= EventFrame
		if p.ctrl&0x80 != 0 {
			ev |= EventNMI
		}
		if glog.V(2) {
			glog.Infof("ppu: frame %d complete, nmi=%v", p.frameCount, ev.Has(EventNMI))
		}
	case lastLine + 1:
		p.scanline = preRenderLine
		p.status &^= statusVBlank | statusSprite0 | statusOverflow
		p.oddFrame = !p.oddFrame
	}

	return ev
}

// CatchUp runs whole scanlines until the next one would end past the dot
// matching cpuCycles. An NMI enabled through $2000 during VBlank is reported
// here as well.
func (p *PPU) CatchUp(cpuCycles uint64) Event {
	var ev Event
	if p.nmiLatched {
		p.nmiLatched = false
		ev |= EventNMI
	}

	target := cpuCycles * dotsPerCPUCycle
	for p.dots+p.lineLength() <= target {
		ev |= p.Step()
	}
	return ev
}

func (p *PPU) read(address uint16) uint8 {
	if p.memory == nil {
		return 0
	}
	value, err := p.memory.Read(address)
	if err != nil {
		p.fail(err)
		return 0
	}
	return value
}

func (p *PPU) write(address uint16, value uint8) {
	if p.memory == nil {
		return
	}
	if err := p.memory.Write(address, value); err != nil {
		p.fail(err)
	}
}

// PeekMemory reads the PPU address space without recording faults.
// Addresses that would fault read as zero.
func (p *PPU) PeekMemory(address uint16) uint8 {
	if p.memory == nil {
		return 0
	}
	value, err := p.memory.Read(address & 0x3FFF)
	if err != nil {
		return 0
	}
	return value
}

func (p *PPU) fail(err error) {
	if p.err == nil {
		glog.V(2).Infof("ppu: %v", err)
		p.err = err
	}
}

// State is a copy of the PPU registers for diagnostics.
type State struct {
	Ctrl, Mask, Status, OAMAddr uint8
	V, T                        uint16
	X                           uint8
	W                           bool
	Scanline                    int
	Frame                       uint64
}

func (s State) String() string {
	return fmt.Sprintf("CTRL:%02X MASK:%02X STATUS:%02X OAM:%02X V:%04X T:%04X X:%d W:%v SL:%d FRAME:%d",
		s.Ctrl, s.Mask, s.Status, s.OAMAddr, s.V, s.T, s.X, s.W, s.Scanline, s.Frame)
}

// State returns the current register values.
func (p *PPU) State() State {
	return State{
		Ctrl:     p.ctrl,
		Mask:     p.mask,
		Status:   p.status,
		OAMAddr:  p.oamAddr,
		V:        p.v,
		T:        p.t,
		X:        p.x,
		W:        p.w,
		Scanline: p.scanline,
		Frame:    p.frameCount,
	}
}
