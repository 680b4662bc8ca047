// Package debug provides the tools for inspecting a running system: a
// breakpoint debugger, a line-oriented monitor, Lua scripting and frame
// dumps.
package debug

import (
	"context"
	"fmt"
	"sort"

	"github.com/golang/glog"

	"nescore/internal/bus"
	"nescore/internal/cpu"
	"nescore/internal/ppu"
)

// StopReason says why a run came back to the caller.
type StopReason int

const (
	// StopStepped means the requested number of instructions ran.
	StopStepped StopReason = iota
	// StopBreakpoint means PC reached a breakpoint.
	StopBreakpoint
	// StopFrame means a frame completed.
	StopFrame
	// StopHalted means the system faulted.
	StopHalted
	// StopCancelled means the context was cancelled.
	StopCancelled
)

func (r StopReason) String() string {
	switch r {
	case StopStepped:
		return "stepped"
	case StopBreakpoint:
		return "breakpoint"
	case StopFrame:
		return "frame"
	case StopHalted:
		return "halted"
	case StopCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("stop(%d)", int(r))
}

// contextCheckInterval is how many instructions run between context checks.
const contextCheckInterval = 1024

// Debugger drives a Bus one instruction at a time. Breakpoints are checked
// between instructions only, never inside one.
type Debugger struct {
	bus         *bus.Bus
	breakpoints map[uint16]struct{}
}

// NewDebugger creates a debugger for b.
func NewDebugger(b *bus.Bus) *Debugger {
	return &Debugger{
		bus:         b,
		breakpoints: make(map[uint16]struct{}),
	}
}

// Bus returns the system being debugged.
func (d *Debugger) Bus() *bus.Bus {
	return d.bus
}

// AddBreakpoint stops execution before the instruction at address.
func (d *Debugger) AddBreakpoint(address uint16) {
	d.breakpoints[address] = struct{}{}
}

// RemoveBreakpoint deletes a breakpoint and reports whether it existed.
func (d *Debugger) RemoveBreakpoint(address uint16) bool {
	_, ok := d.breakpoints[address]
	delete(d.breakpoints, address)
	return ok
}

// Breakpoints returns the breakpoint addresses in ascending order.
func (d *Debugger) Breakpoints() []uint16 {
	out := make([]uint16, 0, len(d.breakpoints))
	for addr := range d.breakpoints {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (d *Debugger) atBreakpoint() bool {
	_, ok := d.breakpoints[d.bus.CPU.PC]
	return ok
}

// Step executes up to n instructions. The first one always runs, so stepping
// off a breakpoint works; after that a breakpoint stops the run early.
func (d *Debugger) Step(n int) (StopReason, error) {
	for i := 0; i < n; i++ {
		if i > 0 && d.atBreakpoint() {
			return StopBreakpoint, nil
		}
		if _, err := d.bus.Step(); err != nil {
			return StopHalted, err
		}
	}
	return StopStepped, nil
}

// Continue runs until a breakpoint, a fault or ctx is done.
func (d *Debugger) Continue(ctx context.Context) (StopReason, error) {
	return d.run(ctx, func() bool { return false })
}

// Frame runs until the current frame completes, stopping early on a
// breakpoint or fault.
func (d *Debugger) Frame(ctx context.Context) (StopReason, error) {
	start := d.bus.FrameCount()
	return d.run(ctx, func() bool { return d.bus.FrameCount() != start })
}

func (d *Debugger) run(ctx context.Context, done func() bool) (StopReason, error) {
	for i := 0; ; i++ {
		if i%contextCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return StopCancelled, ctx.Err()
			default:
			}
		}
		if i > 0 && d.atBreakpoint() {
			glog.V(2).Infof("debug: breakpoint at $%04X", d.bus.CPU.PC)
			return StopBreakpoint, nil
		}
		if _, err := d.bus.Step(); err != nil {
			return StopHalted, err
		}
		if done() {
			return StopFrame, nil
		}
	}
}

// Reset resets the system. Breakpoints are kept.
func (d *Debugger) Reset() {
	d.bus.Reset()
}

// ReadByte returns the byte at address without side effects.
func (d *Debugger) ReadByte(address uint16) uint8 {
	return d.bus.ReadByte(address)
}

// ReadRange returns the bytes from lo to hi inclusive without side effects.
func (d *Debugger) ReadRange(lo, hi uint16) []uint8 {
	return d.bus.ReadRange(lo, hi)
}

// Registers returns the CPU registers.
func (d *Debugger) Registers() cpu.State {
	return d.bus.CPUState()
}

// PPU returns the PPU registers.
func (d *Debugger) PPU() ppu.State {
	return d.bus.PPUState()
}

// Disassemble returns n instructions starting at address.
func (d *Debugger) Disassemble(address uint16, n int) []string {
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		line, size := cpu.Disassemble(d.bus.Memory, address)
		if _, ok := d.breakpoints[address]; ok {
			line = "b " + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
		address += size
	}
	return lines
}
