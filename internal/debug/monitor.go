package debug

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/memviz"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"nescore/internal/cpu"
	"nescore/internal/ppu"
)

const monitorHelp = `step [n]          run n instructions (default 1)
continue          run until a breakpoint or fault
frame             run until the current frame completes
break <addr>      set a breakpoint
delete <addr>     remove a breakpoint
list              list breakpoints
regs              show CPU and PPU registers
mem <lo> [hi]     dump memory
dis [addr] [n]    disassemble (default PC, 10 lines)
dump <file>       write the frame buffer as PNG
memviz <file>     write the register state as a Graphviz graph
palette           show palette RAM
colors            show colour usage of the frame buffer
script <file>     run a Lua script
reset             reset the system
quit              leave the monitor
`

// errQuit is returned by Exec for the quit command.
var errQuit = errors.New("quit")

// Monitor is a line-oriented command interface over a Debugger. A prompt is
// printed only when the input is an interactive terminal.
type Monitor struct {
	dbg *Debugger
	in  io.Reader
	out io.Writer

	realTerminal bool
	script       *Script
}

// NewMonitor creates a monitor reading commands from in.
func NewMonitor(dbg *Debugger, in io.Reader, out io.Writer) *Monitor {
	m := &Monitor{dbg: dbg, in: in, out: out}
	if f, ok := in.(*os.File); ok {
		m.realTerminal = term.IsTerminal(int(f.Fd()))
	}
	return m
}

// Close releases the Lua state if a script was run.
func (m *Monitor) Close() {
	if m.script != nil {
		m.script.Close()
		m.script = nil
	}
}

// Run reads and executes commands until quit, end of input or ctx is done.
// Command errors are printed and do not end the session.
func (m *Monitor) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(m.in)
	for {
		if m.realTerminal {
			fmt.Fprintf(m.out, "[$%04X] > ", m.dbg.Bus().CPU.PC)
		}
		if !scanner.Scan() {
			return errors.Wrap(scanner.Err(), "reading monitor input")
		}

		err := m.Exec(ctx, scanner.Text())
		if err == errQuit {
			return nil
		}
		if err != nil {
			fmt.Fprintf(m.out, "* %v\n", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Exec runs a single command line.
func (m *Monitor) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "step", "s":
		n := 1
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 1 {
				return errors.Errorf("bad instruction count %q", args[0])
			}
			n = v
		}
		return m.stopped(m.dbg.Step(n))

	case "continue", "c":
		return m.stopped(m.dbg.Continue(ctx))

	case "frame", "f":
		return m.stopped(m.dbg.Frame(ctx))

	case "break", "b":
		addr, err := m.addressArg(args, 0)
		if err != nil {
			return err
		}
		m.dbg.AddBreakpoint(addr)
		fmt.Fprintf(m.out, "breakpoint at $%04X\n", addr)

	case "delete", "d":
		addr, err := m.addressArg(args, 0)
		if err != nil {
			return err
		}
		if !m.dbg.RemoveBreakpoint(addr) {
			return errors.Errorf("no breakpoint at $%04X", addr)
		}

	case "list", "l":
		bps := m.dbg.Breakpoints()
		if len(bps) == 0 {
			fmt.Fprintln(m.out, "no breakpoints")
		}
		for _, addr := range bps {
			fmt.Fprintf(m.out, "$%04X\n", addr)
		}

	case "regs", "r":
		regs := m.dbg.Registers()
		fmt.Fprintf(m.out, "%s %s\n", regs, regs.Flags())
		fmt.Fprintln(m.out, m.dbg.PPU())

	case "mem", "m":
		lo, err := m.addressArg(args, 0)
		if err != nil {
			return err
		}
		hi := lo + 0x0F
		if hi < lo {
			hi = 0xFFFF
		}
		if len(args) > 1 {
			if hi, err = parseAddress(args[1]); err != nil {
				return err
			}
		}
		m.hexDump(lo, m.dbg.ReadRange(lo, hi))

	case "dis":
		addr := m.dbg.Bus().CPU.PC
		n := 10
		if len(args) > 0 {
			v, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			addr = v
		}
		if len(args) > 1 {
			v, err := strconv.Atoi(args[1])
			if err != nil || v < 1 {
				return errors.Errorf("bad line count %q", args[1])
			}
			n = v
		}
		for _, l := range m.dbg.Disassemble(addr, n) {
			fmt.Fprintln(m.out, l)
		}

	case "dump":
		if len(args) == 0 {
			return errors.New("dump needs a file name")
		}
		if err := NewFrameDumper("", 1).DumpFile(m.dbg.Bus().Frame(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(m.out, "frame %d written to %s\n", m.dbg.Bus().FrameCount(), args[0])

	case "memviz":
		if len(args) == 0 {
			return errors.New("memviz needs a file name")
		}
		return m.memviz(args[0])

	case "palette":
		WritePalette(m.out, m.dbg.Bus().PPU)

	case "colors":
		WriteColorUsage(m.out, m.dbg.Bus().Frame())

	case "script":
		if len(args) == 0 {
			return errors.New("script needs a file name")
		}
		if m.script == nil {
			m.script = NewScript(m.dbg, m.out)
		}
		return m.script.RunFile(ctx, args[0])

	case "reset":
		m.dbg.Reset()
		m.status()

	case "help", "?":
		fmt.Fprint(m.out, monitorHelp)

	case "quit", "q", "exit":
		return errQuit

	default:
		return errors.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

func (m *Monitor) stopped(reason StopReason, err error) error {
	if reason == StopBreakpoint {
		fmt.Fprintf(m.out, "breakpoint $%04X\n", m.dbg.Bus().CPU.PC)
	}
	if err != nil {
		return err
	}
	m.status()
	return nil
}

func (m *Monitor) status() {
	fmt.Fprintln(m.out, m.dbg.Registers())
	fmt.Fprintln(m.out, m.dbg.Disassemble(m.dbg.Bus().CPU.PC, 1)[0])
}

func (m *Monitor) hexDump(base uint16, data []uint8) {
	for i := 0; i < len(data); i += 16 {
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "$%04X:", int(base)+i)
		for _, v := range data[i:end] {
			fmt.Fprintf(&sb, " %02X", v)
		}
		fmt.Fprintln(m.out, sb.String())
	}
}

// memvizState is the graph written by the memviz command.
type memvizState struct {
	CPU         cpu.State
	PPU         ppu.State
	Breakpoints []uint16
	Frame       uint64
}

func (m *Monitor) memviz(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating memviz output")
	}
	state := &memvizState{
		CPU:         m.dbg.Registers(),
		PPU:         m.dbg.PPU(),
		Breakpoints: m.dbg.Breakpoints(),
		Frame:       m.dbg.Bus().FrameCount(),
	}
	memviz.Map(f, state)
	return errors.Wrap(f.Close(), "closing memviz output")
}

func (m *Monitor) addressArg(args []string, i int) (uint16, error) {
	if len(args) <= i {
		return 0, errors.New("missing address")
	}
	return parseAddress(args[i])
}

// parseAddress reads a hexadecimal address with an optional $ or 0x prefix.
func parseAddress(s string) (uint16, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "$"), "0x")
	v, err := strconv.ParseUint(trimmed, 16, 16)
	if err != nil {
		return 0, errors.Errorf("bad address %q", s)
	}
	return uint16(v), nil
}
