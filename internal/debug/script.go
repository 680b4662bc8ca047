package debug

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
)

// Script runs Lua automation against a Debugger. Scripts see four tables:
//
//	emu       step([n]), frame(), continue(), reset(), framecount(), cycles(), dump(path)
//	memory    readbyte(addr), readrange(lo, hi)
//	debugger  breakpoint(addr), delete(addr), breakpoints()
//	cpu       registers()
//
// print writes to the script's output instead of stdout. Run calls returning
// a stop reason also return an error message, or nil.
type Script struct {
	L   *lua.LState
	dbg *Debugger
	out io.Writer

	// context of the Run call in progress
	ctx context.Context
}

// NewScript creates a Lua state bound to dbg.
func NewScript(dbg *Debugger, out io.Writer) *Script {
	s := &Script{
		L:   lua.NewState(),
		dbg: dbg,
		out: out,
		ctx: context.Background(),
	}

	s.L.SetGlobal("print", s.L.NewFunction(s.print))
	s.register("emu", map[string]lua.LGFunction{
		"step":       s.step,
		"frame":      s.frame,
		"continue":   s.cont,
		"reset":      s.reset,
		"framecount": s.frameCount,
		"cycles":     s.cycles,
		"dump":       s.dump,
	})
	s.register("memory", map[string]lua.LGFunction{
		"readbyte":  s.readByte,
		"readrange": s.readRange,
	})
	s.register("debugger", map[string]lua.LGFunction{
		"breakpoint":  s.addBreakpoint,
		"delete":      s.removeBreakpoint,
		"breakpoints": s.breakpoints,
	})
	s.register("cpu", map[string]lua.LGFunction{
		"registers": s.registers,
	})
	return s
}

func (s *Script) register(name string, funcs map[string]lua.LGFunction) {
	tbl := s.L.NewTable()
	s.L.SetFuncs(tbl, funcs)
	s.L.SetGlobal(name, tbl)
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.L.Close()
}

// RunFile executes the script at path. Cancelling ctx stops both the Lua VM
// and any emulation the script started.
func (s *Script) RunFile(ctx context.Context, path string) error {
	return errors.Wrapf(s.run(ctx, func() error { return s.L.DoFile(path) }), "lua script %s", path)
}

// RunString executes a chunk of Lua source.
func (s *Script) RunString(ctx context.Context, src string) error {
	return errors.Wrap(s.run(ctx, func() error { return s.L.DoString(src) }), "lua chunk")
}

func (s *Script) run(ctx context.Context, do func() error) error {
	s.ctx = ctx
	s.L.SetContext(ctx)
	defer func() {
		s.L.RemoveContext()
		s.ctx = context.Background()
	}()
	return do()
}

func (s *Script) print(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(s.out, strings.Join(parts, "\t"))
	return 0
}

func (s *Script) pushStop(L *lua.LState, reason StopReason, err error) int {
	L.Push(lua.LString(reason.String()))
	if err != nil {
		L.Push(lua.LString(err.Error()))
	} else {
		L.Push(lua.LNil)
	}
	return 2
}

func checkAddress(L *lua.LState, n int) uint16 {
	v := L.CheckInt(n)
	if v < 0 || v > 0xFFFF {
		L.ArgError(n, "address out of range")
	}
	return uint16(v)
}

func (s *Script) step(L *lua.LState) int {
	reason, err := s.dbg.Step(L.OptInt(1, 1))
	return s.pushStop(L, reason, err)
}

func (s *Script) frame(L *lua.LState) int {
	reason, err := s.dbg.Frame(s.ctx)
	return s.pushStop(L, reason, err)
}

func (s *Script) cont(L *lua.LState) int {
	reason, err := s.dbg.Continue(s.ctx)
	return s.pushStop(L, reason, err)
}

func (s *Script) reset(L *lua.LState) int {
	s.dbg.Reset()
	return 0
}

func (s *Script) frameCount(L *lua.LState) int {
	L.Push(lua.LNumber(s.dbg.Bus().FrameCount()))
	return 1
}

func (s *Script) cycles(L *lua.LState) int {
	L.Push(lua.LNumber(s.dbg.Bus().Cycles()))
	return 1
}

func (s *Script) dump(L *lua.LState) int {
	path := L.CheckString(1)
	fd := NewFrameDumper("", L.OptInt(2, 1))
	if err := fd.DumpFile(s.dbg.Bus().Frame(), path); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (s *Script) readByte(L *lua.LState) int {
	L.Push(lua.LNumber(s.dbg.ReadByte(checkAddress(L, 1))))
	return 1
}

func (s *Script) readRange(L *lua.LState) int {
	tbl := L.NewTable()
	for _, v := range s.dbg.ReadRange(checkAddress(L, 1), checkAddress(L, 2)) {
		tbl.Append(lua.LNumber(v))
	}
	L.Push(tbl)
	return 1
}

func (s *Script) addBreakpoint(L *lua.LState) int {
	s.dbg.AddBreakpoint(checkAddress(L, 1))
	return 0
}

func (s *Script) removeBreakpoint(L *lua.LState) int {
	L.Push(lua.LBool(s.dbg.RemoveBreakpoint(checkAddress(L, 1))))
	return 1
}

func (s *Script) breakpoints(L *lua.LState) int {
	tbl := L.NewTable()
	for _, addr := range s.dbg.Breakpoints() {
		tbl.Append(lua.LNumber(addr))
	}
	L.Push(tbl)
	return 1
}

func (s *Script) registers(L *lua.LState) int {
	r := s.dbg.Registers()
	tbl := L.NewTable()
	tbl.RawSetString("a", lua.LNumber(r.A))
	tbl.RawSetString("x", lua.LNumber(r.X))
	tbl.RawSetString("y", lua.LNumber(r.Y))
	tbl.RawSetString("sp", lua.LNumber(r.SP))
	tbl.RawSetString("pc", lua.LNumber(r.PC))
	tbl.RawSetString("p", lua.LNumber(r.P))
	tbl.RawSetString("cycles", lua.LNumber(r.Cycles))
	L.Push(tbl)
	return 1
}
