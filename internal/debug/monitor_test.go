package debug

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runMonitor(t *testing.T, d *Debugger, input string) string {
	t.Helper()
	var out bytes.Buffer
	m := NewMonitor(d, strings.NewReader(input), &out)
	defer m.Close()
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestMonitor_StepAndRegs(t *testing.T) {
	d := newTestDebugger(t)
	out := runMonitor(t, d, "step 2\nregs\n")

	if !strings.Contains(out, "X:01") {
		t.Errorf("Expected X:01 in output:\n%s", out)
	}
	if !strings.Contains(out, "8003  86 10     STX $10") {
		t.Errorf("Expected next instruction in output:\n%s", out)
	}
	if !strings.Contains(out, "CTRL:00") {
		t.Errorf("Expected PPU registers in output:\n%s", out)
	}
}

func TestMonitor_BreakAndContinue(t *testing.T) {
	d := newTestDebugger(t)
	out := runMonitor(t, d, "break $8003\nlist\ncontinue\ndelete 8003\nlist\nquit\nstep\n")

	if !strings.Contains(out, "breakpoint at $8003") {
		t.Errorf("Expected breakpoint confirmation:\n%s", out)
	}
	if !strings.Contains(out, "breakpoint $8003") {
		t.Errorf("Expected breakpoint stop:\n%s", out)
	}
	if !strings.Contains(out, "no breakpoints") {
		t.Errorf("Expected empty list after delete:\n%s", out)
	}
	// quit stops before the trailing step
	if pc := d.Registers().PC; pc != 0x8003 {
		t.Errorf("Expected PC $8003, got $%04X", pc)
	}
}

func TestMonitor_Mem(t *testing.T) {
	d := newTestDebugger(t)
	out := runMonitor(t, d, "mem 8000 8011\n")

	want := "$8000: A2 00 E8 86 10 4C 02 80 00 00 00 00 00 00 00 00\n$8010: 00 00\n"
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestMonitor_Dis(t *testing.T) {
	d := newTestDebugger(t)
	out := runMonitor(t, d, "dis $8002 2\n")

	want := "  8002  E8        INX\n  8003  86 10     STX $10\n"
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestMonitor_Errors(t *testing.T) {
	d := newTestDebugger(t)
	out := runMonitor(t, d, "bogus\nbreak\nbreak zz\ndelete 1234\nstep -1\n")

	for _, want := range []string{
		`* unknown command "bogus"`,
		"* missing address",
		`* bad address "zz"`,
		"* no breakpoint at $1234",
		`* bad instruction count "-1"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestMonitor_FrameAndFiles(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "frame.png")
	dot := filepath.Join(dir, "state.dot")

	d := newTestDebugger(t)
	out := runMonitor(t, d, "frame\ndump "+png+"\nmemviz "+dot+"\n")

	if d.Bus().FrameCount() != 1 {
		t.Errorf("Expected 1 frame, got %d", d.Bus().FrameCount())
	}
	if !strings.Contains(out, "frame 1 written to") {
		t.Errorf("Expected dump confirmation:\n%s", out)
	}
	if info, err := os.Stat(png); err != nil || info.Size() == 0 {
		t.Errorf("Expected PNG at %s: %v", png, err)
	}
	graph, err := os.ReadFile(dot)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(graph), "digraph") {
		t.Errorf("Expected a Graphviz graph, got:\n%s", graph)
	}
}

func TestMonitor_Palette(t *testing.T) {
	d := newTestDebugger(t)
	out := runMonitor(t, d, "palette\ncolors\n")

	if !strings.Contains(out, "bg 0 $3F00:") || !strings.Contains(out, "spr3 $3F1C:") {
		t.Errorf("Expected palette rows:\n%s", out)
	}
	// blank frame buffer is all black
	if !strings.Contains(out, "#000000  61440 100.00%") {
		t.Errorf("Expected colour usage:\n%s", out)
	}
}

func TestMonitor_Script(t *testing.T) {
	path := filepath.Join(t.TempDir(), "step.lua")
	if err := os.WriteFile(path, []byte("emu.step(3)\nprint(memory.readbyte(0x10))\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := newTestDebugger(t)
	out := runMonitor(t, d, "script "+path+"\n")
	if out != "1\n" {
		t.Errorf("Expected script output 1, got %q", out)
	}
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in   string
		want uint16
		ok   bool
	}{
		{"8000", 0x8000, true},
		{"$C000", 0xC000, true},
		{"0xfffc", 0xFFFC, true},
		{"10000", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, err := parseAddress(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("parseAddress(%q) = $%04X, %v", tt.in, got, err)
		}
	}
}
