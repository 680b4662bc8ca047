package graphics

import (
	"path/filepath"
	"testing"

	"nescore/internal/ppu"
)

func newHeadlessWindow(t *testing.T, config Config) *HeadlessWindow {
	t.Helper()
	backend := NewHeadlessBackend()
	if _, err := backend.CreateWindow("test", 256, 240); err == nil {
		t.Fatal("Expected CreateWindow before Initialize to fail")
	}
	if err := backend.Initialize(config); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	window, err := backend.CreateWindow("test", 256, 240)
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	return window.(*HeadlessWindow)
}

func TestHeadlessWindow_Snapshots(t *testing.T) {
	dir := t.TempDir()
	w := newHeadlessWindow(t, Config{OutputDir: dir, SnapshotInterval: 30, MaxSnapshots: 2, Scale: 1})

	var frame ppu.FrameBuffer
	for i := 0; i < 100; i++ {
		if err := w.RenderFrame(&frame); err != nil {
			t.Fatalf("RenderFrame: %v", err)
		}
	}

	if w.FrameCount() != 100 {
		t.Errorf("Expected 100 frames, got %d", w.FrameCount())
	}
	want := []string{filepath.Join(dir, "frame_000030.png"), filepath.Join(dir, "frame_000060.png")}
	got := w.Snapshots()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Snapshots = %v, want %v", got, want)
	}
}

func TestHeadlessWindow_NoSnapshots(t *testing.T) {
	w := newHeadlessWindow(t, Config{OutputDir: t.TempDir()})

	var frame ppu.FrameBuffer
	for i := 0; i < 10; i++ {
		if err := w.RenderFrame(&frame); err != nil {
			t.Fatalf("RenderFrame: %v", err)
		}
	}
	if len(w.Snapshots()) != 0 {
		t.Errorf("Expected no snapshots, got %v", w.Snapshots())
	}
	if events := w.PollEvents(); events != nil {
		t.Errorf("Expected no events, got %v", events)
	}

	w.SetStatus("HALTED")
	if w.ShouldClose() {
		t.Error("Window should stay open until Cleanup")
	}
	w.Cleanup()
	if !w.ShouldClose() {
		t.Error("Window should close after Cleanup")
	}
}
