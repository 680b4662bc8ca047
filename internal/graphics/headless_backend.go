package graphics

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"nescore/internal/debug"
	"nescore/internal/ppu"
)

// HeadlessBackend implements the Backend interface for headless operation
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow keeps count of rendered frames and writes every
// SnapshotInterval-th one to OutputDir as a PNG.
type HeadlessWindow struct {
	title      string
	width      int
	height     int
	running    bool
	frameCount uint64
	status     string
	dumper     *debug.FrameDumper
	snapshots  []string
}

// NewHeadlessBackend creates a new headless graphics backend
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

// Initialize initializes the headless backend
func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return errors.New("headless backend already initialized")
	}
	b.config = config
	b.initialized = true
	return nil
}

// CreateWindow creates a headless "window" (no actual window)
func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, errors.New("backend not initialized")
	}

	dumper := debug.NewFrameDumper(b.config.OutputDir, b.config.Scale)
	dumper.SetInterval(b.config.SnapshotInterval)
	dumper.SetMaxDumps(b.config.MaxSnapshots)

	return &HeadlessWindow{
		title:   title,
		width:   width,
		height:  height,
		running: true,
		dumper:  dumper,
	}, nil
}

// Cleanup releases all headless resources
func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true (this is a headless backend)
func (b *HeadlessBackend) IsHeadless() bool {
	return true
}

// GetName returns the backend name
func (b *HeadlessBackend) GetName() string {
	return "Headless"
}

// SetTitle sets the window title (for logging purposes)
func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

// GetSize returns window dimensions
func (w *HeadlessWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *HeadlessWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents returns empty events list (no input in headless mode)
func (w *HeadlessWindow) PollEvents() []InputEvent {
	return nil
}

// RenderFrame counts the frame and writes a snapshot when one is due.
func (w *HeadlessWindow) RenderFrame(frame *ppu.FrameBuffer) error {
	w.frameCount++
	path, err := w.dumper.MaybeDump(frame, w.frameCount)
	if err != nil {
		return errors.Wrapf(err, "snapshot of frame %d", w.frameCount)
	}
	if path != "" {
		w.snapshots = append(w.snapshots, path)
	}
	return nil
}

// SetStatus logs msg; there is no picture to draw it on.
func (w *HeadlessWindow) SetStatus(msg string) {
	if msg != "" && msg != w.status {
		glog.Infof("graphics: %s", msg)
	}
	w.status = msg
}

// Cleanup releases window resources
func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	return nil
}

// FrameCount returns the number of frames rendered.
func (w *HeadlessWindow) FrameCount() uint64 {
	return w.frameCount
}

// Snapshots returns the paths written so far.
func (w *HeadlessWindow) Snapshots() []string {
	return w.snapshots
}
