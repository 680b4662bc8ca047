package app

import (
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"nescore/internal/bus"
)

// ErrFrameLimit is returned by Update once the configured number of frames
// has run.
var ErrFrameLimit = errors.New("frame limit reached")

// Emulator runs the system a frame at a time.
type Emulator struct {
	bus *bus.Bus

	frameLimit uint64
	frames     uint64
	paused     bool

	emulationTime time.Duration
}

// NewEmulator wraps b with the frame limit from config.
func NewEmulator(b *bus.Bus, config *Config) *Emulator {
	return &Emulator{
		bus:        b,
		frameLimit: config.Emulation.FrameLimit,
	}
}

// Update runs one frame. Nothing runs while paused or halted; the halt error
// is available from Bus().Err().
func (e *Emulator) Update() error {
	if e.frameLimit > 0 && e.frames >= e.frameLimit {
		return ErrFrameLimit
	}
	if e.paused || e.bus.Halted() {
		return nil
	}

	start := time.Now()
	err := e.bus.StepFrame()
	e.emulationTime = time.Since(start)
	if err != nil {
		return err
	}

	e.frames++
	if glog.V(2) && e.frames%600 == 0 {
		glog.Infof("app: frame %d, %d cycles, last frame took %v", e.frames, e.bus.Cycles(), e.emulationTime)
	}
	return nil
}

// Reset presses the reset button and unpauses.
func (e *Emulator) Reset() {
	e.bus.Reset()
	e.paused = false
}

func (e *Emulator) Pause()  { e.paused = true }
func (e *Emulator) Resume() { e.paused = false }

// TogglePause flips the pause state and returns the new one.
func (e *Emulator) TogglePause() bool {
	e.paused = !e.paused
	return e.paused
}

func (e *Emulator) Paused() bool { return e.paused }

// Frames returns the number of frames run by Update.
func (e *Emulator) Frames() uint64 {
	return e.frames
}

// Bus returns the system being run.
func (e *Emulator) Bus() *bus.Bus {
	return e.bus
}

// EmulationTime is the wall time the last frame took to emulate.
func (e *Emulator) EmulationTime() time.Duration {
	return e.emulationTime
}
