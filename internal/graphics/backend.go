// Package graphics presents frames and collects player input. The Ebitengine
// backend opens a window; the headless backend writes PNG snapshots.
package graphics

import (
	"github.com/pkg/errors"

	"nescore/internal/input"
	"nescore/internal/ppu"
)

// Backend represents a graphics rendering backend
type Backend interface {
	// Initialize prepares the backend; it must be called once before CreateWindow.
	Initialize(config Config) error

	// CreateWindow creates the output surface for frames.
	CreateWindow(title string, width, height int) (Window, error)

	Cleanup() error

	IsHeadless() bool

	GetName() string
}

// Window represents a rendering window
type Window interface {
	SetTitle(title string)

	GetSize() (width, height int)

	// ShouldClose returns true if window should close
	ShouldClose() bool

	// PollEvents returns the input events seen since the last call.
	PollEvents() []InputEvent

	// RenderFrame presents a completed frame.
	RenderFrame(frame *ppu.FrameBuffer) error

	// SetStatus shows msg over the picture; "" clears it.
	SetStatus(msg string)

	Cleanup() error
}

// Config contains configuration for graphics backends
type Config struct {
	WindowTitle string
	Scale       int
	Fullscreen  bool
	VSync       bool
	Filter      string // "nearest", "linear"

	Headless bool

	// headless snapshots
	OutputDir        string
	SnapshotInterval uint64
	MaxSnapshots     int
}

// Action is what an input event asks for.
type Action int

const (
	ActionButton Action = iota
	ActionQuit
	ActionPause
	ActionReset
	ActionScreenshot
)

// InputEvent represents an input event from the window
type InputEvent struct {
	Action     Action
	Controller int // 0 or 1, for ActionButton
	Button     input.Button
	Pressed    bool
}

// Key is a keyboard key the backends know about.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeySpace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyW
	KeyA
	KeyS
	KeyD
	KeyJ
	KeyK
	KeyX
	KeyZ
	KeyP
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	KeyF10
	KeyF12
)

// keyBindings maps keys to events. Player 1 uses the arrows or WASD with
// J/K (or Z/X); player 2 uses the number row.
var keyBindings = map[Key]InputEvent{
	KeyUp:    {Action: ActionButton, Button: input.ButtonUp},
	KeyDown:  {Action: ActionButton, Button: input.ButtonDown},
	KeyLeft:  {Action: ActionButton, Button: input.ButtonLeft},
	KeyRight: {Action: ActionButton, Button: input.ButtonRight},
	KeyW:     {Action: ActionButton, Button: input.ButtonUp},
	KeyS:     {Action: ActionButton, Button: input.ButtonDown},
	KeyA:     {Action: ActionButton, Button: input.ButtonLeft},
	KeyD:     {Action: ActionButton, Button: input.ButtonRight},
	KeyJ:     {Action: ActionButton, Button: input.ButtonA},
	KeyK:     {Action: ActionButton, Button: input.ButtonB},
	KeyZ:     {Action: ActionButton, Button: input.ButtonA},
	KeyX:     {Action: ActionButton, Button: input.ButtonB},
	KeyEnter: {Action: ActionButton, Button: input.ButtonStart},
	KeySpace: {Action: ActionButton, Button: input.ButtonSelect},

	Key1: {Action: ActionButton, Controller: 1, Button: input.ButtonUp},
	Key2: {Action: ActionButton, Controller: 1, Button: input.ButtonDown},
	Key3: {Action: ActionButton, Controller: 1, Button: input.ButtonLeft},
	Key4: {Action: ActionButton, Controller: 1, Button: input.ButtonRight},
	Key5: {Action: ActionButton, Controller: 1, Button: input.ButtonA},
	Key6: {Action: ActionButton, Controller: 1, Button: input.ButtonB},
	Key7: {Action: ActionButton, Controller: 1, Button: input.ButtonStart},
	Key8: {Action: ActionButton, Controller: 1, Button: input.ButtonSelect},

	KeyEscape: {Action: ActionQuit},
	KeyP:      {Action: ActionPause},
	KeyF10:    {Action: ActionReset},
	KeyF12:    {Action: ActionScreenshot},
}

// KeyEvent translates a key transition into an event. Only button events
// report releases.
func KeyEvent(key Key, pressed bool) (InputEvent, bool) {
	ev, ok := keyBindings[key]
	if !ok {
		return InputEvent{}, false
	}
	if ev.Action != ActionButton && !pressed {
		return InputEvent{}, false
	}
	ev.Pressed = pressed
	return ev, true
}

// BackendType represents different graphics backend types
type BackendType string

const (
	BackendEbitengine BackendType = "ebitengine"
	BackendHeadless   BackendType = "headless"
)

// CreateBackend creates a graphics backend of the specified type
func CreateBackend(backendType BackendType) (Backend, error) {
	switch backendType {
	case BackendEbitengine:
		return NewEbitengineBackend(), nil
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	}
	return nil, errors.Errorf("unknown video backend %q", backendType)
}

// Runner is implemented by windows that own the main loop. Run blocks,
// calling update once per displayed frame, until the window closes or update
// returns an error.
type Runner interface {
	Run(update func() error) error
}
