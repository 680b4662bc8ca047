//go:build headless
// +build headless

package graphics

import (
	"github.com/pkg/errors"

	"nescore/internal/ppu"
)

var errNoEbitengine = errors.New("ebitengine backend not available in headless build")

// EbitengineBackend stub for headless builds
type EbitengineBackend struct{}

// EbitengineWindow stub for headless builds
type EbitengineWindow struct{}

// NewEbitengineBackend creates a stub backend for headless builds
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

func (b *EbitengineBackend) Initialize(config Config) error { return errNoEbitengine }

func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	return nil, errNoEbitengine
}

func (b *EbitengineBackend) Cleanup() error   { return nil }
func (b *EbitengineBackend) IsHeadless() bool { return true }
func (b *EbitengineBackend) GetName() string  { return "Ebitengine-Stub" }

func (w *EbitengineWindow) SetTitle(title string)                    {}
func (w *EbitengineWindow) GetSize() (width, height int)             { return 0, 0 }
func (w *EbitengineWindow) ShouldClose() bool                        { return true }
func (w *EbitengineWindow) PollEvents() []InputEvent                 { return nil }
func (w *EbitengineWindow) RenderFrame(frame *ppu.FrameBuffer) error { return errNoEbitengine }
func (w *EbitengineWindow) SetStatus(msg string)                     {}
func (w *EbitengineWindow) Cleanup() error                           { return nil }
func (w *EbitengineWindow) Run(update func() error) error            { return errNoEbitengine }
