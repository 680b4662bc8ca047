//go:build !headless
// +build !headless

package graphics

import (
	"image"
	"image/color"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/pkg/errors"

	"nescore/internal/ppu"
)

// EbitengineBackend implements the Backend interface using Ebitengine
type EbitengineBackend struct {
	initialized bool
	config      Config
}

// EbitengineWindow implements the Window interface for Ebitengine
type EbitengineWindow struct {
	title   string
	width   int
	height  int
	game    *EbitengineGame
	running bool
	events  []InputEvent
	status  string
	update  func() error
}

// EbitengineGame implements ebiten.Game for the NES emulator
type EbitengineGame struct {
	window     *EbitengineWindow
	frameImage *ebiten.Image

	// reused for every frame
	buffer *image.RGBA

	windowWidth  int
	windowHeight int
}

var ebitenKeys = map[ebiten.Key]Key{
	ebiten.KeyEscape:     KeyEscape,
	ebiten.KeyEnter:      KeyEnter,
	ebiten.KeySpace:      KeySpace,
	ebiten.KeyArrowUp:    KeyUp,
	ebiten.KeyArrowDown:  KeyDown,
	ebiten.KeyArrowLeft:  KeyLeft,
	ebiten.KeyArrowRight: KeyRight,
	ebiten.KeyW:          KeyW,
	ebiten.KeyA:          KeyA,
	ebiten.KeyS:          KeyS,
	ebiten.KeyD:          KeyD,
	ebiten.KeyJ:          KeyJ,
	ebiten.KeyK:          KeyK,
	ebiten.KeyX:          KeyX,
	ebiten.KeyZ:          KeyZ,
	ebiten.KeyP:          KeyP,
	ebiten.Key1:          Key1,
	ebiten.Key2:          Key2,
	ebiten.Key3:          Key3,
	ebiten.Key4:          Key4,
	ebiten.Key5:          Key5,
	ebiten.Key6:          Key6,
	ebiten.Key7:          Key7,
	ebiten.Key8:          Key8,
	ebiten.KeyF10:        KeyF10,
	ebiten.KeyF12:        KeyF12,
}

// NewEbitengineBackend creates a new Ebitengine graphics backend
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

// Initialize initializes the Ebitengine backend
func (b *EbitengineBackend) Initialize(config Config) error {
	if b.initialized {
		return errors.New("ebitengine backend already initialized")
	}
	if config.Scale < 1 {
		config.Scale = 1
	}
	b.config = config
	b.initialized = true
	return nil
}

// CreateWindow configures the Ebitengine window. Nothing is shown until Run.
func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, errors.New("backend not initialized")
	}
	if b.config.Headless {
		return nil, errors.New("cannot create window in headless mode")
	}

	game := &EbitengineGame{
		frameImage:   ebiten.NewImage(ppu.Width, ppu.Height),
		buffer:       image.NewRGBA(image.Rect(0, 0, ppu.Width, ppu.Height)),
		windowWidth:  width,
		windowHeight: height,
	}
	window := &EbitengineWindow{
		title:   title,
		width:   width,
		height:  height,
		game:    game,
		running: true,
	}
	game.window = window

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(b.config.VSync)
	ebiten.SetFullscreen(b.config.Fullscreen)
	ebiten.SetScreenFilterEnabled(b.config.Filter == "linear")

	glog.V(2).Infof("graphics: ebitengine window %dx%d", width, height)
	return window, nil
}

// Cleanup releases all Ebitengine resources
func (b *EbitengineBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true if running in headless mode
func (b *EbitengineBackend) IsHeadless() bool {
	return b.config.Headless
}

// GetName returns the backend name
func (b *EbitengineBackend) GetName() string {
	return "Ebitengine"
}

// SetTitle sets the window title
func (w *EbitengineWindow) SetTitle(title string) {
	w.title = title
	ebiten.SetWindowTitle(title)
}

// GetSize returns window dimensions
func (w *EbitengineWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *EbitengineWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents returns the events gathered by the last Update.
func (w *EbitengineWindow) PollEvents() []InputEvent {
	events := w.events
	w.events = nil
	return events
}

// RenderFrame uploads frame, with the status line drawn over it, to the
// texture drawn by the next Draw.
func (w *EbitengineWindow) RenderFrame(frame *ppu.FrameBuffer) error {
	if w.game == nil {
		return errors.New("game not initialized")
	}
	img := w.game.buffer
	frame.CopyRGBA(img.Pix)
	drawStatus(img, w.status)
	w.game.frameImage.WritePixels(img.Pix)
	return nil
}

// SetStatus sets the overlay text shown from the next RenderFrame.
func (w *EbitengineWindow) SetStatus(msg string) {
	w.status = msg
}

// Cleanup releases window resources
func (w *EbitengineWindow) Cleanup() error {
	w.running = false
	return nil
}

// Run starts the Ebitengine game loop. It returns nil when the window is
// closed or a quit key is pressed.
func (w *EbitengineWindow) Run(update func() error) error {
	if w.game == nil {
		return errors.New("game not initialized")
	}
	w.update = update
	err := ebiten.RunGame(w.game)
	w.running = false
	if err == ebiten.Termination {
		return nil
	}
	return err
}

// Update implements ebiten.Game.Update
func (g *EbitengineGame) Update() error {
	w := g.window
	if !w.running {
		return ebiten.Termination
	}

	for ek, key := range ebitenKeys {
		var ev InputEvent
		var ok bool
		switch {
		case inpututil.IsKeyJustPressed(ek):
			ev, ok = KeyEvent(key, true)
		case inpututil.IsKeyJustReleased(ek):
			ev, ok = KeyEvent(key, false)
		}
		if ok {
			w.events = append(w.events, ev)
		}
	}

	if w.update != nil {
		if err := w.update(); err != nil {
			return err
		}
	}
	if !w.running {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.Draw
func (g *EbitengineGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{A: 0xFF})

	scaleX := float64(g.windowWidth) / ppu.Width
	scaleY := float64(g.windowHeight) / ppu.Height
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate((float64(g.windowWidth)-ppu.Width*scale)/2, (float64(g.windowHeight)-ppu.Height*scale)/2)
	screen.DrawImage(g.frameImage, op)
}

// Layout implements ebiten.Game.Layout
func (g *EbitengineGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g.windowWidth = outsideWidth
	g.windowHeight = outsideHeight
	return outsideWidth, outsideHeight
}
