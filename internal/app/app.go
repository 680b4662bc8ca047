package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"nescore/internal/bus"
	"nescore/internal/cartridge"
	"nescore/internal/debug"
	"nescore/internal/fault"
	"nescore/internal/graphics"
)

const windowTitle = "nescore"

// errStop ends the frame loop without an error.
var errStop = errors.New("stop")

// Application represents the main NES emulator application
type Application struct {
	config *Config

	backend graphics.Backend
	window  graphics.Window

	romPath  string
	bus      *bus.Bus
	emulator *Emulator

	// context of the Run in progress
	ctx context.Context
}

// New creates an application with its graphics backend ready. If the
// Ebitengine backend cannot start, it falls back to headless.
func New(config *Config) (*Application, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	app := &Application{config: config, ctx: context.Background()}
	if err := app.initializeGraphicsBackend(); err != nil {
		return nil, errors.Wrap(err, "graphics")
	}
	return app, nil
}

func (app *Application) initializeGraphicsBackend() error {
	gc := graphics.Config{
		WindowTitle:      windowTitle,
		Scale:            app.config.Headless.Scale,
		Fullscreen:       app.config.Window.Fullscreen,
		VSync:            app.config.Video.VSync,
		Filter:           app.config.Video.Filter,
		Headless:         app.config.Video.Backend == string(graphics.BackendHeadless),
		OutputDir:        app.config.Headless.OutputDir,
		SnapshotInterval: app.config.Headless.SnapshotInterval,
		MaxSnapshots:     app.config.Headless.MaxSnapshots,
	}

	backend, err := graphics.CreateBackend(graphics.BackendType(app.config.Video.Backend))
	if err != nil {
		return err
	}
	if err := backend.Initialize(gc); err != nil {
		if gc.Headless {
			return err
		}
		glog.Warningf("app: %s backend failed (%v), falling back to headless", backend.GetName(), err)
		gc.Headless = true
		backend = graphics.NewHeadlessBackend()
		if err := backend.Initialize(gc); err != nil {
			return err
		}
	}

	width, height := app.config.WindowResolution()
	window, err := backend.CreateWindow(windowTitle, width, height)
	if err != nil {
		return errors.Wrap(err, "creating window")
	}

	app.backend = backend
	app.window = window
	glog.Infof("app: using %s backend", backend.GetName())
	return nil
}

// LoadROM inserts the cartridge at romPath and powers the system on.
func (app *Application) LoadROM(romPath string) error {
	cart, err := cartridge.LoadFromFile(romPath)
	if err != nil {
		return err
	}
	app.romPath = romPath
	app.bus = bus.New(cart)
	app.emulator = NewEmulator(app.bus, app.config)
	app.window.SetTitle(fmt.Sprintf("%s - %s", windowTitle, filepath.Base(romPath)))

	if err := app.bus.Err(); err != nil {
		return err
	}
	glog.Infof("app: loaded %s", romPath)
	return nil
}

// Run drives the frame loop until the window closes, the frame limit is
// reached or ctx is done. Headless runs return the fault that halted the
// system; windowed runs keep the window open with the fault shown.
func (app *Application) Run(ctx context.Context) error {
	if app.emulator == nil {
		return errors.New("no cartridge loaded")
	}
	app.ctx = ctx
	defer func() { app.ctx = context.Background() }()

	var err error
	if runner, ok := app.window.(graphics.Runner); ok {
		err = runner.Run(app.frame)
	} else {
		for err == nil && !app.window.ShouldClose() {
			err = app.frame()
		}
	}

	if err == errStop || err == ErrFrameLimit {
		glog.Infof("app: stopped after %d frames", app.emulator.Frames())
		return nil
	}
	return err
}

// frame handles input, runs one frame and presents it.
func (app *Application) frame() error {
	select {
	case <-app.ctx.Done():
		return errStop
	default:
	}

	if err := app.processInput(); err != nil {
		return err
	}

	if err := app.emulator.Update(); err != nil {
		f, ok := fault.As(err)
		if !ok || app.backend.IsHeadless() {
			return err
		}
		app.window.SetStatus(fmt.Sprintf("HALTED: %s at $%04X", f.Kind, f.Address))
	}

	return app.window.RenderFrame(app.bus.Frame())
}

func (app *Application) processInput() error {
	for _, ev := range app.window.PollEvents() {
		switch ev.Action {
		case graphics.ActionButton:
			app.bus.SetControllerButton(ev.Controller+1, ev.Button, ev.Pressed)
		case graphics.ActionQuit:
			return errStop
		case graphics.ActionPause:
			if app.emulator.TogglePause() {
				app.window.SetStatus("PAUSED")
			} else {
				app.window.SetStatus("")
			}
		case graphics.ActionReset:
			app.emulator.Reset()
			app.window.SetStatus("")
		case graphics.ActionScreenshot:
			if _, err := app.Screenshot(); err != nil {
				glog.Warningf("app: screenshot: %v", err)
			}
		}
	}
	return nil
}

// Screenshot writes the current frame into the screenshot directory.
func (app *Application) Screenshot() (string, error) {
	dumper := debug.NewFrameDumper(app.config.Paths.Screenshots, app.config.Window.Scale)
	return dumper.Dump(app.bus.Frame(), app.bus.FrameCount())
}

// Monitor runs the interactive monitor on the loaded system instead of the
// frame loop.
func (app *Application) Monitor(ctx context.Context, in io.Reader, out io.Writer) error {
	if app.bus == nil {
		return errors.New("no cartridge loaded")
	}
	m := debug.NewMonitor(debug.NewDebugger(app.bus), in, out)
	defer m.Close()
	return m.Run(ctx)
}

// RunScript runs a Lua script against the loaded system.
func (app *Application) RunScript(ctx context.Context, path string, out io.Writer) error {
	if app.bus == nil {
		return errors.New("no cartridge loaded")
	}
	s := debug.NewScript(debug.NewDebugger(app.bus), out)
	defer s.Close()
	return s.RunFile(ctx, path)
}

// Bus returns the running system, or nil before LoadROM.
func (app *Application) Bus() *bus.Bus {
	return app.bus
}

// Emulator returns the frame runner, or nil before LoadROM.
func (app *Application) Emulator() *Emulator {
	return app.emulator
}

// Window returns the output window.
func (app *Application) Window() graphics.Window {
	return app.window
}

// Cleanup releases the window and backend.
func (app *Application) Cleanup() error {
	if app.window != nil {
		if err := app.window.Cleanup(); err != nil {
			return err
		}
	}
	if app.backend != nil {
		return app.backend.Cleanup()
	}
	return nil
}
