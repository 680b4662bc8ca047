// Command nescore runs an NROM cartridge in a window, headless with PNG
// snapshots, under the interactive monitor, or driven by a Lua script.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"nescore/internal/app"
	"nescore/internal/statsview"
	"nescore/internal/version"
)

const defaultConfigPath = "./config/nescore.json"

var (
	romFile     = flag.String("rom", "", "Path to NES ROM file (or pass it as the first argument)")
	configFile  = flag.String("config", defaultConfigPath, "Path to configuration file")
	saveConfig  = flag.String("save-config", "", "Write the effective configuration to this path and exit")
	headless    = flag.Bool("headless", false, "Run without a window, writing PNG snapshots")
	frames      = flag.Uint64("frames", 0, "Stop after this many frames (0 runs until closed)")
	snapshotDir = flag.String("snapshots", "", "Directory for headless snapshots")
	interval    = flag.Uint64("interval", 0, "Write a headless snapshot every this many frames")
	scale       = flag.Int("scale", 0, "Window scale factor")
	monitor     = flag.Bool("monitor", false, "Start the interactive monitor instead of running")
	script      = flag.String("script", "", "Run a Lua script against the system and exit")
	trace       = flag.Bool("trace", false, "Log every CPU instruction (same as -v=3)")
	stats       = flag.Bool("statsview", false, "Serve runtime statistics (statsview builds only)")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Usage = usage
	flag.Parse()
	defer glog.Flush()

	if *showVersion {
		version.WriteBuildInfo(os.Stdout)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		glog.Errorf("nescore: %v", err)
		glog.Flush()
		fmt.Fprintf(os.Stderr, "nescore: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	config, err := app.LoadConfig(*configFile)
	if err != nil {
		return err
	}
	applyFlags(config)
	if err := config.Validate(); err != nil {
		return err
	}

	if *saveConfig != "" {
		return config.Save(*saveConfig)
	}

	if config.Debug.Trace {
		if err := flag.Set("v", "3"); err != nil {
			return errors.Wrap(err, "enabling trace")
		}
	}
	if config.Debug.Statsview {
		if !statsview.Available() {
			glog.Warningf("nescore: statsview requested but not built in (use -tags statsview)")
		}
		statsview.Launch(os.Stderr)
	}

	rom := *romFile
	if rom == "" {
		rom = flag.Arg(0)
	}
	if rom == "" {
		usage()
		return errors.New("no ROM given")
	}

	application, err := app.New(config)
	if err != nil {
		return err
	}
	defer application.Cleanup()

	if err := application.LoadROM(rom); err != nil {
		return err
	}

	switch {
	case config.Debug.Monitor:
		return application.Monitor(ctx, os.Stdin, os.Stdout)
	case config.Debug.Script != "":
		return application.RunScript(ctx, config.Debug.Script, os.Stdout)
	}
	return application.Run(ctx)
}

// applyFlags lets command line flags override the configuration file.
// Monitor and script sessions never open a window.
func applyFlags(config *app.Config) {
	if *headless {
		config.Video.Backend = "headless"
	}
	if *frames > 0 {
		config.Emulation.FrameLimit = *frames
	}
	if *snapshotDir != "" {
		config.Headless.OutputDir = *snapshotDir
	}
	if *interval > 0 {
		config.Headless.SnapshotInterval = *interval
	}
	if *scale > 0 {
		config.Window.Scale = *scale
	}
	if *monitor {
		config.Debug.Monitor = true
	}
	if *script != "" {
		config.Debug.Script = *script
	}
	if *trace {
		config.Debug.Trace = true
	}
	if *stats {
		config.Debug.Statsview = true
	}

	if config.Debug.Monitor || config.Debug.Script != "" {
		config.Video.Backend = "headless"
		config.Headless.SnapshotInterval = 0
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "nescore %s - NES emulator core\n\n", version.GetVersion())
	fmt.Fprintln(out, "USAGE:")
	fmt.Fprintln(out, "  nescore [options] game.nes")
	fmt.Fprintln(out, "  nescore -headless -frames 600 -interval 60 -snapshots out game.nes")
	fmt.Fprintln(out, "  nescore -monitor game.nes")
	fmt.Fprintln(out, "  nescore -script boot.lua game.nes")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "OPTIONS:")
	flag.PrintDefaults()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "CONTROLS:")
	fmt.Fprintln(out, "  Arrow Keys / WASD   D-Pad")
	fmt.Fprintln(out, "  J / Z               A Button")
	fmt.Fprintln(out, "  K / X               B Button")
	fmt.Fprintln(out, "  Enter               Start")
	fmt.Fprintln(out, "  Space               Select")
	fmt.Fprintln(out, "  1-8                 Player 2 (Up Down Left Right A B Start Select)")
	fmt.Fprintln(out, "  P                   Pause")
	fmt.Fprintln(out, "  F10                 Reset")
	fmt.Fprintln(out, "  F12                 Screenshot")
	fmt.Fprintln(out, "  Escape              Quit")
}
