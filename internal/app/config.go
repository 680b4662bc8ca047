// Package app runs a cartridge: configuration, the frame loop and the
// connection between the system bus and a graphics backend.
package app

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"nescore/internal/ppu"
)

// Config holds all application configuration
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Headless  HeadlessConfig  `json:"headless"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	configPath string
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Scale      int  `json:"scale"` // NES resolution multiplier
	Fullscreen bool `json:"fullscreen"`
}

// VideoConfig contains video rendering configuration
type VideoConfig struct {
	Backend string `json:"backend"` // "ebitengine", "headless"
	VSync   bool   `json:"vsync"`
	Filter  string `json:"filter"` // "nearest", "linear"
}

// HeadlessConfig controls PNG snapshots written by the headless backend.
type HeadlessConfig struct {
	OutputDir        string `json:"output_dir"`
	SnapshotInterval uint64 `json:"snapshot_interval"` // frames; 0 disables
	MaxSnapshots     int    `json:"max_snapshots"`     // 0 means no cap
	Scale            int    `json:"scale"`
}

// EmulationConfig contains emulation-specific settings
type EmulationConfig struct {
	Region     string `json:"region"`      // only "NTSC"
	FrameLimit uint64 `json:"frame_limit"` // stop after this many frames; 0 runs forever
}

// DebugConfig contains debugging and development options
type DebugConfig struct {
	Monitor   bool   `json:"monitor"`
	Trace     bool   `json:"trace"`
	Script    string `json:"script"`
	Statsview bool   `json:"statsview"`
}

// PathsConfig contains file and directory paths
type PathsConfig struct {
	ROMs        string `json:"roms"`
	Screenshots string `json:"screenshots"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Scale: 2,
		},
		Video: VideoConfig{
			Backend: "ebitengine",
			VSync:   true,
			Filter:  "nearest",
		},
		Headless: HeadlessConfig{
			OutputDir:        "./frames",
			SnapshotInterval: 60,
			Scale:            1,
		},
		Emulation: EmulationConfig{
			Region: "NTSC",
		},
		Paths: PathsConfig{
			ROMs:        "./roms",
			Screenshots: "./screenshots",
		},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error;
// the defaults are returned and a warning logged.
func LoadConfig(path string) (*Config, error) {
	c := NewConfig()
	c.configPath = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		glog.Warningf("app: config %s not found, using defaults", path)
		return c, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	if err := json.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}

// Save writes the configuration as indented JSON, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "writing config")
	}
	c.configPath = path
	return nil
}

// Validate rejects settings the emulator cannot honour. Out-of-range scales
// are clamped rather than rejected.
func (c *Config) Validate() error {
	if c.Window.Scale < 1 || c.Window.Scale > 8 {
		glog.Warningf("app: window scale %d out of range, using 2", c.Window.Scale)
		c.Window.Scale = 2
	}
	if c.Headless.Scale < 1 || c.Headless.Scale > 8 {
		c.Headless.Scale = 1
	}

	switch c.Video.Backend {
	case "ebitengine", "headless":
	default:
		return errors.Errorf("unknown video backend %q", c.Video.Backend)
	}
	switch c.Video.Filter {
	case "nearest", "linear":
	default:
		return errors.Errorf("unknown filter %q", c.Video.Filter)
	}
	if c.Emulation.Region != "NTSC" {
		return errors.Errorf("unsupported region %q", c.Emulation.Region)
	}
	if c.Headless.MaxSnapshots < 0 {
		return errors.Errorf("negative snapshot cap %d", c.Headless.MaxSnapshots)
	}
	return nil
}

// Path returns the file the configuration was loaded from or saved to.
func (c *Config) Path() string {
	return c.configPath
}

// WindowResolution returns the window size for the configured scale.
func (c *Config) WindowResolution() (int, int) {
	return ppu.Width * c.Window.Scale, ppu.Height * c.Window.Scale
}
