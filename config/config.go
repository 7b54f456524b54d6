// Package config provides configuration loading and access for the renderer.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all renderer configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Grid      GridConfig      `yaml:"grid"`
	Render    RenderConfig    `yaml:"render"`
	Scene     SceneConfig     `yaml:"scene"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds output raster and preview window settings.
type ScreenConfig struct {
	Width       int `yaml:"width"`  // Output raster width in pixels
	Height      int `yaml:"height"` // Output raster height in pixels
	TargetFPS   int `yaml:"target_fps"`
	WindowScale int `yaml:"window_scale"` // Preview window pixels per raster pixel
}

// GridConfig holds simulation grid geometry.
type GridConfig struct {
	Width    int     `yaml:"width"`     // Cells along x
	Height   int     `yaml:"height"`    // Cells along y
	CellSize float64 `yaml:"cell_size"` // Physical size of one cell
}

// RenderConfig holds frame rendering parameters.
type RenderConfig struct {
	Mode              string `yaml:"mode"`               // auto, continuous or snapped
	Backend           string `yaml:"backend"`            // scalar or indexed
	Workers           int    `yaml:"workers"`            // 0 = GOMAXPROCS
	ParallelThreshold int    `yaml:"parallel_threshold"` // Rows below which a frame renders on one goroutine
	ChunkRows         int    `yaml:"chunk_rows"`         // Rows per work item (0 = split evenly across workers)
}

// SceneConfig holds demo scene generation parameters.
type SceneConfig struct {
	Seed int64 `yaml:"seed"`

	Pulse PulseConfig  `yaml:"pulse"`
	Disks []DiskConfig `yaml:"disks"`

	ConductivityNoise NoiseConfig `yaml:"conductivity_noise"`
}

// PulseConfig describes a Gaussian wave packet in grid-fraction coordinates.
type PulseConfig struct {
	X          float64 `yaml:"x"`          // Centre, fraction of grid width
	Y          float64 `yaml:"y"`          // Centre, fraction of grid height
	Sigma      float64 `yaml:"sigma"`      // Envelope width in cells
	Amplitude  float64 `yaml:"amplitude"`  // Peak field value
	Wavelength float64 `yaml:"wavelength"` // Carrier wavelength in cells
	Angle      float64 `yaml:"angle"`      // Propagation direction in radians
	Speed      float64 `yaml:"speed"`      // Viewer drift, grid widths per second
}

// DiskConfig describes a circular material inclusion.
type DiskConfig struct {
	X            float64 `yaml:"x"`      // Centre, fraction of grid width
	Y            float64 `yaml:"y"`      // Centre, fraction of grid height
	Radius       float64 `yaml:"radius"` // Fraction of grid width
	Permittivity float64 `yaml:"permittivity"`
	Permeability float64 `yaml:"permeability"`
	Conductivity float64 `yaml:"conductivity"`
}

// NoiseConfig holds simplex noise parameters for the conductivity texture.
type NoiseConfig struct {
	Scale     float64 `yaml:"scale"`     // Noise features per grid width
	Octaves   int     `yaml:"octaves"`   // FBM octaves
	Amplitude float64 `yaml:"amplitude"` // Peak conductivity added (0 disables)
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int  `yaml:"perf_window"` // Frames averaged by the perf collector
	LogFrames  bool `yaml:"log_frames"`  // Log per-frame stats via slog
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	CellSize32 float32 // Grid.CellSize as float32
	ScreenW32  float32 // Screen.Width as float32
	ScreenH32  float32 // Screen.Height as float32
	Workers    int     // Resolved worker count (never 0)
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived(runtime.GOMAXPROCS(0))

	return cfg, nil
}

// Validate reports every invalid setting in one error.
func (c *Config) Validate() error {
	var errs []error
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		errs = append(errs, fmt.Errorf("screen: size %dx%d must be positive", c.Screen.Width, c.Screen.Height))
	}
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		errs = append(errs, fmt.Errorf("grid: size %dx%d must be positive", c.Grid.Width, c.Grid.Height))
	}
	if !(c.Grid.CellSize > 0) {
		errs = append(errs, fmt.Errorf("grid: cell_size %v must be positive", c.Grid.CellSize))
	}
	switch strings.ToLower(c.Render.Mode) {
	case "auto", "continuous", "snapped":
	default:
		errs = append(errs, fmt.Errorf("render: unknown mode %q", c.Render.Mode))
	}
	switch strings.ToLower(c.Render.Backend) {
	case "scalar", "indexed":
	default:
		errs = append(errs, fmt.Errorf("render: unknown backend %q", c.Render.Backend))
	}
	if c.Render.Workers < 0 {
		errs = append(errs, fmt.Errorf("render: workers %d must not be negative", c.Render.Workers))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived(workers int) {
	c.Derived.CellSize32 = float32(c.Grid.CellSize)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	c.Derived.Workers = c.Render.Workers
	if c.Derived.Workers == 0 {
		c.Derived.Workers = workers
	}
	if c.Screen.WindowScale < 1 {
		c.Screen.WindowScale = 1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
