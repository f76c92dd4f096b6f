// Package config handles tubegen configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/tubegen/pkg/tube"
)

// Config holds all tubegen settings.
type Config struct {
	Tube    TubeConfig    `yaml:"tube"`
	LOD     LODConfig     `yaml:"lod"`
	Export  ExportConfig  `yaml:"export"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`

	source string
}

// TubeConfig holds the default tube parameters. Documents override them.
type TubeConfig struct {
	Mode        string          `yaml:"mode"` // sides or triangles
	Sides       int             `yaml:"sides"`
	Radius      float32         `yaml:"radius"`
	Subdivision int             `yaml:"subdivision"`
	Triangles   int             `yaml:"triangles"`
	Spline      string          `yaml:"spline"` // linear or spline
	Thickness   ThicknessConfig `yaml:"thickness"`
	VertexLimit int             `yaml:"vertex_limit"` // 0 disables the check
}

// ThicknessConfig holds wall thickness settings.
type ThicknessConfig struct {
	Enabled bool    `yaml:"enabled"`
	Value   float32 `yaml:"value"`
	Shell   string  `yaml:"shell"` // outward or inward
}

// LODConfig holds level-of-detail settings.
type LODConfig struct {
	Count int     `yaml:"count"`
	Step  float32 `yaml:"step"`
}

// ExportConfig holds mesh output settings.
type ExportConfig struct {
	Format    string  `yaml:"format"` // obj or stl
	OutputDir string  `yaml:"output_dir"`
	UpAxis    string  `yaml:"up_axis"` // y or z
	Scale     float32 `yaml:"scale"`
}

// WatchConfig holds file watcher settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	Format  string `yaml:"format"` // console or json
}

// Default returns a Config with sensible default values.
func Default() *Config {
	p := tube.DefaultParams()
	return &Config{
		Tube: TubeConfig{
			Mode:        p.Mode.String(),
			Sides:       p.Sides,
			Radius:      p.Radius,
			Subdivision: p.Subdivision,
			Triangles:   p.Triangles,
			Spline:      p.SplineMode.String(),
			Thickness: ThicknessConfig{
				Enabled: false,
				Value:   p.Thickness,
				Shell:   p.ShellType.String(),
			},
			VertexLimit: tube.DefaultVertexLimit,
		},
		LOD: LODConfig{
			Count: 0,
			Step:  p.LODStep,
		},
		Export: ExportConfig{
			Format:    "obj",
			OutputDir: ".",
			UpAxis:    "y",
			Scale:     1,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
			Format:  "console",
		},
	}
}

// Params converts the tube and LOD sections into generator parameters.
// Values are not clamped here; the generator does that.
func (c *Config) Params() (tube.Params, error) {
	mode, err := tube.ParseParameterMode(c.Tube.Mode)
	if err != nil {
		return tube.Params{}, fmt.Errorf("tube.mode: %w", err)
	}
	spline, err := tube.ParseSplineMode(c.Tube.Spline)
	if err != nil {
		return tube.Params{}, fmt.Errorf("tube.spline: %w", err)
	}
	shell, err := tube.ParseShellType(c.Tube.Thickness.Shell)
	if err != nil {
		return tube.Params{}, fmt.Errorf("tube.thickness.shell: %w", err)
	}

	return tube.Params{
		Mode:         mode,
		Sides:        c.Tube.Sides,
		Radius:       c.Tube.Radius,
		Subdivision:  c.Tube.Subdivision,
		Triangles:    c.Tube.Triangles,
		SplineMode:   spline,
		HasThickness: c.Tube.Thickness.Enabled,
		Thickness:    c.Tube.Thickness.Value,
		ShellType:    shell,
		LODCount:     c.LOD.Count,
		LODStep:      c.LOD.Step,
	}, nil
}
