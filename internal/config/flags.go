package config

import (
	"flag"

	"github.com/Faultbox/tubegen/pkg/tube"
)

// Flags holds the command-line overrides shared by every subcommand.
type Flags struct {
	config *string
	debug  *bool
	sides  *int
	radius *float64
	format *string
	out    *string
}

// RegisterFlags registers the config flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		config: fs.String("config", "", "Path to config file"),
		debug:  fs.Bool("debug", false, "Enable debug logging"),
		sides:  fs.Int("sides", 0, "Number of sides around the tube"),
		radius: fs.Float64("radius", 0, "Tube radius"),
		format: fs.String("format", "", "Export format (obj, stl)"),
		out:    fs.String("out", "", "Output directory"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.config
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if *f.sides > 0 {
		cfg.Tube.Sides = *f.sides
		cfg.Tube.Mode = "sides"
	}
	if *f.radius > 0 {
		cfg.Tube.Radius = float32(*f.radius)
	}
	if *f.format != "" {
		cfg.Export.Format = *f.format
	}
	if *f.out != "" {
		cfg.Export.OutputDir = *f.out
	}
}

// OverrideParams applies the tube flags to p. Documents override the config
// file, and explicit flags override documents.
func (f *Flags) OverrideParams(p tube.Params) tube.Params {
	if f == nil {
		return p
	}
	if *f.sides > 0 {
		p.Sides = *f.sides
		p.Mode = tube.BySides
	}
	if *f.radius > 0 {
		p.Radius = float32(*f.radius)
	}
	return p
}
