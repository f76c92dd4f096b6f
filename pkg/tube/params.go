package tube

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Parameter bounds. Out-of-range values are corrected to these, never
// rejected.
const (
	MinRadius = 0.1
	// MinWallGap is the smallest inner radius an inward shell may leave.
	MinWallGap     = 0.1
	MinSubdivision = 1
	MinTriangles   = 6
	MaxLODLevels   = 5
	MinLODStep     = 1
)

// Correction records one out-of-range parameter and the value it was
// clamped to.
type Correction struct {
	Field string
	From  float64
	To    float64
}

// String returns "field: from -> to".
func (c Correction) String() string {
	return fmt.Sprintf("%s: %g -> %g", c.Field, c.From, c.To)
}

func logCorrections(log *zap.Logger, cs []Correction) {
	if log == nil {
		return
	}
	for _, c := range cs {
		log.Warn("parameter out of range, clamped",
			zap.String("field", c.Field),
			zap.Float64("from", c.From),
			zap.Float64("to", c.To))
	}
}

// corrections accumulates clamps for one parameter set.
type corrections []Correction

func (cs *corrections) clampInt(field string, v *int, lo, hi int) {
	old := *v
	if *v < lo {
		*v = lo
	}
	if hi >= lo && *v > hi {
		*v = hi
	}
	if *v != old {
		*cs = append(*cs, Correction{Field: field, From: float64(old), To: float64(*v)})
	}
}

func (cs *corrections) minFloat(field string, v *float32, lo float32) {
	if *v < lo {
		*cs = append(*cs, Correction{Field: field, From: float64(*v), To: float64(lo)})
		*v = lo
	}
}

func (cs *corrections) maxFloat(field string, v *float32, hi float32) {
	if *v > hi {
		*cs = append(*cs, Correction{Field: field, From: float64(*v), To: float64(hi)})
		*v = hi
	}
}

// Normalize returns a copy of s with every parameter inside its valid range
// and the list of corrections applied.
func (s Settings) Normalize() (Settings, []Correction) {
	var cs corrections
	cs.clampInt("sides", &s.Sides, MinSides, 0)
	cs.minFloat("radius", &s.Radius, MinRadius)
	cs.minFloat("thickness", &s.Thickness, 0)
	if s.HasThickness && s.ShellType == Inward {
		cs.maxFloat("thickness", &s.Thickness, s.Radius-MinWallGap)
	}
	return s, cs
}

// ParameterMode selects which of sides and triangle budget drives a rebuild.
type ParameterMode int

// Parameter modes.
const (
	// BySides derives the triangle count from Sides.
	BySides ParameterMode = iota
	// ByTriangles derives Sides from the triangle budget.
	ByTriangles
)

// String returns the lowercase mode name.
func (m ParameterMode) String() string {
	switch m {
	case BySides:
		return "sides"
	case ByTriangles:
		return "triangles"
	default:
		return fmt.Sprintf("ParameterMode(%d)", int(m))
	}
}

// ParseParameterMode parses "sides" or "triangles".
func ParseParameterMode(s string) (ParameterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sides", "parameters", "":
		return BySides, nil
	case "triangles", "polycount":
		return ByTriangles, nil
	default:
		return BySides, fmt.Errorf("unknown parameter mode %q", s)
	}
}

// Params is the full user-facing parameter set of a generator.
type Params struct {
	Mode         ParameterMode
	Sides        int
	Radius       float32
	Subdivision  int
	Triangles    int
	SplineMode   SplineMode
	HasThickness bool
	Thickness    float32
	ShellType    ShellType
	LODCount     int
	LODStep      float32
}

// DefaultParams returns the parameters of a freshly created tube.
func DefaultParams() Params {
	return Params{
		Mode:        BySides,
		Sides:       3,
		Radius:      1,
		Subdivision: 1,
		Triangles:   1000,
		SplineMode:  Linear,
		Thickness:   0.1,
		ShellType:   Outward,
		LODStep:     1,
	}
}

// ClampParams corrects out-of-range values and reports each correction.
func ClampParams(p Params) (Params, []Correction) {
	var cs corrections
	cs.clampInt("sides", &p.Sides, MinSides, 0)
	cs.clampInt("subdivision", &p.Subdivision, MinSubdivision, 0)
	cs.minFloat("radius", &p.Radius, MinRadius)
	cs.minFloat("thickness", &p.Thickness, 0)
	if p.ShellType == Inward {
		cs.maxFloat("thickness", &p.Thickness, p.Radius-MinWallGap)
	}
	cs.clampInt("triangles", &p.Triangles, MinTriangles, 0)
	cs.clampInt("lod_count", &p.LODCount, 0, MaxLODLevels)
	cs.minFloat("lod_step", &p.LODStep, MinLODStep)
	return p, cs
}

// Settings returns build settings for the given samples.
func (p Params) Settings(samples []TubePoint) Settings {
	return Settings{
		Sides:        p.Sides,
		Radius:       p.Radius,
		HasThickness: p.HasThickness,
		Thickness:    p.Thickness,
		ShellType:    p.ShellType,
		Samples:      samples,
	}
}

// LODOptions returns the sweep options implied by the parameters.
func (p Params) LODOptions() LODOptions {
	return LODOptions{
		TriangleBudget: p.Triangles,
		Levels:         p.LODCount,
		StepMultiplier: p.LODStep,
	}
}
