// Package tube generates pipe-shaped triangle meshes that follow an ordered
// sequence of control points.
//
// The pipeline has three stages. Sample turns control points into oriented
// curve samples. PlanTopology sizes the mesh buffers for a given number of
// sides. Builder.Build emits vertices, normals, UVs and triangle indices for
// the outer wall, the optional inner wall and the end caps. BuildLODs repeats
// the last two stages under shrinking triangle budgets.
//
// Every build is a pure function of its inputs. Nothing here is safe for
// concurrent use of a single Builder; use one Builder per goroutine.
package tube

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/tubegen/pkg/math"
)

// Tube errors.
var (
	// ErrInvalidInput is returned when there are fewer than two control
	// points or fewer than two samples: the tube has no length.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCapacityExceeded is returned when a mesh would need more vertices
	// than the builder's vertex limit.
	ErrCapacityExceeded = errors.New("vertex capacity exceeded")
)

// ControlPoint is one caller-owned input point: a position and an
// orientation basis.
type ControlPoint struct {
	Position math.Vec3
	Rotation math.Quat
}

// NewControlPoint returns a control point with identity orientation.
func NewControlPoint(x, y, z float32) ControlPoint {
	return ControlPoint{Position: math.Vec3{X: x, Y: y, Z: z}, Rotation: math.QuatIdentity()}
}

func (p ControlPoint) rotation() math.Quat {
	if p.Rotation.IsZero() {
		return math.QuatIdentity()
	}
	return p.Rotation.Normalize()
}

// Up returns the local +Y axis.
func (p ControlPoint) Up() math.Vec3 {
	return p.rotation().Rotate(math.Vec3Up)
}

// TubePoint is one oriented sample along the curve.
type TubePoint struct {
	Position math.Vec3
	// Direction is the curve tangent. It is not necessarily unit length.
	Direction math.Vec3
	// Right is unit length and perpendicular to Direction.
	Right  math.Vec3
	Normal math.Vec3
	// IsControlPoint marks samples that coincide with an input point.
	IsControlPoint bool
}

// SplineMode selects how samples are interpolated between control points.
type SplineMode int

// Spline modes.
const (
	Linear SplineMode = iota
	Spline
)

// String returns the lowercase mode name.
func (m SplineMode) String() string {
	switch m {
	case Linear:
		return "linear"
	case Spline:
		return "spline"
	default:
		return fmt.Sprintf("SplineMode(%d)", int(m))
	}
}

// ParseSplineMode parses "linear" or "spline".
func ParseSplineMode(s string) (SplineMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "":
		return Linear, nil
	case "spline":
		return Spline, nil
	default:
		return Linear, fmt.Errorf("unknown spline mode %q", s)
	}
}

// ShellType selects which wall of a thick tube sits at the nominal radius.
type ShellType int

// Shell types.
const (
	// Outward keeps the inner wall at the radius and grows the outer wall.
	Outward ShellType = iota
	// Inward keeps the outer wall at the radius and shrinks the inner wall.
	Inward
)

// String returns the lowercase shell name.
func (s ShellType) String() string {
	switch s {
	case Outward:
		return "outward"
	case Inward:
		return "inward"
	default:
		return fmt.Sprintf("ShellType(%d)", int(s))
	}
}

// ParseShellType parses "outward" or "inward".
func ParseShellType(s string) (ShellType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "outward", "":
		return Outward, nil
	case "inward":
		return Inward, nil
	default:
		return Outward, fmt.Errorf("unknown shell type %q", s)
	}
}

// Settings is the input of a single mesh build. It is not modified by the
// builder.
type Settings struct {
	Sides        int
	Radius       float32
	HasThickness bool
	Thickness    float32
	ShellType    ShellType
	Samples      []TubePoint
}

// wallOffset returns the ring radius of the outer or inner wall.
func (s Settings) wallOffset(outer bool) float32 {
	if !s.HasThickness {
		return s.Radius
	}
	switch s.ShellType {
	case Inward:
		if outer {
			return s.Radius
		}
		return s.Radius - s.Thickness
	default:
		if outer {
			return s.Radius + s.Thickness
		}
		return s.Radius
	}
}

// capRatio is the inner-to-outer radius ratio used to scale cap UVs.
func (s Settings) capRatio() float32 {
	outer := s.wallOffset(true)
	if outer == 0 {
		return 1
	}
	return s.wallOffset(false) / outer
}
