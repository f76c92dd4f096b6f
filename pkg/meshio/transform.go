package meshio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"github.com/Faultbox/tubegen/pkg/math"
	"github.com/Faultbox/tubegen/pkg/tube"
)

// ErrInvalidScale is returned for non-positive or non-finite export scales.
var ErrInvalidScale = errors.New("export scale must be a positive number")

// UpAxis is the axis a mesh file treats as up. Tubes are built with +Y up.
type UpAxis string

// Supported up axes.
const (
	UpY UpAxis = "y"
	UpZ UpAxis = "z"
)

// ParseUpAxis parses an up axis name. Empty means UpY.
func ParseUpAxis(s string) (UpAxis, error) {
	switch UpAxis(strings.ToLower(strings.TrimSpace(s))) {
	case "", UpY:
		return UpY, nil
	case UpZ:
		return UpZ, nil
	default:
		return "", fmt.Errorf("unknown up axis %q", s)
	}
}

// ExportTransform returns the matrix taking tube space to a file with the
// given up axis, uniformly scaled.
func ExportTransform(up UpAxis, scale float32) (math.Mat4, error) {
	if !(scale > 0) || math32.IsInf(scale, 1) {
		return math.Mat4{}, fmt.Errorf("%w: %g", ErrInvalidScale, scale)
	}
	m := math.Scale(scale, scale, scale)
	if up == UpZ {
		m = math.RotateX(math.Pi / 2).Mul(m)
	}
	return m, nil
}

// Transform returns a transformed copy of m. Normals use the inverse
// transpose and are renormalized; winding is reversed when xf mirrors.
func Transform(m *tube.Mesh, xf math.Mat4) *tube.Mesh {
	out := m.Clone()
	nm := xf.NormalMatrix()
	for i, v := range out.Vertices {
		out.Vertices[i] = xf.TransformPoint(v)
	}
	for i, n := range out.Normals {
		out.Normals[i] = nm.TransformDirection(n).Normalize()
	}
	if xf.Det3() < 0 {
		for t := 0; t+2 < len(out.Indices); t += 3 {
			out.Indices[t+1], out.Indices[t+2] = out.Indices[t+2], out.Indices[t+1]
		}
	}
	return out
}
