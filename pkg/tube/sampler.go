package tube

import (
	"fmt"

	"github.com/Faultbox/tubegen/pkg/math"
)

// degenerateEpsilon is the cross product length below which a right vector
// is considered undefined.
const degenerateEpsilon = 1e-6

// SampleReport carries the conditions the sampler met but did not reject.
type SampleReport struct {
	// DegenerateFrames counts samples whose direction was parallel to the
	// reference up axis (or zero), so the right vector used a fallback axis.
	DegenerateFrames int
}

// Sample turns control points into an ordered sequence of oriented samples.
// subdiv below 1 is treated as 1.
func Sample(points []ControlPoint, mode SplineMode, subdiv int) ([]TubePoint, error) {
	samples, _, err := SampleWithReport(points, mode, subdiv)
	return samples, err
}

// SampleWithReport is Sample plus a report of degenerate frames.
func SampleWithReport(points []ControlPoint, mode SplineMode, subdiv int) ([]TubePoint, SampleReport, error) {
	var rep SampleReport
	if len(points) < 2 {
		return nil, rep, fmt.Errorf("%w: need at least 2 control points, got %d", ErrInvalidInput, len(points))
	}
	if subdiv < 1 {
		subdiv = 1
	}

	switch mode {
	case Spline:
		return sampleSpline(points, subdiv, &rep), rep, nil
	case Linear:
		return sampleLinear(points, subdiv, &rep), rep, nil
	default:
		return nil, rep, fmt.Errorf("%w: %s", ErrInvalidInput, mode)
	}
}

// sampleLinear keeps every control point and inserts subdiv-1 evenly spaced
// samples on each straight segment.
func sampleLinear(points []ControlPoint, subdiv int, rep *SampleReport) []TubePoint {
	last := len(points) - 1

	anchors := make([]TubePoint, len(points))
	for i, p := range points {
		var dir math.Vec3
		switch i {
		case 0:
			dir = points[1].Position.Sub(p.Position).Normalize()
		case last:
			dir = p.Position.Sub(points[i-1].Position).Normalize()
		default:
			// Average incoming and outgoing directions so corners bend smoothly.
			in := p.Position.Sub(points[i-1].Position).Normalize()
			out := points[i+1].Position.Sub(p.Position).Normalize()
			dir = in.Add(out).Normalize()
		}
		anchors[i] = TubePoint{
			Position:       p.Position,
			Direction:      dir,
			Right:          rep.right(p.Up(), dir),
			Normal:         math.Vec3Up,
			IsControlPoint: true,
		}
	}

	samples := make([]TubePoint, 0, last*subdiv+1)
	for i := 0; i < last; i++ {
		samples = append(samples, anchors[i])

		step := anchors[i+1].Position.Sub(anchors[i].Position).Scale(1 / float32(subdiv))
		dir := step.Normalize()
		right := rep.right(math.Vec3Up, dir)
		for j := 1; j < subdiv; j++ {
			samples = append(samples, TubePoint{
				Position:  anchors[i].Position.Add(step.Scale(float32(j))),
				Direction: dir,
				Right:     right,
				Normal:    math.Vec3Up,
			})
		}
	}
	return append(samples, anchors[last])
}

// sampleSpline fits a cubic Hermite segment between each pair of control
// points. Tangents are centered differences (Catmull-Rom), one-sided at the
// ends. Every segment emits subdiv+1 samples; the final one spans [0, 1] so
// the last control point is sampled exactly once.
func sampleSpline(points []ControlPoint, subdiv int, rep *SampleReport) []TubePoint {
	n := len(points)
	steps := subdiv + 1
	samples := make([]TubePoint, 0, (n-1)*steps)

	for i := 0; i < n-1; i++ {
		p0 := points[i].Position
		p1 := points[i+1].Position

		var m0, m1 math.Vec3
		if i == 0 {
			m0 = p1.Sub(p0)
		} else {
			m0 = p1.Sub(points[i-1].Position).Scale(0.5)
		}
		if i < n-2 {
			m1 = points[i+2].Position.Sub(p0).Scale(0.5)
		} else {
			m1 = p1.Sub(p0)
		}

		final := i == n-2
		step := 1 / float32(steps)
		if final {
			step = 1 / float32(subdiv)
		}

		for j := 0; j < steps; j++ {
			t := float32(j) * step
			if final && j == steps-1 {
				t = 1
			}
			tangent := InterpolateTangent(p0, p1, m0, m1, t)
			samples = append(samples, TubePoint{
				Position:       Interpolate(p0, p1, m0, m1, t),
				Direction:      tangent,
				Right:          rep.right(math.Vec3Up, tangent),
				Normal:         math.Vec3Up,
				IsControlPoint: j == 0 || (final && j == steps-1),
			})
		}
	}
	return samples
}

// Interpolate evaluates the cubic Hermite curve from p0 to p1 with end
// tangents m0 and m1 at t in [0, 1].
func Interpolate(p0, p1, m0, m1 math.Vec3, t float32) math.Vec3 {
	t2 := t * t
	t3 := t2 * t
	return p0.Scale(2*t3 - 3*t2 + 1).
		Add(m0.Scale(t3 - 2*t2 + t)).
		Add(p1.Scale(-2*t3 + 3*t2)).
		Add(m1.Scale(t3 - t2))
}

// InterpolateTangent evaluates the derivative of the Hermite curve at t.
func InterpolateTangent(p0, p1, m0, m1 math.Vec3, t float32) math.Vec3 {
	t2 := t * t
	return p0.Scale(6*t2 - 6*t).
		Add(m0.Scale(3*t2 - 4*t + 1)).
		Add(p1.Scale(-6*t2 + 6*t)).
		Add(m1.Scale(3*t2 - 2*t))
}

// right returns normalize(up x dir). When up and dir are parallel (or dir is
// zero) it falls back to forward x dir, then to world right, and counts the
// frame as degenerate.
func (r *SampleReport) right(up, dir math.Vec3) math.Vec3 {
	v, ok := RightVector(up, dir)
	if !ok {
		r.DegenerateFrames++
	}
	return v
}

// RightVector returns normalize(up x dir) and true, or a fallback axis
// orthogonal to dir and false when the cross product is degenerate.
func RightVector(up, dir math.Vec3) (math.Vec3, bool) {
	if c := up.Cross(dir); c.Length() >= degenerateEpsilon {
		return c.Normalize(), true
	}
	if c := math.Vec3Forward.Cross(dir); c.Length() >= degenerateEpsilon {
		return c.Normalize(), false
	}
	return math.Vec3Right, false
}
