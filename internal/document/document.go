// Package document reads and writes tube documents: a YAML description of
// one tube's control points and parameters.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chewxy/math32"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/tubegen/pkg/math"
	"github.com/Faultbox/tubegen/pkg/tube"
)

// Validation errors.
var (
	ErrTooFewPoints     = errors.New("a tube needs at least 2 points")
	ErrNonFinite        = errors.New("non-finite value")
	ErrCoincidentPoints = errors.New("consecutive points coincide")
	ErrZeroRotation     = errors.New("rotation quaternion has zero length")
	ErrRotationAndUp    = errors.New("rotation and up are mutually exclusive")
	ErrInvalidUp        = errors.New("up axis is zero or parallel to the tube")
)

// Document describes one tube.
type Document struct {
	Name      string     `yaml:"name,omitempty"`
	Points    []Point    `yaml:"points"`
	ParamsDoc *ParamsDoc `yaml:"params,omitempty"`
	LOD       *LODDoc    `yaml:"lod,omitempty"`
}

// Point is one control point. Rotation is an x, y, z, w quaternion. Up is
// the alternative: the point faces along the tube (toward the next point, or
// away from the previous one at the end) with its up axis as close to Up as
// that allows. With neither the point uses the identity orientation.
type Point struct {
	Position [3]float32  `yaml:"position,flow"`
	Rotation *[4]float32 `yaml:"rotation,omitempty,flow"`
	Up       *[3]float32 `yaml:"up,omitempty,flow"`
}

// ParamsDoc holds tube parameters. Omitted fields keep the caller's
// defaults.
type ParamsDoc struct {
	Mode        string        `yaml:"mode,omitempty"`
	Sides       *int          `yaml:"sides,omitempty"`
	Radius      *float32      `yaml:"radius,omitempty"`
	Subdivision *int          `yaml:"subdivision,omitempty"`
	Triangles   *int          `yaml:"triangles,omitempty"`
	Spline      string        `yaml:"spline,omitempty"`
	Thickness   *ThicknessDoc `yaml:"thickness,omitempty"`
}

// ThicknessDoc holds wall thickness settings.
type ThicknessDoc struct {
	Enabled bool     `yaml:"enabled"`
	Value   *float32 `yaml:"value,omitempty"`
	Shell   string   `yaml:"shell,omitempty"`
}

// LODDoc holds level-of-detail settings.
type LODDoc struct {
	Count *int     `yaml:"count,omitempty"`
	Step  *float32 `yaml:"step,omitempty"`
}

// New returns a document for the given points and parameters.
func New(name string, points []tube.ControlPoint, p tube.Params) *Document {
	d := &Document{Name: name}
	for _, cp := range points {
		pt := Point{Position: cp.Position.Array()}
		if r := cp.Rotation; !r.IsZero() && r != math.QuatIdentity() {
			pt.Rotation = &[4]float32{r.X, r.Y, r.Z, r.W}
		}
		d.Points = append(d.Points, pt)
	}

	d.ParamsDoc = &ParamsDoc{
		Mode:        p.Mode.String(),
		Sides:       &p.Sides,
		Radius:      &p.Radius,
		Subdivision: &p.Subdivision,
		Triangles:   &p.Triangles,
		Spline:      p.SplineMode.String(),
	}
	if p.HasThickness {
		d.ParamsDoc.Thickness = &ThicknessDoc{Enabled: true, Value: &p.Thickness, Shell: p.ShellType.String()}
	}
	if p.LODCount > 0 {
		d.LOD = &LODDoc{Count: &p.LODCount, Step: &p.LODStep}
	}
	return d
}

// Parse decodes a document. Unknown keys are rejected. The result is not
// validated.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var d Document
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decoding tube document: %w", err)
	}
	return &d, nil
}

// Load reads and decodes a document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tube document: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Save writes the document to path, creating parent directories.
func (d *Document) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating document directory: %w", err)
	}
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding tube document: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every problem in the document at once.
func (d *Document) Validate() error {
	var err error
	if len(d.Points) < 2 {
		err = multierr.Append(err, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(d.Points)))
	}

	for i, p := range d.Points {
		pos := math.Vec3FromArray(p.Position)
		if !pos.IsFinite() {
			err = multierr.Append(err, fmt.Errorf("points[%d].position: %w", i, ErrNonFinite))
		}
		if p.Rotation != nil {
			err = multierr.Append(err, validateRotation(i, *p.Rotation))
		}
		if p.Up != nil {
			if p.Rotation != nil {
				err = multierr.Append(err, fmt.Errorf("points[%d]: %w", i, ErrRotationAndUp))
			}
			err = multierr.Append(err, d.validateUp(i, *p.Up))
		}
		if i > 0 && pos == math.Vec3FromArray(d.Points[i-1].Position) {
			err = multierr.Append(err, fmt.Errorf("points[%d] and points[%d]: %w", i-1, i, ErrCoincidentPoints))
		}
	}

	if d.ParamsDoc != nil {
		_, perr := d.ParamsDoc.apply(tube.DefaultParams())
		err = multierr.Append(err, perr)
		if r := d.ParamsDoc.Radius; r != nil && (math32.IsNaN(*r) || math32.IsInf(*r, 0)) {
			err = multierr.Append(err, fmt.Errorf("params.radius: %w", ErrNonFinite))
		}
	}
	return err
}

func validateRotation(i int, r [4]float32) error {
	q := math.Quat{X: r[0], Y: r[1], Z: r[2], W: r[3]}
	if !q.IsFinite() {
		return fmt.Errorf("points[%d].rotation: %w", i, ErrNonFinite)
	}
	if q.IsZero() {
		return fmt.Errorf("points[%d].rotation: %w", i, ErrZeroRotation)
	}
	return nil
}

func (d *Document) validateUp(i int, up [3]float32) error {
	u := math.Vec3FromArray(up)
	if !u.IsFinite() {
		return fmt.Errorf("points[%d].up: %w", i, ErrNonFinite)
	}
	f := d.heading(i)
	if f == math.Vec3Zero {
		// Reported as too few or coincident points.
		return nil
	}
	if u == math.Vec3Zero || math32.Abs(f.Dot(u.Normalize())) > 1-1e-6 {
		return fmt.Errorf("points[%d].up: %w", i, ErrInvalidUp)
	}
	return nil
}

// heading returns the unit direction of the tube at point i, or zero when
// the document has fewer than 2 points or the neighbor coincides.
func (d *Document) heading(i int) math.Vec3 {
	if len(d.Points) < 2 {
		return math.Vec3Zero
	}
	pos := func(j int) math.Vec3 { return math.Vec3FromArray(d.Points[j].Position) }
	if i == len(d.Points)-1 {
		return pos(i).Sub(pos(i - 1)).Normalize()
	}
	return pos(i + 1).Sub(pos(i)).Normalize()
}

// ControlPoints converts the points. Rotations are normalized and up axes
// become rotations.
func (d *Document) ControlPoints() []tube.ControlPoint {
	pts := make([]tube.ControlPoint, len(d.Points))
	for i, p := range d.Points {
		pts[i] = tube.ControlPoint{Position: math.Vec3FromArray(p.Position), Rotation: math.QuatIdentity()}
		switch {
		case p.Rotation != nil:
			q := math.Quat{X: p.Rotation[0], Y: p.Rotation[1], Z: p.Rotation[2], W: p.Rotation[3]}
			if !q.IsZero() {
				pts[i].Rotation = q.Normalize()
			}
		case p.Up != nil:
			if f := d.heading(i); f != math.Vec3Zero {
				pts[i].Rotation = math.QuatFromBasis(f, math.Vec3FromArray(*p.Up))
			}
		}
	}
	return pts
}

// Params overlays the document's parameters on defaults.
func (d *Document) Params(defaults tube.Params) (tube.Params, error) {
	p := defaults
	if d.ParamsDoc != nil {
		var err error
		if p, err = d.ParamsDoc.apply(p); err != nil {
			return defaults, err
		}
	}
	if d.LOD != nil {
		if d.LOD.Count != nil {
			p.LODCount = *d.LOD.Count
		}
		if d.LOD.Step != nil {
			p.LODStep = *d.LOD.Step
		}
	}
	return p, nil
}

func (pd *ParamsDoc) apply(p tube.Params) (tube.Params, error) {
	var err error
	if pd.Mode != "" {
		mode, merr := tube.ParseParameterMode(pd.Mode)
		err = multierr.Append(err, wrapField("params.mode", merr))
		p.Mode = mode
	}
	if pd.Spline != "" {
		spline, serr := tube.ParseSplineMode(pd.Spline)
		err = multierr.Append(err, wrapField("params.spline", serr))
		p.SplineMode = spline
	}
	if pd.Sides != nil {
		p.Sides = *pd.Sides
	}
	if pd.Radius != nil {
		p.Radius = *pd.Radius
	}
	if pd.Subdivision != nil {
		p.Subdivision = *pd.Subdivision
	}
	if pd.Triangles != nil {
		p.Triangles = *pd.Triangles
	}
	if th := pd.Thickness; th != nil {
		p.HasThickness = th.Enabled
		if th.Value != nil {
			p.Thickness = *th.Value
		}
		if th.Shell != "" {
			shell, terr := tube.ParseShellType(th.Shell)
			err = multierr.Append(err, wrapField("params.thickness.shell", terr))
			p.ShellType = shell
		}
	}
	return p, err
}

func wrapField(field string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", field, err)
}
