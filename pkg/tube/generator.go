package tube

import (
	"fmt"

	"go.uber.org/zap"
)

// Result describes the outcome of Generator.Rebuild.
type Result struct {
	// Mesh is owned by the generator and replaced on the next rebuild.
	Mesh             *Mesh
	Params           Params
	Samples          int
	DegenerateFrames int
	Corrections      []Correction
}

// LODInfo names a built level and its triangle count.
type LODInfo struct {
	Name      string
	Sides     int
	Triangles int
}

// Generator keeps control points and parameters and rebuilds the tube and
// its LODs on demand. It is not safe for concurrent use.
type Generator struct {
	params Params
	points []ControlPoint

	builder    *Builder
	lodBuilder *Builder

	samples []TubePoint
	mesh    *Mesh
	lods    *LODResult

	log *zap.Logger
}

// DefaultPoints returns the two points a new tube starts with: the origin
// and 10 units along +Z.
func DefaultPoints() []ControlPoint {
	return []ControlPoint{
		NewControlPoint(0, 0, 0),
		NewControlPoint(0, 0, 10),
	}
}

// NewGenerator returns a generator with the given parameters and the
// default points. A nil logger disables logging.
func NewGenerator(params Params, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		params:     params,
		points:     DefaultPoints(),
		builder:    &Builder{VertexLimit: DefaultVertexLimit, Log: log},
		lodBuilder: &Builder{VertexLimit: DefaultVertexLimit, Log: log},
		log:        log,
	}
}

// Params returns the current parameters, including values synced by the
// last rebuild.
func (g *Generator) Params() Params {
	return g.params
}

// SetParams replaces the parameters. Call Rebuild to apply them.
func (g *Generator) SetParams(p Params) {
	g.params = p
}

// SetVertexLimit sets the vertex limit of every mesh the generator builds.
func (g *Generator) SetVertexLimit(n int) {
	g.builder.VertexLimit = n
	g.lodBuilder.VertexLimit = n
}

// Points returns a copy of the control points.
func (g *Generator) Points() []ControlPoint {
	return append([]ControlPoint(nil), g.points...)
}

// SetPoints replaces the control points with a copy of pts.
func (g *Generator) SetPoints(pts []ControlPoint) {
	g.points = append(g.points[:0:0], pts...)
}

// AddPoint appends a control point.
func (g *Generator) AddPoint(p ControlPoint) {
	g.points = append(g.points, p)
}

// RemoveLastPoint drops the last control point. A tube keeps at least two
// points; it reports whether a point was removed.
func (g *Generator) RemoveLastPoint() bool {
	if len(g.points) <= 2 {
		return false
	}
	g.points = g.points[:len(g.points)-1]
	return true
}

// Samples returns the samples of the last successful rebuild.
func (g *Generator) Samples() []TubePoint {
	return g.samples
}

// Mesh returns the mesh of the last successful rebuild, or nil.
func (g *Generator) Mesh() *Mesh {
	return g.mesh
}

// Rebuild clamps the parameters, samples the curve, syncs sides and triangle
// count according to the parameter mode and builds the mesh. On error the
// previous mesh is kept.
func (g *Generator) Rebuild() (*Result, error) {
	if len(g.points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 control points, got %d", ErrInvalidInput, len(g.points))
	}

	p, corrections := ClampParams(g.params)
	logCorrections(g.log, corrections)

	samples, rep, err := SampleWithReport(g.points, p.SplineMode, p.Subdivision)
	if err != nil {
		return nil, err
	}
	if rep.DegenerateFrames > 0 {
		g.log.Warn("degenerate curve frames, using fallback right axis",
			zap.Int("frames", rep.DegenerateFrames))
	}
	if len(samples) < 2 {
		return nil, fmt.Errorf("%w: curve produced %d samples", ErrInvalidInput, len(samples))
	}

	switch p.Mode {
	case ByTriangles:
		p.Sides = SidesFromTriangleBudget(p.Triangles, p.HasThickness, len(samples))
	default:
		p.Triangles = TrianglesFromSides(p.Sides, p.HasThickness, len(samples))
	}

	mesh, err := g.builder.Build(p.Settings(samples))
	if err != nil {
		return nil, err
	}

	g.params = p
	g.samples = samples
	g.mesh = mesh

	g.log.Debug("tube rebuilt",
		zap.Stringer("spline", p.SplineMode),
		zap.Int("samples", len(samples)),
		zap.Int("sides", p.Sides),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()))

	return &Result{
		Mesh:             mesh,
		Params:           p,
		Samples:          len(samples),
		DegenerateFrames: rep.DegenerateFrames,
		Corrections:      corrections,
	}, nil
}

// BuildLODs runs a sweep over the samples of the last rebuild, using the
// triangle count as the base budget. Previously built LODs are replaced.
func (g *Generator) BuildLODs() (*LODResult, error) {
	g.ClearLODs()
	if len(g.samples) < 2 {
		return nil, fmt.Errorf("%w: rebuild before building LODs", ErrInvalidInput)
	}

	res, err := g.lodBuilder.BuildLODs(g.params.Settings(g.samples), g.params.LODOptions())
	if err != nil {
		return nil, err
	}
	for _, skip := range res.Skipped {
		g.log.Warn("triangle limit reached, LOD skipped",
			zap.Int("level", skip.Level),
			zap.Int("target_triangles", skip.TargetTriangles),
			zap.Int("sides", skip.Sides))
	}
	for _, l := range res.Levels {
		g.log.Debug("LOD built",
			zap.String("name", l.Name()),
			zap.Int("sides", l.Sides),
			zap.Int("triangles", l.Mesh.TriangleCount()))
	}

	g.lods = res
	return res, nil
}

// LODs returns the result of the last sweep, or nil.
func (g *Generator) LODs() *LODResult {
	return g.lods
}

// ClearLODs drops built LODs.
func (g *Generator) ClearLODs() {
	g.lods = nil
}

// LODInfo lists the built levels.
func (g *Generator) LODInfo() []LODInfo {
	if g.lods == nil {
		return nil
	}
	info := make([]LODInfo, 0, len(g.lods.Levels))
	for _, l := range g.lods.Levels {
		info = append(info, LODInfo{Name: l.Name(), Sides: l.Sides, Triangles: l.Mesh.TriangleCount()})
	}
	return info
}
