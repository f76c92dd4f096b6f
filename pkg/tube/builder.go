package tube

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/tubegen/pkg/math"
)

// Builder turns samples into mesh buffers. It reuses its buffers between
// builds, so a returned Mesh is only valid until the next Build; Clone it to
// keep it.
type Builder struct {
	// VertexLimit caps the vertex count of one mesh. Zero or less disables
	// the check.
	VertexLimit int
	// Log receives a warning for every clamped setting. Nil disables it.
	Log *zap.Logger

	arena Arena
}

// NewBuilder returns a builder with the default vertex limit.
func NewBuilder() *Builder {
	return &Builder{VertexLimit: DefaultVertexLimit}
}

// Build generates a mesh with a throwaway builder. The result is owned by
// the caller.
func Build(settings Settings) (*Mesh, error) {
	return NewBuilder().Build(settings)
}

// Arena returns the builder's buffer arena.
func (b *Builder) Arena() *Arena {
	return &b.arena
}

// Build emits the outer wall, and for thick tubes the inner wall and both
// end caps. Out-of-range settings are clamped first (see Settings.Normalize)
// and each clamp is logged.
func (b *Builder) Build(settings Settings) (*Mesh, error) {
	s, cs := settings.Normalize()
	logCorrections(b.Log, cs)
	if len(s.Samples) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidInput, len(s.Samples))
	}

	topo := PlanTopology(s.Sides, s.HasThickness, len(s.Samples))
	if b.VertexLimit > 0 && topo.VertexCount() > b.VertexLimit {
		return nil, fmt.Errorf("%w: %d vertices, limit %d", ErrCapacityExceeded, topo.VertexCount(), b.VertexLimit)
	}

	w := meshWriter{
		mesh:     b.arena.Acquire(topo.VertexCount(), topo.IndexCount()),
		settings: s,
		topo:     topo,
	}

	w.writeWall(true)
	if s.HasThickness {
		w.writeWall(false)
	}
	w.writeBodyTriangles()
	if s.HasThickness {
		w.mirrorInnerWall()
		w.writeCaps()
	}
	return w.mesh, nil
}

// meshWriter fills pre-sized buffers for one build.
type meshWriter struct {
	mesh     *Mesh
	settings Settings
	topo     Topology

	vertex int // next vertex slot
	index  int // next index slot
}

// writeWall emits one ring of sides+1 vertices per sample.
func (w *meshWriter) writeWall(outer bool) {
	s := w.settings
	sides := s.Sides
	offset := w.settings.wallOffset(outer)
	// Single walls face outward; the inner wall of a shell faces the axis.
	inward := s.HasThickness && !outer

	for i, sample := range s.Samples {
		center := sample.Position
		along := float32(i) / float32(len(s.Samples))

		for k := 0; k <= sides; k++ {
			angle := float32(k) / float32(sides)
			rot := math.QuatFromAxisAngle(sample.Direction, angle*2*math.Pi)
			pos := center.Add(rot.Rotate(sample.Right).Scale(offset))

			normal := pos.Sub(center)
			if inward {
				normal = normal.Neg()
			}

			w.mesh.Vertices[w.vertex] = pos
			w.mesh.Normals[w.vertex] = normal.Normalize()
			w.mesh.UVs[w.vertex] = math.Vec2{X: angle, Y: 1 - along}
			w.vertex++
		}
	}
}

// writeBodyTriangles emits two triangles for every quad between consecutive
// rings of the outer wall.
func (w *meshWriter) writeBodyTriangles() {
	sides := w.settings.Sides
	ring := uint32(sides + 1)
	quads := sides * (len(w.settings.Samples) - 1)

	face := 0
	for q := 0; q < quads; q++ {
		f := uint32(face)
		w.triangle(f, f+1, f+ring)
		w.triangle(f+1, f+ring+1, f+ring)
		face = nextFaceIndex(face, sides)
	}
}

// mirrorInnerWall copies the outer wall triangles onto the inner wall
// vertices with reversed winding.
func (w *meshWriter) mirrorInnerWall() {
	idx := w.mesh.Indices
	vertexHalf := uint32(w.topo.BodyVertices / 2)
	trisHalf := w.topo.BodyIndices / 2

	for i := 0; i < trisHalf; i += 3 {
		idx[trisHalf+i] = idx[i+2] + vertexHalf
		idx[trisHalf+i+1] = idx[i+1] + vertexHalf
		idx[trisHalf+i+2] = idx[i] + vertexHalf
	}
	w.index = w.topo.BodyIndices
}

// writeCaps closes both ends of a shell with an annulus between the outer
// and inner wall rings. Cap vertices copy wall positions; only normals and
// UVs differ.
func (w *meshWriter) writeCaps() {
	s := w.settings
	ring := s.Sides + 1
	body := w.topo.BodyVertices
	half := body / 2
	first := s.Samples[0].Direction.Normalize()
	last := s.Samples[len(s.Samples)-1].Direction.Normalize()
	ratio := s.capRatio()

	w.vertex = body
	w.copyCapRing(0, first.Neg(), 1, 0)            // start, outer
	w.copyCapRing(half, first.Neg(), ratio, 0)     // start, inner
	w.copyCapRing(half-ring, last, 1, math.Pi)     // end, outer
	w.copyCapRing(body-ring, last, ratio, math.Pi) // end, inner

	start := uint32(body)
	end := uint32(body + w.topo.CapVertices/2)
	r := uint32(ring)
	for k := uint32(0); k < uint32(s.Sides); k++ {
		w.triangle(start+k+r, start+k+1, start+k)
		w.triangle(start+k+1, start+k+r, start+k+r+1)
	}
	for k := uint32(0); k < uint32(s.Sides); k++ {
		w.triangle(end+k, end+k+1, end+k+r)
		w.triangle(end+k+r+1, end+k+r, end+k+1)
	}
}

// copyCapRing appends one cap ring whose positions are the wall ring starting
// at src. UVs lie on a disc of radius 0.5*scale around (0.5, 0.5).
func (w *meshWriter) copyCapRing(src int, normal math.Vec3, scale, phase float32) {
	sides := w.settings.Sides
	center := math.Vec2{X: 0.5, Y: 0.5}
	for k := 0; k <= sides; k++ {
		angle := float32(k)/float32(sides)*2*math.Pi + phase

		w.mesh.Vertices[w.vertex] = w.mesh.Vertices[src+k]
		w.mesh.Normals[w.vertex] = normal
		w.mesh.UVs[w.vertex] = math.Vec2{X: 0.5 * scale}.Rotate(-angle).Add(center)
		w.vertex++
	}
}

func (w *meshWriter) triangle(a, b, c uint32) {
	w.mesh.Indices[w.index] = a
	w.mesh.Indices[w.index+1] = b
	w.mesh.Indices[w.index+2] = c
	w.index += 3
}
