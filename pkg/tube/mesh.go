package tube

import (
	"fmt"

	"github.com/Faultbox/tubegen/pkg/math"
)

// Mesh holds parallel vertex buffers and a triangle index buffer.
// Vertices, Normals and UVs always have the same length.
type Mesh struct {
	Vertices []math.Vec3
	Normals  []math.Vec3
	UVs      []math.Vec2
	Indices  []uint32
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Size returns the extent of the box.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0 || len(m.Indices) == 0
}

// Bounds returns the bounding box of all vertices.
func (m *Mesh) Bounds() Bounds {
	if len(m.Vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		b.Min = math.Vec3{X: min(b.Min.X, v.X), Y: min(b.Min.Y, v.Y), Z: min(b.Min.Z, v.Z)}
		b.Max = math.Vec3{X: max(b.Max.X, v.X), Y: max(b.Max.Y, v.Y), Z: max(b.Max.Z, v.Z)}
	}
	return b
}

// Validate checks the buffer invariants: parallel vertex arrays, whole
// triangles and in-range indices.
func (m *Mesh) Validate() error {
	n := len(m.Vertices)
	if len(m.Normals) != n || len(m.UVs) != n {
		return fmt.Errorf("buffer length mismatch: %d vertices, %d normals, %d uvs",
			n, len(m.Normals), len(m.UVs))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("index %d at %d out of range (vertex count %d)", idx, i, n)
		}
	}
	return nil
}

// Clone returns a deep copy that no builder will overwrite.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Vertices: append([]math.Vec3(nil), m.Vertices...),
		Normals:  append([]math.Vec3(nil), m.Normals...),
		UVs:      append([]math.Vec2(nil), m.UVs...),
		Indices:  append([]uint32(nil), m.Indices...),
	}
}

// Arena owns the buffers a Builder writes into. Buffers are kept between
// builds and reallocated only when the (vertex count, index count) key
// changes.
type Arena struct {
	mesh        Mesh
	vertexCount int
	indexCount  int
	resizes     int
}

// Acquire returns zeroed buffers of exactly the requested sizes. The
// returned mesh is only valid until the next Acquire.
func (a *Arena) Acquire(vertexCount, indexCount int) *Mesh {
	if a.mesh.Vertices == nil || a.vertexCount != vertexCount {
		a.mesh.Vertices = make([]math.Vec3, vertexCount)
		a.mesh.Normals = make([]math.Vec3, vertexCount)
		a.mesh.UVs = make([]math.Vec2, vertexCount)
		a.vertexCount = vertexCount
		a.resizes++
	} else {
		clear(a.mesh.Vertices)
		clear(a.mesh.Normals)
		clear(a.mesh.UVs)
	}

	if a.mesh.Indices == nil || a.indexCount != indexCount {
		a.mesh.Indices = make([]uint32, indexCount)
		a.indexCount = indexCount
		a.resizes++
	} else {
		clear(a.mesh.Indices)
	}
	return &a.mesh
}

// Resizes returns how many buffer allocations the arena has made.
func (a *Arena) Resizes() int {
	return a.resizes
}

// Reset drops the held buffers.
func (a *Arena) Reset() {
	*a = Arena{}
}
