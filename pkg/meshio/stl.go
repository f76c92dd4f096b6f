package meshio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/unixpickle/model3d/model3d"

	"github.com/Faultbox/tubegen/pkg/encoding"
	"github.com/Faultbox/tubegen/pkg/math"
	"github.com/Faultbox/tubegen/pkg/tube"
)

// ErrInvalidSTLData is returned when a file is neither valid binary nor
// valid ASCII STL.
var ErrInvalidSTLData = errors.New("invalid STL data")

const (
	stlHeaderSize = 80
	stlFacetSize  = 4*3*4 + 2 // normal, three vertices, attribute byte count
)

// Facet is one STL triangle.
type Facet struct {
	Normal   math.Vec3
	Vertices [3]math.Vec3
}

// STLMesh is a parsed STL file.
type STLMesh struct {
	Header string
	Facets []Facet
}

// TriangleCount returns the number of facets.
func (s *STLMesh) TriangleCount() int {
	return len(s.Facets)
}

// Bounds returns the bounding box of all facet vertices.
func (s *STLMesh) Bounds() tube.Bounds {
	if len(s.Facets) == 0 {
		return tube.Bounds{}
	}
	b := tube.Bounds{Min: s.Facets[0].Vertices[0], Max: s.Facets[0].Vertices[0]}
	for _, f := range s.Facets {
		for _, v := range f.Vertices {
			b.Min = math.Vec3{X: min(b.Min.X, v.X), Y: min(b.Min.Y, v.Y), Z: min(b.Min.Z, v.Z)}
			b.Max = math.Vec3{X: max(b.Max.X, v.X), Y: max(b.Max.Y, v.Y), Z: max(b.Max.Z, v.Z)}
		}
	}
	return b
}

// ToMesh welds identical facet vertices into an indexed mesh. Vertex normals
// are the normalized sum of the facet normals around them; UVs are zero.
func (s *STLMesh) ToMesh() *tube.Mesh {
	m := &tube.Mesh{Indices: make([]uint32, 0, len(s.Facets)*3)}
	index := make(map[math.Vec3]uint32)

	for _, f := range s.Facets {
		for _, v := range f.Vertices {
			i, ok := index[v]
			if !ok {
				i = uint32(len(m.Vertices))
				index[v] = i
				m.Vertices = append(m.Vertices, v)
				m.Normals = append(m.Normals, math.Vec3{})
				m.UVs = append(m.UVs, math.Vec2{})
			}
			m.Normals[i] = m.Normals[i].Add(f.Normal)
			m.Indices = append(m.Indices, i)
		}
	}
	for i, n := range m.Normals {
		m.Normals[i] = n.Normalize()
	}
	return m
}

// WriteSTL writes m as binary STL. Facet normals are computed from the
// triangle winding. The header is stored as Latin-1 and truncated to 80
// bytes.
func WriteSTL(w io.Writer, m *tube.Mesh, header string) error {
	if m == nil || m.IsEmpty() {
		return ErrEmptyMesh
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("writing STL: %w", err)
	}

	data := model3d.EncodeSTL(triangles(m))
	copy(data[:stlHeaderSize], encoding.UTF8ToFixedString(header, stlHeaderSize))
	_, err := w.Write(data)
	return err
}

// ParseSTL parses a binary or ASCII STL file from raw bytes.
func ParseSTL(data []byte) (*STLMesh, error) {
	tris, err := model3d.ReadSTL(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSTLData, err)
	}

	s := &STLMesh{
		Header: stlHeader(data),
		Facets: make([]Facet, len(tris)),
	}
	for i, t := range tris {
		s.Facets[i] = facet(t)
	}
	return s, nil
}

// ReadSTL reads an STL stream.
func ReadSTL(r io.Reader) (*STLMesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading STL: %w", err)
	}
	return ParseSTL(data)
}

// ReadSTLFile parses an STL file from disk.
func ReadSTLFile(path string) (*STLMesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading STL file: %w", err)
	}
	return ParseSTL(data)
}

// stlHeader returns the Latin-1 header of a binary file, or the name on the
// "solid" line of an ASCII one.
func stlHeader(data []byte) string {
	if len(data) >= stlHeaderSize+4 {
		count := int(binary.LittleEndian.Uint32(data[stlHeaderSize:]))
		if len(data) == stlHeaderSize+4+count*stlFacetSize {
			return encoding.FixedStringToUTF8(data[:stlHeaderSize])
		}
	}
	line, _, _ := bytes.Cut(bytes.TrimLeft(data, " \t\r\n"), []byte("\n"))
	name, ok := bytes.CutPrefix(bytes.TrimSpace(line), []byte("solid"))
	if !ok {
		return ""
	}
	return string(bytes.TrimSpace(name))
}

func triangles(m *tube.Mesh) []*model3d.Triangle {
	tris := make([]*model3d.Triangle, m.TriangleCount())
	for t := range tris {
		var tri model3d.Triangle
		for v := range tri {
			p := m.Vertices[m.Indices[t*3+v]]
			tri[v] = model3d.XYZ(float64(p.X), float64(p.Y), float64(p.Z))
		}
		tris[t] = &tri
	}
	return tris
}

func facet(t *model3d.Triangle) Facet {
	var f Facet
	for v, c := range t {
		f.Vertices[v] = math.Vec3{X: float32(c.X), Y: float32(c.Y), Z: float32(c.Z)}
	}
	n := t.Normal()
	f.Normal = math.Vec3{X: float32(n.X), Y: float32(n.Y), Z: float32(n.Z)}
	if !f.Normal.IsFinite() {
		f.Normal = math.Vec3{}
	}
	return f
}
