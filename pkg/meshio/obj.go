package meshio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Faultbox/tubegen/pkg/tube"
)

// WriteOBJ writes m as a Wavefront OBJ object with positions, texture
// coordinates and normals. Face indices are 1-based and share one index
// across all three attributes.
func WriteOBJ(w io.Writer, m *tube.Mesh, name string) error {
	if m == nil || m.IsEmpty() {
		return ErrEmptyMesh
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("writing OBJ: %w", err)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d vertices, %d triangles\n", m.VertexCount(), m.TriangleCount())
	if name != "" {
		fmt.Fprintf(bw, "o %s\n", name)
	}

	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	for _, uv := range m.UVs {
		fmt.Fprintf(bw, "vt %g %g\n", uv.X, uv.Y)
	}
	for _, n := range m.Normals {
		fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
	}

	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i]+1, m.Indices[i+1]+1, m.Indices[i+2]+1
		fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
	}
	return bw.Flush()
}
