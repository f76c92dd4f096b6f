package tube

// MinSides is the smallest cross-section a tube can have.
const MinSides = 3

// DefaultVertexLimit is the legacy 16-bit index ceiling kept as the default
// builder capacity.
const DefaultVertexLimit = 65000

// Topology holds the buffer sizes of one build.
type Topology struct {
	Sides        int
	Samples      int
	HasThickness bool

	BodyVertices int
	BodyIndices  int
	CapVertices  int
	CapIndices   int
}

// PlanTopology computes buffer sizes for sides around samples rings.
//
// Each ring has sides+1 vertices; the last duplicates the first to close
// the UV seam. A thick tube doubles the body (outer then inner wall) and
// appends four cap rings that reuse wall positions.
func PlanTopology(sides int, hasThickness bool, samples int) Topology {
	t := Topology{Sides: sides, Samples: samples, HasThickness: hasThickness}
	if samples < 2 || sides < 1 {
		return t
	}

	t.BodyVertices = (sides + 1) * samples
	t.BodyIndices = sides * (samples - 1) * 2 * 3
	if hasThickness {
		t.BodyVertices *= 2
		t.BodyIndices *= 2
		// outer + inner ring, start + end cap
		t.CapVertices = (sides + 1) * 2 * 2
		// two triangles per side, two caps
		t.CapIndices = sides * 2 * 3 * 2
	}
	return t
}

// RingSize returns the number of vertices in one ring.
func (t Topology) RingSize() int {
	return t.Sides + 1
}

// VertexCount returns the total vertex count.
func (t Topology) VertexCount() int {
	return t.BodyVertices + t.CapVertices
}

// IndexCount returns the total index count.
func (t Topology) IndexCount() int {
	return t.BodyIndices + t.CapIndices
}

// TriangleCount returns the total triangle count.
func (t Topology) TriangleCount() int {
	return t.IndexCount() / 3
}

// TrianglesFromSides returns the triangle count of a tube with the given
// sides. Thick tubes have two walls and two caps of sides*2 triangles each.
func TrianglesFromSides(sides int, hasThickness bool, samples int) int {
	if samples < 2 {
		return 0
	}
	tris := sides * 2 * (samples - 1)
	if hasThickness {
		tris *= 2
		tris += capTriangles(sides)
	}
	return tris
}

// SidesFromTriangleBudget returns the largest side count whose triangle count
// fits in budget, never less than MinSides. It is the inverse of
// TrianglesFromSides: SidesFromTriangleBudget(TrianglesFromSides(s)) <= s.
func SidesFromTriangleBudget(budget int, hasThickness bool, samples int) int {
	if samples < 2 || budget <= 0 {
		return MinSides
	}

	sides := budget / 2 / (samples - 1)
	if hasThickness {
		sides /= 2
		// Walls are estimated first; shed sides until the caps fit too.
		for sides > 0 && capTriangles(sides) > budget-sides*2*(samples-1)*2 {
			sides--
		}
	}

	if sides < MinSides {
		sides = MinSides
	}
	return sides
}

// MinTriangleCount returns the triangle count of the coarsest tube.
func MinTriangleCount(hasThickness bool, samples int) int {
	return TrianglesFromSides(MinSides, hasThickness, samples)
}

func capTriangles(sides int) int {
	return sides * 2 * 2
}

// nextFaceIndex returns the first vertex of the next body quad after face.
// Quads start at ring*(sides+1)+k for k < sides; the duplicated seam vertex
// (k == sides) never starts a quad, so it is skipped.
func nextFaceIndex(face, sides int) int {
	next := face + 1
	if (next+1)%(sides+1) == 0 {
		next++
	}
	return next
}
