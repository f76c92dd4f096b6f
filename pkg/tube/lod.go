package tube

import "fmt"

// LODOptions configures a level-of-detail sweep.
type LODOptions struct {
	// TriangleBudget is the budget of the base mesh.
	TriangleBudget int
	// Levels is the number of reduced levels to attempt.
	Levels int
	// StepMultiplier divides the budget: level i targets
	// TriangleBudget / (StepMultiplier * i).
	StepMultiplier float32
}

// Normalize clamps the options into their valid ranges.
func (o LODOptions) Normalize() (LODOptions, []Correction) {
	var cs corrections
	cs.clampInt("lod_count", &o.Levels, 0, MaxLODLevels)
	cs.minFloat("lod_step", &o.StepMultiplier, MinLODStep)
	return o, cs
}

// TargetTriangles returns the triangle budget of level (1-based).
func (o LODOptions) TargetTriangles(level int) int {
	return int(float32(o.TriangleBudget) / (o.StepMultiplier * float32(level)))
}

// LODLevel is one accepted reduced mesh.
type LODLevel struct {
	Level           int
	Sides           int
	TargetTriangles int
	Mesh            *Mesh
}

// Name returns "lodN".
func (l LODLevel) Name() string {
	return fmt.Sprintf("lod%d", l.Level)
}

// LODSkip records a level whose budget could not lower the side count.
type LODSkip struct {
	Level           int
	Sides           int
	TargetTriangles int
}

// LODResult is the outcome of a sweep. Skipped levels are not errors.
type LODResult struct {
	BaseSides int
	Levels    []LODLevel
	Skipped   []LODSkip
	// Corrections lists the settings and options clamped before the sweep.
	Corrections []Correction
}

// Shortfall returns how many requested levels were not produced.
func (r *LODResult) Shortfall() int {
	return len(r.Skipped)
}

// BuildLODs builds reduced meshes with a throwaway builder.
func BuildLODs(settings Settings, opts LODOptions) (*LODResult, error) {
	return NewBuilder().BuildLODs(settings, opts)
}

// BuildLODs builds up to opts.Levels meshes with strictly decreasing side
// counts, starting below settings.Sides. A level whose budget does not
// reduce the side count is skipped and the sweep continues with the same
// watermark. Accepted meshes are cloned and owned by the result.
func (b *Builder) BuildLODs(settings Settings, opts LODOptions) (*LODResult, error) {
	base, cs := settings.Normalize()
	if len(base.Samples) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidInput, len(base.Samples))
	}
	opts, ocs := opts.Normalize()
	cs = append(cs, ocs...)
	logCorrections(b.Log, cs)

	res := &LODResult{BaseSides: base.Sides, Corrections: cs}
	prevSides := base.Sides
	for level := 1; level <= opts.Levels; level++ {
		target := opts.TargetTriangles(level)
		sides := SidesFromTriangleBudget(target, base.HasThickness, len(base.Samples))
		if sides >= prevSides {
			res.Skipped = append(res.Skipped, LODSkip{Level: level, Sides: sides, TargetTriangles: target})
			continue
		}

		lod := base
		lod.Sides = sides
		m, err := b.Build(lod)
		if err != nil {
			return nil, fmt.Errorf("lod%d: %w", level, err)
		}
		res.Levels = append(res.Levels, LODLevel{
			Level:           level,
			Sides:           sides,
			TargetTriangles: target,
			Mesh:            m.Clone(),
		})
		prevSides = sides
	}
	return res, nil
}
