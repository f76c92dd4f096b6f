package tube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLODsStrictlyDecreasing(t *testing.T) {
	samples := straightSamples(t, 5)
	settings := Settings{Sides: 24, Radius: 1, Samples: samples}
	opts := LODOptions{
		TriangleBudget: TrianglesFromSides(24, false, 5),
		Levels:         3,
		StepMultiplier: 1.5,
	}

	res, err := BuildLODs(settings, opts)
	require.NoError(t, err)
	require.Len(t, res.Levels, 3)
	assert.Zero(t, res.Shortfall())
	assert.Equal(t, 24, res.BaseSides)

	wantSides := []int{16, 8, 5}
	wantTris := []int{128, 64, 40}
	prevSides, prevTris := settings.Sides, opts.TriangleBudget
	for i, l := range res.Levels {
		assert.Equal(t, i+1, l.Level)
		assert.Equal(t, wantSides[i], l.Sides)
		assert.Equal(t, wantTris[i], l.Mesh.TriangleCount())
		assert.Less(t, l.Sides, prevSides)
		assert.Less(t, l.Mesh.TriangleCount(), prevTris)
		assert.LessOrEqual(t, l.Mesh.TriangleCount(), l.TargetTriangles)
		assert.NoError(t, l.Mesh.Validate())
		prevSides, prevTris = l.Sides, l.Mesh.TriangleCount()
	}
	assert.Equal(t, "lod1", res.Levels[0].Name())
	assert.Equal(t, "lod3", res.Levels[2].Name())
}

func TestBuildLODsThick(t *testing.T) {
	samples := straightSamples(t, 5)
	settings := Settings{Sides: 12, Radius: 1, HasThickness: true, Thickness: 0.1, Samples: samples}
	opts := LODOptions{TriangleBudget: TrianglesFromSides(12, true, 5), Levels: 2, StepMultiplier: 2}

	res, err := BuildLODs(settings, opts)
	require.NoError(t, err)
	require.Len(t, res.Levels, 2)

	assert.Equal(t, 6, res.Levels[0].Sides)
	assert.Equal(t, 3, res.Levels[1].Sides)
	for _, l := range res.Levels {
		assert.LessOrEqual(t, l.Mesh.TriangleCount(), l.TargetTriangles, l.Name())
	}
}

func TestBuildLODsPartialShortfall(t *testing.T) {
	samples := straightSamples(t, 5)
	settings := Settings{Sides: 8, Radius: 1, Samples: samples}
	opts := LODOptions{TriangleBudget: TrianglesFromSides(8, false, 5), Levels: 3, StepMultiplier: 1}

	res, err := BuildLODs(settings, opts)
	require.NoError(t, err)

	// Level 1 targets the full budget and cannot go below 8 sides.
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, LODSkip{Level: 1, Sides: 8, TargetTriangles: 64}, res.Skipped[0])

	require.Len(t, res.Levels, 2)
	assert.Equal(t, 2, res.Levels[0].Level)
	assert.Equal(t, 4, res.Levels[0].Sides)
	assert.Equal(t, 3, res.Levels[1].Level)
	assert.Equal(t, MinSides, res.Levels[1].Sides)
	assert.Equal(t, 1, res.Shortfall())
}

func TestBuildLODsExhaustedBudget(t *testing.T) {
	samples := straightSamples(t, 3)
	settings := Settings{Sides: MinSides, Radius: 1, Samples: samples}
	opts := LODOptions{TriangleBudget: MinTriangleCount(false, 3), Levels: 3, StepMultiplier: 2}

	res, err := BuildLODs(settings, opts)
	require.NoError(t, err)
	assert.Empty(t, res.Levels)
	assert.Equal(t, 3, res.Shortfall())
}

func TestBuildLODsZeroLevels(t *testing.T) {
	res, err := BuildLODs(Settings{Sides: 12, Radius: 1, Samples: straightSamples(t, 2)}, LODOptions{TriangleBudget: 48})
	require.NoError(t, err)
	assert.Empty(t, res.Levels)
	assert.Zero(t, res.Shortfall())
}

func TestBuildLODsRequiresSamples(t *testing.T) {
	_, err := BuildLODs(Settings{Sides: 12, Radius: 1}, LODOptions{TriangleBudget: 100, Levels: 2, StepMultiplier: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildLODsOwnTheirMeshes(t *testing.T) {
	samples := straightSamples(t, 4)
	b := NewBuilder()

	res, err := b.BuildLODs(
		Settings{Sides: 20, Radius: 1, Samples: samples},
		LODOptions{TriangleBudget: TrianglesFromSides(20, false, 4), Levels: 2, StepMultiplier: 2},
	)
	require.NoError(t, err)
	require.Len(t, res.Levels, 2)
	before := res.Levels[0].Mesh.Clone()

	// Building again on the same builder must not touch accepted levels.
	_, err = b.Build(Settings{Sides: 10, Radius: 5, Samples: samples})
	require.NoError(t, err)
	assert.Equal(t, before, res.Levels[0].Mesh)
	assert.NotSame(t, res.Levels[0].Mesh, res.Levels[1].Mesh)
}

func TestLODOptionsNormalize(t *testing.T) {
	o, cs := LODOptions{TriangleBudget: 100, Levels: 9, StepMultiplier: 0.5}.Normalize()
	assert.Equal(t, MaxLODLevels, o.Levels)
	assert.Equal(t, float32(MinLODStep), o.StepMultiplier)
	assert.Len(t, cs, 2)

	o, cs = LODOptions{Levels: -1, StepMultiplier: 2}.Normalize()
	assert.Zero(t, o.Levels)
	assert.Len(t, cs, 1)
}

func TestLODOptionsTargetTriangles(t *testing.T) {
	o := LODOptions{TriangleBudget: 1000, Levels: 3, StepMultiplier: 2}
	assert.Equal(t, 500, o.TargetTriangles(1))
	assert.Equal(t, 250, o.TargetTriangles(2))
	assert.Equal(t, 166, o.TargetTriangles(3))
}

func TestBuildLODsReportsCorrections(t *testing.T) {
	settings := Settings{Sides: 2, Radius: 1, Samples: straightSamples(t, 3)}
	opts := LODOptions{TriangleBudget: 100, Levels: 9, StepMultiplier: 0.5}

	res, err := BuildLODs(settings, opts)
	require.NoError(t, err)
	assert.Equal(t, MinSides, res.BaseSides)

	fields := make([]string, len(res.Corrections))
	for i, c := range res.Corrections {
		fields[i] = c.Field
	}
	assert.Equal(t, []string{"sides", "lod_count", "lod_step"}, fields)
	assert.Equal(t, MaxLODLevels, res.Shortfall()+len(res.Levels))

	res, err = BuildLODs(Settings{Sides: 8, Radius: 1, Samples: straightSamples(t, 3)}, LODOptions{TriangleBudget: 64, Levels: 1, StepMultiplier: 2})
	require.NoError(t, err)
	assert.Empty(t, res.Corrections)
}
