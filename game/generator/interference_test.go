package generator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/icegen/game/engine"
	"github.com/wricardo/mcp-training/icegen/game/solver"
)

func TestBlocker(t *testing.T) {
	vertical := solver.Segment{From: engine.Position{X: 2, Y: 6}, To: engine.Position{X: 2, Y: 0}}
	horizontal := solver.Segment{From: engine.Position{X: 1, Y: 4}, To: engine.Position{X: 8, Y: 4}}

	tests := []struct {
		name   string
		seg    solver.Segment
		jitter int
		want   engine.Position
	}{
		{"vertical midpoint", vertical, 0, engine.Position{X: 2, Y: 3}},
		{"vertical jitter left", vertical, -1, engine.Position{X: 1, Y: 3}},
		{"vertical jitter right", vertical, 1, engine.Position{X: 3, Y: 3}},
		{"horizontal midpoint", horizontal, 0, engine.Position{X: 4, Y: 4}},
		{"horizontal jitter up", horizontal, -1, engine.Position{X: 4, Y: 3}},
		{"horizontal jitter down", horizontal, 1, engine.Position{X: 4, Y: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Blocker(tt.seg, tt.jitter))
		})
	}
}

// openCorridor is a 5x7 open field whose shortest solution is a single
// slide up of distance 6.
func openCorridor(t *testing.T) *engine.Grid {
	t.Helper()
	grid, err := engine.NewGrid(5, 7)
	require.NoError(t, err)
	grid.SetStart(2, 6)
	grid.SetEnd(2, 0)
	grid.SetTile(2, 0, engine.Floor)
	return grid
}

func TestInterfere_SingleCorridorSlide(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		grid := openCorridor(t)
		sols := solver.Search(grid, 10, solver.Options{})
		require.NotEmpty(t, sols)
		require.Equal(t, 1, sols[0].Len())

		solidsBefore := grid.Count(engine.Solid)
		step := Interfere(grid, sols[0], 1, rand.New(rand.NewSource(seed)))

		assert.False(t, step.Satisfied)
		assert.Equal(t, 6, step.Slide.Distance)
		require.NotNil(t, step.Edit, "seed %d", seed)
		assert.Equal(t, engine.Ice, step.Edit.Previous)
		assert.Equal(t, 3, step.Candidate.Y)
		assert.Contains(t, []int{1, 2, 3}, step.Candidate.X)
		assert.Equal(t, solidsBefore+1, grid.Count(engine.Solid))
		assert.NotEmpty(t, solver.Search(grid, 10, solver.Options{}), "seed %d broke the level", seed)

		step.Edit.Revert(grid)
		assert.Equal(t, solidsBefore, grid.Count(engine.Solid))
	}
}

func TestInterfere_RejectsCandidates(t *testing.T) {
	// The only slide runs along x=0, so jitter -1 lands out of bounds
	grid, err := engine.NewGrid(2, 7)
	require.NoError(t, err)
	grid.SetStart(0, 6)
	grid.SetEnd(0, 0)
	grid.SetTile(0, 0, engine.Floor)
	grid.SetTile(1, 3, engine.Solid)

	sols := solver.Search(grid, 5, solver.Options{})
	require.NotEmpty(t, sols)

	for seed := int64(1); seed <= 20; seed++ {
		clone := grid.Clone()
		step := Interfere(clone, sols[0], 1, rand.New(rand.NewSource(seed)))
		if step.Candidate.X != 0 {
			assert.Nil(t, step.Edit, "candidate %v must be rejected", step.Candidate)
			assert.Equal(t, grid.String(), clone.String())
		} else {
			assert.NotNil(t, step.Edit)
		}
	}
}

func TestInterfere_Threshold(t *testing.T) {
	grid := openCorridor(t)
	sols := solver.Search(grid, 10, solver.Options{})
	require.NotEmpty(t, sols)

	step := Interfere(grid, sols[0], 6, rand.New(rand.NewSource(1)))
	assert.True(t, step.Satisfied)
	assert.Nil(t, step.Edit)

	empty := Interfere(grid, solver.Solution{}, 0, rand.New(rand.NewSource(1)))
	assert.True(t, empty.Satisfied)
}

func TestCarve(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 20; i++ {
		w, h := 5+rng.Intn(8), 5+rng.Intn(8)
		grid, err := Carve(w, h, rng)
		require.NoError(t, err)

		assert.Equal(t, engine.Floor, grid.TileAt(grid.Start.X, grid.Start.Y-1))
		assert.Equal(t, engine.Floor, grid.TileAt(grid.End.X, grid.End.Y+1))
		assert.Equal(t, 4, grid.Count(engine.Floor))

		sols := solver.Search(grid, 4, solver.Options{})
		require.NotEmpty(t, sols, "bare %dx%d carve must be solvable in four slides", w, h)
		assert.LessOrEqual(t, sols[0].Len(), 4)
	}

	_, err := Carve(0, 5, rng)
	assert.ErrorIs(t, err, engine.ErrInvalidDimensions)
}

func TestScatterBoulders_Isolated(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	grid, err := Carve(16, 16, rng)
	require.NoError(t, err)

	edits := ScatterBoulders(grid, rng, 30, 500)
	require.NotEmpty(t, edits)
	assert.LessOrEqual(t, len(edits), 30)

	for _, e := range edits {
		assert.Equal(t, engine.Ice, e.Previous)
		assert.Equal(t, engine.Solid, grid.At(e.Pos))
		assert.False(t, hasSolidNeighbour(grid, e.Pos), "boulder %v touches a solid tile", e.Pos)
		assert.False(t, grid.IsStart(e.Pos.X, e.Pos.Y) || grid.IsEnd(e.Pos.X, e.Pos.Y))
	}

	none := ScatterBoulders(grid, rng, 5, 0)
	assert.Empty(t, none)
}

func TestAddFloorIslands(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	grid, err := Carve(12, 12, rng)
	require.NoError(t, err)
	walls := grid.Count(engine.Solid)

	edits := AddFloorIslands(grid, rng, 6)
	require.NotEmpty(t, edits)
	assert.Equal(t, walls, grid.Count(engine.Solid), "islands must not touch the wall")
	assert.Equal(t, 4+len(edits), grid.Count(engine.Floor))

	for i := len(edits) - 1; i >= 0; i-- {
		edits[i].Revert(grid)
	}
	assert.Equal(t, 4, grid.Count(engine.Floor))
}
