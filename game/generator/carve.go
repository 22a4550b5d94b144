package generator

import (
	"math/rand"

	"github.com/wricardo/mcp-training/icegen/game/engine"
)

// Edit records the previous tile at a position so it can be undone
type Edit struct {
	Pos      engine.Position `json:"pos"`
	Previous engine.Tile     `json:"previous"`
}

// Revert restores the tile the edit replaced
func (e Edit) Revert(grid *engine.Grid) {
	grid.SetTile(e.Pos.X, e.Pos.Y, e.Previous)
}

// apply sets pos to t and returns the undo record
func apply(grid *engine.Grid, pos engine.Position, t engine.Tile) Edit {
	edit := Edit{Pos: pos, Previous: grid.At(pos)}
	grid.SetTile(pos.X, pos.Y, t)
	return edit
}

// Carve creates a walled w x h level. The start sits on the bottom wall and the
// end on the top wall, corners excluded; both and the tile just inside the wall
// are floor.
func Carve(w, h int, rng *rand.Rand) (*engine.Grid, error) {
	grid, err := engine.NewGrid(w, h)
	if err != nil {
		return nil, err
	}

	// The edge tiles of the level are all solid
	for x := 0; x < w; x++ {
		grid.SetTile(x, 0, engine.Solid)
		grid.SetTile(x, h-1, engine.Solid)
	}
	for y := 0; y < h; y++ {
		grid.SetTile(0, y, engine.Solid)
		grid.SetTile(w-1, y, engine.Solid)
	}

	startX := 1 + rng.Intn(w-2)
	grid.SetStart(startX, h-1)
	grid.SetTile(startX, h-1, engine.Floor)
	grid.SetTile(startX, h-2, engine.Floor)

	endX := 1 + rng.Intn(w-2)
	grid.SetEnd(endX, 0)
	grid.SetTile(endX, 0, engine.Floor)
	grid.SetTile(endX, 1, engine.Floor)

	return grid, nil
}

// reserved reports whether pos is the start, the end or one of their floor
// tiles just inside the wall
func reserved(grid *engine.Grid, pos engine.Position) bool {
	s, e := grid.Start, grid.End
	return pos == s || pos == e ||
		pos == engine.Position{X: s.X, Y: s.Y - 1} ||
		pos == engine.Position{X: e.X, Y: e.Y + 1}
}

// interior reports whether pos lies inside the wall
func interior(grid *engine.Grid, pos engine.Position) bool {
	return pos.X > 0 && pos.X < grid.Width-1 && pos.Y > 0 && pos.Y < grid.Height-1
}

// AddFloorIslands lays count rectangles of floor, each up to 3x3, on interior
// ice. It returns the edits in placement order.
func AddFloorIslands(grid *engine.Grid, rng *rand.Rand, count int) []Edit {
	var edits []Edit
	for i := 0; i < count; i++ {
		x1 := 1 + rng.Intn(grid.Width-2)
		y1 := 1 + rng.Intn(grid.Height-2)
		x2 := x1 + 1 + rng.Intn(3)
		y2 := y1 + 1 + rng.Intn(3)

		for x := x1; x < x2; x++ {
			for y := y1; y < y2; y++ {
				pos := engine.Position{X: x, Y: y}
				if !interior(grid, pos) || reserved(grid, pos) || grid.At(pos) != engine.Ice {
					continue
				}
				edits = append(edits, apply(grid, pos, engine.Floor))
			}
		}
	}
	return edits
}

// ScatterBoulders places up to target isolated solid tiles. A candidate must
// be ice, must not be the start or end, and none of its 8 neighbours may be
// solid. Each sample consumes one of the attempts.
func ScatterBoulders(grid *engine.Grid, rng *rand.Rand, target, attempts int) []Edit {
	var edits []Edit
	for tries := 0; len(edits) < target && tries < attempts; tries++ {
		pos := engine.Position{X: rng.Intn(grid.Width), Y: rng.Intn(grid.Height)}
		if grid.At(pos) != engine.Ice || grid.IsStart(pos.X, pos.Y) || grid.IsEnd(pos.X, pos.Y) {
			continue
		}
		if hasSolidNeighbour(grid, pos) {
			continue
		}
		edits = append(edits, apply(grid, pos, engine.Solid))
	}
	return edits
}

func hasSolidNeighbour(grid *engine.Grid, pos engine.Position) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if grid.TileAt(pos.X+dx, pos.Y+dy) == engine.Solid {
				return true
			}
		}
	}
	return false
}
