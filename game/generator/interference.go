package generator

import (
	"math/rand"

	"github.com/wricardo/mcp-training/icegen/game/engine"
	"github.com/wricardo/mcp-training/icegen/game/solver"
)

// Interference is the outcome of one interference step
type Interference struct {
	// Slide is the longest slide of the solution that was inspected
	Slide solver.Segment `json:"slide"`
	// Satisfied is set when no slide exceeds the threshold
	Satisfied bool `json:"satisfied"`
	// Candidate is the tile chosen to block the slide
	Candidate engine.Position `json:"candidate"`
	// Edit is nil when the candidate was rejected
	Edit *Edit `json:"edit,omitempty"`
}

// Blocker returns the tile that interferes with a slide: its midpoint, moved
// one tile left, right or not at all across the slide's axis.
func Blocker(seg solver.Segment, jitter int) engine.Position {
	mid := engine.Position{
		X: (seg.From.X + seg.To.X) / 2,
		Y: (seg.From.Y + seg.To.Y) / 2,
	}
	if mid.X == seg.From.X {
		mid.X += jitter
	} else {
		mid.Y += jitter
	}
	return mid
}

// Interfere inspects the longest slide of shortest and, when it covers more
// than threshold tiles, turns a tile near its midpoint solid. The returned
// Edit is the single undo record for the step; validating it against a fresh
// search is the caller's job.
func Interfere(grid *engine.Grid, shortest solver.Solution, threshold int, rng *rand.Rand) Interference {
	seg, ok := shortest.LongestSlide(grid.Start)
	if !ok || seg.Distance <= threshold {
		return Interference{Slide: seg, Satisfied: true}
	}

	out := Interference{
		Slide:     seg,
		Candidate: Blocker(seg, rng.Intn(3)-1),
	}

	pos := out.Candidate
	if !grid.InBounds(pos.X, pos.Y) || grid.At(pos) == engine.Solid ||
		grid.IsStart(pos.X, pos.Y) || grid.IsEnd(pos.X, pos.Y) {
		return out
	}

	edit := apply(grid, pos, engine.Solid)
	out.Edit = &edit
	return out
}
