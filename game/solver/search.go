package solver

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"

	"github.com/wricardo/mcp-training/icegen/game/engine"
)

// Search returns every solution of grid within moveLimit slides, shortest first.
// An unsolvable grid yields an empty list, never an error.
func Search(grid *engine.Grid, moveLimit int, opts Options) []Solution {
	return Run(grid, moveLimit, opts).Solutions
}

// Run performs a search and reports its statistics.
//
// A start tile equal to the end tile yields a single zero-length solution. A
// non-positive moveLimit yields no solutions.
func Run(grid *engine.Grid, moveLimit int, opts Options) *Result {
	result, _ := RunContext(context.Background(), grid, moveLimit, opts)
	return result
}

// RunContext is Run with cancellation. The context is polled while the tree
// is expanded; once it is done the search stops and returns the solutions
// found so far together with the context's error. A partial result must not
// be read as "unsolvable".
func RunContext(ctx context.Context, grid *engine.Grid, moveLimit int, opts Options) (*Result, error) {
	began := time.Now()
	result := &Result{
		Solutions: []Solution{},
		MoveLimit: moveLimit,
		Options:   opts,
	}

	var err error
	switch {
	case grid == nil || moveLimit <= 0:
	case grid.Start == grid.End:
		result.Solutions = append(result.Solutions, Solution{})
	default:
		s := &search{
			grid:    grid,
			limit:   moveLimit,
			opts:    opts,
			visited: mapset.New[engine.Position](),
			ctx:     ctx,
		}
		if s.err = ctx.Err(); s.err == nil {
			s.expand(grid.Start, 0, "")
		}
		err = s.err

		sort.SliceStable(s.solutions, func(i, j int) bool {
			return len(s.solutions[i]) < len(s.solutions[j])
		})
		if opts.TailPruning {
			s.solutions = pruneTails(s.solutions)
		}

		result.Solutions = append(result.Solutions, s.solutions...)
		result.Nodes = s.nodes
	}

	result.Duration = time.Since(began)
	logrus.WithFields(logrus.Fields{
		"grid":      gridName(grid),
		"limit":     moveLimit,
		"solutions": len(result.Solutions),
		"nodes":     result.Nodes,
		"elapsed":   result.Duration,
		"cancelled": err != nil,
	}).Debug("search finished")

	return result, err
}

// pollEvery is the number of expanded nodes between two context checks
const pollEvery = 1024

// search is the state of a single call. It is never shared.
type search struct {
	grid      *engine.Grid
	limit     int
	opts      Options
	visited   mapset.Set[engine.Position]
	path      []Step
	solutions []Solution
	nodes     int
	ctx       context.Context
	err       error
}

// expand visits the children of the node at pos, reached by last at depth
func (s *search) expand(pos engine.Position, depth int, last engine.Direction) {
	s.visited.Put(pos)
	defer s.visited.Remove(pos)

	for _, d := range engine.Directions {
		if s.opts.ReversalPruning && last != "" && d == last.Opposite() {
			continue
		}

		next, ok := engine.Slide(s.grid, pos, d)
		if !ok || s.visited.Has(next) {
			continue
		}
		s.nodes++
		if s.nodes%pollEvery == 0 {
			if s.err = s.ctx.Err(); s.err != nil {
				return
			}
		}

		s.path = append(s.path, Step{Direction: d, To: next})
		if s.grid.IsEnd(next.X, next.Y) {
			s.solutions = append(s.solutions, append(Solution(nil), s.path...))
		} else if depth+1 < s.limit {
			s.expand(next, depth+1, d)
		}
		s.path = s.path[:len(s.path)-1]
		if s.err != nil {
			return
		}
	}
}

// pruneTails drops solutions that repeat the ending of the shortest one, then
// drops every solution containing an immediate reversal. sols must be sorted.
func pruneTails(sols []Solution) []Solution {
	if len(sols) <= 1 {
		return sols
	}

	optimal := sols[0]
	half := len(optimal) / 2

	kept := []Solution{optimal}
	for _, candidate := range sols[1:] {
		if !sameTail(optimal, candidate, half) {
			kept = append(kept, candidate)
		}
	}

	pruned := kept[:0]
	for _, sol := range kept {
		if !sol.HasReversal() {
			pruned = append(pruned, sol)
		}
	}
	return pruned
}

// sameTail reports whether the last n steps of a and b are equal
func sameTail(a, b Solution, n int) bool {
	if len(a) < n || len(b) < n {
		return false
	}
	for i := 1; i <= n; i++ {
		if a[len(a)-i] != b[len(b)-i] {
			return false
		}
	}
	return true
}

func gridName(grid *engine.Grid) string {
	if grid == nil || grid.Name == "" {
		return "unnamed"
	}
	return grid.Name
}
