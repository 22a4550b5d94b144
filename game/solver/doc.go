// Package solver enumerates every slide sequence that leads from a grid's
// start tile to its end tile within a move limit.
//
// The search is a depth-first walk over slide destinations. A tile already on
// the current path is never revisited, the end tile is a leaf, and the walk
// never goes deeper than the move limit. Results are sorted shortest first;
// ties keep the canonical up, down, left, right expansion order so the output
// is deterministic for a given grid and options.
//
// Each call owns its visited set and path, so concurrent searches over
// independent grids are safe. The grid must not be edited while a search on it
// is running; callers that edit concurrently should hand the search a
// Grid.Clone().
//
// Usage:
//
//	solutions := solver.Search(grid, 15, solver.Options{ReversalPruning: true})
//	if len(solutions) == 0 {
//		fmt.Println("No solution exists!")
//	}
package solver
