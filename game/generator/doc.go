// Package generator builds ice puzzle levels that are guaranteed solvable.
//
// Generation runs in two phases. Carving lays down a walled grid with the start
// on the bottom edge and the end on the top edge, each with a floor tile just
// inside the wall, so a short solution always exists. Islands of floor and
// isolated boulders are then scattered over the ice.
//
// The interference phase uses solver.Search as an oracle: it takes the shortest
// solution, finds its longest slide and drops a solid tile near the middle of
// it. An edit that leaves the level unsolvable is reverted before anything else
// happens, so the returned grid always has at least one solution within the
// configured move limit.
//
//	gen, err := generator.New(generator.DefaultConfig(), generator.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	grid, report, err := gen.Generate()
//
// GenerateContext and RefineContext stop when their context ends. Once the
// interference loop is running, the last solvable grid is returned with
// ReasonCancelled, so a deadline bounds the work without losing the level.
package generator
