package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/icegen/game/engine"
	"github.com/wricardo/mcp-training/icegen/game/solver"
)

// Generator produces solvable levels. A Generator is not safe for concurrent
// use; create one per goroutine.
type Generator struct {
	cfg      Config
	rng      *rand.Rand
	seed     int64
	log      logrus.FieldLogger
	observer func(Event)
}

// Option configures a Generator
type Option func(*Generator)

// WithRand replaces the random source
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		g.rng = rng
	}
}

// WithLogger sets the logger used for progress output
func WithLogger(log logrus.FieldLogger) Option {
	return func(g *Generator) {
		if log != nil {
			g.log = log
		}
	}
}

// WithObserver registers a callback that receives every Event
func WithObserver(fn func(Event)) Option {
	return func(g *Generator) {
		g.observer = fn
	}
}

// New validates cfg and returns a Generator
func New(cfg Config, opts ...Option) (*Generator, error) {
	if cfg.Continue == "" {
		cfg.Continue = WhileSolvable
	}
	if cfg.OnRevert == "" {
		cfg.OnRevert = RevertAndRetry
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Generator{
		cfg: cfg,
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.seed = cfg.Seed
		if g.seed == 0 {
			g.seed = time.Now().UnixNano()
		}
		g.rng = rand.New(rand.NewSource(g.seed))
	}
	return g, nil
}

// Config returns the validated configuration
func (g *Generator) Config() Config {
	return g.cfg
}

func (g *Generator) emit(ev Event) {
	if g.observer != nil {
		g.observer(ev)
	}
}

func (g *Generator) search(ctx context.Context, grid *engine.Grid) ([]solver.Solution, error) {
	result, err := solver.RunContext(ctx, grid, g.cfg.MoveLimit, g.cfg.Search)
	if err != nil {
		return nil, err
	}
	return result.Solutions, nil
}

func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

// Generate carves a new level and runs the interference loop on it
func (g *Generator) Generate() (*engine.Grid, *Report, error) {
	return g.GenerateContext(context.Background())
}

// GenerateContext is Generate with cancellation. A context that ends while
// scattered tiles are still being lifted fails the run, since no solvable
// grid exists yet. Once the interference loop has started, cancellation
// stops it and the last solvable grid is returned with ReasonCancelled.
func (g *Generator) GenerateContext(ctx context.Context) (*engine.Grid, *Report, error) {
	began := time.Now()

	w := g.between(g.cfg.MinWidth, g.cfg.MaxWidth)
	h := g.between(g.cfg.MinHeight, g.cfg.MaxHeight)
	grid, err := Carve(w, h, g.rng)
	if err != nil {
		return nil, nil, fmt.Errorf("carve %dx%d: %w", w, h, err)
	}

	report := &Report{Width: w, Height: h, Seed: g.seed}
	log := g.log.WithFields(logrus.Fields{"width": w, "height": h})
	log.WithFields(logrus.Fields{
		"start_x": grid.Start.X,
		"end_x":   grid.End.X,
	}).Debug("carved level")
	g.emit(Event{Type: EventCarved, State: Carving})

	islands := AddFloorIslands(grid, g.rng, g.cfg.FloorIslands)
	target := g.cfg.boulderTarget(w, h, g.rng.Intn)
	boulders := ScatterBoulders(grid, g.rng, target, g.cfg.BoulderAttempts)
	edits := append(append([]Edit(nil), islands...), boulders...)

	// Lift scattered tiles, newest first, until the level is solvable again
	solutions, err := g.search(ctx, grid)
	for err == nil && len(solutions) == 0 && len(edits) > 0 {
		last := edits[len(edits)-1]
		last.Revert(grid)
		edits = edits[:len(edits)-1]
		report.Lifted++
		solutions, err = g.search(ctx, grid)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("generate %dx%d level: %w", w, h, err)
	}
	if len(solutions) == 0 {
		return nil, nil, fmt.Errorf("%dx%d level within %d moves: %w", w, h, g.cfg.MoveLimit, ErrUnsolvable)
	}

	report.Islands = min(len(edits), len(islands))
	report.Boulders = len(edits) - report.Islands
	log.WithFields(logrus.Fields{
		"target":   target,
		"boulders": report.Boulders,
		"lifted":   report.Lifted,
	}).Debug("scattered boulders")
	g.emit(Event{Type: EventBoulders, State: Carving, Solutions: len(solutions)})

	g.interfere(ctx, grid, solutions, report, log)
	report.Duration = time.Since(began)

	log.WithFields(logrus.Fields{
		"interferences": report.Interferences,
		"reverts":       report.Reverts,
		"attempts":      report.Attempts,
		"shortest":      report.Shortest,
		"reason":        report.Reason,
	}).Info("generated level")

	return grid, report, nil
}

// Refine runs the interference loop on an existing level. The grid is edited
// in place and stays solvable; an unsolvable input is returned untouched with
// ErrUnsolvable.
func (g *Generator) Refine(grid *engine.Grid) (*Report, error) {
	return g.RefineContext(context.Background(), grid)
}

// RefineContext is Refine with cancellation; see GenerateContext
func (g *Generator) RefineContext(ctx context.Context, grid *engine.Grid) (*Report, error) {
	began := time.Now()
	report := &Report{Width: grid.Width, Height: grid.Height, Seed: g.seed}

	solutions, err := g.search(ctx, grid)
	if err != nil {
		return report, fmt.Errorf("refine %q: %w", grid.Name, err)
	}
	if len(solutions) == 0 {
		return report, fmt.Errorf("refine %q: %w", grid.Name, ErrUnsolvable)
	}

	g.interfere(ctx, grid, solutions, report, g.log.WithField("grid", grid.Name))
	report.Duration = time.Since(began)
	return report, nil
}

// interfere is the solve, inspect, edit, re-solve loop. solutions must be the
// result of searching grid as it is now.
func (g *Generator) interfere(ctx context.Context, grid *engine.Grid, solutions []solver.Solution, report *Report, log logrus.FieldLogger) {
	report.Reason = ReasonExhausted

	for report.Attempts < g.cfg.InterferenceAttempts {
		if ctx.Err() != nil {
			report.Reason = ReasonCancelled
			break
		}
		if !g.cfg.Continue.Holds(len(solutions)) {
			report.Reason = ReasonUnambiguous
			break
		}
		report.Attempts++

		step := Interfere(grid, solutions[0], g.cfg.DistanceThreshold, g.rng)
		if step.Satisfied {
			report.Reason = ReasonThreshold
			break
		}
		if step.Edit == nil {
			report.Skipped++
			continue
		}

		attemptLog := log.WithFields(logrus.Fields{
			"attempt":  report.Attempts,
			"distance": step.Slide.Distance,
			"x":        step.Candidate.X,
			"y":        step.Candidate.Y,
		})
		candidate := step.Candidate

		next, err := g.search(ctx, grid)
		if err != nil {
			// The edit was never validated
			step.Edit.Revert(grid)
			report.Reason = ReasonCancelled
			attemptLog.Debug("cancelled while validating interference")
			break
		}
		if len(next) > 0 {
			report.Interferences++
			solutions = next
			attemptLog.Debug("interfering with slide")
			g.emit(Event{
				Type:      EventInterference,
				State:     Interfering,
				Attempt:   report.Attempts,
				Position:  &candidate,
				Distance:  step.Slide.Distance,
				Solutions: len(solutions),
			})
			continue
		}

		// The edit broke solvability; the previous solutions are valid again
		// once it is undone.
		step.Edit.Revert(grid)
		report.Reverts++
		attemptLog.Debug("reverted last interference")
		g.emit(Event{
			Type:      EventRevert,
			State:     Reverting,
			Attempt:   report.Attempts,
			Position:  &candidate,
			Distance:  step.Slide.Distance,
			Solutions: len(solutions),
		})

		if g.cfg.OnRevert == RevertAndStop {
			report.Reason = ReasonReverted
			break
		}
	}

	report.Solutions = len(solutions)
	report.Shortest = solutions[0].Len()
	if seg, ok := solutions[0].LongestSlide(grid.Start); ok {
		report.LongestSlide = seg.Distance
	}
	g.emit(Event{Type: EventDone, State: Done, Attempt: report.Attempts, Solutions: len(solutions), Message: report.Reason})
}
