package generator

import (
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/icegen/game/engine"
	"github.com/wricardo/mcp-training/icegen/game/solver"
)

var (
	ErrInvalidConfig = errors.New("invalid generator config")
	ErrUnsolvable    = errors.New("level could not be made solvable")
)

// ContinuePolicy decides whether the interference loop keeps going
type ContinuePolicy string

const (
	// WhileSolvable keeps interfering as long as one solution remains
	WhileSolvable ContinuePolicy = "while_solvable"
	// WhileAmbiguous stops as soon as the level has a single solution
	WhileAmbiguous ContinuePolicy = "while_ambiguous"
)

// Holds reports whether the loop should continue given the solution count
func (p ContinuePolicy) Holds(solutions int) bool {
	if p == WhileAmbiguous {
		return solutions > 1
	}
	return solutions >= 1
}

// RevertPolicy decides what happens after an edit had to be reverted
type RevertPolicy string

const (
	RevertAndStop  RevertPolicy = "stop"
	RevertAndRetry RevertPolicy = "retry"
)

// MinDimension is the smallest width or height that fits a wall, an interior
// and the floor tiles next to start and end.
const MinDimension = 5

// Config holds every generation parameter. There are no package level knobs.
type Config struct {
	MinWidth  int `json:"min_width" yaml:"min_width"`
	MaxWidth  int `json:"max_width" yaml:"max_width"`
	MinHeight int `json:"min_height" yaml:"min_height"`
	MaxHeight int `json:"max_height" yaml:"max_height"`

	// MinBoulders and MaxBoulders bound the boulder count. Both zero means
	// one boulder per 15 tiles.
	MinBoulders     int `json:"min_boulders" yaml:"min_boulders"`
	MaxBoulders     int `json:"max_boulders" yaml:"max_boulders"`
	BoulderAttempts int `json:"boulder_attempts" yaml:"boulder_attempts"`

	// FloorIslands is the number of small floor patches laid before boulders
	FloorIslands int `json:"floor_islands" yaml:"floor_islands"`

	MoveLimit int            `json:"move_limit" yaml:"move_limit"`
	Search    solver.Options `json:"search" yaml:"search"`

	// Slides longer than DistanceThreshold tiles get interfered with
	DistanceThreshold    int            `json:"distance_threshold" yaml:"distance_threshold"`
	InterferenceAttempts int            `json:"interference_attempts" yaml:"interference_attempts"`
	Continue             ContinuePolicy `json:"continue" yaml:"continue"`
	OnRevert             RevertPolicy   `json:"on_revert" yaml:"on_revert"`

	// Seed seeds the default random source. Zero picks a time based seed.
	Seed int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// DefaultConfig returns the stock generation settings
func DefaultConfig() Config {
	return Config{
		MinWidth:             12,
		MaxWidth:             16,
		MinHeight:            12,
		MaxHeight:            16,
		BoulderAttempts:      500,
		MoveLimit:            engine.DefaultMoveLimit,
		Search:               solver.Options{ReversalPruning: true},
		DistanceThreshold:    1,
		InterferenceAttempts: 1000,
		Continue:             WhileSolvable,
		OnRevert:             RevertAndRetry,
	}
}

// Validate rejects configurations that cannot produce a level
func (c Config) Validate() error {
	switch {
	case c.MinWidth < MinDimension || c.MinHeight < MinDimension:
		return fmt.Errorf("%w: minimum size is %dx%d, got %dx%d", ErrInvalidConfig, MinDimension, MinDimension, c.MinWidth, c.MinHeight)
	case c.MaxWidth < c.MinWidth || c.MaxHeight < c.MinHeight:
		return fmt.Errorf("%w: max size %dx%d below min size %dx%d", ErrInvalidConfig, c.MaxWidth, c.MaxHeight, c.MinWidth, c.MinHeight)
	case c.MaxWidth > engine.MaxGridSize || c.MaxHeight > engine.MaxGridSize:
		return fmt.Errorf("%w: size above %d", ErrInvalidConfig, engine.MaxGridSize)
	case c.MinBoulders < 0 || c.MaxBoulders < c.MinBoulders:
		return fmt.Errorf("%w: boulder range %d..%d", ErrInvalidConfig, c.MinBoulders, c.MaxBoulders)
	case c.BoulderAttempts < 0 || c.InterferenceAttempts < 0 || c.FloorIslands < 0:
		return fmt.Errorf("%w: budgets must not be negative", ErrInvalidConfig)
	case c.MoveLimit < 4 || c.MoveLimit > engine.MaxMoveLimit:
		return fmt.Errorf("%w: move_limit must be between 4 and %d, got %d", ErrInvalidConfig, engine.MaxMoveLimit, c.MoveLimit)
	case c.DistanceThreshold < 0:
		return fmt.Errorf("%w: distance_threshold must not be negative", ErrInvalidConfig)
	}

	switch c.Continue {
	case WhileSolvable, WhileAmbiguous:
	default:
		return fmt.Errorf("%w: unknown continue policy %q", ErrInvalidConfig, c.Continue)
	}
	switch c.OnRevert {
	case RevertAndStop, RevertAndRetry:
	default:
		return fmt.Errorf("%w: unknown revert policy %q", ErrInvalidConfig, c.OnRevert)
	}
	return nil
}

// boulderTarget picks the number of boulders for a w x h level
func (c Config) boulderTarget(w, h int, intn func(int) int) int {
	if c.MinBoulders == 0 && c.MaxBoulders == 0 {
		return w * h / 15
	}
	return c.MinBoulders + intn(c.MaxBoulders-c.MinBoulders+1)
}
