package solver

import (
	"strconv"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/icegen/game/engine"
)

// Options toggles the optional pruning passes
type Options struct {
	// ReversalPruning skips the move that directly undoes the previous one
	// while the tree is being expanded.
	ReversalPruning bool `json:"reversal_pruning" yaml:"reversal_pruning"`
	// TailPruning drops redundant solutions after the search: those sharing
	// the second half of the shortest solution and those containing an
	// immediate reversal.
	TailPruning bool `json:"tail_pruning" yaml:"tail_pruning"`
}

// Step is one slide of a solution
type Step struct {
	Direction engine.Direction `json:"direction"`
	To        engine.Position  `json:"to"`
}

// Solution is an ordered sequence of slides from the start tile (exclusive)
// to the end tile (inclusive).
type Solution []Step

// Len returns the number of slides
func (s Solution) Len() int {
	return len(s)
}

// Directions returns the solution as a direction sequence
func (s Solution) Directions() []engine.Direction {
	dirs := make([]engine.Direction, len(s))
	for i, step := range s {
		dirs[i] = step.Direction
	}
	return dirs
}

// Moves returns the direction names, the form accepted by bulk moves
func (s Solution) Moves() []string {
	moves := make([]string, len(s))
	for i, step := range s {
		moves[i] = string(step.Direction)
	}
	return moves
}

// Final returns the last landing position, or from if the solution is empty
func (s Solution) Final(from engine.Position) engine.Position {
	if len(s) == 0 {
		return from
	}
	return s[len(s)-1].To
}

// String renders the solution as "(S)3 -> U -> L -> D"
func (s Solution) String() string {
	var b strings.Builder
	b.WriteString("(S)")
	b.WriteString(strconv.Itoa(len(s)))
	for _, step := range s {
		b.WriteString(" -> ")
		b.WriteString(strings.ToUpper(string(step.Direction)[:1]))
	}
	return b.String()
}

// Segment describes a single slide of a solution with its origin
type Segment struct {
	Index     int              `json:"index"`
	Direction engine.Direction `json:"direction"`
	From      engine.Position  `json:"from"`
	To        engine.Position  `json:"to"`
	Distance  int              `json:"distance"`
}

// Segments expands the solution into slides, the first one leaving start
func (s Solution) Segments(start engine.Position) []Segment {
	segments := make([]Segment, len(s))
	from := start
	for i, step := range s {
		segments[i] = Segment{
			Index:     i,
			Direction: step.Direction,
			From:      from,
			To:        step.To,
			Distance:  engine.ManhattanDistance(from, step.To),
		}
		from = step.To
	}
	return segments
}

// LongestSlide returns the slide covering the greatest distance. The first of
// equally long slides wins.
func (s Solution) LongestSlide(start engine.Position) (Segment, bool) {
	var longest Segment
	found := false
	for _, seg := range s.Segments(start) {
		if !found || seg.Distance > longest.Distance {
			longest = seg
			found = true
		}
	}
	return longest, found
}

// HasReversal reports whether two consecutive slides directly oppose each other
func (s Solution) HasReversal() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Direction == s[i-1].Direction.Opposite() {
			return true
		}
	}
	return false
}

// Result carries the solutions of one search together with its statistics
type Result struct {
	Solutions []Solution    `json:"solutions"`
	MoveLimit int           `json:"move_limit"`
	Options   Options       `json:"options"`
	Nodes     int           `json:"nodes"`
	Duration  time.Duration `json:"duration"`
}

// Solvable reports whether at least one solution was found
func (r *Result) Solvable() bool {
	return len(r.Solutions) > 0
}

// Shortest returns the first solution, or nil if there is none
func (r *Result) Shortest() Solution {
	if len(r.Solutions) == 0 {
		return nil
	}
	return r.Solutions[0]
}
