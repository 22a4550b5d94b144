package engine

import (
	"errors"
	"fmt"
	"time"
)

// ErrBlockedMove is returned by Replay when a slide produces no move
var ErrBlockedMove = errors.New("slide produces no move")

// Slide resolves one slide from `from` in direction d.
//
// The player steps one tile at a time: a Solid (or out of bounds) tile ahead
// stops the slide before it, stepping onto Floor stops the slide on it, and Ice
// keeps it going. No move is produced when `from` is the end tile or when the
// slide is blocked immediately.
func Slide(g *Grid, from Position, d Direction) (Position, bool) {
	if g.IsEnd(from.X, from.Y) {
		return from, false
	}
	dx, dy := d.Delta()
	if dx == 0 && dy == 0 {
		return from, false
	}

	pos := from
	for {
		next := g.TileAt(pos.X+dx, pos.Y+dy)
		if next == Solid {
			break
		}
		pos = pos.Add(dx, dy)
		if next == Floor {
			break
		}
	}

	if pos == from {
		return from, false
	}
	return pos, true
}

// Replay applies dirs from `from` and returns every landing position in order
func Replay(g *Grid, from Position, dirs []Direction) ([]Position, error) {
	path := make([]Position, 0, len(dirs))
	pos := from
	for i, d := range dirs {
		next, ok := Slide(g, pos, d)
		if !ok {
			return path, fmt.Errorf("move %d (%s) from (%d,%d): %w", i+1, d, pos.X, pos.Y, ErrBlockedMove)
		}
		path = append(path, next)
		pos = next
	}
	return path, nil
}

// CanSlide checks if the player can slide in the specified direction
func (gs *GameState) CanSlide(direction string) bool {
	if gs.GameOver || gs.Grid == nil {
		return false
	}
	d, err := ParseDirection(direction)
	if err != nil {
		return false
	}
	_, ok := Slide(gs.Grid, gs.PlayerPos, d)
	return ok
}

// MovePlayer attempts to slide the player in the specified direction
func (gs *GameState) MovePlayer(direction string, level *LevelConfig) bool {
	if gs.GameOver {
		return false
	}

	d, err := ParseDirection(direction)
	if err != nil {
		gs.Message = fmt.Sprintf("Unknown direction %q", direction)
		return false
	}

	// Check for a blocked slide BEFORE the budget check
	dest, ok := Slide(gs.Grid, gs.PlayerPos, d)
	if !ok {
		gs.Message = fmt.Sprintf("Can't slide %s from (%d,%d)", d, gs.PlayerPos.X, gs.PlayerPos.Y)
		if msg := level.message(func(m LevelMessages) string { return m.Blocked }); msg != "" {
			gs.Message = msg + fmt.Sprintf(" [Blocked at (%d,%d)]", gs.PlayerPos.X, gs.PlayerPos.Y)
		}
		return false
	}

	if gs.MaxMoves > 0 && gs.MovesUsed >= gs.MaxMoves {
		gs.Message = defaultString(level.message(func(m LevelMessages) string { return m.OutOfMoves }), "Out of moves! Game Over!")
		gs.GameOver = true
		return false
	}

	gs.PlayerPos = dest
	gs.MovesUsed++

	switch {
	case gs.Grid.IsEnd(dest.X, dest.Y):
		gs.Victory = true
		gs.GameOver = true
		gs.Message = victoryMessage(level, gs.MovesUsed)
	case gs.MaxMoves > 0 && gs.MovesUsed >= gs.MaxMoves:
		gs.GameOver = true
		gs.Message = defaultString(level.message(func(m LevelMessages) string { return m.OutOfMoves }), "Out of moves! Game Over!")
	default:
		gs.Message = fmt.Sprintf("Slid %s to (%d,%d) on %s", d, dest.X, dest.Y, gs.Grid.At(dest))
	}

	return true
}

// RefreshView regenerates the text view with the player marked
func (gs *GameState) RefreshView() {
	if gs.Grid == nil {
		gs.View = nil
		return
	}
	pos := gs.PlayerPos
	gs.View = gs.Grid.Rows(&pos)
}

// AddMoveToHistory adds a move to the game's move history
func (gs *GameState) AddMoveToHistory(action string, fromPos, toPos Position, success bool) {
	entry := MoveHistoryEntry{
		Action:       action,
		FromPosition: fromPos,
		ToPosition:   toPos,
		Distance:     ManhattanDistance(fromPos, toPos),
		Timestamp:    time.Now().Unix(),
		Success:      success,
		MoveNumber:   gs.TotalMoves + 1,
	}
	// Append to cumulative history (never cleared by reset) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	// Append to current segment history and increment its counter
	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
