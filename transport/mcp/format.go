package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/icegen/game/engine"
	"github.com/wricardo/mcp-training/icegen/game/service"
)

const instructions = `Ice Puzzle - Complete Instructions

GAME OBJECTIVE:
Get the player from the start tile onto the exit tile in as few slides as you can.

GAME MECHANICS:
• A move is a slide in one of four directions: up, down, left, right
• While the player stands on ice the slide keeps going
• A slide stops on the last tile before a solid tile or the edge of the board
• A slide also stops on the first floor tile it reaches
• A slide that cannot move even one tile is rejected and costs nothing
• Landing on the exit wins. Sliding over it without stopping does not.

GRID LEGEND:
• P - Player (your current position)
• S - Start tile (floor)
• E - Exit tile (floor), where you must stop
• ~ - Ice, you keep sliding
• # - Floor, you stop here
• @ - Solid, blocks the slide

Coordinates are (x, y) with (0, 0) at the top-left. "up" decreases y.

BUDGET:
Some levels set a slide budget (max moves). Once it is used up the game is over
unless the last slide reached the exit.

STRATEGY:
• Look for solid tiles and floor tiles that can stop you near the exit
• Work backwards: which tiles could a slide onto the exit start from?
• Use describe_tile to check a tile before planning around it
• Use solve with from_player for a hint from where you stand
• Use bulk_move for a planned sequence; it stops at the first rejected slide

SOLUTION FORMAT:
Solutions look like "(S)2 -> U -> R": the start tile is marked (S), the number is
how many slides follow, then one letter per slide.

SESSION MANAGEMENT:
- Multiple game sessions can run simultaneously
- Each session has a unique 4-character ID
- generate_level with create_session opens a session on a fresh level

Good luck on the ice!`

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nLevel: %s\nCreated: %s\n\n%s",
		session.ID, session.LevelID,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	budget := "unlimited"
	if left := state.MovesLeft(); left >= 0 {
		budget = fmt.Sprintf("%d left of %d", left, state.MaxMoves)
	}
	fmt.Fprintf(&result, "Level: %s | Position: (%d,%d) | Slides: %d | Budget: %s\n\n",
		state.LevelName, state.PlayerPos.X, state.PlayerPos.Y, state.MovesUsed, budget)

	rows := state.View
	if len(rows) == 0 && state.Grid != nil {
		pos := state.PlayerPos
		rows = state.Grid.Rows(&pos)
	}
	for _, row := range rows {
		result.WriteString(row)
		result.WriteString("\n")
	}

	if state.GameOver {
		if state.Victory {
			result.WriteString("\n🎉 VICTORY!")
		} else {
			result.WriteString("\n💀 GAME OVER")
		}
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Slide successful\n")
	} else {
		b.WriteString("✗ Slide failed\n")
	}

	if s := result.Step; s != nil {
		fmt.Fprintf(&b, "Step: %s (%d,%d)→(%d,%d) distance=%d tile=%s\n",
			s.Dir, s.From.X, s.From.Y, s.To.X, s.To.Y, s.Distance, s.TileType)
	}

	if len(result.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "Possible next slides: %s\n", strings.Join(result.PossibleMoves, ", "))
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	level := ""
	if result.GameState != nil {
		level = result.GameState.LevelName
	}
	fmt.Fprintf(&b, "Session: %s • Level: %s\n", sessionID, level)

	fmt.Fprintf(&b, "Executed %d/%d slides", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on slide %d: %s [%s]\n", result.StoppedOnMove, result.StoppedReason, result.StopReasonCode)
	}
	fmt.Fprintf(&b, "From (%d,%d) to (%d,%d)\n", result.StartPos.X, result.StartPos.Y, result.EndPos.X, result.EndPos.Y)

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			status := "✓"
			if !s.Success {
				status = "✗"
			}
			fmt.Fprintf(&b, "%d. %s (%d,%d)→(%d,%d) distance=%d %s\n",
				s.Idx, s.Dir, s.From.X, s.From.Y, s.To.X, s.To.Y, s.Distance, status)
		}
	}

	if len(result.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "\nPossible next slides: %s\n", strings.Join(result.PossibleMoves, ", "))
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d, Total: %d moves)\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		status := "✓"
		if !move.Success {
			status = "✗"
		}
		fmt.Fprintf(&b, "#%d %s %s: (%d,%d) → (%d,%d) distance=%d\n",
			move.MoveNumber, status, move.Action,
			move.FromPosition.X, move.FromPosition.Y,
			move.ToPosition.X, move.ToPosition.Y, move.Distance)
	}

	if history.HasNext {
		fmt.Fprintf(&b, "\nMore moves available on page %d", history.Page+1)
	}

	return b.String()
}

func formatSolveResult(result *service.SolveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Level: %s | From: (%d,%d) | Limit: %d\n",
		result.Level, result.From.X, result.From.Y, result.MoveLimit)
	b.WriteString(result.Message)
	b.WriteString("\n")

	for i, sol := range result.Solutions {
		fmt.Fprintf(&b, "\n%d. %s\n   moves: %s\n   longest slide: %d",
			i+1, sol.Text, strings.Join(sol.Moves, " "), sol.LongestSlide)
	}
	if len(result.Solutions) < result.Count {
		fmt.Fprintf(&b, "\n\n(%d more not shown)", result.Count-len(result.Solutions))
	}

	return b.String()
}

func formatGenerateResult(result *service.GenerateResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generated level: %s\n", result.LevelID)
	if r := result.Report; r != nil {
		fmt.Fprintf(&b, "Size: %dx%d | Boulders: %d | Interferences: %d | Reverts: %d\nStopped: %s\n",
			r.Width, r.Height, r.Boulders, r.Interferences, r.Reverts, r.Reason)
	}
	b.WriteString("\n")
	for _, row := range result.View {
		b.WriteString(row)
		b.WriteString("\n")
	}
	if len(result.Shortest) > 0 {
		fmt.Fprintf(&b, "\nShortest solution (%d slides): %s\n", len(result.Shortest), strings.Join(result.Shortest, " "))
	}
	if result.Saved {
		b.WriteString("Saved to the level catalogue\n")
	}
	if result.Session != nil {
		fmt.Fprintf(&b, "Session: %s\n", result.Session.ID)
	}
	return b.String()
}

// describeTile explains the tile at (x, y) in terms of what a slide does there
func describeTile(state *engine.GameState, x, y int) string {
	grid := state.Grid
	if !grid.InBounds(x, y) {
		return fmt.Sprintf("Coordinates (%d, %d) are out of bounds. Grid is %dx%d (x 0-%d, y 0-%d)",
			x, y, grid.Width, grid.Height, grid.Width-1, grid.Height-1)
	}

	tile := grid.TileAt(x, y)
	var description string
	switch tile {
	case engine.Ice:
		description = "Ice - a slide passes over it and keeps going"
	case engine.Floor:
		description = "Floor - a slide ends on it"
	case engine.Solid:
		description = "Solid - blocks slides, the player stops on the tile before it"
	default:
		description = "Unknown tile"
	}

	var notes []string
	if grid.IsStart(x, y) {
		notes = append(notes, "This is the start tile.")
	}
	if grid.IsEnd(x, y) {
		notes = append(notes, "This is the exit. Stop here to win.")
	}
	if x == state.PlayerPos.X && y == state.PlayerPos.Y {
		notes = append(notes, "The player is here.")
	}

	result := fmt.Sprintf("Tile at position (%d, %d):\n━━━━━━━━━━━━━━━━━━━━━━━━\nType: %s\nSymbol: %c\nPassable: %v\nDescription: %s",
		x, y, tile, tile.Symbol(), tile != engine.Solid, description)
	if len(notes) > 0 {
		result += "\n\n" + strings.Join(notes, "\n")
	}
	return result
}
