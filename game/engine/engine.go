package engine

import "fmt"

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	IsVictory() bool
	GetPlayerPosition() Position
	GetMovesLeft() int

	// Movement operations
	Move(direction string) bool
	CanMove(direction string) bool
	GetPossibleMoves() []string
	BulkMove(moves []string) []bool

	// Level
	GetLevel() *LevelConfig
	SetLevel(level *LevelConfig) error
	GetGrid() *Grid

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state *GameState
	level *LevelConfig
}

// NewEngine creates a new game engine for the provided level
func NewEngine(level *LevelConfig) (*GameEngine, error) {
	state, err := InitGameStateFromLevel(level)
	if err != nil {
		return nil, err
	}
	if level == nil {
		level = DefaultLevel()
	}

	return &GameEngine{
		level: level,
		state: state,
	}, nil
}

// NewEngineWithDefaults creates a new game engine on the built-in level
func NewEngineWithDefaults() *GameEngine {
	engine, err := NewEngine(nil)
	if err != nil {
		// DefaultLevel is a constant, valid level
		panic(fmt.Sprintf("default level is invalid: %v", err))
	}
	return engine
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.Grid == nil {
		return fmt.Errorf("state grid cannot be nil")
	}
	e.state = state
	return nil
}

// Reset resets the game to initial state
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	// The level was validated when the engine was built
	state, err := InitGameStateFromLevel(e.level)
	if err != nil {
		return e.state
	}
	e.state = state

	// Restore cumulative history and totals; clear only the current segment
	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.CurrentMovesCount = 0

	return e.state
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// IsVictory returns whether the player has reached the end tile
func (e *GameEngine) IsVictory() bool {
	return e.state.Victory
}

// GetPlayerPosition returns the current player position
func (e *GameEngine) GetPlayerPosition() Position {
	return e.state.PlayerPos
}

// GetMovesLeft returns the remaining slide budget, -1 if unlimited
func (e *GameEngine) GetMovesLeft() int {
	return e.state.MovesLeft()
}

// Move attempts to slide the player in the specified direction
func (e *GameEngine) Move(direction string) bool {
	// Store previous position for history
	prevPos := e.state.PlayerPos
	success := e.state.MovePlayer(direction, e.level)

	e.state.AddMoveToHistory(direction, prevPos, e.state.PlayerPos, success)
	e.state.RefreshView()

	return success
}

// CanMove checks if the player can slide in the specified direction
func (e *GameEngine) CanMove(direction string) bool {
	if e.state.MaxMoves > 0 && e.state.MovesUsed >= e.state.MaxMoves {
		return false
	}
	return e.state.CanSlide(direction)
}

// GetPossibleMoves returns all directions that produce a slide, in canonical order
func (e *GameEngine) GetPossibleMoves() []string {
	var possible []string
	for _, dir := range Directions {
		if e.CanMove(string(dir)) {
			possible = append(possible, string(dir))
		}
	}
	return possible
}

// GetLevel returns the level being played
func (e *GameEngine) GetLevel() *LevelConfig {
	return e.level
}

// SetLevel sets a new level and resets the game
func (e *GameEngine) SetLevel(level *LevelConfig) error {
	if level == nil {
		level = DefaultLevel()
	}
	state, err := InitGameStateFromLevel(level)
	if err != nil {
		return err
	}
	e.level = level
	e.state = state
	return nil
}

// GetGrid returns the grid being played
func (e *GameEngine) GetGrid() *Grid {
	return e.state.Grid
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// BulkMove executes multiple moves in sequence, returning success status for each
func (e *GameEngine) BulkMove(moves []string) []bool {
	results := make([]bool, 0, len(moves))

	for _, direction := range moves {
		// Stop if game is over
		if e.IsGameOver() {
			break
		}

		success := e.Move(direction)
		results = append(results, success)
	}

	return results
}
