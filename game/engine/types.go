package engine

// Tile represents the type of a single grid tile
type Tile string

const (
	Ice   Tile = "ice"
	Floor Tile = "floor"
	Solid Tile = "solid"

	// Validation constants
	MinGridSize         = 1
	MaxGridSize         = 64
	MaxMoveLimit        = 30
	DefaultMoveLimit    = 15
	MaxBulkMoves        = 50
	WebSocketBufferSize = 256
)

// Valid reports whether t is one of the three tile types
func (t Tile) Valid() bool {
	return t == Ice || t == Floor || t == Solid
}

// Symbol returns the single character used by the text renderer
func (t Tile) Symbol() byte {
	switch t {
	case Ice:
		return '~'
	case Floor:
		return '#'
	default:
		return '@'
	}
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add returns the position shifted by dx, dy
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// GameState represents the complete play state of a level
type GameState struct {
	Grid      *Grid    `json:"grid"`
	PlayerPos Position `json:"player_pos"`
	MovesUsed int      `json:"moves_used"`
	MaxMoves  int      `json:"max_moves"` // 0 means unlimited
	MoveLimit int      `json:"move_limit"`
	Message   string   `json:"message"`
	GameOver  bool     `json:"game_over"`
	Victory   bool     `json:"victory"`
	LevelName string   `json:"level_name"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	// Rendered text view of the grid with the player marked
	View []string `json:"view,omitempty"`
}

// MovesLeft returns the remaining slide budget, or -1 when unlimited
func (gs *GameState) MovesLeft() int {
	if gs.MaxMoves <= 0 {
		return -1
	}
	if left := gs.MaxMoves - gs.MovesUsed; left > 0 {
		return left
	}
	return 0
}

// MoveHistoryEntry represents a single slide in the game history
type MoveHistoryEntry struct {
	Action       string   `json:"action"`
	FromPosition Position `json:"from_position"`
	ToPosition   Position `json:"to_position"`
	Distance     int      `json:"distance"`
	Timestamp    int64    `json:"timestamp"`
	Success      bool     `json:"success"`
	MoveNumber   int      `json:"move_number"`
}
