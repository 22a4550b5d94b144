package service

import (
	"time"

	"github.com/wricardo/mcp-training/icegen/game/engine"
	"github.com/wricardo/mcp-training/icegen/game/generator"
	"github.com/wricardo/mcp-training/icegen/game/solver"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	LevelID        string              `json:"level_id"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      *engine.GameState   `json:"game_state"`
	Level          *engine.LevelConfig `json:"level"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success       bool              `json:"success"`
	GameState     *engine.GameState `json:"game_state"`
	Message       string            `json:"message"`
	Events        []GameEvent       `json:"events,omitempty"`
	Step          *StepInfo         `json:"step,omitempty"`
	PossibleMoves []string          `json:"possible_moves"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // Machine-friendly code: blocked|invalid_direction|out_of_moves|game_over|victory
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos engine.Position `json:"start_pos"`
	EndPos   engine.Position `json:"end_pos"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	GameOver      bool     `json:"game_over"`
	GameOverCode  string   `json:"game_over_code,omitempty"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
	MovesLeft     int      `json:"moves_left"`
}

// StepInfo is a compact record for each executed slide
type StepInfo struct {
	Idx      int             `json:"idx"`
	Dir      string          `json:"dir"`
	From     engine.Position `json:"from"`
	To       engine.Position `json:"to"`
	Distance int             `json:"distance"`
	TileType string          `json:"tile_type"`
	Success  bool            `json:"success"`
	Victory  bool            `json:"victory,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "move", "blocked", "game_over", "victory", "reset"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// LevelInfo provides information about a stored level
type LevelInfo struct {
	Filename    string `json:"filename"`
	LevelID     string `json:"level_id"` // The identifier to use for session creation
	Name        string `json:"name"`     // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	MoveLimit   int    `json:"move_limit"`
	MaxMoves    int    `json:"max_moves,omitempty"`
}

// SolveRequest configures a search
type SolveRequest struct {
	MoveLimit int            `json:"move_limit"` // 0 uses the level's limit
	Options   solver.Options `json:"options"`
	// FromPlayer searches from the player's current position instead of the start
	FromPlayer bool `json:"from_player"`
	// MaxSolutions caps the solutions returned; Count always reports the total
	MaxSolutions int `json:"max_solutions"`
}

// SolutionInfo is a solution in transport form
type SolutionInfo struct {
	Length       int               `json:"length"`
	Moves        []string          `json:"moves"`
	Path         []engine.Position `json:"path"`
	LongestSlide int               `json:"longest_slide"`
	Text         string            `json:"text"`
}

// SolveResult is the outcome of a search
type SolveResult struct {
	Level      string          `json:"level"`
	From       engine.Position `json:"from"`
	MoveLimit  int             `json:"move_limit"`
	Options    solver.Options  `json:"options"`
	Solvable   bool            `json:"solvable"`
	Count      int             `json:"count"`
	Solutions  []SolutionInfo  `json:"solutions"`
	Nodes      int             `json:"nodes"`
	DurationMS int64           `json:"duration_ms"`
	Message    string          `json:"message"`
}

// GenerateRequest configures level generation
type GenerateRequest struct {
	// Config overrides the default generator settings when set
	Config      *generator.Config `json:"config,omitempty"`
	Seed        int64             `json:"seed,omitempty"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	MaxMoves    int               `json:"max_moves,omitempty"`
	// Save stores the level in the level catalogue
	Save bool `json:"save"`
	// CreateSession opens a play session on the new level
	CreateSession bool `json:"create_session"`
	// Channel names a WebSocket channel that receives progress events
	Channel string `json:"channel,omitempty"`

	Observer func(generator.Event) `json:"-"`
}

// GenerateResult is the outcome of a generation run
type GenerateResult struct {
	LevelID  string              `json:"level_id"`
	Level    *engine.LevelConfig `json:"level"`
	View     []string            `json:"view"`
	Report   *generator.Report   `json:"report"`
	Shortest []string            `json:"shortest"`
	Saved    bool                `json:"saved"`
	Session  *SessionInfo        `json:"session,omitempty"`
}
