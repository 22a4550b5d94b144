package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/icegen/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, levelName string) (*SessionInfo, error)
	CreateSessionFromLevel(ctx context.Context, level *engine.LevelConfig) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Solving and generation
	Solve(ctx context.Context, sessionID string, req SolveRequest) (*SolveResult, error)
	SolveLevel(ctx context.Context, levelName string, req SolveRequest) (*SolveResult, error)
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)

	// Levels
	ListConfigs(ctx context.Context) ([]*LevelInfo, error)
	LoadConfig(ctx context.Context, levelName string) (*engine.LevelConfig, error)
	SaveConfig(ctx context.Context, levelName string, level *engine.LevelConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, level *engine.LevelConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, level *engine.LevelConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles level loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.LevelConfig, error)
	ListConfigs() ([]*LevelInfo, error)
	GetDefault() *engine.LevelConfig
	SaveConfig(name string, level *engine.LevelConfig) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Level          *engine.LevelConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
