package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/icegen/game/engine"
	"github.com/wricardo/mcp-training/icegen/game/generator"
	"github.com/wricardo/mcp-training/icegen/game/solver"
)

// DefaultMaxSolutions is the number of solutions returned when a request does not say
const DefaultMaxSolutions = 5

// GenerateTimeout bounds one generation run. When it expires the run stops
// with the last solvable grid instead of failing.
const GenerateTimeout = 30 * time.Second

// ErrLevelNotFound is returned when a named level does not exist
var ErrLevelNotFound = errors.New("level not found")

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// getLevelID returns the level_id for a given level name, used for consistent API responses
func (s *gameServiceImpl) getLevelID(levelName string) string {
	available, err := s.configs.ListConfigs()
	if err == nil {
		for _, info := range available {
			if info.Name == levelName {
				return info.LevelID
			}
		}
	}
	// Fallback: return as-is or "default"
	if levelName == "" {
		return "default"
	}
	return levelName
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

func (s *gameServiceImpl) sessionInfo(sess *Session, levelID string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		LevelID:        levelID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		Level:          sess.Level,
	}
}

// loadLevel resolves a level name, listing the alternatives when it is unknown
func (s *gameServiceImpl) loadLevel(levelName string) (*engine.LevelConfig, error) {
	if levelName == "" {
		return s.configs.GetDefault(), nil
	}

	level, err := s.configs.LoadConfig(levelName)
	if err == nil {
		return level, nil
	}
	if strings.Contains(err.Error(), "not found") {
		available, listErr := s.configs.ListConfigs()
		if listErr == nil && len(available) > 0 {
			var ids []string
			for _, info := range available {
				ids = append(ids, info.LevelID)
			}
			return nil, fmt.Errorf("%w: '%s'. Available levels: %v", ErrLevelNotFound, levelName, ids)
		}
		return nil, fmt.Errorf("%w: '%s'. Use /api/levels to list available levels", ErrLevelNotFound, levelName)
	}
	return nil, fmt.Errorf("failed to load level %s: %w", levelName, err)
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, levelName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	level, err := s.loadLevel(levelName)
	if err != nil {
		return nil, err
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", level)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	levelID := levelName
	if levelID == "" {
		levelID = s.getLevelID(level.Name)
	}
	return s.sessionInfo(sess, levelID), nil
}

// CreateSessionFromLevel opens a session on a level that is not in the catalogue
func (s *gameServiceImpl) CreateSessionFromLevel(ctx context.Context, level *engine.LevelConfig) (*SessionInfo, error) {
	if err := engine.ValidateLevelConfig(level); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Create("", level)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s.sessionInfo(sess, level.Name), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(sess, s.getLevelID(sess.Level.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getLevelID(sess.Level.Name)))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move executes a single slide for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, GameEvent{
			Type:      "reset",
			Message:   "Game reset to initial state",
			Timestamp: time.Now(),
		})
	}

	prevPos := sess.Engine.GetPlayerPosition()
	success := sess.Engine.Move(direction)
	newPos := sess.Engine.GetPlayerPosition()
	state := sess.Engine.GetState()

	result := &MoveResult{
		Success:   success,
		GameState: state,
		Message:   state.Message,
		Events:    append(events, moveEvents(state, prevPos, newPos, direction, success)...),
	}
	if success {
		step := buildStep(1, direction, prevPos, newPos, state)
		result.Step = &step
	}
	result.PossibleMoves = nonNil(sess.Engine.GetPossibleMoves())

	s.persist(sessionID, "move")
	return result, nil
}

// BulkMove executes multiple slides in sequence
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, GameEvent{
			Type:      "reset",
			Message:   "Game reset to initial state",
			Timestamp: time.Now(),
		})
	}
	result.StartPos = sess.Engine.GetPlayerPosition()

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if sess.Engine.IsGameOver() {
			result.StoppedReason = "game over before all moves were executed"
			result.StoppedOnMove = i + 1
			break
		}

		prevPos := sess.Engine.GetPlayerPosition()
		success := sess.Engine.Move(move)
		st := sess.Engine.GetState()
		newPos := st.PlayerPos
		result.Events = append(result.Events, moveEvents(st, prevPos, newPos, move, success)...)

		if !success {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, move)
			result.StoppedOnMove = i + 1
			switch _, dirErr := engine.ParseDirection(move); {
			case dirErr != nil:
				result.StopReasonCode = "invalid_direction"
			case st.GameOver:
				result.StopReasonCode = "out_of_moves"
			default:
				result.StopReasonCode = "blocked"
			}
			break
		}

		result.MovesExecuted++
		result.Steps = append(result.Steps, buildStep(i+1, move, prevPos, newPos, st))
	}

	endState := sess.Engine.GetState()
	result.GameState = endState
	result.EndPos = endState.PlayerPos
	result.GameOver = endState.GameOver
	result.Message = endState.Message
	result.MovesLeft = endState.MovesLeft()

	if result.GameOver {
		switch {
		case endState.Victory:
			result.GameOverCode = "victory"
		case endState.MovesLeft() == 0:
			result.GameOverCode = "out_of_moves"
		default:
			result.GameOverCode = "game_over"
		}
		if result.StopReasonCode == "" {
			result.StopReasonCode = result.GameOverCode
		}
	}

	result.PossibleMoves = nonNil(sess.Engine.GetPossibleMoves())

	s.persist(sessionID, "bulk moves")
	return result, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.Reset()

	s.persist(sessionID, "reset")
	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Reverse order (most recent first)
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}
	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// Solve searches a session's level. With FromPlayer set the search starts at
// the player's position, which makes it a hint.
func (s *gameServiceImpl) Solve(ctx context.Context, sessionID string, req SolveRequest) (*SolveResult, error) {
	s.mu.RLock()
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		s.mu.RUnlock()
		return nil, fmt.Errorf("session not found: %w", err)
	}
	snapshot := sess.Engine.GetGrid().Clone()
	player := sess.Engine.GetPlayerPosition()
	limit := sess.Level.SearchLimit()
	s.mu.RUnlock()

	if req.FromPlayer {
		snapshot.Start = player
	}
	return runSolve(ctx, snapshot, limit, req)
}

// SolveLevel searches a catalogue level from its start tile
func (s *gameServiceImpl) SolveLevel(ctx context.Context, levelName string, req SolveRequest) (*SolveResult, error) {
	level, err := s.loadLevel(levelName)
	if err != nil {
		return nil, err
	}
	grid, err := engine.BuildGrid(level)
	if err != nil {
		return nil, err
	}
	return runSolve(ctx, grid, level.SearchLimit(), req)
}

// Generate produces a new level and optionally saves it and opens a session
func (s *gameServiceImpl) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	cfg := generator.DefaultConfig()
	if req.Config != nil {
		cfg = *req.Config
	}
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}

	opts := []generator.Option{generator.WithLogger(logrus.WithField("component", "generator"))}
	if req.Observer != nil {
		opts = append(opts, generator.WithObserver(req.Observer))
	}
	gen, err := generator.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithTimeout(ctx, GenerateTimeout)
	defer cancel()

	grid, report, err := gen.GenerateContext(runCtx)
	if err != nil {
		return nil, fmt.Errorf("generate level: %w", err)
	}
	// The caller is gone; a grid cut short by the deadline alone is still served
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generate level: %w", err)
	}

	name := req.Name
	if name == "" {
		name = "gen-" + uuid.NewString()[:8]
	}
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Generated %dx%d level, shortest solution %d moves", grid.Width, grid.Height, report.Shortest)
	}
	grid.Name = name

	level := engine.ExportLevel(grid, name, description)
	level.MoveLimit = gen.Config().MoveLimit
	level.MaxMoves = req.MaxMoves

	result := &GenerateResult{
		LevelID: name,
		Level:   level,
		View:    grid.Rows(nil),
		Report:  report,
	}
	if shortest := solver.Search(grid, level.MoveLimit, gen.Config().Search); len(shortest) > 0 {
		result.Shortest = shortest[0].Moves()
	}

	if req.Save {
		if err := s.configs.SaveConfig(name, level); err != nil {
			return nil, fmt.Errorf("save generated level: %w", err)
		}
		result.Saved = true
	}

	if req.CreateSession {
		info, err := s.CreateSessionFromLevel(ctx, level)
		if err != nil {
			return nil, err
		}
		result.Session = info
	}

	logrus.WithFields(logrus.Fields{
		"level":    name,
		"width":    grid.Width,
		"height":   grid.Height,
		"shortest": report.Shortest,
		"saved":    result.Saved,
	}).Info("level generated")

	return result, nil
}

// ListConfigs returns available levels
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*LevelInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific level
func (s *gameServiceImpl) LoadConfig(ctx context.Context, levelName string) (*engine.LevelConfig, error) {
	return s.configs.LoadConfig(levelName)
}

// SaveConfig saves a level to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, levelName string, level *engine.LevelConfig) error {
	return s.configs.SaveConfig(levelName, level)
}

// persist saves a session, logging instead of failing the request
func (s *gameServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		logrus.WithError(err).WithField("session", sessionID).Warnf("failed to persist session after %s", after)
	}
}

// runSolve searches grid and converts the result for transport
func runSolve(ctx context.Context, grid *engine.Grid, levelLimit int, req SolveRequest) (*SolveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := req.MoveLimit
	if limit <= 0 {
		limit = levelLimit
	}
	if limit > engine.MaxMoveLimit {
		limit = engine.MaxMoveLimit
	}
	maxSolutions := req.MaxSolutions
	if maxSolutions <= 0 {
		maxSolutions = DefaultMaxSolutions
	}

	run, err := solver.RunContext(ctx, grid, limit, req.Options)
	if err != nil {
		return nil, fmt.Errorf("solve %s: %w", grid.Name, err)
	}
	result := &SolveResult{
		Level:      grid.Name,
		From:       grid.Start,
		MoveLimit:  limit,
		Options:    req.Options,
		Solvable:   run.Solvable(),
		Count:      len(run.Solutions),
		Solutions:  make([]SolutionInfo, 0, min(maxSolutions, len(run.Solutions))),
		Nodes:      run.Nodes,
		DurationMS: run.Duration.Milliseconds(),
	}

	for i, sol := range run.Solutions {
		if i >= maxSolutions {
			break
		}
		info := SolutionInfo{
			Length: sol.Len(),
			Moves:  sol.Moves(),
			Path:   make([]engine.Position, 0, sol.Len()),
			Text:   sol.String(),
		}
		for _, step := range sol {
			info.Path = append(info.Path, step.To)
		}
		if seg, ok := sol.LongestSlide(grid.Start); ok {
			info.LongestSlide = seg.Distance
		}
		result.Solutions = append(result.Solutions, info)
	}

	if result.Solvable {
		result.Message = fmt.Sprintf("Found %d solutions within %d moves, shortest is %d", result.Count, limit, result.Solutions[0].Length)
	} else {
		result.Message = fmt.Sprintf("No solution exists within %d moves!", limit)
	}
	return result, nil
}

// moveEvents generates events from a slide
func moveEvents(state *engine.GameState, prevPos, newPos engine.Position, direction string, success bool) []GameEvent {
	now := time.Now()
	if !success {
		events := []GameEvent{{Type: "blocked", Message: state.Message, Timestamp: now, Position: prevPos}}
		if state.GameOver {
			events = append(events, GameEvent{Type: "game_over", Message: state.Message, Timestamp: now, Position: prevPos})
		}
		return events
	}

	events := []GameEvent{{
		Type:      "move",
		Message:   fmt.Sprintf("Slid %s to (%d,%d)", direction, newPos.X, newPos.Y),
		Timestamp: now,
		Position:  newPos,
	}}

	if state.GameOver {
		if state.Victory {
			events = append(events, GameEvent{Type: "victory", Message: state.Message, Timestamp: now, Position: newPos})
		} else {
			events = append(events, GameEvent{Type: "game_over", Message: state.Message, Timestamp: now, Position: newPos})
		}
	}
	return events
}

func buildStep(idx int, direction string, from, to engine.Position, state *engine.GameState) StepInfo {
	return StepInfo{
		Idx:      idx,
		Dir:      direction,
		From:     from,
		To:       to,
		Distance: engine.ManhattanDistance(from, to),
		TileType: string(state.Grid.At(to)),
		Success:  true,
		Victory:  state.Victory,
	}
}

func nonNil(moves []string) []string {
	if moves == nil {
		return []string{}
	}
	return moves
}
