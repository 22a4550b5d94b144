package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wricardo/mcp-training/icegen/game/engine"
	"github.com/wricardo/mcp-training/icegen/game/generator"
	"github.com/wricardo/mcp-training/icegen/game/service"
	"github.com/wricardo/mcp-training/icegen/game/solver"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// generation can take a while on large levels
			Timeout: 60 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Ice Puzzle",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Ice Puzzle - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Slide the player (P) from the start (S) onto the exit (E). On ice (~) you keep
sliding until the next tile would be solid (@) or off the board. Floor (#)
stops you where you land on it.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: Manage play sessions
- game_state: Current board and budget
- move / bulk_move: Slide up/down/left/right - requires intent explanation
- reset_game: Back to the start
- move_history: View past slides
- solve: Solutions for a session, optionally from the current position (hint)
- solve_level: Solutions for a stored level
- generate_level: Create a new level, optionally saved and opened as a session
- list_levels: Stored levels
- game_instructions: Full rules
- describe_tile: What is at (x, y)

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func solveProperties(props map[string]interface{}) map[string]interface{} {
	props["move_limit"] = map[string]interface{}{
		"type":        "integer",
		"description": "Maximum slides to search (defaults to the level's limit, capped at 30)",
	}
	props["max_solutions"] = map[string]interface{}{
		"type":        "integer",
		"description": "How many solutions to list (default 5)",
	}
	props["reversal_pruning"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Skip a slide straight back the way the previous one came",
	}
	props["tail_pruning"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Collapse solutions that only differ in an earlier prefix",
	}
	return props
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session on a stored level (default level when omitted)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Level to play (see list_levels)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Slide the player in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to slide",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this slide (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: "Execute several slides in sequence, stopping at the first one that fails",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"up", "down", "left", "right"},
					},
					"description": "Array of slides",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of slides (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to initial state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	// Solving
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve",
		Description: "List solutions for a session's level. With from_player the search starts at the player's current position, which works as a hint.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: solveProperties(map[string]interface{}{
				"session_id": sessionIDProperty(),
				"from_player": map[string]interface{}{
					"type":        "boolean",
					"description": "Search from the player's position instead of the start",
				},
			}),
			Required: []string{"session_id"},
		},
	}, c.handleSolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_level",
		Description: "List solutions for a stored level without opening a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: solveProperties(map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Level to solve",
				},
			}),
			Required: []string{"level_id"},
		},
	}, c.handleSolveLevel)

	// Levels
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "generate_level",
		Description: "Generate a new solvable level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"width": map[string]interface{}{
					"type":        "integer",
					"description": "Level width (5-64, default picks 12-16)",
				},
				"height": map[string]interface{}{
					"type":        "integer",
					"description": "Level height (5-64, default picks 12-16)",
				},
				"move_limit": map[string]interface{}{
					"type":        "integer",
					"description": "Search limit the level must be solvable within (4-30)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Random seed for a reproducible level",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Level name (generated when omitted)",
				},
				"save": map[string]interface{}{
					"type":        "boolean",
					"description": "Store the level in the catalogue",
				},
				"create_session": map[string]interface{}{
					"type":        "boolean",
					"description": "Open a play session on the new level",
				},
			},
		},
	}, c.handleGenerateLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List stored levels",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_tile",
		Description: "Get the tile at a grid position and what a slide does there. Useful for telling ice (~) from floor (#) and solid (@).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of the tile (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row) of the tile (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeTile)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool arguments, tolerating a missing object
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// solveBody builds a SolveRequest from tool arguments. Numbers arrive as
// float64 or strings depending on the client, hence cast.
func solveBody(args map[string]interface{}) service.SolveRequest {
	return service.SolveRequest{
		MoveLimit:    cast.ToInt(args["move_limit"]),
		MaxSolutions: cast.ToInt(args["max_solutions"]),
		FromPlayer:   cast.ToBool(args["from_player"]),
		Options: solver.Options{
			ReversalPruning: cast.ToBool(args["reversal_pruning"]),
			TailPruning:     cast.ToBool(args["tail_pruning"]),
		},
	}
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	levelID := cast.ToString(args["level_id"])

	body := map[string]string{}
	if levelID != "" {
		body["level_id"] = levelID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nLevel: %s\n\n%s", session.ID, session.LevelID, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "playing"
		if s.GameState != nil && s.GameState.Victory {
			status = "won"
		} else if s.GameState != nil && s.GameState.GameOver {
			status = "over"
		}
		fmt.Fprintf(&b, "- %s (Level: %s, %s, Created: %s)\n",
			s.ID, s.LevelID, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := cast.ToString(arguments(request)["session_id"])

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := cast.ToString(arguments(request)["session_id"])

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])

	// intent is for the caller's benefit only
	body := map[string]interface{}{
		"direction": cast.ToString(args["direction"]),
		"reset":     cast.ToBool(args["reset"]),
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])

	body := map[string]interface{}{
		"moves": cast.ToStringSlice(args["moves"]),
		"reset": cast.ToBool(args["reset"]),
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := cast.ToString(arguments(request)["session_id"])

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])

	params := url.Values{}
	if page := cast.ToInt(args["page"]); page > 0 {
		params.Set("page", cast.ToString(page))
	}
	if limit := cast.ToInt(args["limit"]); limit > 0 {
		params.Set("limit", cast.ToString(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])

	var result service.SolveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/solve"), solveBody(args), &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

func (c *Client) handleSolveLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	levelID := cast.ToString(args["level_id"])
	if levelID == "" {
		return mcp.NewToolResultError("level_id is required"), nil
	}

	var result service.SolveResult
	path := "/api/levels/" + url.PathEscape(levelID) + "/solve"
	if err := c.apiCall(ctx, "POST", path, solveBody(args), &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

func (c *Client) handleGenerateLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	cfg := generator.DefaultConfig()
	if w := cast.ToInt(args["width"]); w > 0 {
		cfg.MinWidth, cfg.MaxWidth = w, w
	}
	if h := cast.ToInt(args["height"]); h > 0 {
		cfg.MinHeight, cfg.MaxHeight = h, h
	}
	if limit := cast.ToInt(args["move_limit"]); limit > 0 {
		cfg.MoveLimit = limit
	}

	body := service.GenerateRequest{
		Config:        &cfg,
		Seed:          cast.ToInt64(args["seed"]),
		Name:          cast.ToString(args["name"]),
		Save:          cast.ToBool(args["save"]),
		CreateSession: cast.ToBool(args["create_session"]),
	}

	var result service.GenerateResult
	if err := c.apiCall(ctx, "POST", "/api/generate", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGenerateResult(&result)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []service.LevelInfo
	if err := c.apiCall(ctx, "GET", "/api/levels", nil, &levels); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Levels:\n\n")
	for _, level := range levels {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Grid: %dx%d, Search limit: %d",
			level.LevelID, level.Name, level.Description, level.Width, level.Height, level.MoveLimit)
		if level.MaxMoves > 0 {
			fmt.Fprintf(&b, ", Slide budget: %d", level.MaxMoves)
		}
		b.WriteString("\n\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])
	x, errX := cast.ToIntE(args["x"])
	y, errY := cast.ToIntE(args["y"])
	if errX != nil || errY != nil {
		return mcp.NewToolResultError("x and y must be integers"), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if state.Grid == nil {
		return mcp.NewToolResultError("session has no grid"), nil
	}

	return mcp.NewToolResultText(describeTile(&state, x, y)), nil
}
