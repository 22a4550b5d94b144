// Package mcp exposes the ice puzzle to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes a REST request against
// the api package and the JSON response is rendered as text for the agent.
//
// Tools:
//   - create_session, get_session, list_sessions: session management
//   - game_state, move, bulk_move, reset_game, move_history: play
//   - solve, solve_level: solution search for a session or a stored level
//   - generate_level, list_levels: level catalogue
//   - game_instructions, describe_tile: rules and tile lookup
//
// Numeric arguments are accepted as JSON numbers or strings.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// or, over HTTP, pass request bodies to client.GetMCPServer().HandleMessage.
package mcp
