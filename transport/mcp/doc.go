// Package mcp exposes the plant merge game to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, so an agent and a browser player can share one session.
//
// Tools:
//   - create_session, get_session, list_sessions
//   - game_state: position, held plant and the closest tokens
//   - move, bulk_move: button steps (north/south/east/west)
//   - set_mode, report_position: geolocation driven play
//   - nearby_tokens, interact: find and click tokens
//   - reset_game, move_history, list_configs, game_instructions
//
// Transport Modes:
//
// The server is served over stdio for local MCP clients, or mounted as a
// streamable HTTP handler at /mcp next to the REST API.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
