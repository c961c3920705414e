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

	"github.com/wricardo/mcp-training/plantmerge/game/engine"
	"github.com/wricardo/mcp-training/plantmerge/game/service"
)

// maxListedTokens caps the token table printed with the game state
const maxListedTokens = 12

var directions = []string{"north", "south", "east", "west"}

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Plant Merge",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Plant Merge - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Walk around the map, pick up plants and merge two plants of the same value
into one of double the value. Grow a plant worth the config's win value to win.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: Manage game sessions
- game_state: Position, held plant and the closest tokens
- move / bulk_move: Step north/south/east/west (buttons mode only)
- set_mode: Switch between buttons and geolocation movement
- report_position: Send an absolute lat/lng (geolocation mode only)
- nearby_tokens: Tokens around the player with distances
- interact: Click a token by key to pick up, merge or swap
- reset_game, move_history, list_configs, game_instructions

NOTE: The 'intent' parameter on move/bulk_move/interact serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func intentProperty(what string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": fmt.Sprintf("Brief explanation of the intent behind this %s (serves as a rubber duck to help explain your reasoning)", what),
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, see list_configs (optional)",
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
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state and the closest tokens",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one step in a direction (buttons mode)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        directions,
					"description": "Direction to move",
				},
				"intent": intentProperty("move"),
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
		Description: fmt.Sprintf("Execute up to %d moves in sequence", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": directions,
					},
					"description": "Array of moves",
				},
				"intent": intentProperty("sequence of moves"),
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_mode",
		Description: "Switch movement between on-screen buttons and the device location",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"mode": map[string]interface{}{
					"type":        "string",
					"enum":        []string{string(engine.ModeButtons), string(engine.ModeGeolocation)},
					"description": "Movement mode",
				},
			},
			Required: []string{"session_id", "mode"},
		},
	}, c.handleSetMode)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "report_position",
		Description: "Report an absolute position for a session in geolocation mode",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"lat": map[string]interface{}{
					"type":        "number",
					"description": "Latitude in degrees",
				},
				"lng": map[string]interface{}{
					"type":        "number",
					"description": "Longitude in degrees",
				},
			},
			Required: []string{"session_id", "lat", "lng"},
		},
	}, c.handleReportPosition)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "nearby_tokens",
		Description: "List tokens around the player, closest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"within": map[string]interface{}{
					"type":        "number",
					"description": "Only tokens within this many meters (optional)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleNearbyTokens)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "interact",
		Description: "Click a token: pick it up, merge with the held plant or swap",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Token key as returned by nearby_tokens",
				},
				"intent": intentProperty("interaction"),
			},
			Required: []string{"session_id", "token"},
		},
	}, c.handleInteract)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to initial state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
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
				"session_id": sessionProperty(),
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

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
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

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if configID := request.GetString("config_id", ""); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.GameConfig != nil {
		result += fmt.Sprintf("Goal: grow a %s (%d)\n", engine.EmojiFor(session.GameConfig.WinValue), session.GameConfig.WinValue)
	}
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
		best := 0
		if s.GameState != nil {
			best = s.GameState.BestValue
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Best: %d, Created: %s)\n",
			s.ID, s.ConfigName, best, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatGameState(&state)

	// The token table is a convenience; the state alone is still useful
	var tokens service.TokensResult
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/tokens"), nil, &tokens); err == nil {
		result += "\n\n" + formatTokens(&tokens, maxListedTokens)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	body := map[string]interface{}{
		"direction": request.GetString("direction", ""),
		"reset":     request.GetBool("reset", false),
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	body := map[string]interface{}{
		"moves": request.GetStringSlice("moves", []string{}),
		"reset": request.GetBool("reset", false),
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleSetMode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var response struct {
		Mode      engine.MoveMode   `json:"mode"`
		Message   string            `json:"message"`
		GameState *engine.GameState `json:"game_state"`
	}
	body := map[string]string{"mode": request.GetString("mode", "")}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/mode"), body, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Mode: %s\n\n%s", response.Mode, formatGameState(response.GameState))), nil
}

func (c *Client) handleReportPosition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	args := request.GetArguments()
	lat, okLat := args["lat"].(float64)
	lng, okLng := args["lng"].(float64)
	if !okLat || !okLng {
		return mcp.NewToolResultError("lat and lng are required numbers"), nil
	}

	var result service.PositionResult
	body := engine.LatLng{Lat: lat, Lng: lng}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/position"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPositionResult(&result)), nil
}

func (c *Client) handleNearbyTokens(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	path := sessionPath(sessionID, "/tokens")
	if within := request.GetFloat("within", 0); within > 0 {
		path += fmt.Sprintf("?within=%g", within)
	}

	var tokens service.TokensResult
	if err := c.apiCall(ctx, "GET", path, nil, &tokens); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTokens(&tokens, 0)), nil
}

func (c *Client) handleInteract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var result service.InteractResult
	body := map[string]string{"token": request.GetString("token", "")}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/interact"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatInteractResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

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
	sessionID := request.GetString("session_id", "")

	params := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		params.Set("page", fmt.Sprint(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatHistory(&history)

	// Also show the current segment from live state
	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err == nil {
		result += "\n" + formatCurrentSegment(session.GameState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Origin: %.6f,%.6f, Reach: %.0fm, Goal: %s (%d)\n\n",
			config.Name, config.ConfigID, config.Description,
			config.Origin.Lat, config.Origin.Lng, config.InteractDistance,
			config.WinEmoji, config.WinValue)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🌱 Plant Merge - Complete Instructions

GAME OBJECTIVE:
Plants are scattered over a real map. Pick one up, carry it to another plant
of the same value and merge them into a plant of double the value. Grow a plant
worth the config's win value (🌳 256 by default) to win.

PLANT VALUES:
• 1 🌱  2 🌿  4 🌸  8 🌻  16 🌷  32 🌺  64 🌴  128 🌾  256 🌳

GAME MECHANICS:
• The world is divided into cells. Each cell spawns the same plants every time
  you visit it, so a cell you left still has its plants when you come back.
• Changes you make (picking up, merging) are remembered per token.
• You can only interact with tokens within the interact distance (30m default).
• Empty hand + token: pick it up.
• Same value in hand: merge, the token becomes double the value.
• Different value in hand: swap, you now hold the token's plant.

MOVEMENT:
• buttons mode: move/bulk_move step north, south, east or west.
• geolocation mode: the device location drives the player. Use
  report_position with absolute lat/lng. Button moves are refused.

🤖 STRATEGY FOR AGENTS:
1. Call game_state to see your position and the closest tokens.
2. Prefer tokens marked "in reach". Merge equal values before walking away.
3. Use bulk_move to cross cells; new cells bring new plants.
4. Keep merging upward: two 🌱 make 🌿, two 🌿 make 🌸, and so on.

VICTORY:
- Growing the win value shows the victory message. The game keeps going.

SESSION MANAGEMENT:
- Multiple game sessions can run simultaneously
- Each session has unique 4-character ID
- Sessions maintain independent state and configuration

Good luck growing your tree! 🌳`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatHeld(value int) string {
	if value == 0 {
		return "empty"
	}
	return fmt.Sprintf("%s (%d)", engine.EmojiFor(value), value)
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	fmt.Fprintf(&result, "Position: (%.6f, %.6f) | Cell: %s | Mode: %s\n",
		state.PlayerPos.Lat, state.PlayerPos.Lng, state.Cell, state.Mode)
	fmt.Fprintf(&result, "Held: %s | Best: %d | Merges: %d | Moves: %d\n",
		formatHeld(state.HeldValue), state.BestValue, state.Merges, state.TotalMoves)
	fmt.Fprintf(&result, "Tokens in view: %d", len(state.Tokens))

	if state.Victory {
		result.WriteString("\n🎉 VICTORY!")
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

// formatTokens renders a token table, closest first. limit <= 0 prints all.
func formatTokens(tokens *service.TokensResult, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tokens (%d, reach %.0fm):\n", len(tokens.Tokens), tokens.InteractDistance)

	for i, t := range tokens.Tokens {
		if limit > 0 && i >= limit {
			fmt.Fprintf(&b, "... %d more\n", len(tokens.Tokens)-limit)
			break
		}
		marks := ""
		if t.InRange {
			marks += " in reach"
		}
		if t.Mergeable {
			marks += " mergeable"
		}
		fmt.Fprintf(&b, "- %s %s (%d) %.0fm%s\n", t.Key, t.Emoji, t.Value, t.Distance, marks)
	}
	return b.String()
}

func formatEvents(b *strings.Builder, events []service.GameEvent) {
	if len(events) == 0 {
		return
	}
	b.WriteString("Events:\n")
	for _, event := range events {
		fmt.Fprintf(b, "- %s: %s\n", event.Type, event.Message)
	}
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		b.WriteString("✗ Move failed\n")
	}

	if s := result.Step; s != nil {
		fmt.Fprintf(&b, "Step: %s (%.6f,%.6f)→(%.6f,%.6f) cell=%s tokens=%d\n",
			s.Dir, s.From.Lat, s.From.Lng, s.To.Lat, s.To.Lng, s.Cell, s.TokensInCell)
	}

	formatEvents(&b, result.Events)

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	configName := ""
	if result.GameState != nil {
		configName = result.GameState.ConfigName
	}
	fmt.Fprintf(&b, "Session: %s • Config: %s\n", sessionID, configName)

	fmt.Fprintf(&b, "Executed %d/%d moves, %.0fm from %s to %s\n",
		result.MovesExecuted, result.RequestedMoves, result.DistanceMeters, result.StartCell, result.EndCell)
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on move %d: %s\n", result.StoppedOnMove, result.StoppedReason)
	}
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to %d moves\n", result.Limit)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for _, s := range result.Steps {
			changed := ""
			if s.CellChanged {
				changed = " new cell"
			}
			fmt.Fprintf(&b, "%d. %s → cell=%s tokens=%d%s\n", s.Idx, s.Dir, s.Cell, s.TokensInCell, changed)
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("\n")
		formatEvents(&b, result.Events)
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatPositionResult(result *service.PositionResult) string {
	var b strings.Builder
	if result.Accepted {
		b.WriteString("✓ Position accepted\n")
	} else {
		b.WriteString("✗ Position not applied\n")
	}
	formatEvents(&b, result.Events)
	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatInteractResult(result *service.InteractResult) string {
	var b strings.Builder
	out := result.Outcome
	fmt.Fprintf(&b, "Outcome: %s (%s at %.0fm)\n", out.Kind, out.Token.Key, out.Distance)
	if out.Kind != engine.Rejected {
		fmt.Fprintf(&b, "Holding: %s | Token now: %s\n", formatHeld(out.HeldValue), formatHeld(out.NewTokenValue))
	}
	formatEvents(&b, result.Events)
	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatHistoryEntry(num int, move engine.MoveHistoryEntry) string {
	status := "✓"
	if !move.Success {
		status = "✗"
	}
	line := fmt.Sprintf("%d. %s %s", num, move.Action, status)
	if move.Token != "" {
		line += fmt.Sprintf(" %s %s", move.Token, move.Outcome)
	}
	return line + fmt.Sprintf(" [Held: %s]\n", formatHeld(move.HeldValue))
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d) - Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for i, move := range history.Moves {
		b.WriteString(formatHistoryEntry((history.Page-1)*history.PageSize+i+1, move))
	}

	return b.String()
}

func formatCurrentSegment(state *engine.GameState) string {
	if state == nil {
		return "Current Segment: unavailable"
	}
	header := fmt.Sprintf("Current Move Segment - Moves: %d\n\n", state.CurrentMovesCount)
	if len(state.CurrentMoves) == 0 {
		return header + "(no moves in current segment)"
	}
	var b strings.Builder
	b.WriteString(header)
	for i, move := range state.CurrentMoves {
		b.WriteString(formatHistoryEntry(i+1, move))
	}
	return b.String()
}
