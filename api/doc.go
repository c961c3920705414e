// Package api provides the HTTP REST API for the plant merge game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "garden"})
//   - GET /api/sessions - List sessions (sort=created|accessed, order, limit)
//   - GET /api/sessions/unified - Sessions grouped for the multi-session view
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/move - One button step ({"direction": "north"})
//   - POST /api/sessions/{id}/bulk-move - Several steps ({"moves": [...]})
//   - POST /api/sessions/{id}/position - Absolute position ({"lat": .., "lng": ..})
//   - POST /api/sessions/{id}/mode - Switch between "buttons" and "geolocation"
//   - POST /api/sessions/{id}/interact - Click a token ({"token": "row:col#n"})
//   - GET /api/sessions/{id}/tokens - Tokens around the player (within=meters)
//   - POST /api/sessions/{id}/reset - Start over
//   - GET /api/sessions/{id}/history - Paginated move history
//
// Configuration:
//   - GET /api/configs - List configurations
//   - GET /api/configs/{name} - Get a configuration
//   - POST /api/configs - Save a configuration
//
// Observability:
//   - GET /api/metrics - Counters
//   - GET /api/health - Liveness
//
// State changes are pushed to the session's WebSocket clients at /ws?session={id}.
//
// Errors are returned as JSON with a status derived from the error:
//
//	{"error": "session not found"}
//
// Unknown sessions, configs and tokens map to 404, malformed input to 400,
// and requests the current mode refuses to 409.
package api
