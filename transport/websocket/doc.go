// Package websocket pushes game updates to browsers and accepts their positions.
//
// A Hub groups connections by session ID (case-insensitive). Every state change
// made through the REST API is broadcast to the session's clients as
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//
// followed by one message per game event (merge, victory, cell change...).
//
// Clients connected with ?geo=1 are registered as geolocation sources for their
// session, which lets the session switch to geolocation mode. Such a client
// sends its fixes as
//
//	{"event": "position", "lat": 36.9979, "lng": -122.0570}
//
// and the hub applies them through the configured PositionReporter. Failures
// are answered to the sender only, with an "error" event.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	hub.SetPositionReporter(gameService)
//	hub.SetSourceRegistry(broker)
//	go hub.Run(ctx)
//
// The hub goroutine owns registration and broadcast; each client runs its own
// read and write pumps.
package websocket
