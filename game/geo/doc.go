// Package geo routes absolute position updates from connected clients to the
// game engines that follow them.
//
// A Broker keeps, per session, the set of geolocation-capable sources (for
// example a browser tab connected over WebSocket with location access) and the
// engine callbacks subscribed through Feed. A session's feed reports itself as
// supported only while at least one source is registered, unless direct
// reporting is allowed, in which case REST and MCP clients may publish
// positions themselves.
//
// Usage:
//
//	broker := geo.NewBroker(false, logger)
//	eng.SetLocationFeed(broker.Feed(sessionID))
//
//	remove := broker.AddSource(sessionID)
//	defer remove()
//
//	broker.Publish(sessionID, engine.LatLng{Lat: 36.99, Lng: -122.05})
//
// Publish invokes subscribers synchronously; callers serialize it with other
// operations on the same engine.
package geo
