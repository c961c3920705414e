// Package session owns the lifecycle of game sessions.
//
// A Manager keeps live sessions in memory, keyed case-insensitively by a short
// hex ID, and optionally mirrors them to a SessionPersistence backend. Two
// backends ship with the package:
//
//   - FilePersistence writes one JSON document per session.
//   - SQLitePersistence stores sessions in SQLite, with token overrides in
//     their own table so a session's garden can be queried row by row.
//
// Sessions evicted from memory by CleanupExpiredSessions stay in storage and
// are loaded again on the next Get. A restored state is sanitized by the
// engine before play resumes; a state that no longer decodes starts a fresh
// game at the configured origin.
//
// When a FeedProvider is attached with SetFeedProvider, every engine the
// manager creates or loads follows that provider's location feed, which is
// how geolocation mode resumes after a restart.
//
// Usage:
//
//	store, err := session.OpenSQLitePersistence("plantmerge.db", configs, logger)
//	if err != nil {
//		return err
//	}
//	manager := session.NewManagerWithPersistence(store, logger)
//	manager.SetFeedProvider(broker)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		return err
//	}
package session
