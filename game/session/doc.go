// Package session provides session management for the ice puzzle.
//
// Manager is a thread-safe registry of play sessions, each owning its own
// engine. Session IDs are 4-character hex strings generated from
// crypto/rand and looked up case-insensitively.
//
// With a SessionPersistence attached, sessions are saved on creation and
// after every state change by the service layer, loaded lazily on Get and
// removed from storage on Delete. FilePersistence stores one JSON document per
// session holding the level itself next to the game state, so a session on a
// generated level can be restored without the level catalogue.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", levels)
//	manager := session.NewManagerWithPersistence(persistence)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := manager.Create("", level)
//
// CleanupExpiredSessions and SyncWithFilesystem keep memory and storage in
// step for long-running servers.
package session
