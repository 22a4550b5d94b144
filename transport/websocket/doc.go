// Package websocket streams game updates to browser and tool clients.
//
// A central Hub owns every connection. Clients subscribe to one channel when
// they connect: a session ID to follow a game, or a free-form name that a
// generate request streams its progress to. All registry access happens on
// the goroutine running Hub.Run; BroadcastToSession and BroadcastEvent only
// queue messages for it.
//
// Outgoing frames are JSON:
//
//	{"channel": "ab12", "event": "state_update", "game_state": {...}}
//	{"channel": "gen-1", "event": "generator", "data": {"type": "interference", ...}}
//
// Incoming frames are read and discarded to keep the connection alive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
