// Package api provides the HTTP REST API for the sliding ice puzzle.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                 - Create a session ({"level_id"} or an inline {"level"})
//   - GET    /api/sessions                 - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/unified         - Several sessions at once (?sessionIds=a,b or ?levelId=x)
//   - GET    /api/sessions/{id}            - Get a session
//   - DELETE /api/sessions/{id}            - Delete a session
//
// Play:
//   - GET  /api/sessions/{id}/state        - Current game state
//   - POST /api/sessions/{id}/move         - One slide: {"direction":"up","reset":false}
//   - POST /api/sessions/{id}/bulk-move    - Several slides: {"moves":["up","right"]}
//   - POST /api/sessions/{id}/reset        - Restart the level
//   - GET  /api/sessions/{id}/history      - Paginated move history (?page&limit&order)
//   - POST /api/sessions/{id}/solve        - Search the session's level, optionally from the player
//
// Levels:
//   - GET  /api/levels                     - List the catalogue
//   - POST /api/levels                     - Store a level (JSON, or YAML with a yaml content type)
//   - GET  /api/levels/{name}              - Get a level
//   - POST /api/levels/{name}/solve        - Search a stored level
//   - POST /api/generate                   - Generate a level
//
// Live updates:
//   - GET /ws?session={id}                 - Game state after every move in the session
//   - GET /ws?channel={name}               - Generator progress for a generate request naming that channel
//
// Errors are returned as {"error": "..."}. Unknown sessions and levels map to
// 404, invalid levels and generator settings to 400 and a level the generator
// could not make solvable to 422.
package api
