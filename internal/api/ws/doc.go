// Package ws streams module runs over a WebSocket.
//
// Message Types (Client → Server):
//   - run: execute a query ({"type":"run","query":{...}})
//   - ping: keep-alive ping
//
// Message Types (Server → Client):
//   - chunk: raw decoded output with its channel, in write order
//   - result: the complete output rendered to HTML
//   - error: the run failed; message is plain text
//   - pong: reply to ping
//
// Chunk text is not markup. Escape sequences may be split across chunks,
// so only the final result is rendered.
//
// Example Usage:
//
//	handler := ws.NewHandler(runner, metrics, logger, ws.WithOrigins(origins))
//	router.GET("/stream", handler.HandleConnection)
package ws
