// Package websocket serves the live district filter of the DSD table.
//
// A Hub tracks connected clients. Each Client runs a read pump that decodes
// requests and hands them to a RequestHandler, and a write pump that sends
// the replies and keeps the connection alive with pings.
//
// Client requests:
//
//	{"type":"dsd:filter","id":"1","districts":["Anuradhapura"]}
//	{"type":"heartbeat"}
//
// A missing or null "districts" selects every district; [] selects none.
package websocket
