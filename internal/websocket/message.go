package websocket

import (
	"encoding/json"
	"time"
)

// Message types
const (
	TypeConnection   = "connection"
	TypeHeartbeat    = "heartbeat"
	TypeFilter       = "dsd:filter"
	TypeFilterResult = "dsd:result"
	TypeError        = "error"
	TypeShutdown     = "shutdown"
)

// Request is a message received from a client
type Request struct {
	Type      string   `json:"type"`
	ID        string   `json:"id,omitempty"`
	Districts []string `json:"districts"`
}

// Response is a message sent to a client. ID echoes the request.
type Response struct {
	Type      string    `json:"type"`
	ID        string    `json:"id,omitempty"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func newResponse(msgType, id string, data any) Response {
	return Response{Type: msgType, ID: id, Data: data, Timestamp: time.Now().UTC()}
}

func errorResponse(id string, err error) Response {
	r := newResponse(TypeError, id, nil)
	r.Error = err.Error()
	return r
}

func (r Response) encode() ([]byte, error) {
	return json.Marshal(r)
}
