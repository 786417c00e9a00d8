package websocket

import (
	"encoding/json"
	"time"
)

const (
	MessageTypePing = "ping"
	MessageTypePong = "pong"
)

// Envelope is the frame format for server pushed events.
type Envelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// handleClientMessage answers application level pings. The socket is push
// only otherwise; chat sends go through the REST API.
func handleClientMessage(raw []byte) []byte {
	var msg Envelope
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil
	}
	if msg.Type != MessageTypePing {
		return nil
	}
	out, _ := json.Marshal(Envelope{Type: MessageTypePong, Timestamp: time.Now().UTC().Format(time.RFC3339)})
	return out
}
