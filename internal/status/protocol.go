// Package status serves the loop state over HTTP and a websocket feed.
package status

import "github.com/frudas24/padpin/internal/session"

// MsgState is the message type pushed after every state change.
const MsgState = "state"

// Message is a status websocket payload.
type Message struct {
	T     string            `json:"t"`
	State *session.Snapshot `json:"state,omitempty"`
}

// stateMessage wraps a snapshot for the wire.
func stateMessage(snap session.Snapshot) Message {
	return Message{T: MsgState, State: &snap}
}
