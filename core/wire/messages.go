// Package wire defines the WebSocket protocol between a schema server and
// remote sessions.
package wire

import (
	"encoding/json"
)

// Client message types.
const (
	TypeSnapshot  = "snapshot"
	TypeSubscribe = "subscribe"
	TypePing      = "ping"
)

// Server message types. A snapshot reply reuses TypeSnapshot.
const (
	TypeSubscribed   = "subscribed"
	TypeNotification = "notification"
	TypePong         = "pong"
	TypeError        = "error"
)

// Error codes carried in ErrorData.
const (
	CodeUnknownType = "unknown_type"
	CodeInvalidData = "invalid_data"
	CodeUnavailable = "unavailable"
)

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string          `json:"type"`
	ID   string          `json:"id"` // client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// SubscribeData is the payload for "subscribe" messages.
type SubscribeData struct {
	Stage string `json:"stage"`
}

// ServerMessage is the envelope for all server-to-client messages. Data is a
// schema document, a notification, SubscribedData or ErrorData depending on
// Type.
type ServerMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"` // echoes the client ID
	Data      any    `json:"data,omitempty"`
}

// Reply is a ServerMessage as read by a client, with the payload still raw.
type Reply struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type SubscribedData struct {
	Stage string `json:"stage"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ErrorData) Error() string {
	return e.Code + ": " + e.Message
}

// NewClientMessage builds a request with its payload encoded.
func NewClientMessage(msgType, id string, data any) (ClientMessage, error) {
	msg := ClientMessage{Type: msgType, ID: id}
	if data == nil {
		return msg, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return ClientMessage{}, err
	}
	msg.Data = raw
	return msg, nil
}

// Err returns the error carried by an error reply, or nil.
func (r Reply) Err() error {
	if r.Type != TypeError {
		return nil
	}
	var data ErrorData
	if err := json.Unmarshal(r.Data, &data); err != nil {
		return ErrorData{Code: CodeInvalidData, Message: "malformed error reply"}
	}
	return data
}
