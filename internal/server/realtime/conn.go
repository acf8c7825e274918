package realtime

import "github.com/gorilla/websocket"

// Close codes used by the server.
const (
	ClosePolicyViolation = websocket.ClosePolicyViolation
	CloseNormal          = websocket.CloseNormalClosure
	CloseGoingAway       = websocket.CloseGoingAway
)

// Conn is a live connection handle. Send and Close never block the caller.
type Conn interface {
	ID() string
	// Send queues payload for writing. It returns false when the connection
	// is closed or its queue is full, in which case the payload is dropped.
	Send(payload []byte) bool
	// Close starts closing the connection with the given close frame. Only
	// the first call has an effect.
	Close(code int, reason string)
}
