package models

import "time"

// MessageKind mirrors the real-time channel a message was sent through.
type MessageKind string

const (
	MessageDirect       MessageKind = "direct"
	MessageProject      MessageKind = "project"
	MessageNotification MessageKind = "notification"
)

// Message is the canonical stored record returned by persistence and
// forwarded verbatim to live connections.
type Message struct {
	ID              string      `json:"id"`
	Kind            MessageKind `json:"kind"`
	SenderID        string      `json:"senderId"`
	RecipientUserID string      `json:"recipientUserId,omitempty"`
	ProjectID       string      `json:"projectId,omitempty"`
	Subject         string      `json:"subject,omitempty"`
	Content         string      `json:"content"`
	CreatedAt       time.Time   `json:"createdAt"`
	ReadAt          *time.Time  `json:"readAt,omitempty"`
}

// NewMessage is the input to persistence; the store assigns ID and CreatedAt.
type NewMessage struct {
	Kind            MessageKind
	SenderID        string
	RecipientUserID string
	ProjectID       string
	Subject         string
	Content         string
}
