package proto

import "time"

type Empty struct{}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

type ConfirmRequest struct {
	Token string `json:"token"`
}

type RequestPasswordResetRequest struct {
	Username string `json:"username"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	UserID       string `json:"user_id"`
	SessionToken string `json:"session_token"`
}

type PingResponse struct {
	Status string `json:"status"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type HistoryRequest struct {
	CounterpartyID string `json:"counterparty_id"`
	Limit          int32  `json:"limit,omitempty"`
}

type MarkReadRequest struct {
	CounterpartyID string `json:"counterparty_id"`
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

type ProjectHistoryRequest struct {
	ProjectID string `json:"project_id"`
	Limit     int32  `json:"limit,omitempty"`
}

// Message is a stored message as returned by the history calls.
type Message struct {
	ID              string     `json:"id"`
	Kind            string     `json:"kind"`
	SenderID        string     `json:"sender_id"`
	RecipientUserID string     `json:"recipient_user_id,omitempty"`
	ProjectID       string     `json:"project_id,omitempty"`
	Subject         string     `json:"subject,omitempty"`
	Content         string     `json:"content"`
	CreatedAt       time.Time  `json:"created_at"`
	ReadAt          *time.Time `json:"read_at,omitempty"`
}

type HistoryResponse struct {
	Messages []*Message `json:"messages"`
}
