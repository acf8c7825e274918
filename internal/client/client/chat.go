package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message is a stored message as pushed over a real-time channel.
type Message struct {
	ID              string    `json:"id"`
	Kind            string    `json:"kind"`
	SenderID        string    `json:"senderId"`
	RecipientUserID string    `json:"recipientUserId,omitempty"`
	ProjectID       string    `json:"projectId,omitempty"`
	Subject         string    `json:"subject,omitempty"`
	Content         string    `json:"content"`
	CreatedAt       time.Time `json:"createdAt"`
}

type frame struct {
	Subject string `json:"subject,omitempty"`
	Content string `json:"content"`
}

func channelURL(base string, segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/ws/" + strings.Join(escaped, "/")
}

func DirectURL(base, token, userID string) string {
	return channelURL(base, "direct", token, userID)
}

func ProjectURL(base, token, projectID string) string {
	return channelURL(base, "project", token, projectID)
}

func NotificationsURL(base, token string) string {
	return channelURL(base, "notifications", token)
}

// ChatConn is one open real-time channel. Send and Receive may be used
// from different goroutines.
type ChatConn struct {
	ws  *websocket.Conn
	wmu sync.Mutex
}

// DialChat opens the channel at rawURL.
func DialChat(ctx context.Context, rawURL string) (*ChatConn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &ChatConn{ws: ws}, nil
}

// Send writes one frame. The subject is only accepted on direct channels.
func (c *ChatConn) Send(subject, content string) error {
	data, err := json.Marshal(frame{Subject: subject, Content: content})
	if err != nil {
		return err
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Receive blocks for the next message. A refused connection is reported
// as ErrUnauthorized.
func (c *ChatConn) Receive() (*Message, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return &m, nil
}

// Close sends a normal close frame and releases the socket.
func (c *ChatConn) Close() error {
	c.wmu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.wmu.Unlock()
	return c.ws.Close()
}
