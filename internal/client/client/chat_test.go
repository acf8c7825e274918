package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelURLs(t *testing.T) {
	assert.Equal(t, "ws://h:8080/ws/direct/tok/bob", DirectURL("ws://h:8080/", "tok", "bob"))
	assert.Equal(t, "ws://h/ws/project/tok/p%2F1", ProjectURL("ws://h", "tok", "p/1"))
	assert.Equal(t, "ws://h/ws/notifications/tok", NotificationsURL("ws://h", "tok"))
}

// echoServer replies to every frame with a stored-message record, and
// refuses the token "bad" with a policy violation close.
func echoServer(t *testing.T) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		if strings.Contains(r.URL.Path, "/bad") {
			msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication failed")
			_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		}
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			var f frame
			if err := json.Unmarshal(data, &f); err != nil {
				return
			}
			out, _ := json.Marshal(Message{ID: "m1", Kind: "direct", SenderID: "alice", Subject: f.Subject, Content: f.Content, CreatedAt: time.Now().UTC()})
			if err := ws.WriteMessage(websocket.TextMessage, out); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestChatConn_SendReceive(t *testing.T) {
	base := echoServer(t)
	c, err := DialChat(context.Background(), DirectURL(base, "tok", "bob"))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Send("standup", "at 10"))
	m, err := c.Receive()
	require.NoError(t, err)
	assert.Equal(t, "at 10", m.Content)
	assert.Equal(t, "standup", m.Subject)
	assert.Equal(t, "alice", m.SenderID)
}

func TestChatConn_RefusedIsUnauthorized(t *testing.T) {
	base := echoServer(t)
	c, err := DialChat(context.Background(), DirectURL(base, "bad", "bob"))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Receive()
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDialChat_Unreachable(t *testing.T) {
	_, err := DialChat(context.Background(), "ws://127.0.0.1:1/ws/notifications/tok")
	assert.ErrorIs(t, err, ErrUnavailable)
}
