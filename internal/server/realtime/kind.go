// Package realtime delivers chat-style messages over long-lived WebSocket
// connections. Every channel kind shares one connection lifecycle and one
// router; the kinds differ only in how frames are decoded, persisted and
// addressed.
package realtime

import "fmt"

type Kind int

const (
	Direct Kind = iota
	Group
	Notification
)

var kindNames = [...]string{
	Direct:       "direct",
	Group:        "project",
	Notification: "notifications",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds lists every channel kind in routing order.
func Kinds() []Kind { return []Kind{Direct, Group, Notification} }

// Key addresses one presence entry. Scope separates the per-project
// connections of a single token on the group channel and is empty for the
// other kinds.
type Key struct {
	Token string
	Scope string
}

func keyFor(kind Kind, token, target string) Key {
	if kind == Group {
		return Key{Token: token, Scope: target}
	}
	return Key{Token: token}
}

// Session is one admitted connection together with its addressing.
type Session struct {
	Kind   Kind
	Token  string
	Target string // counterparty user id, project id or empty
	UserID string
	Conn   Conn
}

func (s *Session) Key() Key { return keyFor(s.Kind, s.Token, s.Target) }
