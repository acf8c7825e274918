package realtime

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/logging"
)

// Registry maps presence keys of one channel kind to their live connection.
// All methods are safe for concurrent use. Connection I/O never happens
// while the lock is held: Close and Send only enqueue.
type Registry struct {
	kind    Kind
	log     logging.Logger
	mu      sync.Mutex
	entries map[Key]Conn
}

func NewRegistry(kind Kind, l logging.Logger) *Registry {
	return &Registry{
		kind:    kind,
		log:     l.With("module", "presence", "kind", kind.String()),
		entries: make(map[Key]Conn),
	}
}

// Put installs conn under key. A different connection already stored under
// key is closed and replaced.
func (r *Registry) Put(key Key, conn Conn) {
	r.mu.Lock()
	old, ok := r.entries[key]
	if ok && old != conn {
		old.Close(CloseNormal, "replaced by a newer connection")
	}
	r.entries[key] = conn
	r.mu.Unlock()

	if ok && old != conn {
		r.log.Info(context.Background(), "connection replaced",
			"token", common.ShortToken(key.Token), "old_conn", old.ID(), "conn_id", conn.ID())
	}
}

// Remove drops every entry that points at conn and returns how many were
// dropped. An entry that was already replaced by a newer connection stays.
func (r *Registry) Remove(conn Conn) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for k, c := range r.entries {
		if c == conn {
			delete(r.entries, k)
			n++
		}
	}
	return n
}

// SendIfPresent queues payload on the connection stored under key and
// reports whether one was found. A full queue drops the payload and is only
// logged.
func (r *Registry) SendIfPresent(key Key, payload []byte) bool {
	r.mu.Lock()
	conn, ok := r.entries[key]
	r.mu.Unlock()
	if !ok {
		return false
	}

	if !conn.Send(payload) {
		r.log.Warn(context.Background(), "frame dropped, connection not accepting writes",
			"token", common.ShortToken(key.Token), "conn_id", conn.ID())
	}
	return true
}

func (r *Registry) Lookup(key Key) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.entries[key]
	return c, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// CloseAll closes and forgets every connection.
func (r *Registry) CloseAll(code int, reason string) {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[Key]Conn)
	r.mu.Unlock()

	for _, c := range entries {
		c.Close(code, reason)
	}
}
